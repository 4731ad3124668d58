// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/findit/pkg/types"
)

// XML structures for parsing PubMed EFetch responses.

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation   medlineCitation `xml:"MedlineCitation"`
	PubmedData pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string     `xml:"PMID"`
	Article xmlArticle `xml:"Article"`
}

type xmlArticle struct {
	Journal      xmlJournal    `xml:"Journal"`
	ArticleTitle string        `xml:"ArticleTitle"`
	AuthorList   xmlAuthorList `xml:"AuthorList"`
	Pagination   xmlPagination `xml:"Pagination"`
}

type xmlJournal struct {
	JournalIssue    xmlJournalIssue `xml:"JournalIssue"`
	Title           string          `xml:"Title"`
	ISOAbbreviation string          `xml:"ISOAbbreviation"`
}

type xmlJournalIssue struct {
	Volume  string     `xml:"Volume"`
	Issue   string     `xml:"Issue"`
	PubDate xmlPubDate `xml:"PubDate"`
}

type xmlPubDate struct {
	Year string `xml:"Year"`
}

type xmlAuthorList struct {
	Authors []xmlAuthor `xml:"Author"`
}

type xmlAuthor struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}

type xmlPagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
}

type pubmedData struct {
	History       xmlHistory    `xml:"History"`
	ArticleIDList xmlArticleIDs `xml:"ArticleIdList"`
}

type xmlHistory struct {
	Dates []xmlHistoryDate `xml:"PubMedPubDate"`
}

type xmlHistoryDate struct {
	Status string `xml:"PubStatus,attr"`
	Year   string `xml:"Year"`
	Month  string `xml:"Month"`
	Day    string `xml:"Day"`
}

type xmlArticleIDs struct {
	IDs []xmlArticleID `xml:"ArticleId"`
}

type xmlArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// FetchArticle retrieves the bibliographic record for a PMID, including
// the DOI/PMCID cross-references and, when the article is deposited in
// PMC under an embargo, the pmc-release date from the record history.
func (c *Client) FetchArticle(ctx context.Context, pmid string) (*types.ArticleMetadata, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	}

	resp, err := c.get(ctx, c.baseURL+"/efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}
	if len(set.Articles) == 0 {
		return nil, fmt.Errorf("pmid %s: %w", pmid, ErrNotFound)
	}

	return articleToMetadata(set.Articles[0]), nil
}

func articleToMetadata(a pubmedArticle) *types.ArticleMetadata {
	art := a.Citation.Article
	m := &types.ArticleMetadata{
		ArticleIdentifiers: types.ArticleIdentifiers{PMID: a.Citation.PMID},
		Title:              strings.TrimSpace(art.ArticleTitle),
		Journal:            art.Journal.ISOAbbreviation,
		Volume:             art.Journal.JournalIssue.Volume,
		Issue:              art.Journal.JournalIssue.Issue,
		FirstPage:          firstPage(art.Pagination.MedlinePgn),
	}
	if m.Journal == "" {
		m.Journal = art.Journal.Title
	}
	if y, err := strconv.Atoi(art.Journal.JournalIssue.PubDate.Year); err == nil {
		m.Year = y
	}

	for _, au := range art.AuthorList.Authors {
		if au.LastName == "" {
			continue
		}
		name := au.LastName
		if au.Initials != "" {
			name += " " + au.Initials
		}
		m.Authors = append(m.Authors, name)
	}

	for _, id := range a.PubmedData.ArticleIDList.IDs {
		switch id.Type {
		case "doi":
			m.DOI = strings.TrimSpace(id.Value)
		case "pmc":
			m.PMCID = strings.TrimSpace(id.Value)
		}
	}

	for _, d := range a.PubmedData.History.Dates {
		if d.Status == "pmc-release" {
			if t, err := parseHistoryDate(d); err == nil {
				m.EmbargoDate = t
			}
		}
	}

	return m
}

// firstPage extracts the starting page from a MedlinePgn range like
// "91-103" or "e31".
func firstPage(pgn string) string {
	pgn = strings.TrimSpace(pgn)
	if i := strings.IndexByte(pgn, '-'); i >= 0 {
		return pgn[:i]
	}
	return pgn
}

func parseHistoryDate(d xmlHistoryDate) (time.Time, error) {
	y, err := strconv.Atoi(d.Year)
	if err != nil {
		return time.Time{}, err
	}
	mo, err := strconv.Atoi(d.Month)
	if err != nil {
		mo = 1
	}
	day, err := strconv.Atoi(d.Day)
	if err != nil {
		day = 1
	}
	return time.Date(y, time.Month(mo), day, 0, 0, 0, 0, time.UTC), nil
}

// idconvResponse is the PMC ID converter JSON shape.
type idconvResponse struct {
	Records []idconvRecord `json:"records"`
}

type idconvRecord struct {
	PMID   string `json:"pmid"`
	PMCID  string `json:"pmcid"`
	Status string `json:"status"`
}

// PMIDForPMCID converts a PMCID ("PMC3458974") to its PMID via the PMC ID
// converter. Returns ErrNotFound when the converter has no live record.
func (c *Client) PMIDForPMCID(ctx context.Context, pmcid string) (string, error) {
	params := url.Values{
		"ids":    {pmcid},
		"format": {"json"},
	}

	resp, err := c.get(ctx, c.idconvBaseURL, params)
	if err != nil {
		return "", fmt.Errorf("idconv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("idconv returned HTTP %d", resp.StatusCode)
	}

	var ic idconvResponse
	if err := json.NewDecoder(resp.Body).Decode(&ic); err != nil {
		return "", fmt.Errorf("parsing idconv response: %w", err)
	}

	if len(ic.Records) == 0 || ic.Records[0].PMID == "" || ic.Records[0].Status == "error" {
		return "", fmt.Errorf("pmcid %s: %w", pmcid, ErrNotFound)
	}
	return ic.Records[0].PMID, nil
}

// esearchResponse is the esearch JSON shape.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// PMIDForDOI looks up the PMID indexed under a DOI. Returns ErrNotFound
// unless exactly one record matches; a multi-hit DOI search is as useless
// as a miss for cross-validation purposes.
func (c *Client) PMIDForDOI(ctx context.Context, doi string) (string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {doi + "[AID]"},
		"retmode": {"json"},
	}

	resp, err := c.get(ctx, c.baseURL+"/esearch.fcgi", params)
	if err != nil {
		return "", fmt.Errorf("esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("esearch returned HTTP %d", resp.StatusCode)
	}

	var es esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&es); err != nil {
		return "", fmt.Errorf("parsing esearch response: %w", err)
	}

	if len(es.Result.IDList) != 1 {
		return "", fmt.Errorf("doi %s: %w", doi, ErrNotFound)
	}
	return es.Result.IDList[0], nil
}
