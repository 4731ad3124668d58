// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/findit/internal/identifier"
	"github.com/pdiddy/findit/pkg/types"
)

// citationKey tags our query inside the pipe-delimited batch so the
// response line can be matched back.
const citationKey = "findit.match"

// ambiguousPattern matches the ecitmatch sentinel "AMBIGUOUS (12 citations)".
var ambiguousPattern = regexp.MustCompile(`AMBIGUOUS\s*\((\d+)\s+citations?\)`)

// FindPMIDs queries ecitmatch with whatever combination of journal, year,
// volume, first page, and author last name is available. The service
// signals "no match" and "ambiguous match" through sentinel strings in the
// PMID position; those are parsed here into CitationMatch outcomes and
// never surface to callers.
func (c *Client) FindPMIDs(ctx context.Context, q types.CitationQuery) (types.CitationMatch, error) {
	year := ""
	if q.Year > 0 {
		year = strconv.Itoa(q.Year)
	}
	bdata := strings.Join([]string{
		q.Journal, year, q.Volume, q.FirstPage, q.AuthorLastName, citationKey,
	}, "|") + "|"

	params := url.Values{
		"db":      {"pubmed"},
		"retmode": {"xml"},
		"bdata":   {bdata},
	}

	resp, err := c.get(ctx, c.baseURL+"/ecitmatch.cgi", params)
	if err != nil {
		return types.CitationMatch{}, fmt.Errorf("ecitmatch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.CitationMatch{}, fmt.Errorf("ecitmatch returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.CitationMatch{}, fmt.Errorf("reading ecitmatch response: %w", err)
	}

	return parseCitationResponse(string(body)), nil
}

// parseCitationResponse interprets the pipe-delimited ecitmatch reply. The
// final field of our line carries either a PMID, "NOT_FOUND" (possibly
// with qualifiers like ";INVALID_JOURNAL"), or "AMBIGUOUS (n citations)".
func parseCitationResponse(body string) types.CitationMatch {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, citationKey) {
			continue
		}

		fields := strings.Split(line, "|")
		verdict := strings.TrimSpace(fields[len(fields)-1])

		if identifier.ValidPMID(verdict) {
			return types.CitationMatch{Outcome: types.MatchFound, PMID: verdict}
		}
		if m := ambiguousPattern.FindStringSubmatch(verdict); m != nil {
			n, _ := strconv.Atoi(m[1])
			return types.CitationMatch{Outcome: types.MatchAmbiguous, Candidates: n}
		}
		return types.CitationMatch{Outcome: types.MatchNotFound}
	}
	return types.CitationMatch{Outcome: types.MatchNotFound}
}
