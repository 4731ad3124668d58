// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/findit/pkg/types"
)

const efetchSample = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">22253870</PMID>
      <Article PubModel="Print">
        <Journal>
          <JournalIssue CitedMedium="Print">
            <Volume>7</Volume>
            <Issue>1</Issue>
            <PubDate><Year>2012</Year><Month>01</Month></PubDate>
          </JournalIssue>
          <Title>PloS one</Title>
          <ISOAbbreviation>PLoS One</ISOAbbreviation>
        </Journal>
        <ArticleTitle>Sample article title.</ArticleTitle>
        <Pagination><MedlinePgn>e29631-44</MedlinePgn></Pagination>
        <AuthorList CompleteYN="Y">
          <Author ValidYN="Y"><LastName>Garcia</LastName><ForeName>Maria</ForeName><Initials>M</Initials></Author>
          <Author ValidYN="Y"><LastName>Chen</LastName><ForeName>Wei</ForeName><Initials>W</Initials></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <History>
        <PubMedPubDate PubStatus="entrez"><Year>2012</Year><Month>1</Month><Day>19</Day></PubMedPubDate>
        <PubMedPubDate PubStatus="pmc-release"><Year>2030</Year><Month>6</Month><Day>15</Day></PubMedPubDate>
      </History>
      <ArticleIdList>
        <ArticleId IdType="pubmed">22253870</ArticleId>
        <ArticleId IdType="doi">10.1371/journal.pone.0029631</ArticleId>
        <ArticleId IdType="pmc">PMC3258247</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
</PubmedArticleSet>`

func TestFetchArticle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		assert.Equal(t, "22253870", r.URL.Query().Get("id"))
		w.Write([]byte(efetchSample))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	m, err := c.FetchArticle(context.Background(), "22253870")
	require.NoError(t, err)

	assert.Equal(t, "22253870", m.PMID)
	assert.Equal(t, "10.1371/journal.pone.0029631", m.DOI)
	assert.Equal(t, "PMC3258247", m.PMCID)
	assert.Equal(t, "Sample article title.", m.Title)
	assert.Equal(t, "PLoS One", m.Journal)
	assert.Equal(t, "7", m.Volume)
	assert.Equal(t, "1", m.Issue)
	assert.Equal(t, "e29631", m.FirstPage)
	assert.Equal(t, 2012, m.Year)
	assert.Equal(t, []string{"Garcia M", "Chen W"}, m.Authors)
	assert.Equal(t, time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC), m.EmbargoDate)
	assert.Equal(t, "Garcia", m.FirstAuthorLastName())
	assert.True(t, m.EmbargoActive(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.EmbargoActive(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFetchArticleNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<?xml version="1.0" ?><PubmedArticleSet></PubmedArticleSet>`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := c.FetchArticle(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPMIDForPMCID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PMC3458974", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"records":[{"pmcid":"PMC3458974","pmid":"22253870"}]}`))
	}))
	defer ts.Close()

	c := NewClient(WithIDConvBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	pmid, err := c.PMIDForPMCID(context.Background(), "PMC3458974")
	require.NoError(t, err)
	assert.Equal(t, "22253870", pmid)
}

func TestPMIDForPMCIDNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"records":[{"pmcid":"PMC999","status":"error"}]}`))
	}))
	defer ts.Close()

	c := NewClient(WithIDConvBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := c.PMIDForPMCID(context.Background(), "PMC999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPMIDForDOI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("term"), "[AID]")
		w.Write([]byte(`{"esearchresult":{"idlist":["22253870"]}}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	pmid, err := c.PMIDForDOI(context.Background(), "10.1371/journal.pone.0029631")
	require.NoError(t, err)
	assert.Equal(t, "22253870", pmid)
}

func TestPMIDForDOIRejectsMultiHit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"esearchresult":{"idlist":["111","222"]}}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := c.PMIDForDOI(context.Background(), "10.1371/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseCitationResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want types.CitationMatch
	}{
		{
			"single match",
			"Proc Natl Acad Sci U S A|2008|105|6|Smith|findit.match|18316727\n",
			types.CitationMatch{Outcome: types.MatchFound, PMID: "18316727"},
		},
		{
			"not found",
			"J Invest Dermatol|2010|133||Jones|findit.match|NOT_FOUND\n",
			types.CitationMatch{Outcome: types.MatchNotFound},
		},
		{
			"not found with qualifier",
			"Bogus J|2010|1|1|X|findit.match|NOT_FOUND;INVALID_JOURNAL\n",
			types.CitationMatch{Outcome: types.MatchNotFound},
		},
		{
			"ambiguous",
			"Science|1987|235|182|Anderson|findit.match|AMBIGUOUS (2 citations)\n",
			types.CitationMatch{Outcome: types.MatchAmbiguous, Candidates: 2},
		},
		{
			"empty body",
			"",
			types.CitationMatch{Outcome: types.MatchNotFound},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCitationResponse(tt.body))
		})
	}
}

func TestFindPMIDs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ecitmatch.cgi", r.URL.Path)
		bdata := r.URL.Query().Get("bdata")
		assert.Contains(t, bdata, "Proc Natl Acad Sci U S A|2008|105|6|Smith|")
		w.Write([]byte("Proc Natl Acad Sci U S A|2008|105|6|Smith|findit.match|18316727\n"))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	match, err := c.FindPMIDs(context.Background(), types.CitationQuery{
		Journal:        "Proc Natl Acad Sci U S A",
		Year:           2008,
		Volume:         "105",
		FirstPage:      "6",
		AuthorLastName: "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, types.MatchFound, match.Outcome)
	assert.Equal(t, "18316727", match.PMID)
}
