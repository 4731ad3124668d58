// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/findit/pkg/types"
)

func verifyAgainst(t *testing.T, handler http.HandlerFunc) types.FailureReason {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	e := testEngine(t, &fakeMeta{}, &fakeDOI{}, WithHTTPClient(ts.Client()))
	return e.verify(context.Background(), ts.URL+"/article.pdf")
}

func TestVerifyAcceptsPDFContentType(t *testing.T) {
	reason := verifyAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		if r.Method == http.MethodGet {
			w.Write([]byte("%PDF-1.4 ..."))
		}
	})
	assert.Equal(t, types.NoFailure, reason)
}

func TestVerifyFallsBackToByteSignature(t *testing.T) {
	reason := verifyAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		// Content type deliberately wrong; the body carries the magic.
		w.Header().Set("Content-Type", "application/octet-stream")
		if r.Method == http.MethodGet {
			w.Write([]byte("%PDF-1.7\n..."))
		}
	})
	assert.Equal(t, types.NoFailure, reason)
}

func TestVerifyClassifiesPaywallInterstitial(t *testing.T) {
	reason := verifyAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.Method == http.MethodGet {
			w.Write([]byte("<html>Please sign in to continue</html>"))
		}
	})
	assert.Equal(t, types.FailPaywall, reason)
}

func TestVerifyClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   types.FailureReason
	}{
		{"payment required", http.StatusPaymentRequired, types.FailPaywall},
		{"legal takedown", http.StatusUnavailableForLegalReasons, types.FailPaywall},
		{"forbidden", http.StatusForbidden, types.FailAccessDenied},
		{"unauthorized", http.StatusUnauthorized, types.FailAccessDenied},
		{"not found", http.StatusNotFound, types.FailNotFound},
		{"gone", http.StatusGone, types.FailNotFound},
		{"server error", http.StatusInternalServerError, types.FailNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := verifyAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestVerifyNetworkErrorIsRetryable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused from here on

	e := testEngine(t, &fakeMeta{}, &fakeDOI{})
	reason := e.verify(context.Background(), ts.URL+"/article.pdf")
	assert.Equal(t, types.FailNetwork, reason)
	assert.True(t, reason.Retryable())
}

func TestVerifiedLocate(t *testing.T) {
	// End to end: strategy produces a URL on the test server, Verify
	// inspects it.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		if r.Method == http.MethodGet {
			w.Write([]byte("%PDF-1.4"))
		}
	}))
	defer ts.Close()

	doi := &fakeDOI{landings: map[string]string{
		"10.1172/JCI45014": ts.URL + "/articles/view/45014",
	}}
	e := testEngine(t, &fakeMeta{}, doi, WithHTTPClient(ts.Client()))

	m := &types.ArticleMetadata{
		ArticleIdentifiers: types.ArticleIdentifiers{PMID: "21123948", DOI: "10.1172/JCI45014"},
		Journal:            "J Clin Invest",
	}
	got := e.LocateMetadata(context.Background(), m, Options{Verify: true})
	assert.Equal(t, types.NoFailure, got.Reason)
	assert.True(t, got.Verified)
	assert.Equal(t, ts.URL+"/articles/view/45014/pdf", got.URL)
}
