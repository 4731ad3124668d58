// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/findit/internal/registry"
	"github.com/pdiddy/findit/pkg/types"
)

// citationPDFPattern extracts the citation_pdf_url meta tag most publisher
// landing pages carry. Used when a page_scrape descriptor has no pattern
// of its own.
var citationPDFPattern = regexp.MustCompile(`<meta[^>]+name="citation_pdf_url"[^>]+content="([^"]+)"`)

// scrapeBodyLimit bounds how much of an intermediate page is read.
const scrapeBodyLimit = 1 << 20

// verify checks that url plausibly serves a PDF: an acceptable status and
// either a pdf content type or the %PDF byte signature on partial
// content. Returns NoFailure on success, otherwise the typed reason.
func (e *Engine) verify(ctx context.Context, target string) types.FailureReason {
	req, err := e.newRequest(ctx, http.MethodHead, target)
	if err != nil {
		return types.FailNetwork
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return types.FailNetwork
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if reason := classifyStatus(resp.StatusCode); reason != types.NoFailure {
		return reason
	}
	if isPDFContentType(resp.Header.Get("Content-Type")) {
		return types.NoFailure
	}

	// HEAD was inconclusive (some publishers refuse it or mislabel the
	// type); fall back to sniffing the first bytes.
	return e.verifyBySignature(ctx, target)
}

// verifyBySignature issues a partial GET and checks for the %PDF magic.
func (e *Engine) verifyBySignature(ctx context.Context, target string) types.FailureReason {
	req, err := e.newRequest(ctx, http.MethodGet, target)
	if err != nil {
		return types.FailNetwork
	}
	req.Header.Set("Range", "bytes=0-1023")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return types.FailNetwork
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if reason := classifyStatus(resp.StatusCode); reason != types.NoFailure {
		return reason
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		return types.FailNotFound
	}
	if string(head) == "%PDF" {
		return types.NoFailure
	}

	// The URL answered 200 with something that is not a PDF — almost
	// always a login or paywall interstitial.
	return types.FailPaywall
}

// classifyStatus maps an HTTP status to a failure reason. The redirect
// statuses count as acceptable because the client follows them; seeing
// one here means the chain ended there.
func classifyStatus(status int) types.FailureReason {
	switch {
	case status >= 200 && status < 300,
		status == http.StatusMovedPermanently,
		status == http.StatusFound,
		status == http.StatusTemporaryRedirect:
		return types.NoFailure
	case status == http.StatusPaymentRequired,
		status == http.StatusUnavailableForLegalReasons:
		return types.FailPaywall
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return types.FailAccessDenied
	case status == http.StatusNotFound,
		status == http.StatusGone:
		return types.FailNotFound
	default:
		return types.FailNetwork
	}
}

func isPDFContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "pdf")
}

// scrape fetches the strategy's intermediate page and extracts the PDF
// link. When the descriptor has no URL template the page is the DOI
// redirect landing page.
func (e *Engine) scrape(ctx context.Context, desc *registry.StrategyDescriptor, m *types.ArticleMetadata) (string, types.FailureReason) {
	pageURL := ""
	if desc.URLTemplate != "" {
		var reason types.FailureReason
		pageURL, reason = expandTemplate(desc.URLTemplate, m)
		if reason != types.NoFailure {
			return "", reason
		}
	} else {
		if m.DOI == "" {
			return "", types.FailMissingField
		}
		res, err := e.doi.Resolve(ctx, m.DOI)
		if err != nil {
			return "", types.FailInvalidDOI
		}
		pageURL = res.FinalURL
	}

	req, err := e.newRequest(ctx, http.MethodGet, pageURL)
	if err != nil {
		return "", types.FailNetwork
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", types.FailNetwork
	}
	defer resp.Body.Close()

	if reason := classifyStatus(resp.StatusCode); reason != types.NoFailure {
		return "", reason
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, scrapeBodyLimit))
	if err != nil {
		return "", types.FailNetwork
	}

	pattern := citationPDFPattern
	if desc.PDFPattern != "" {
		pattern, err = regexp.Compile(desc.PDFPattern)
		if err != nil {
			return "", types.FailNoStrategy
		}
	}

	match := pattern.FindSubmatch(body)
	if match == nil {
		return "", types.FailNotFound
	}

	return absoluteURL(resp.Request.URL, string(match[1])), types.NoFailure
}

// absoluteURL resolves a possibly relative link against the page it was
// scraped from.
func absoluteURL(page *url.URL, link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	return page.ResolveReference(u).String()
}
