// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils is a rate-limited client for the NCBI Entrez E-utilities:
// efetch for PubMed metadata, ecitmatch for citation disambiguation, the
// PMC ID converter for PMCID→PMID, and esearch for DOI→PMID. It is the
// metadata provider behind both resolution engines.
package eutils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/findit/internal/httputil"
)

const (
	// BaseURL is the Entrez E-utilities endpoint root.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// IDConvBaseURL is the PMC ID converter endpoint.
	IDConvBaseURL = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// NCBI allows 3 requests/second without an API key and 10 with one.
	RateLimitNoKey   = 3.0
	RateLimitWithKey = 10.0

	tool = "findit"
)

// ErrNotFound is returned when the queried identifier has no record.
var ErrNotFound = errors.New("eutils: record not found")

// Client issues E-utilities requests. The limiter serializes outbound
// requests from all goroutines sharing the client so the aggregate rate
// never exceeds NCBI's ceiling.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	apiKey        string
	email         string
	userAgent     string
	baseURL       string
	idconvBaseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the NCBI API key and raises the rate limit accordingly.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
		if key != "" {
			c.limiter = rate.NewLimiter(rate.Limit(RateLimitWithKey), 1)
		}
	}
}

// WithEmail sets the contact email sent with every request per NCBI policy.
func WithEmail(email string) Option {
	return func(c *Client) { c.email = email }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom E-utilities base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithIDConvBaseURL sets a custom ID converter base URL (for testing).
func WithIDConvBaseURL(u string) Option {
	return func(c *Client) { c.idconvBaseURL = u }
}

// WithLimiter substitutes the outbound rate limiter, letting several
// collaborator clients share one process-wide limit.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates an E-utilities client with the keyless rate limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		limiter:       rate.NewLimiter(rate.Limit(RateLimitNoKey), 1),
		userAgent:     "findit/0.1",
		baseURL:       BaseURL,
		idconvBaseURL: IDConvBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get waits for the rate limiter, then issues a GET against endpoint with
// params plus the standard tool/email/api_key parameters.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("tool", tool)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	return httputil.DoWithRetry(ctx, c.httpClient, req, 0)
}
