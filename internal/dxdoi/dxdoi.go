// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dxdoi resolves DOIs to their publisher landing URLs by following
// the dx.doi.org redirect chain. A paywall answering 402/403 at the end of
// the chain is still a successful resolution: the landing URL is what we
// were after, and the status is reported alongside it.
package dxdoi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/findit/internal/cache"
	"github.com/pdiddy/findit/internal/identifier"
)

// BaseURL is the DOI proxy endpoint.
const BaseURL = "https://dx.doi.org"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// ErrInvalidDOI is returned for DOIs that are syntactically invalid or
// unknown to the DOI system (the proxy answers 404 without redirecting).
var ErrInvalidDOI = errors.New("dxdoi: invalid or unregistered DOI")

// Resolution is the outcome of following a DOI redirect chain.
type Resolution struct {
	// FinalURL is the last URL in the redirect chain.
	FinalURL string

	// StatusCode is the HTTP status of the final response. Zero when the
	// resolution was served from cache without a network call.
	StatusCode int

	// FromCache reports whether the resolution came from the link cache.
	FromCache bool
}

// Resolver follows DOI redirects, rate limited and optionally memoized.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
	links      *cache.Store
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.httpClient = hc }
}

// WithBaseURL sets a custom proxy base URL (for testing).
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = u }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) { r.userAgent = ua }
}

// WithLimiter substitutes the outbound rate limiter, letting several
// collaborator clients share one process-wide limit.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Resolver) { r.limiter = l }
}

// WithCache memoizes successful resolutions in the resolved-link cache.
func WithCache(s *cache.Store) Option {
	return func(r *Resolver) { r.links = s }
}

// NewResolver creates a Resolver with a conservative 2 req/s limit, the
// unauthenticated ceiling doi.org asks crawlers to respect.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		userAgent:  "findit/0.1",
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows the redirect chain for doi and returns the final URL.
// Non-2xx terminal statuses other than the proxy's own 404 are successes;
// a 404 straight from the proxy means the DOI is not registered.
func (r *Resolver) Resolve(ctx context.Context, doi string) (Resolution, error) {
	doi = strings.TrimSpace(doi)
	if !identifier.ValidDOI(doi) {
		return Resolution{}, fmt.Errorf("%q: %w", doi, ErrInvalidDOI)
	}

	if r.links != nil {
		if v, ok, err := r.links.Get(cache.Key("dxdoi", doi)); err == nil && ok {
			return Resolution{FinalURL: v, FromCache: true}, nil
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return Resolution{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+doi, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Resolution{}, fmt.Errorf("following DOI redirect: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	final := resp.Request.URL.String()
	if resp.StatusCode == http.StatusNotFound && sameProxy(final, r.baseURL) {
		return Resolution{}, fmt.Errorf("%q: %w", doi, ErrInvalidDOI)
	}

	if r.links != nil {
		if err := r.links.Set(cache.Key("dxdoi", doi), final); err != nil {
			return Resolution{}, fmt.Errorf("caching resolution: %w", err)
		}
	}

	return Resolution{FinalURL: final, StatusCode: resp.StatusCode}, nil
}

// sameProxy reports whether finalURL never left the DOI proxy, meaning no
// registrant redirect happened.
func sameProxy(finalURL, baseURL string) bool {
	return strings.HasPrefix(finalURL, baseURL)
}
