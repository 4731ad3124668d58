// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate resolves a PubMed article to a downloadable PDF URL. It
// selects a publisher strategy from the registry, executes it, optionally
// verifies that the produced URL really serves a PDF, and prefers the free
// PMC mirror whenever the article is deposited there and out of embargo.
package locate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/findit/internal/cache"
	"github.com/pdiddy/findit/internal/dxdoi"
	"github.com/pdiddy/findit/internal/eutils"
	"github.com/pdiddy/findit/internal/registry"
	"github.com/pdiddy/findit/pkg/types"
)

// pmcMirrorBase is the public PMC article mirror.
const pmcMirrorBase = "https://www.ncbi.nlm.nih.gov/pmc/articles/"

// MetadataProvider supplies bibliographic records. *eutils.Client
// implements it.
type MetadataProvider interface {
	FetchArticle(ctx context.Context, pmid string) (*types.ArticleMetadata, error)
}

// DOIResolver follows DOI redirect chains. *dxdoi.Resolver implements it.
type DOIResolver interface {
	Resolve(ctx context.Context, doi string) (dxdoi.Resolution, error)
}

// Options controls a single locate call.
type Options struct {
	// Verify performs a lightweight fetch of the produced URL and accepts
	// it only if the response plausibly is a PDF.
	Verify bool

	// UsePMCMirror prefers the PMC mirror over any publisher strategy
	// when the article is deposited in PMC and its embargo has passed.
	UsePMCMirror bool

	// SkipCache bypasses cache reads; successful resolutions are still
	// written back.
	SkipCache bool
}

// Engine executes locate calls. Safe for concurrent use: the registry is
// immutable, the cache handles its own synchronization, and calls share
// no other mutable state.
type Engine struct {
	registry   *registry.Registry
	meta       MetadataProvider
	doi        DOIResolver
	links      *cache.Store
	httpClient *http.Client
	userAgent  string
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient sets the client used for verification and scrape fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Engine) { e.httpClient = hc }
}

// WithUserAgent sets the User-Agent header on verification fetches.
func WithUserAgent(ua string) Option {
	return func(e *Engine) { e.userAgent = ua }
}

// WithClock substitutes the embargo clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs an Engine around its collaborators. All dependencies are
// explicit; nothing is process-global.
func New(reg *registry.Registry, meta MetadataProvider, doi DOIResolver, links *cache.Store, opts ...Option) *Engine {
	e := &Engine{
		registry:   reg,
		meta:       meta,
		doi:        doi,
		links:      links,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "findit/0.1",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locate resolves the article named by ids to a PDF URL. Expected
// failures (no strategy, paywall, missing field) come back inside the
// result, never as an error.
func (e *Engine) Locate(ctx context.Context, ids types.ArticleIdentifiers, opts Options) types.LocatorResult {
	if ids.PMID == "" {
		return types.LocatorResult{Reason: types.FailMissingField}
	}

	m, err := e.meta.FetchArticle(ctx, ids.PMID)
	if err != nil {
		if errors.Is(err, eutils.ErrNotFound) {
			return types.LocatorResult{Reason: types.FailNotFound}
		}
		return types.LocatorResult{Reason: types.FailNetwork}
	}

	return e.LocateMetadata(ctx, m, opts)
}

// LocateMetadata is Locate for callers that already hold the metadata
// record, skipping the provider round trip.
func (e *Engine) LocateMetadata(ctx context.Context, m *types.ArticleMetadata, opts Options) types.LocatorResult {
	pmcURL := ""
	if m.PMCID != "" && !m.EmbargoActive(e.now()) {
		pmcURL = pmcMirrorBase + m.PMCID + "/pdf/"
	}

	// The mirror needs no further network calls and is always public, so
	// it wins over any publisher strategy. An embargoed deposit falls
	// through to the publisher.
	if opts.UsePMCMirror && pmcURL != "" {
		e.cacheURL("locate:pmc_mirror", m.PMID, pmcURL)
		return types.LocatorResult{URL: pmcURL, Strategy: "pmc_mirror"}
	}

	desc := e.registry.Lookup(m.Journal)
	if desc == nil {
		return types.LocatorResult{Reason: types.FailNoStrategy, BackupURL: pmcURL}
	}

	kind := string(desc.Kind)
	if !opts.SkipCache && !opts.Verify {
		if v, ok, err := e.links.Get(cache.Key("locate:"+kind, m.PMID)); err == nil && ok {
			return types.LocatorResult{URL: v, Strategy: kind, BackupURL: pmcURL}
		}
	}

	url, reason := e.execute(ctx, desc, m)
	if reason != types.NoFailure {
		return types.LocatorResult{Reason: reason, Strategy: kind, BackupURL: pmcURL}
	}

	verified := false
	if opts.Verify {
		if reason := e.verify(ctx, url); reason != types.NoFailure {
			// No second try of the same strategy; the caller decides what
			// falls back (typically the PMC mirror in BackupURL).
			return types.LocatorResult{Reason: reason, Strategy: kind, BackupURL: pmcURL}
		}
		verified = true
	}

	e.cacheURL("locate:"+kind, m.PMID, url)
	return types.LocatorResult{URL: url, Strategy: kind, Verified: verified, BackupURL: pmcURL}
}

// execute runs the descriptor's strategy and produces a candidate URL.
func (e *Engine) execute(ctx context.Context, desc *registry.StrategyDescriptor, m *types.ArticleMetadata) (string, types.FailureReason) {
	switch desc.Kind {
	case registry.DOITemplate:
		return expandTemplate(desc.URLTemplate, m)

	case registry.VIPTemplate:
		return expandTemplate(desc.URLTemplate, m)

	case registry.TwoStepRedirect:
		return e.twoStep(ctx, desc, m)

	case registry.PageScrape:
		return e.scrape(ctx, desc, m)
	}
	return "", types.FailNoStrategy
}

// twoStep resolves the DOI to the publisher landing URL and applies the
// descriptor's path rewrite.
func (e *Engine) twoStep(ctx context.Context, desc *registry.StrategyDescriptor, m *types.ArticleMetadata) (string, types.FailureReason) {
	if m.DOI == "" {
		return "", types.FailMissingField
	}

	res, err := e.doi.Resolve(ctx, m.DOI)
	if err != nil {
		if errors.Is(err, dxdoi.ErrInvalidDOI) {
			return "", types.FailInvalidDOI
		}
		return "", types.FailNetwork
	}

	url := res.FinalURL
	if rw := desc.Rewrite; rw != nil {
		if rw.From == "" {
			url = strings.TrimSuffix(url, "/") + rw.To
		} else {
			url = strings.Replace(url, rw.From, rw.To, 1)
		}
	}
	return url, types.NoFailure
}

// expandTemplate substitutes metadata fields into the descriptor's URL
// template. A placeholder whose field is empty fails the strategy rather
// than guessing.
func expandTemplate(tpl string, m *types.ArticleMetadata) (string, types.FailureReason) {
	fields := map[string]string{
		"{doi}":        m.DOI,
		"{doi_suffix}": doiSuffix(m.DOI),
		"{volume}":     m.Volume,
		"{issue}":      m.Issue,
		"{first_page}": m.FirstPage,
		"{pmid}":       m.PMID,
		"{pmcid}":      m.PMCID,
	}

	out := tpl
	for ph, v := range fields {
		if !strings.Contains(out, ph) {
			continue
		}
		if v == "" {
			return "", types.FailMissingField
		}
		out = strings.ReplaceAll(out, ph, v)
	}
	return out, types.NoFailure
}

func doiSuffix(doi string) string {
	if i := strings.IndexByte(doi, '/'); i >= 0 {
		return doi[i+1:]
	}
	return ""
}

func (e *Engine) cacheURL(op, pmid, url string) {
	// Cache write failures are not worth failing the resolution over.
	_ = e.links.Set(cache.Key(op, pmid), url)
}

// newRequest builds a request with the engine's User-Agent.
func (e *Engine) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	return req, nil
}
