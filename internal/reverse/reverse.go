// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reverse determines the DOI and/or PMID behind an arbitrary
// article URL. Extraction methods run in a fixed order of increasing
// cost: per-domain URL patterns, generic DOI search, volume/issue/page
// shape, PMCID conversion, and finally citation matching. Every method
// appends one trace entry to the result whether it succeeded or not, so
// a caller can always see why a URL did or did not reverse.
package reverse

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/findit/internal/cache"
	"github.com/pdiddy/findit/internal/dxdoi"
	"github.com/pdiddy/findit/internal/identifier"
	"github.com/pdiddy/findit/pkg/types"
)

// MetadataProvider is the subset of the eutils client the reversal
// cascade needs. *eutils.Client implements it.
type MetadataProvider interface {
	FetchArticle(ctx context.Context, pmid string) (*types.ArticleMetadata, error)
	PMIDForPMCID(ctx context.Context, pmcid string) (string, error)
	PMIDForDOI(ctx context.Context, doi string) (string, error)
}

// DOIResolver validates extracted DOIs by resolving them. *dxdoi.Resolver
// implements it.
type DOIResolver interface {
	Resolve(ctx context.Context, doi string) (dxdoi.Resolution, error)
}

// CitationMatcher disambiguates an article from citation fragments.
// *eutils.Client implements it.
type CitationMatcher interface {
	FindPMIDs(ctx context.Context, q types.CitationQuery) (types.CitationMatch, error)
}

// pmcidPattern finds PMC identifiers anywhere in a URL.
var pmcidPattern = regexp.MustCompile(`(?i)(PMC\d+)`)

// Options controls a single reverse call.
type Options struct {
	// SkipCache bypasses cache reads; resolved reversals are still
	// written back.
	SkipCache bool
}

// Engine executes reverse calls. Safe for concurrent use.
type Engine struct {
	meta     MetadataProvider
	doi      DOIResolver
	citmatch CitationMatcher
	links    *cache.Store
}

// New constructs an Engine around its collaborators.
func New(meta MetadataProvider, doi DOIResolver, citmatch CitationMatcher, links *cache.Store) *Engine {
	return &Engine{meta: meta, doi: doi, citmatch: citmatch, links: links}
}

// Reverse runs the extraction cascade over rawURL. The cascade is
// deterministic: for a fixed URL and fixed collaborator behavior the same
// method succeeds first every time. Results are terminal; a resolved,
// ambiguous, or unresolved outcome is never retried within the call.
func (e *Engine) Reverse(ctx context.Context, rawURL string, opts Options) types.ReversalResult {
	r := types.ReversalResult{Format: types.FormatUnknown, Outcome: types.Unresolved}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		r.Steps = append(r.Steps, fmt.Sprintf("parse: %q is not an absolute url", rawURL))
		return r
	}

	cacheKey := cache.Key("reverse", rawURL)
	if !opts.SkipCache {
		if v, ok, err := e.links.Get(cacheKey); err == nil && ok {
			if cached, ok := decodeResult(v); ok {
				cached.Steps = append(cached.Steps, "cache: reversal served from cache")
				return cached
			}
		}
	}

	// 1. Domain-gated direct matchers: an identifier embedded in the URL
	// itself, no network needed.
	if name, doi, pmid := matchDirect(u); name != "" {
		if pmid != "" {
			r.PMID, r.Format = pmid, types.FormatPMID
			r.Steps = append(r.Steps, fmt.Sprintf("direct[%s]: pmid %s embedded in url", name, pmid))
		} else {
			r.DOI, r.Format = doi, types.FormatDOI
			r.Steps = append(r.Steps, fmt.Sprintf("direct[%s]: doi %s embedded in url", name, doi))
		}
		return e.crossValidate(ctx, cacheKey, r)
	}
	r.Steps = append(r.Steps, "direct: no domain matcher fired")

	// 2. Generic DOI search over the whole URL, validated by resolution
	// so a lookalike substring is discarded instead of trusted.
	if doi := identifier.FindDOI(rawURL); doi != "" {
		if _, err := e.doi.Resolve(ctx, doi); err == nil {
			r.DOI, r.Format = doi, types.FormatDOI
			r.Steps = append(r.Steps, fmt.Sprintf("generic-doi: %s found in url, resolves", doi))
			return e.crossValidate(ctx, cacheKey, r)
		}
		r.Steps = append(r.Steps, fmt.Sprintf("generic-doi: %s found in url but did not resolve, discarded", doi))
	} else {
		r.Steps = append(r.Steps, "generic-doi: no doi-shaped substring in url")
	}

	// 3. Volume/issue/page shape. The fields alone identify nothing; they
	// feed the citation-match fallback below.
	vip, hasVIP := matchVIP(u)
	if hasVIP {
		if vip.Journal != "" {
			r.Steps = append(r.Steps, fmt.Sprintf("vip: volume %s issue %s page %s journal %q",
				vip.Volume, vip.Issue, vip.FirstPage, vip.Journal))
		} else {
			r.Steps = append(r.Steps, fmt.Sprintf("vip: volume %s issue %s page %s (journal unknown for host %s)",
				vip.Volume, vip.Issue, vip.FirstPage, u.Hostname()))
		}
	} else {
		r.Steps = append(r.Steps, "vip: url does not have /content/<vol>/<issue>/<page> shape")
	}

	// 4. PMCID conversion via the metadata provider.
	if g := pmcidPattern.FindStringSubmatch(rawURL); g != nil {
		pmcid := identifier.NormalizePMCID(g[1])
		pmid, err := e.meta.PMIDForPMCID(ctx, pmcid)
		if err == nil {
			r.PMID, r.Format = pmid, types.FormatPMCID
			r.Steps = append(r.Steps, fmt.Sprintf("pmcid: %s converted to pmid %s", pmcid, pmid))
			return e.crossValidate(ctx, cacheKey, r)
		}
		r.Steps = append(r.Steps, fmt.Sprintf("pmcid: %s found but conversion failed", pmcid))
	}

	// 5. Citation-match fallback, the most expensive method, only worth
	// trying when step 3 produced something to match on.
	if !hasVIP {
		r.Steps = append(r.Steps, "citmatch: skipped, no citation fields extracted")
		return r
	}

	match, err := e.citmatch.FindPMIDs(ctx, types.CitationQuery{
		Journal:   vip.Journal,
		Volume:    vip.Volume,
		FirstPage: vip.FirstPage,
	})
	if err != nil {
		r.Steps = append(r.Steps, fmt.Sprintf("citmatch: query failed: %v", err))
		return r
	}

	switch match.Outcome {
	case types.MatchFound:
		r.PMID, r.Format = match.PMID, types.FormatVIP
		r.Steps = append(r.Steps, fmt.Sprintf("citmatch: single match, pmid %s", match.PMID))
		return e.crossValidate(ctx, cacheKey, r)

	case types.MatchAmbiguous:
		// Never pick a candidate arbitrarily; ambiguity is terminal.
		r.Format = types.FormatVIP
		r.Outcome = types.Ambiguous
		r.Steps = append(r.Steps, fmt.Sprintf("citmatch: ambiguous, %d candidate citations", match.Candidates))
		return r

	default:
		r.Steps = append(r.Steps, "citmatch: no matching citation")
		return r
	}
}

// crossValidate fills in the missing half of the identifier pair with one
// conversion hop, marks the result resolved, and caches it. A failed hop
// is recorded but does not demote the result.
func (e *Engine) crossValidate(ctx context.Context, cacheKey string, r types.ReversalResult) types.ReversalResult {
	switch {
	case r.DOI == "" && r.PMID != "":
		m, err := e.meta.FetchArticle(ctx, r.PMID)
		if err == nil && m.DOI != "" {
			r.DOI = m.DOI
			r.Steps = append(r.Steps, fmt.Sprintf("crossval: pmid %s has doi %s", r.PMID, r.DOI))
		} else {
			r.Steps = append(r.Steps, fmt.Sprintf("crossval: no doi on record for pmid %s", r.PMID))
		}

	case r.PMID == "" && r.DOI != "":
		pmid, err := e.meta.PMIDForDOI(ctx, r.DOI)
		if err == nil {
			r.PMID = pmid
			r.Steps = append(r.Steps, fmt.Sprintf("crossval: doi %s indexed as pmid %s", r.DOI, pmid))
		} else {
			r.Steps = append(r.Steps, fmt.Sprintf("crossval: no pmid indexed for doi %s", r.DOI))
		}
	}

	r.Outcome = types.Resolved
	_ = e.links.Set(cacheKey, encodeResult(r))
	return r
}

// encodeResult/decodeResult flatten the cacheable part of a result into
// the cache's string value. Steps are not cached; a cache hit gets its
// own trace entry.
func encodeResult(r types.ReversalResult) string {
	return strings.Join([]string{r.DOI, r.PMID, string(r.Format)}, "\n")
}

func decodeResult(v string) (types.ReversalResult, bool) {
	parts := strings.Split(v, "\n")
	if len(parts) != 3 {
		return types.ReversalResult{}, false
	}
	return types.ReversalResult{
		DOI:     parts[0],
		PMID:    parts[1],
		Format:  types.URLFormat(parts[2]),
		Outcome: types.Resolved,
	}, true
}
