// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reverse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/findit/internal/identifier"
)

// matchKind says which identifier a direct matcher extracts.
type matchKind int

const (
	kindDOI matchKind = iota
	kindPMID
)

// directMatcher recognizes one publisher's URL scheme. A matcher only
// runs when the URL's hostname falls under its domain, so two matchers
// can never contend for the same URL.
type directMatcher struct {
	name   string
	domain string
	re     *regexp.Regexp
	kind   matchKind

	// doiPrefix, when set, is prepended to the captured group to form the
	// DOI (publishers that put only the suffix in the path).
	doiPrefix string

	// pad, when nonzero, left-pads the captured group with zeros to this
	// width before applying doiPrefix. Karger article numbers work this way.
	pad int
}

// directMatchers is the closed list of per-domain patterns, tried in
// registration order. Order matters only for documentation; the domain
// gates are disjoint.
var directMatchers = []directMatcher{
	{name: "pubmed", domain: "ncbi.nlm.nih.gov", kind: kindPMID,
		re: regexp.MustCompile(`/pubmed/?(?:\?term=)?(\d+)`)},
	{name: "pubmed", domain: "pubmed.ncbi.nlm.nih.gov", kind: kindPMID,
		re: regexp.MustCompile(`^/(\d+)/?$`)},
	{name: "europepmc", domain: "europepmc.org", kind: kindPMID,
		re: regexp.MustCompile(`/(?:abstract|article)/MED/(\d+)`)},
	{name: "doi-proxy", domain: "doi.org", kind: kindDOI,
		re: regexp.MustCompile(`^/(10\.\d{4,9}/.+)$`)},
	{name: "nature", domain: "nature.com", kind: kindDOI, doiPrefix: "10.1038/",
		re: regexp.MustCompile(`/articles/([A-Za-z0-9.-]+?)(?:\.pdf)?$`)},
	{name: "plos", domain: "plos.org", kind: kindDOI,
		re: regexp.MustCompile(`id=(10\.1371/[^&]+)`)},
	{name: "wiley", domain: "wiley.com", kind: kindDOI,
		re: regexp.MustCompile(`/doi/(?:abs/|full/|pdf/|epdf/)?(10\.\d{4,9}/[^?#]+)`)},
	{name: "springer", domain: "springer.com", kind: kindDOI,
		re: regexp.MustCompile(`/(?:article|chapter|referenceworkentry)/(10\.\d{4,9}/[^?#]+?)(?:\.pdf)?$`)},
	{name: "springer-pdf", domain: "springer.com", kind: kindDOI,
		re: regexp.MustCompile(`/content/pdf/(10\.\d{4,9}/[^?#]+?)\.pdf$`)},
	{name: "biomedcentral", domain: "biomedcentral.com", kind: kindDOI,
		re: regexp.MustCompile(`/articles/(10\.\d{4,9}/[^?#]+)`)},
	{name: "frontiers", domain: "frontiersin.org", kind: kindDOI,
		re: regexp.MustCompile(`/articles?/(10\.3389/[^/?#]+)`)},
	{name: "sage", domain: "sagepub.com", kind: kindDOI,
		re: regexp.MustCompile(`/doi/(?:abs/|full/|pdf/)?(10\.\d{4,9}/[^?#]+)`)},
	{name: "tandf", domain: "tandfonline.com", kind: kindDOI,
		re: regexp.MustCompile(`/doi/(?:abs/|full/|pdf/)?(10\.\d{4,9}/[^?#]+)`)},
	{name: "liebert", domain: "liebertpub.com", kind: kindDOI,
		re: regexp.MustCompile(`/doi/(?:abs/|full/|pdf/)?(10\.\d{4,9}/[^?#]+)`)},
	{name: "aha", domain: "ahajournals.org", kind: kindDOI,
		re: regexp.MustCompile(`/doi/(?:abs/|full/|pdf/)?(10\.\d{4,9}/[^?#]+)`)},
	{name: "karger", domain: "karger.com", kind: kindDOI, doiPrefix: "10.1159/", pad: 9,
		re: regexp.MustCompile(`/Article/(?:Abstract|FullText|Pdf)/(\d+)`)},
}

// matchDirect runs the domain-gated matchers against u. It returns the
// matcher name plus exactly one of doi/pmid, both validated; an empty
// name means no matcher fired.
func matchDirect(u *url.URL) (name, doi, pmid string) {
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	host := strings.ToLower(u.Hostname())
	for _, m := range directMatchers {
		if !hostUnder(host, m.domain) {
			continue
		}
		g := m.re.FindStringSubmatch(target)
		if g == nil {
			continue
		}
		captured := g[1]

		switch m.kind {
		case kindPMID:
			if identifier.ValidPMID(captured) {
				return m.name, "", captured
			}
		case kindDOI:
			candidate := captured
			for len(candidate) < m.pad {
				candidate = "0" + candidate
			}
			candidate = identifier.TrimDOI(m.doiPrefix + candidate)
			if identifier.ValidDOI(candidate) {
				return m.name, candidate, ""
			}
		}
	}
	return "", "", ""
}

// hostUnder reports whether host equals domain or is a subdomain of it.
func hostUnder(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
