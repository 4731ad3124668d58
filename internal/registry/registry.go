// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry maps journal names to publisher strategy descriptors.
// The table is plain YAML data loaded once at startup; the registry is
// read-only afterwards, so lookups need no locking. Reloading means
// constructing a new registry.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed publishers.yaml
var embeddedTable []byte

// StrategyKind selects the code path the locator engine runs for a
// publisher. The set is closed; new publishers reuse one of these four.
type StrategyKind string

const (
	// DOITemplate substitutes the DOI into a URL template directly.
	DOITemplate StrategyKind = "doi_template"

	// VIPTemplate substitutes volume/issue/first-page into a template.
	VIPTemplate StrategyKind = "vip_template"

	// TwoStepRedirect resolves the DOI to a landing URL, then rewrites
	// the path by a publisher-specific rule.
	TwoStepRedirect StrategyKind = "two_step_redirect"

	// PageScrape fetches an intermediate page and extracts the PDF link.
	PageScrape StrategyKind = "page_scrape"
)

func (k StrategyKind) valid() bool {
	switch k {
	case DOITemplate, VIPTemplate, TwoStepRedirect, PageScrape:
		return true
	}
	return false
}

// Rewrite is a literal path substitution applied to a landing URL by the
// two-step strategy.
type Rewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// StrategyDescriptor describes how to reach a publisher's PDFs. Owned by
// the registry; read-only to consumers.
type StrategyDescriptor struct {
	PublisherID string       `yaml:"id"`
	Kind        StrategyKind `yaml:"strategy"`
	BaseDomain  string       `yaml:"base_domain"`

	// URLTemplate holds {doi}, {doi_suffix}, {volume}, {issue},
	// {first_page}, and {pmid} placeholders. Empty for page_scrape
	// strategies that start from the DOI redirect landing page.
	URLTemplate string `yaml:"url_template"`

	// PDFPattern is a regexp extracting the PDF link from a scraped page.
	// Empty means the citation_pdf_url meta tag.
	PDFPattern string `yaml:"pdf_pattern,omitempty"`

	// Rewrite is applied by two_step_redirect after DOI resolution.
	Rewrite *Rewrite `yaml:"rewrite,omitempty"`

	Journals []string `yaml:"journals"`
}

type table struct {
	Publishers []*StrategyDescriptor `yaml:"publishers"`
}

// Registry resolves normalized journal names to strategy descriptors.
type Registry struct {
	byJournal map[string]*StrategyDescriptor
}

// Default loads the embedded publisher table.
func Default() (*Registry, error) {
	return Load(embeddedTable)
}

// LoadFile loads a publisher table from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading publisher table: %w", err)
	}
	return Load(data)
}

// Load parses a YAML publisher table and builds the lookup map. Duplicate
// journal names and unknown strategy kinds are load-time errors; a broken
// table should fail at startup, not mid-batch.
func Load(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing publisher table: %w", err)
	}

	byJournal := make(map[string]*StrategyDescriptor)
	for _, d := range t.Publishers {
		if d.PublisherID == "" {
			return nil, fmt.Errorf("publisher entry missing id")
		}
		if !d.Kind.valid() {
			return nil, fmt.Errorf("publisher %s: unknown strategy %q", d.PublisherID, d.Kind)
		}
		if d.Kind != PageScrape && d.Kind != TwoStepRedirect && d.URLTemplate == "" {
			return nil, fmt.Errorf("publisher %s: strategy %s requires url_template", d.PublisherID, d.Kind)
		}
		for _, j := range d.Journals {
			key := NormalizeJournal(j)
			if key == "" {
				return nil, fmt.Errorf("publisher %s: empty journal name", d.PublisherID)
			}
			if prev, dup := byJournal[key]; dup {
				return nil, fmt.Errorf("journal %q claimed by both %s and %s", j, prev.PublisherID, d.PublisherID)
			}
			byJournal[key] = d
		}
	}

	return &Registry{byJournal: byJournal}, nil
}

// Lookup returns the descriptor for a journal, or nil when the journal is
// not in the table. A nil result means "no strategy available", not an
// error.
func (r *Registry) Lookup(journal string) *StrategyDescriptor {
	return r.byJournal[NormalizeJournal(journal)]
}

// Len returns the number of journal mappings.
func (r *Registry) Len() int {
	return len(r.byJournal)
}

// NormalizeJournal canonicalizes a journal name for lookup: case-folded,
// periods dropped (so "J. Biol. Chem." and "J Biol Chem" agree), and
// internal whitespace collapsed.
func NormalizeJournal(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, ".", "")
	return strings.Join(strings.Fields(name), " ")
}
