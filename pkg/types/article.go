// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for identifier resolution:
// article identifiers, fetched metadata, resolution results, and stage
// configuration.
package types

import "time"

// ArticleIdentifiers names an article by any combination of PMID, DOI, and
// PMCID. At least one field is set. Values are filled in as resolution
// proceeds; a resolution step that learns a new identifier returns a new
// value rather than mutating one shared across attempts.
type ArticleIdentifiers struct {
	PMID  string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	DOI   string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
}

// IsEmpty reports whether no identifier is set.
func (a ArticleIdentifiers) IsEmpty() bool {
	return a.PMID == "" && a.DOI == "" && a.PMCID == ""
}

// WithPMID returns a copy with the PMID filled in.
func (a ArticleIdentifiers) WithPMID(pmid string) ArticleIdentifiers {
	a.PMID = pmid
	return a
}

// WithDOI returns a copy with the DOI filled in.
func (a ArticleIdentifiers) WithDOI(doi string) ArticleIdentifiers {
	a.DOI = doi
	return a
}

// ArticleMetadata holds the bibliographic fields for an article as returned
// by the metadata provider. Empty strings mark fields the provider did not
// supply.
type ArticleMetadata struct {
	ArticleIdentifiers `yaml:",inline"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Journal is the journal name as abbreviated by MEDLINE
	// (e.g. "Proc Natl Acad Sci U S A").
	Journal string `json:"journal" yaml:"journal"`

	// Volume, Issue, and FirstPage address the article within the journal.
	Volume    string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue     string `json:"issue,omitempty" yaml:"issue,omitempty"`
	FirstPage string `json:"first_page,omitempty" yaml:"first_page,omitempty"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Authors lists author names in source order ("Lastname Initials").
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// EmbargoDate is the date the PMC mirror copy becomes public. Zero when
	// the article is not embargoed.
	EmbargoDate time.Time `json:"embargo_date,omitempty" yaml:"embargo_date,omitempty"`
}

// FirstAuthorLastName returns the last name of the first author, or "".
func (m *ArticleMetadata) FirstAuthorLastName() string {
	if len(m.Authors) == 0 {
		return ""
	}
	name := m.Authors[0]
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}

// EmbargoActive reports whether the PMC copy is still embargoed at now.
func (m *ArticleMetadata) EmbargoActive(now time.Time) bool {
	return !m.EmbargoDate.IsZero() && now.Before(m.EmbargoDate)
}
