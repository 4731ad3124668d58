// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FailureReason classifies why a locator call produced no usable URL.
// These are expected, frequent outcomes carried in the result, never
// returned as Go errors.
type FailureReason string

const (
	// NoFailure marks a successful result.
	NoFailure FailureReason = ""

	// FailNoStrategy: the journal has no entry in the publisher registry.
	FailNoStrategy FailureReason = "no_strategy"

	// FailMissingField: the selected strategy needs a metadata field
	// (DOI, volume, page) the article record does not have.
	FailMissingField FailureReason = "missing_field"

	// FailPaywall: the publisher answered HTTP 402/451 for the PDF.
	FailPaywall FailureReason = "paywall"

	// FailAccessDenied: the publisher answered HTTP 401/403.
	FailAccessDenied FailureReason = "access_denied"

	// FailNotFound: the produced URL answered HTTP 404/410.
	FailNotFound FailureReason = "not_found"

	// FailNetwork: timeout or connection error. The only retryable reason.
	FailNetwork FailureReason = "network_error"

	// FailInvalidDOI: the DOI did not resolve at dx.doi.org.
	FailInvalidDOI FailureReason = "invalid_doi"
)

// Retryable reports whether a caller may usefully retry the same call.
func (r FailureReason) Retryable() bool {
	return r == FailNetwork
}

// LocatorResult is the outcome of one locate call. URL is empty iff Reason
// is set. Results are built fresh per call and never cached as objects;
// only the final URL string goes into the resolved-link cache.
type LocatorResult struct {
	// URL is the located PDF URL, empty on failure.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// BackupURL is an alternate location (typically the PMC mirror) that
	// was not selected as primary but may work when URL does not.
	BackupURL string `json:"backup_url,omitempty" yaml:"backup_url,omitempty"`

	// Reason is set iff URL is empty.
	Reason FailureReason `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Verified reports whether URL answered a verification fetch that
	// looked like a PDF.
	Verified bool `json:"verified" yaml:"verified"`

	// Strategy names the publisher strategy that produced URL
	// (e.g. "doi_template", "pmc_mirror").
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// URLFormat classifies what kind of identifier structure a reversed URL
// carried.
type URLFormat string

const (
	FormatPMID    URLFormat = "pmid"
	FormatDOI     URLFormat = "doi"
	FormatVIP     URLFormat = "vip"
	FormatPMCID   URLFormat = "pmcid"
	FormatUnknown URLFormat = "unknown"
)

// ReversalOutcome is the terminal state of a reverse call.
type ReversalOutcome string

const (
	// Resolved: at least one validated identifier was found.
	Resolved ReversalOutcome = "resolved"

	// Ambiguous: the citation match returned multiple candidate PMIDs.
	// Never collapsed to a single candidate.
	Ambiguous ReversalOutcome = "ambiguous"

	// Unresolved: every extraction method failed.
	Unresolved ReversalOutcome = "unresolved"
)

// ReversalResult is the outcome of one reverse call. Steps is an
// append-only trace: every extraction method that ran appended exactly one
// entry describing success, failure, or ambiguity.
type ReversalResult struct {
	DOI     string          `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID    string          `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Format  URLFormat       `json:"format" yaml:"format"`
	Outcome ReversalOutcome `json:"outcome" yaml:"outcome"`
	Steps   []string        `json:"steps" yaml:"steps"`
}

// CitationQuery carries the fields used to disambiguate an article by
// citation when no identifier could be extracted structurally.
type CitationQuery struct {
	Journal        string
	Year           int
	Volume         string
	FirstPage      string
	AuthorLastName string
}

// CitationOutcome classifies a citation-match response. The wire-level
// sentinel strings the service uses are parsed at the client boundary and
// never leak past it.
type CitationOutcome int

const (
	MatchNotFound CitationOutcome = iota
	MatchFound
	MatchAmbiguous
)

// CitationMatch is the parsed result of one citation-match query.
type CitationMatch struct {
	Outcome CitationOutcome

	// PMID is set iff Outcome is MatchFound.
	PMID string

	// Candidates is the number of matching citations when Outcome is
	// MatchAmbiguous.
	Candidates int
}
