// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier provides syntactic validation for the identifier
// shapes used to name articles: DOI, PMID, and PMCID. The checks are
// advisory pre-filters with no I/O; a syntactically valid DOI may still
// not exist at the resolver.
package identifier

import (
	"regexp"
	"strings"
)

// doiShape matches the registrant/suffix split: "10.<4-9 digits>/<suffix>".
var doiShape = regexp.MustCompile(`^10\.\d{4,9}/(.+)$`)

// doiSearch finds DOI-shaped substrings inside larger text (URLs, scraped
// pages). Suffix characters are the permissive CrossRef set; angle
// brackets stay allowed because SICI-era DOIs contain them.
var doiSearch = regexp.MustCompile(`10\.\d{4,9}/[^\s"{}|\\^~\[\]` + "`" + `]+`)

var (
	pmidShape  = regexp.MustCompile(`^\d+$`)
	pmcidShape = regexp.MustCompile(`^PMC\d+$`)
)

// suffixForbidden are characters a DOI suffix may never contain.
const suffixForbidden = " \t\n\"{}|\\^~[]`"

// ValidDOI reports whether s is a syntactically plausible DOI:
// "10.<registrant>/<suffix>" with a non-empty suffix, no forbidden
// delimiter characters, and balanced parentheses.
func ValidDOI(s string) bool {
	m := doiShape.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	suffix := m[1]
	if strings.ContainsAny(suffix, suffixForbidden) {
		return false
	}
	return balancedParens(suffix)
}

// ValidPMID reports whether s is a non-empty string of decimal digits.
func ValidPMID(s string) bool {
	return pmidShape.MatchString(s)
}

// ValidPMCID reports whether s is "PMC" followed by digits.
func ValidPMCID(s string) bool {
	return pmcidShape.MatchString(strings.ToUpper(s))
}

// NormalizePMCID returns the canonical "PMC<digits>" form, accepting bare
// digit strings and lowercase prefixes. Returns "" when s is neither.
func NormalizePMCID(s string) string {
	s = strings.TrimSpace(s)
	if pmidShape.MatchString(s) {
		return "PMC" + s
	}
	u := strings.ToUpper(s)
	if pmcidShape.MatchString(u) {
		return u
	}
	return ""
}

// TrimDOI strips the trailing punctuation that rides along when a DOI is
// cut out of prose or a URL: sentence punctuation always, a closing
// parenthesis or bracket only when unbalanced.
func TrimDOI(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case '.', ',', ';', ':', '!', '?', '\'':
			s = s[:len(s)-1]
		case ')':
			if balancedParens(s) {
				return s
			}
			s = s[:len(s)-1]
		case '>':
			if strings.Count(s, ">") <= strings.Count(s, "<") {
				return s
			}
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}

// FindDOI returns the first valid DOI-shaped substring in text, trimmed of
// trailing punctuation, or "" when none is present.
func FindDOI(text string) string {
	for _, match := range doiSearch.FindAllString(text, -1) {
		doi := TrimDOI(match)
		if ValidDOI(doi) {
			return doi
		}
	}
	return ""
}

func balancedParens(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
