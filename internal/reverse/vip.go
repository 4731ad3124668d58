// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reverse

import (
	"net/url"
	"regexp"
	"strings"
)

// vipPattern matches the volume/issue/page addressing scheme used by
// HighWire-style sites: /content/<volume>/<issue>/<first_page>, with an
// optional intervening section like /content/early/....
var vipPattern = regexp.MustCompile(`/content(?:/[a-z]+)?/(\d+)/([\w.]+)/([\w.-]+?)(?:\.full(?:\.pdf)?)?$`)

// vipHosts maps hostnames of known VIP-addressed sites to their MEDLINE
// journal abbreviation, so a citation-match query can name the journal.
var vipHosts = map[string]string{
	"www.pnas.org":                     "Proc Natl Acad Sci U S A",
	"pnas.org":                         "Proc Natl Acad Sci U S A",
	"www.bmj.com":                      "BMJ",
	"jmg.bmj.com":                      "J Med Genet",
	"gut.bmj.com":                      "Gut",
	"thorax.bmj.com":                   "Thorax",
	"heart.bmj.com":                    "Heart",
	"science.sciencemag.org":           "Science",
	"www.sciencemag.org":               "Science",
	"www.jbc.org":                      "J Biol Chem",
	"jb.asm.org":                       "J Bacteriol",
	"aac.asm.org":                      "Antimicrob Agents Chemother",
	"circ.ahajournals.org":             "Circulation",
	"hyper.ahajournals.org":            "Hypertension",
	"diabetes.diabetesjournals.org":    "Diabetes",
	"care.diabetesjournals.org":        "Diabetes Care",
	"jcb.rupress.org":                  "J Cell Biol",
	"jem.rupress.org":                  "J Exp Med",
	"genesdev.cshlp.org":               "Genes Dev",
	"genome.cshlp.org":                 "Genome Res",
}

// vipFields is a volume/issue/page triple plus the journal inferred from
// the hostname, empty when the host is not recognized.
type vipFields struct {
	Volume    string
	Issue     string
	FirstPage string
	Journal   string
}

// matchVIP extracts VIP fields from u, reporting whether the URL has the
// /content/<vol>/<issue>/<page> shape at all.
func matchVIP(u *url.URL) (vipFields, bool) {
	g := vipPattern.FindStringSubmatch(u.Path)
	if g == nil {
		return vipFields{}, false
	}
	return vipFields{
		Volume:    g[1],
		Issue:     g[2],
		FirstPage: g[3],
		Journal:   vipHosts[strings.ToLower(u.Hostname())],
	}, true
}
