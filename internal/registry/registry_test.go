// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableLoads(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	assert.Greater(t, r.Len(), 40, "embedded table should map a few dozen journals")
}

func TestLookup(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	d := r.Lookup("Nature")
	require.NotNil(t, d)
	assert.Equal(t, "nature", d.PublisherID)
	assert.Equal(t, DOITemplate, d.Kind)

	d = r.Lookup("Proc Natl Acad Sci U S A")
	require.NotNil(t, d)
	assert.Equal(t, VIPTemplate, d.Kind)

	assert.Nil(t, r.Lookup("Journal of Results Nobody Indexed"), "absent journal returns nil, not an error")
}

func TestLookupNormalization(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	// MEDLINE abbreviation with and without periods, odd case, extra space.
	for _, name := range []string{"j med genet", "J. Med. Genet.", "  J  Med  Genet "} {
		d := r.Lookup(name)
		require.NotNil(t, d, "lookup %q", name)
		assert.Equal(t, "bmj", d.PublisherID)
	}
}

func TestNormalizeJournal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Nature", "nature"},
		{"J. Biol. Chem.", "j biol chem"},
		{"  Proc  Natl Acad Sci U S A ", "proc natl acad sci u s a"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeJournal(tt.input))
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	_, err := Load([]byte(`
publishers:
  - id: bogus
    strategy: teleport
    url_template: "https://x/{doi}"
    journals: [Bogus J]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestLoadRejectsDuplicateJournal(t *testing.T) {
	_, err := Load([]byte(`
publishers:
  - id: a
    strategy: doi_template
    url_template: "https://a/{doi}"
    journals: [Shared J]
  - id: b
    strategy: doi_template
    url_template: "https://b/{doi}"
    journals: [shared  j]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claimed by both")
}

func TestLoadRequiresTemplateForTemplateKinds(t *testing.T) {
	_, err := Load([]byte(`
publishers:
  - id: a
    strategy: doi_template
    journals: [Some J]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires url_template")
}
