// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchVIP(t *testing.T) {
	tests := []struct {
		url     string
		want    vipFields
		matched bool
	}{
		{
			url:     "https://www.pnas.org/content/109/6/2108",
			want:    vipFields{Volume: "109", Issue: "6", FirstPage: "2108", Journal: "Proc Natl Acad Sci U S A"},
			matched: true,
		},
		{
			url:     "https://www.pnas.org/content/109/6/2108.full.pdf",
			want:    vipFields{Volume: "109", Issue: "6", FirstPage: "2108", Journal: "Proc Natl Acad Sci U S A"},
			matched: true,
		},
		{
			url:     "https://jmg.bmj.com/content/49/7/433.full",
			want:    vipFields{Volume: "49", Issue: "7", FirstPage: "433", Journal: "J Med Genet"},
			matched: true,
		},
		{
			// Electronic page number.
			url:     "https://diabetes.diabetesjournals.org/content/61/5/e31",
			want:    vipFields{Volume: "61", Issue: "5", FirstPage: "e31", Journal: "Diabetes"},
			matched: true,
		},
		{
			// VIP shape on an unrecognized host: fields yes, journal no.
			url:     "https://journal.example.org/content/12/3/456",
			want:    vipFields{Volume: "12", Issue: "3", FirstPage: "456"},
			matched: true,
		},
		{
			url:     "https://www.pnas.org/about",
			matched: false,
		},
		{
			// Too few path segments after /content.
			url:     "https://www.pnas.org/content/109",
			matched: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := matchVIP(mustParse(t, tt.url))
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
