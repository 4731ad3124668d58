// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/findit/internal/identifier"
	"github.com/pdiddy/findit/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [identifiers...]",
	Short: "Map an identifier to its PMID/DOI/PMCID counterparts",
	Long: `Convert recognizes each argument as a PMID, DOI, or PMCID and looks
up the other identifiers the article carries. Missing counterparts print
as "-"; an article without a PMC deposit simply has no PMCID.`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more identifiers (PMID, DOI, or PMCID)")
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	failed := 0
	for _, arg := range args {
		ids, err := convertOne(ctx, s, strings.TrimSpace(arg))
		if err != nil {
			fmt.Printf("%s\tpmid=- doi=- pmcid=-\t(%v)\n", arg, err)
			failed++
			continue
		}
		fmt.Printf("%s\tpmid=%s doi=%s pmcid=%s\n",
			arg, orDash(ids.PMID), orDash(ids.DOI), orDash(ids.PMCID))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d identifier(s) did not convert", failed, len(args))
	}
	return nil
}

// convertOne normalizes arg to a PMID first, then pulls the full record;
// the efetch record is the one place that carries all three identifiers.
func convertOne(ctx context.Context, s *stack, arg string) (types.ArticleIdentifiers, error) {
	var pmid string
	switch {
	case identifier.ValidPMID(arg):
		pmid = arg

	case identifier.ValidPMCID(identifier.NormalizePMCID(arg)):
		p, err := s.eut.PMIDForPMCID(ctx, identifier.NormalizePMCID(arg))
		if err != nil {
			return types.ArticleIdentifiers{}, fmt.Errorf("no PMID indexed for %s", arg)
		}
		pmid = p

	case identifier.ValidDOI(identifier.TrimDOI(arg)):
		doi := identifier.TrimDOI(arg)
		p, err := s.eut.PMIDForDOI(ctx, doi)
		if err != nil {
			// Not every DOI is indexed in PubMed; report the one
			// identifier we do have.
			return types.ArticleIdentifiers{}.WithDOI(doi), nil
		}
		pmid = p

	default:
		return types.ArticleIdentifiers{}, fmt.Errorf("not a recognizable PMID, DOI, or PMCID")
	}

	m, err := s.eut.FetchArticle(ctx, pmid)
	if err != nil {
		return types.ArticleIdentifiers{}, fmt.Errorf("fetching record for PMID %s: %w", pmid, err)
	}
	return m.ArticleIdentifiers, nil
}
