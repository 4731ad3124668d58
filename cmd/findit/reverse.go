// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/findit/internal/reverse"
	"github.com/pdiddy/findit/pkg/types"
)

var reverseCmd = &cobra.Command{
	Use:   "reverse [urls...]",
	Short: "Recover the DOI and PMID behind article URLs",
	Long: `Reverse inspects each URL with a cascade of extraction methods, from
per-publisher patterns down to a PubMed citation match, and reports the
DOI and PMID it finds. An ambiguous citation match is reported as such;
findit never guesses between candidate articles.`,
	RunE: runReverse,
}

func init() {
	reverseCmd.Flags().Bool("skip-cache", false, "bypass cached reversals (fresh results are still cached)")
	reverseCmd.Flags().Bool("trace", false, "print the extraction steps for each URL")

	rootCmd.AddCommand(reverseCmd)
}

func runReverse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more article URLs")
	}

	skipCache, _ := cmd.Flags().GetBool("skip-cache")
	trace, _ := cmd.Flags().GetBool("trace")

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	engine := reverse.New(s.eut, s.doi, s.eut, s.links)

	unresolved := 0
	for _, rawURL := range args {
		r := engine.Reverse(context.Background(), rawURL, reverse.Options{SkipCache: skipCache})
		printReversalResult(rawURL, r)
		if trace {
			for _, step := range r.Steps {
				fmt.Printf("  %s\n", step)
			}
		}
		if r.Outcome != types.Resolved {
			unresolved++
		}
	}
	if unresolved > 0 {
		return fmt.Errorf("%d of %d URL(s) did not reverse", unresolved, len(args))
	}
	return nil
}

func printReversalResult(rawURL string, r types.ReversalResult) {
	fmt.Printf("%s\n  outcome=%s format=%s doi=%s pmid=%s\n",
		rawURL, r.Outcome, r.Format, orDash(r.DOI), orDash(r.PMID))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
