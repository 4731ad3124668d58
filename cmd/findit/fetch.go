// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/findit/internal/identifier"
	"github.com/pdiddy/findit/internal/locate"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [pmids...]",
	Short: "Download article PDFs into the papers directory",
	Long: `Fetch locates each PMID's PDF, downloads it to papers/raw/<pmid>.pdf,
checks that the file really parses as a PDF, and writes the article's
metadata record alongside it. Articles already on disk are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("papers-dir", "", "base directory for papers (default from config, \"papers\")")
	fetchCmd.Flags().Bool("no-pmc", false, "do not prefer the PMC mirror over publisher sites")
	fetchCmd.Flags().Bool("skip-cache", false, "bypass cached resolutions (fresh results are still cached)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PMIDs")
	}
	for _, pmid := range args {
		if !identifier.ValidPMID(pmid) {
			return fmt.Errorf("%q is not a valid PMID", pmid)
		}
	}

	noPMC, _ := cmd.Flags().GetBool("no-pmc")
	skipCache, _ := cmd.Flags().GetBool("skip-cache")

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	papersDir, _ := cmd.Flags().GetString("papers-dir")
	if papersDir == "" {
		papersDir = s.cfg.Locator.PapersDir
	}

	engine := locate.New(s.reg, s.eut, s.doi, s.links, locate.WithUserAgent(s.cfg.Locator.UserAgent))
	opts := locate.Options{UsePMCMirror: !noPMC, SkipCache: skipCache}

	failed := 0
	for _, pmid := range args {
		got, err := engine.Fetch(context.Background(), pmid, papersDir, opts)
		if err != nil {
			fmt.Printf("%s\tfailed: %v\n", pmid, err)
			failed++
			continue
		}
		if got.Skipped {
			fmt.Printf("%s\t%s\t(already on disk)\n", pmid, got.PDFPath)
		} else {
			fmt.Printf("%s\t%s\t(%d pages)\n", pmid, got.PDFPath, got.Pages)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d PDF(s) failed to fetch", failed, len(args))
	}
	return nil
}
