// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pdiddy/findit/internal/identifier"
	"github.com/pdiddy/findit/internal/locate"
	"github.com/pdiddy/findit/pkg/types"
)

var locateCmd = &cobra.Command{
	Use:   "locate [pmids...]",
	Short: "Resolve PMIDs to downloadable PDF URLs",
	Long: `Locate maps each PMID to a PDF URL using the publisher registry: a
URL template, a DOI redirect hop, or a scrape of the article landing page,
with the free PMC mirror preferred when the article is out of embargo.
Results are cached; --skip-cache forces fresh resolution.`,
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().Bool("verify", false, "check that the produced URL actually serves a PDF")
	locateCmd.Flags().Bool("no-pmc", false, "do not prefer the PMC mirror over publisher sites")
	locateCmd.Flags().Bool("skip-cache", false, "bypass cached resolutions (fresh results are still cached)")
	locateCmd.Flags().StringP("file", "f", "", "file with one PMID per line, in addition to arguments")
	locateCmd.Flags().Int("workers", 4, "concurrent resolutions in batch mode")

	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	pmids, err := collectPMIDs(cmd, args)
	if err != nil {
		return err
	}
	if len(pmids) == 0 {
		return fmt.Errorf("provide one or more PMIDs, or --file")
	}

	verify, _ := cmd.Flags().GetBool("verify")
	noPMC, _ := cmd.Flags().GetBool("no-pmc")
	skipCache, _ := cmd.Flags().GetBool("skip-cache")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = 1
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	engine := locate.New(s.reg, s.eut, s.doi, s.links, locate.WithUserAgent(s.cfg.Locator.UserAgent))
	opts := locate.Options{Verify: verify, UsePMCMirror: !noPMC, SkipCache: skipCache}

	results := make([]types.LocatorResult, len(pmids))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = engine.Locate(context.Background(), types.ArticleIdentifiers{}.WithPMID(pmids[i]), opts)
			}
		}()
	}
	for i := range pmids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for i, r := range results {
		printLocatorResult(pmids[i], r)
		if r.URL == "" && r.BackupURL == "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d PMID(s) did not resolve", failed, len(pmids))
	}
	return nil
}

func printLocatorResult(pmid string, r types.LocatorResult) {
	switch {
	case r.URL != "":
		mark := ""
		if r.Verified {
			mark = " [verified]"
		}
		fmt.Printf("%s\t%s\t(%s)%s\n", pmid, r.URL, r.Strategy, mark)
	case r.BackupURL != "":
		fmt.Printf("%s\t%s\t(backup, primary failed: %s)\n", pmid, r.BackupURL, r.Reason)
	default:
		fmt.Printf("%s\t-\t(%s)\n", pmid, r.Reason)
	}
}

// collectPMIDs merges arguments with the optional --file list, validating
// each entry.
func collectPMIDs(cmd *cobra.Command, args []string) ([]string, error) {
	pmids := make([]string, 0, len(args))
	add := func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			return nil
		}
		if !identifier.ValidPMID(raw) {
			return fmt.Errorf("%q is not a valid PMID", raw)
		}
		pmids = append(pmids, raw)
		return nil
	}

	for _, a := range args {
		if err := add(a); err != nil {
			return nil, err
		}
	}

	path, _ := cmd.Flags().GetString("file")
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening PMID list: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if err := add(scanner.Text()); err != nil {
				return nil, err
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading PMID list: %w", err)
		}
	}

	return pmids, nil
}
