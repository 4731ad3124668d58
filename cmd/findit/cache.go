// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/findit/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolved-link cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the cache location and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, links, err := openCache()
		if err != nil {
			return err
		}
		defer links.Close()

		n, err := links.Len()
		if err != nil {
			return fmt.Errorf("counting cache entries: %w", err)
		}
		fmt.Printf("cache: %s\nentries: %d\n", path, n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached resolutions",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, links, err := openCache()
		if err != nil {
			return err
		}
		defer links.Close()

		if err := links.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Printf("cleared %s\n", path)
		return nil
	},
}

func openCache() (string, *cache.Store, error) {
	path := resolveCachePath()
	links, err := cache.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening link cache %s: %w", path, err)
	}
	return path, links, nil
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
