// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the findit CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/findit/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the findit CLI.
var rootCmd = &cobra.Command{
	Use:   "findit",
	Short: "Resolve scholarly article identifiers to verified PDF locations",
	Long: `findit maps between the identifiers a scholarly article accumulates
(PMID, DOI, PMCID, publisher URLs) and finds a downloadable PDF for it.

locate turns a PMID into a publisher or PMC PDF URL, reverse recovers the
DOI and PMID hiding inside an arbitrary article URL, convert maps one
identifier to the others, and fetch downloads the PDF itself. Resolved
links are memoized in a local SQLite cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env feeds the environment before secrets resolve, so either
		// mechanism can carry the NCBI key.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./findit.yaml or ~/.config/findit/config.yaml)")
	rootCmd.PersistentFlags().String("cache-db", "", "resolved-link cache database (default findit-cache.db)")
	rootCmd.PersistentFlags().String("registry", "", "publisher table YAML (default: embedded table)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("findit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "findit"))
		}
	}

	viper.SetDefault("cache.path", "findit-cache.db")
	viper.SetDefault("locator.papers_dir", "papers")

	viper.SetEnvPrefix("FINDIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
