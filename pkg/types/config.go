// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "findit/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EutilsConfig holds settings for the NCBI E-utilities client.
type EutilsConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key. With a key NCBI allows 10
	// requests per second; without one, 3.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email identifies the caller to NCBI per their usage policy.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// CacheConfig holds settings for the resolved-link cache.
type CacheConfig struct {
	// Path is the SQLite database file for the cache
	// (default "findit-cache.db").
	Path string `json:"path" yaml:"path"`
}

// LocatorConfig holds settings for the locator engine.
type LocatorConfig struct {
	HTTPConfig `yaml:",inline"`

	// RegistryPath optionally overrides the embedded publisher table.
	RegistryPath string `json:"registry_path,omitempty" yaml:"registry_path,omitempty"`

	// PapersDir is the base directory for fetched PDFs
	// (contains raw/, metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// ResolverConfig groups all stage configurations.
type ResolverConfig struct {
	Eutils  EutilsConfig  `json:"eutils" yaml:"eutils"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Locator LocatorConfig `json:"locator" yaml:"locator"`
}
