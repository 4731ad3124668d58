// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/pdiddy/findit/internal/cache"
	"github.com/pdiddy/findit/internal/dxdoi"
	"github.com/pdiddy/findit/internal/eutils"
	"github.com/pdiddy/findit/internal/registry"
	"github.com/pdiddy/findit/internal/secrets"
	"github.com/pdiddy/findit/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "findit/0.1"
)

// stack bundles the collaborators every resolution command needs: the
// link cache, the E-utilities client, the DOI resolver, and the publisher
// registry. One stack is shared across a whole batch so all workers go
// through the same rate limiter and cache connection.
type stack struct {
	cfg   types.ResolverConfig
	links *cache.Store
	eut   *eutils.Client
	doi   *dxdoi.Resolver
	reg   *registry.Registry
}

// loadConfig assembles the resolver configuration from viper, flag
// overrides, and the loaded secrets.
func loadConfig() types.ResolverConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   httpTimeout(),
		UserAgent: userAgent(),
	}

	return types.ResolverConfig{
		Eutils: types.EutilsConfig{
			HTTPConfig: httpCfg,
			APIKey:     loadedSecrets.Get(secrets.KeyNCBIAPIKey),
			Email:      loadedSecrets.Get(secrets.KeyContactEmail),
		},
		Cache: types.CacheConfig{Path: resolveCachePath()},
		Locator: types.LocatorConfig{
			HTTPConfig:   httpCfg,
			RegistryPath: resolveRegistryPath(),
			PapersDir:    viper.GetString("locator.papers_dir"),
		},
	}
}

// resolveCachePath picks the cache database location: the --cache-db
// flag wins over the config file.
func resolveCachePath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("cache-db"); p != "" {
		return p
	}
	return viper.GetString("cache.path")
}

// resolveRegistryPath picks the publisher table override: the --registry
// flag wins over the config file; empty means the embedded table.
func resolveRegistryPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("registry"); p != "" {
		return p
	}
	return viper.GetString("locator.registry_path")
}

func httpTimeout() time.Duration {
	if d := viper.GetDuration("http.timeout"); d > 0 {
		return d
	}
	return defaultTimeout
}

func userAgent() string {
	if ua := viper.GetString("http.user_agent"); ua != "" {
		return ua
	}
	return defaultUserAgent
}

func openStack() (*stack, error) {
	cfg := loadConfig()

	links, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening link cache %s: %w", cfg.Cache.Path, err)
	}

	httpClient := &http.Client{Timeout: cfg.Eutils.Timeout}

	// One process-wide limiter for every remote collaborator, so the
	// aggregate outbound rate across all workers stays under NCBI's ceiling.
	limit := eutils.RateLimitNoKey
	if cfg.Eutils.APIKey != "" {
		limit = eutils.RateLimitWithKey
	}
	limiter := rate.NewLimiter(rate.Limit(limit), 1)

	eutOpts := []eutils.Option{
		eutils.WithHTTPClient(httpClient),
		eutils.WithUserAgent(cfg.Eutils.UserAgent),
	}
	if cfg.Eutils.APIKey != "" {
		eutOpts = append(eutOpts, eutils.WithAPIKey(cfg.Eutils.APIKey))
	}
	if cfg.Eutils.Email != "" {
		eutOpts = append(eutOpts, eutils.WithEmail(cfg.Eutils.Email))
	}
	// The shared limiter goes last so it replaces the per-client one
	// WithAPIKey installs.
	eutOpts = append(eutOpts, eutils.WithLimiter(limiter))

	var reg *registry.Registry
	if cfg.Locator.RegistryPath != "" {
		reg, err = registry.LoadFile(cfg.Locator.RegistryPath)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		links.Close()
		return nil, fmt.Errorf("loading publisher registry: %w", err)
	}

	return &stack{
		cfg:   cfg,
		links: links,
		eut:   eutils.NewClient(eutOpts...),
		doi: dxdoi.NewResolver(
			dxdoi.WithHTTPClient(httpClient),
			dxdoi.WithUserAgent(cfg.Locator.UserAgent),
			dxdoi.WithCache(links),
			dxdoi.WithLimiter(limiter),
		),
		reg: reg,
	}, nil
}

func (s *stack) Close() {
	s.links.Close()
}
