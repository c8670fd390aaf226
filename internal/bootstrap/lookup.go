// Package bootstrap builds the product lookup chain from configuration.
// The API server and pantryctl share it so both resolve barcodes the same way.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/pantry/backend/config"
	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/infrastructure/cache"
	"github.com/pantry/backend/internal/infrastructure/openfoodfacts"
	"github.com/pantry/backend/internal/infrastructure/upcitemdb"
	"github.com/pantry/backend/internal/logger"
	"github.com/pantry/backend/internal/metrics"
	"github.com/pantry/backend/internal/usecase"
)

// Providers builds the configured provider chain in lookup order
func Providers(cfg *config.Config) []domain.ProductProvider {
	providers := make([]domain.ProductProvider, 0, len(cfg.Lookup.Providers))
	for _, name := range cfg.Lookup.Providers {
		switch name {
		case config.ProviderOpenFoodFacts:
			providers = append(providers, openfoodfacts.NewClient(openfoodfacts.Config{
				Name:      config.ProviderOpenFoodFacts,
				BaseURL:   cfg.OpenFoodFacts.BaseURL,
				Language:  cfg.Lookup.Language,
				UserAgent: cfg.Lookup.UserAgent,
				Timeout:   cfg.Lookup.ProviderTimeout,
			}))
		case config.ProviderOpenFoodFactsRegional:
			providers = append(providers, openfoodfacts.NewClient(openfoodfacts.Config{
				Name:      config.ProviderOpenFoodFactsRegional,
				BaseURL:   cfg.OpenFoodFacts.RegionalBaseURL,
				Language:  cfg.Lookup.Language,
				UserAgent: cfg.Lookup.UserAgent,
				Timeout:   cfg.Lookup.ProviderTimeout,
			}))
		case config.ProviderUPCitemdb:
			providers = append(providers, upcitemdb.NewClient(upcitemdb.Config{
				BaseURL:           cfg.UPCitemdb.BaseURL,
				APIKey:            cfg.UPCitemdb.APIKey,
				UserAgent:         cfg.Lookup.UserAgent,
				RequestsPerMinute: cfg.UPCitemdb.RequestsPerMinute,
				Timeout:           cfg.Lookup.ProviderTimeout,
			}))
		}
	}
	return providers
}

// Cache builds the configured product cache. The returned func releases it.
func Cache(ctx context.Context, cfg *config.Config) (domain.ProductCache, func() error, error) {
	switch cfg.Cache.Type {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return cache.NewRedisCache(client, cfg.Cache.TTL), client.Close, nil
	case "memory", "":
		memory := cache.NewMemoryCache(cache.MemoryConfig{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		})
		return memory, memory.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache type: %s", cfg.Cache.Type)
	}
}

// ProductLookup wires cache and providers into a lookup client
func ProductLookup(
	ctx context.Context,
	cfg *config.Config,
	lookupMetrics *metrics.LookupMetrics,
) (*usecase.ProductLookupClient, func() error, error) {
	productCache, closeCache, err := Cache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	providers := Providers(cfg)

	log := logger.GetLogger()
	log.Infow("Product lookup configured",
		"cache", cfg.Cache.Type,
		"cache_ttl", cfg.Cache.TTL,
		"providers", cfg.Lookup.Providers,
		"provider_timeout", cfg.Lookup.ProviderTimeout,
		"upcitemdb_key", logger.MaskSecret(cfg.UPCitemdb.APIKey),
	)

	client := usecase.NewProductLookupClient(productCache, providers, usecase.ProductLookupConfig{
		ProviderTimeout: cfg.Lookup.ProviderTimeout,
		Metrics:         lookupMetrics,
	})
	return client, closeCache, nil
}
