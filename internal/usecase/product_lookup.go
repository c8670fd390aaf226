package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
	"github.com/pantry/backend/internal/metrics"
	"go.uber.org/zap"
)

// DefaultProviderTimeout bounds a single provider call
const DefaultProviderTimeout = 4 * time.Second

// ProductLookupConfig holds configuration for the product lookup client
type ProductLookupConfig struct {
	ProviderTimeout time.Duration
	Metrics         *metrics.LookupMetrics
}

// ProductLookupClient resolves canonical barcodes to product descriptors.
// Flow: check cache -> ask providers in order -> fall back to a placeholder -> cache -> return
type ProductLookupClient struct {
	cache           domain.ProductCache
	providers       []domain.ProductProvider
	providerTimeout time.Duration
	metrics         *metrics.LookupMetrics
	log             *zap.SugaredLogger
}

// NewProductLookupClient creates a lookup client over an ordered provider chain.
// The cache is owned by the caller and shared for the lifetime of the process.
func NewProductLookupClient(
	cache domain.ProductCache,
	providers []domain.ProductProvider,
	config ProductLookupConfig,
) *ProductLookupClient {
	timeout := config.ProviderTimeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	return &ProductLookupClient{
		cache:           cache,
		providers:       providers,
		providerTimeout: timeout,
		metrics:         config.Metrics,
		log:             logger.GetLogger().Named("product-lookup"),
	}
}

// Lookup returns the product behind a canonical barcode. It never fails: when no
// provider knows the product a placeholder with Found=false is returned, and that
// placeholder is cached like any other result.
// Caller cancellation is not propagated; only the per-provider timeout bounds a
// call, so a dropped request cannot cache a product as unknown.
func (c *ProductLookupClient) Lookup(ctx context.Context, barcode string) domain.ProductDescriptor {
	ctx = context.WithoutCancel(ctx)

	if cached, ok := c.fromCache(ctx, barcode); ok {
		return *cached
	}

	descriptor := c.queryProviders(ctx, barcode)

	if c.cache != nil {
		if err := c.cache.Set(ctx, barcode, descriptor); err != nil {
			c.metrics.CacheError()
			c.log.Errorw("Failed to cache product lookup", "barcode", barcode, "error", err)
		}
	}

	return *descriptor
}

// fromCache reads the cache; any failure other than a miss is logged and treated as a miss
func (c *ProductLookupClient) fromCache(ctx context.Context, barcode string) (*domain.ProductDescriptor, bool) {
	if c.cache == nil {
		return nil, false
	}

	cached, err := c.cache.Get(ctx, barcode)
	if err == nil && cached != nil {
		c.metrics.CacheHit()
		c.log.Debugw("Product lookup cache hit", "barcode", barcode, "found", cached.Found)
		return cached, true
	}

	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		c.metrics.CacheError()
		c.log.Errorw("Product cache read failed", "barcode", barcode, "error", err)
	}
	c.metrics.CacheMiss()
	return nil, false
}

// queryProviders walks the chain and stops at the first provider that returns a name
func (c *ProductLookupClient) queryProviders(ctx context.Context, barcode string) *domain.ProductDescriptor {
	for _, provider := range c.providers {
		descriptor, ok := c.attempt(ctx, provider, barcode)
		if ok {
			return descriptor
		}
	}

	c.metrics.Fallback()
	c.log.Infow("No provider knows barcode, using placeholder", "barcode", barcode, "providers", len(c.providers))
	return domain.NotFoundDescriptor(barcode)
}

// attempt runs a single provider under its own deadline. Errors, timeouts and
// empty names all count as a decline.
func (c *ProductLookupClient) attempt(
	ctx context.Context,
	provider domain.ProductProvider,
	barcode string,
) (*domain.ProductDescriptor, bool) {
	providerCtx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()

	start := time.Now()
	descriptor, err := callWithDeadline(providerCtx, provider, barcode)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		c.log.Warnw("Product provider declined",
			"provider", provider.Name(),
			"barcode", barcode,
			"reason", "error",
			"error", err,
			"elapsed", elapsed,
		)
	case descriptor == nil || strings.TrimSpace(descriptor.Name) == "":
		c.log.Warnw("Product provider declined",
			"provider", provider.Name(),
			"barcode", barcode,
			"reason", "no name",
			"elapsed", elapsed,
		)
	default:
		c.metrics.ProviderResult(provider.Name(), true, elapsed)
		result := *descriptor
		result.Barcode = barcode
		result.Name = strings.TrimSpace(result.Name)
		result.Found = true
		if result.Source == "" {
			result.Source = provider.Name()
		}
		return &result, true
	}

	c.metrics.ProviderResult(provider.Name(), false, elapsed)
	return nil, false
}

type providerResult struct {
	descriptor *domain.ProductDescriptor
	err        error
}

// callWithDeadline returns when the provider answers or the context expires,
// whichever comes first, so a provider that ignores its context cannot stall the chain.
func callWithDeadline(
	ctx context.Context,
	provider domain.ProductProvider,
	barcode string,
) (*domain.ProductDescriptor, error) {
	done := make(chan providerResult, 1)
	go func() {
		descriptor, err := provider.Lookup(ctx, barcode)
		done <- providerResult{descriptor: descriptor, err: err}
	}()

	select {
	case res := <-done:
		return res.descriptor, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
