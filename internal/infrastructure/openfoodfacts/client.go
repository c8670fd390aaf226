package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the global Open Food Facts API
	DefaultBaseURL = "https://world.openfoodfacts.org"

	// DefaultName identifies the global database in logs, metrics and descriptor sources
	DefaultName = "openfoodfacts"

	productPath = "/api/v0/product/{barcode}.json"
)

// Config holds the settings of one Open Food Facts endpoint. The same client
// serves the global database and regional mirrors under different names.
type Config struct {
	Name      string
	BaseURL   string
	Language  string // preferred product_name_<lang> field, e.g. "de"
	UserAgent string
	Timeout   time.Duration
}

// Client looks up products in Open Food Facts
type Client struct {
	name     string
	language string
	http     *resty.Client
	log      *zap.SugaredLogger
}

// NewClient creates a new Open Food Facts client
func NewClient(config Config) *Client {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = "PantryBackend/1.0"
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json")
	if config.Timeout > 0 {
		httpClient.SetTimeout(config.Timeout)
	}

	return &Client{
		name:     config.Name,
		language: config.Language,
		http:     httpClient,
		log:      logger.GetLogger().Named(config.Name),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.name
}

// Lookup fetches the product behind a barcode. An unknown product is (nil, nil).
func (c *Client) Lookup(ctx context.Context, barcode string) (*domain.ProductDescriptor, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("barcode", barcode).
		Get(productPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, c.name, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrProviderFailure, c.name, resp.StatusCode())
	}

	var body productResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	if body.Status != 1 || body.Product == nil {
		c.log.Debugw("Product not in database", "barcode", barcode, "status", body.Status)
		return nil, nil
	}

	descriptor := MapToDescriptor(barcode, body.Product, c.language)
	if descriptor == nil {
		c.log.Debugw("Product has no usable name", "barcode", barcode)
		return nil, nil
	}
	descriptor.Source = c.name
	return descriptor, nil
}
