package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the UPCitemdb API host
	DefaultBaseURL = "https://api.upcitemdb.com"

	// Name identifies this provider in logs, metrics and descriptor sources
	Name = "upcitemdb"

	// DefaultRequestsPerMinute matches the free trial plan
	DefaultRequestsPerMinute = 6

	trialPath = "/prod/trial/lookup"
	paidPath  = "/prod/v1/lookup"
)

// Config holds configuration for the UPCitemdb client.
// Without an API key the free trial endpoint is used.
type Config struct {
	BaseURL           string
	APIKey            string
	UserAgent         string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client looks up products in UPCitemdb
type Client struct {
	http        *resty.Client
	path        string
	rateLimiter *rate.Limiter
	log         *zap.SugaredLogger
}

type lookupResponse struct {
	Code  string       `json:"code"`
	Total int          `json:"total"`
	Items []lookupItem `json:"items"`
}

type lookupItem struct {
	Title  string   `json:"title"`
	Brand  string   `json:"brand"`
	Images []string `json:"images"`
}

// NewClient creates a new UPCitemdb client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = "PantryBackend/1.0"
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRequestsPerMinute
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json")
	if config.Timeout > 0 {
		httpClient.SetTimeout(config.Timeout)
	}

	path := trialPath
	if config.APIKey != "" {
		path = paidPath
		httpClient.
			SetHeader("user_key", config.APIKey).
			SetHeader("key_type", "3scale")
	}

	// the upstream quota is per minute; spread requests evenly with no burst
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)

	return &Client{
		http:        httpClient,
		path:        path,
		rateLimiter: limiter,
		log:         logger.GetLogger().Named(Name),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return Name
}

// Lookup fetches the product behind a barcode. An unknown product is (nil, nil).
func (c *Client) Lookup(ctx context.Context, barcode string) (*domain.ProductDescriptor, error) {
	// Wait for rate limiter; the caller's deadline bounds the wait
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("upc", barcode).
		Get(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, Name, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusTooManyRequests:
		c.log.Warnw("Rate limited by upstream", "barcode", barcode, "body", resp.String())
		return nil, fmt.Errorf("%w: %s: rate limited", domain.ErrProviderFailure, Name)
	default:
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrProviderFailure, Name, resp.StatusCode())
	}

	var body lookupResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", Name, err)
	}

	if len(body.Items) == 0 {
		c.log.Debugw("Product not in database", "barcode", barcode, "code", body.Code)
		return nil, nil
	}

	item := body.Items[0]
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, nil
	}

	descriptor := &domain.ProductDescriptor{
		Barcode: barcode,
		Name:    title,
		Brand:   strings.TrimSpace(item.Brand),
		Found:   true,
		Source:  Name,
	}
	if len(item.Images) > 0 {
		descriptor.ImageURL = item.Images[0]
	}
	return descriptor, nil
}
