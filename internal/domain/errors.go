package domain

import "errors"

var (
	// ErrItemNotFound is returned when an inventory or shopping list item does not exist in the household
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidQuantity is returned when a quantity to add is negative, or zero where at least one is required
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrNegativeQuantity is returned when an adjustment would take a stock level below zero
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrMissingHousehold is returned when an operation is invoked without a household scope
	ErrMissingHousehold = errors.New("household scope is required")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrProviderFailure is returned by a product provider when the upstream call fails
	ErrProviderFailure = errors.New("product provider request failed")
)
