package domain

import "context"

// ProductCache stores lookup results keyed by canonical barcode.
// Get returns ErrCacheMiss when the barcode has not been looked up yet.
type ProductCache interface {
	Get(ctx context.Context, barcode string) (*ProductDescriptor, error)
	Set(ctx context.Context, barcode string, descriptor *ProductDescriptor) error
}

// ProductProvider is one external product database in the lookup chain.
// A nil descriptor or a non-nil error means the provider declined.
type ProductProvider interface {
	Name() string
	Lookup(ctx context.Context, barcode string) (*ProductDescriptor, error)
}

// IdentityLookup finds existing records by canonical identity within a household.
// Both methods return (nil, nil) when nothing matches.
type IdentityLookup interface {
	FindByBarcode(ctx context.Context, householdID, barcode string) (*Item, error)
	FindByName(ctx context.Context, householdID, name string) (*Item, error)
}

// ItemRepository persists inventory or shopping list items
type ItemRepository interface {
	IdentityLookup

	List(ctx context.Context, householdID string) ([]Item, error)
	Get(ctx context.Context, householdID, id string) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, householdID, id string) error
}
