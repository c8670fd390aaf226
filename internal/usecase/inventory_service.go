package usecase

import (
	"context"
	"fmt"

	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
)

// CreateInventoryItemRequest is a manual inventory addition
type CreateInventoryItemRequest struct {
	Name        string `json:"name" binding:"max=200"`
	Barcode     string `json:"barcode,omitempty" binding:"max=64"`
	Quantity    int    `json:"quantity" binding:"min=0"`
	MinQuantity int    `json:"minQuantity" binding:"min=0"`
	Category    string `json:"category,omitempty" binding:"max=120"`
}

// InventoryService manages the household's stock
type InventoryService struct {
	writer *itemWriter
}

// NewInventoryService creates an inventory service for one household
func NewInventoryService(repo domain.ItemRepository, lookup ProductLookup, householdID string) *InventoryService {
	return &InventoryService{
		writer: newItemWriter(repo, lookup, householdID, logger.GetLogger().Named("inventory")),
	}
}

// List returns all inventory items of the household
func (s *InventoryService) List(ctx context.Context) ([]domain.Item, error) {
	return s.writer.repo.List(ctx, s.writer.householdID)
}

// Get returns one inventory item
func (s *InventoryService) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.writer.get(ctx, id)
}

// Create adds an item, merging into an existing record with the same barcode or name.
// A missing quantity counts as one.
func (s *InventoryService) Create(ctx context.Context, req CreateInventoryItemRequest) (*domain.Item, error) {
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return s.writer.add(ctx,
		ResolveRequest{Barcode: req.Barcode, Name: req.Name, Quantity: quantity},
		domain.Item{MinQuantity: req.MinQuantity, Category: req.Category},
	)
}

// Scan adds quantity units of the product behind a scanned barcode.
// Unknown barcodes create a record named after the product lookup result.
func (s *InventoryService) Scan(ctx context.Context, rawBarcode string, quantity int) (*domain.Item, error) {
	if _, ok := NormalizeBarcode(rawBarcode); !ok {
		return nil, fmt.Errorf("%w: barcode contains no digits", domain.ErrInvalidRequest)
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	return s.writer.add(ctx, ResolveRequest{Barcode: rawBarcode, Quantity: quantity}, domain.Item{})
}

// Update applies a partial update to an inventory item
func (s *InventoryService) Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
	item, err := s.writer.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := NormalizeName(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidRequest)
		}
		item.Name = name
	}
	if update.Barcode != nil {
		// an empty or digitless barcode clears it
		item.Barcode, _ = NormalizeBarcode(*update.Barcode)
	}
	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, domain.ErrNegativeQuantity
		}
		item.Quantity = *update.Quantity
	}
	if update.MinQuantity != nil {
		if *update.MinQuantity < 0 {
			return nil, domain.ErrNegativeQuantity
		}
		item.MinQuantity = *update.MinQuantity
	}
	if update.Category != nil {
		item.Category = *update.Category
	}

	if err := s.writer.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Delete removes an inventory item
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.writer.get(ctx, id); err != nil {
		return err
	}
	return s.writer.repo.Delete(ctx, s.writer.householdID, id)
}

// AdjustQuantity changes the stock by delta. A result below zero is rejected.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Item, error) {
	item, err := s.writer.get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := item.Quantity + delta
	if next < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	item.Quantity = next

	if err := s.writer.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}
