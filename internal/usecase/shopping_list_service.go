package usecase

import (
	"context"
	"fmt"

	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
)

// AddShoppingItemRequest is a shopping list addition
type AddShoppingItemRequest struct {
	Name     string `json:"name" binding:"max=200"`
	Barcode  string `json:"barcode,omitempty" binding:"max=64"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// ShoppingListService manages the household's shopping list
type ShoppingListService struct {
	writer *itemWriter
}

// NewShoppingListService creates a shopping list service for one household.
// repo must only match open (not completed) entries by name so checked-off
// items are not revived by a new request.
func NewShoppingListService(repo domain.ItemRepository, lookup ProductLookup, householdID string) *ShoppingListService {
	return &ShoppingListService{
		writer: newItemWriter(repo, lookup, householdID, logger.GetLogger().Named("shopping-list")),
	}
}

// List returns the shopping list, open entries first
func (s *ShoppingListService) List(ctx context.Context) ([]domain.Item, error) {
	return s.writer.repo.List(ctx, s.writer.householdID)
}

// Add puts an entry on the list or raises the quantity of an existing one.
// A missing quantity counts as one.
func (s *ShoppingListService) Add(ctx context.Context, req AddShoppingItemRequest) (*domain.Item, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	return s.writer.add(ctx, ResolveRequest{Barcode: req.Barcode, Name: req.Name, Quantity: quantity}, domain.Item{})
}

// ImportUtterance parses a spoken request and adds every line item in order
func (s *ShoppingListService) ImportUtterance(ctx context.Context, utterance string) (*domain.ImportResult, error) {
	lines := ParseUtterance(utterance)

	result := &domain.ImportResult{
		CreatedItems: make([]domain.Item, 0, len(lines)),
		ParsedNames:  make([]string, 0, len(lines)),
		LineItems:    lines,
	}

	for _, line := range lines {
		item, err := s.writer.add(ctx, ResolveRequest{Name: line.Name, Quantity: line.Quantity}, domain.Item{})
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", line.Name, err)
		}
		result.CreatedItems = append(result.CreatedItems, *item)
		result.ParsedNames = append(result.ParsedNames, line.Name)
	}

	s.writer.log.Infow("Imported utterance", "lines", len(lines))
	return result, nil
}

// Update applies a partial update to a shopping list entry
func (s *ShoppingListService) Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
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
		item.Barcode, _ = NormalizeBarcode(*update.Barcode)
	}
	if update.Quantity != nil {
		if *update.Quantity < 1 {
			return nil, fmt.Errorf("%w: shopping list quantity must be at least 1", domain.ErrInvalidQuantity)
		}
		item.Quantity = *update.Quantity
	}
	if update.Completed != nil {
		item.Completed = *update.Completed
	}

	if err := s.writer.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Delete removes a shopping list entry
func (s *ShoppingListService) Delete(ctx context.Context, id string) error {
	if _, err := s.writer.get(ctx, id); err != nil {
		return err
	}
	return s.writer.repo.Delete(ctx, s.writer.householdID, id)
}
