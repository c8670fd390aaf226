package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pantry/backend/internal/domain"
)

// ResolveRequest is a requested addition to inventory or the shopping list
type ResolveRequest struct {
	Barcode  string // raw, may be empty
	Name     string
	Quantity int    // added on merge; must be positive
}

// IdentityResolver decides whether a requested item merges into an existing record
// or becomes a new one. Barcode identity always wins over name identity.
type IdentityResolver struct {
	lookup domain.IdentityLookup
}

// NewIdentityResolver creates a resolver over the given lookup capability
func NewIdentityResolver(lookup domain.IdentityLookup) *IdentityResolver {
	return &IdentityResolver{lookup: lookup}
}

// Resolve produces the merge decision for req within the household scope.
// It only reads from the lookup; applying the decision is the caller's job.
func (r *IdentityResolver) Resolve(
	ctx context.Context,
	householdID string,
	req ResolveRequest,
) (*domain.MergeDecision, error) {
	if householdID == "" {
		return nil, domain.ErrMissingHousehold
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, req.Quantity)
	}

	barcode, hasBarcode := NormalizeBarcode(req.Barcode)
	name := NormalizeName(req.Name)

	if hasBarcode {
		existing, err := r.lookup.FindByBarcode(ctx, householdID, barcode)
		if err != nil {
			return nil, fmt.Errorf("find by barcode: %w", err)
		}
		if existing != nil {
			return mergeInto(existing, req.Quantity, barcode, name), nil
		}
	}

	if name != "" {
		existing, err := r.lookup.FindByName(ctx, householdID, name)
		if err != nil {
			return nil, fmt.Errorf("find by name: %w", err)
		}
		if existing != nil {
			return mergeInto(existing, req.Quantity, barcode, name), nil
		}
	}

	return &domain.MergeDecision{
		Action:        domain.MergeActionCreate,
		QuantityDelta: req.Quantity,
		Barcode:       barcode,
		Name:          name,
	}, nil
}

func mergeInto(existing *domain.Item, quantity int, barcode, name string) *domain.MergeDecision {
	return &domain.MergeDecision{
		Action:          domain.MergeActionMerge,
		Target:          existing,
		QuantityDelta:   quantity,
		Barcode:         barcode,
		BackfillBarcode: barcode != "" && existing.Barcode == "",
		Name:            name,
	}
}

// NormalizeName collapses internal whitespace and trims an item name
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
