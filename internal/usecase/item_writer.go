package usecase

import (
	"context"
	"fmt"

	"github.com/pantry/backend/internal/domain"
	"go.uber.org/zap"
)

// ProductLookup resolves a canonical barcode to a product descriptor
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) domain.ProductDescriptor
}

// itemWriter applies merge decisions to one item collection.
// Both the inventory and the shopping list add items through it.
type itemWriter struct {
	repo        domain.ItemRepository
	resolver    *IdentityResolver
	lookup      ProductLookup
	householdID string
	log         *zap.SugaredLogger
}

func newItemWriter(
	repo domain.ItemRepository,
	lookup ProductLookup,
	householdID string,
	log *zap.SugaredLogger,
) *itemWriter {
	return &itemWriter{
		repo:        repo,
		resolver:    NewIdentityResolver(repo),
		lookup:      lookup,
		householdID: householdID,
		log:         log,
	}
}

// add resolves req against the collection and then merges or creates.
// template carries the non-identity attributes used when a new record is created.
func (w *itemWriter) add(ctx context.Context, req ResolveRequest, template domain.Item) (*domain.Item, error) {
	decision, err := w.resolver.Resolve(ctx, w.householdID, req)
	if err != nil {
		return nil, err
	}
	if decision.Action == domain.MergeActionMerge {
		return w.merge(ctx, decision)
	}

	// Barcode-only adds take their name from the product databases. The looked-up
	// name is resolved again so an existing record with that name absorbs the scan.
	if decision.Name == "" && decision.Barcode != "" && w.lookup != nil {
		product := w.lookup.Lookup(ctx, decision.Barcode)
		if template.Brand == "" {
			template.Brand = product.Brand
		}
		if template.ImageURL == "" {
			template.ImageURL = product.ImageURL
		}

		decision, err = w.resolver.Resolve(ctx, w.householdID, ResolveRequest{
			Barcode:  decision.Barcode,
			Name:     product.Name,
			Quantity: req.Quantity,
		})
		if err != nil {
			return nil, err
		}
		if decision.Action == domain.MergeActionMerge {
			return w.merge(ctx, decision)
		}
	}

	return w.create(ctx, decision, template)
}

func (w *itemWriter) merge(ctx context.Context, decision *domain.MergeDecision) (*domain.Item, error) {
	item := *decision.Target
	item.Quantity += decision.QuantityDelta
	if decision.BackfillBarcode {
		item.Barcode = decision.Barcode
	}

	if err := w.repo.Update(ctx, &item); err != nil {
		return nil, fmt.Errorf("update merged item: %w", err)
	}

	w.log.Debugw("Merged item",
		"id", item.ID,
		"name", item.Name,
		"delta", decision.QuantityDelta,
		"quantity", item.Quantity,
		"backfilled_barcode", decision.BackfillBarcode,
	)
	return &item, nil
}

func (w *itemWriter) create(ctx context.Context, decision *domain.MergeDecision, template domain.Item) (*domain.Item, error) {
	item := template
	item.HouseholdID = w.householdID
	item.Name = decision.Name
	item.Barcode = decision.Barcode
	item.Quantity = decision.QuantityDelta

	if item.Name == "" {
		return nil, fmt.Errorf("%w: name or barcode is required", domain.ErrInvalidRequest)
	}

	if err := w.repo.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	w.log.Debugw("Created item", "id", item.ID, "name", item.Name, "barcode", item.Barcode, "quantity", item.Quantity)
	return &item, nil
}

// get loads an item of the writer's household or returns ErrItemNotFound
func (w *itemWriter) get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := w.repo.Get(ctx, w.householdID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}
