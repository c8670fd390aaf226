package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pantry/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLookup answers product lookups from a fixed table
type stubLookup struct {
	products map[string]domain.ProductDescriptor
	calls    []string
}

func (s *stubLookup) Lookup(ctx context.Context, barcode string) domain.ProductDescriptor {
	s.calls = append(s.calls, barcode)
	if product, ok := s.products[barcode]; ok {
		return product
	}
	return *domain.NotFoundDescriptor(barcode)
}

func newInventoryFixture(items ...domain.Item) (*InventoryService, *MockItemRepository, *stubLookup) {
	repo := NewMockItemRepository(items...)
	lookup := &stubLookup{products: map[string]domain.ProductDescriptor{
		"5449000000996": {Barcode: "5449000000996", Name: "Coca-Cola", Brand: "Coca-Cola", ImageURL: "https://images.example.org/cola.jpg", Found: true},
	}}
	return NewInventoryService(repo, lookup, testHousehold), repo, lookup
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func TestInventoryService_Scan(t *testing.T) {
	t.Run("unknown barcode creates an enriched item", func(t *testing.T) {
		svc, repo, lookup := newInventoryFixture()

		item, err := svc.Scan(context.Background(), "05449000000996", 0)

		require.NoError(t, err)
		assert.Equal(t, "Coca-Cola", item.Name)
		assert.Equal(t, "5449000000996", item.Barcode)
		assert.Equal(t, "Coca-Cola", item.Brand)
		assert.Equal(t, "https://images.example.org/cola.jpg", item.ImageURL)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, testHousehold, item.HouseholdID)
		assert.Equal(t, []string{"5449000000996"}, lookup.calls)
		assert.Len(t, repo.items, 1)
	})

	t.Run("product unknown everywhere gets the placeholder name", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		item, err := svc.Scan(context.Background(), "12345670", 2)

		require.NoError(t, err)
		assert.Equal(t, "Produkt 12345670", item.Name)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("known barcode merges without a lookup", func(t *testing.T) {
		svc, repo, lookup := newInventoryFixture(domain.Item{ID: "cola", HouseholdID: testHousehold, Name: "Cola", Barcode: "5449000000996", Quantity: 2})

		item, err := svc.Scan(context.Background(), "(01)05449000000996", 3)

		require.NoError(t, err)
		assert.Equal(t, "cola", item.ID)
		assert.Equal(t, 5, item.Quantity)
		assert.Equal(t, 5, repo.items[0].Quantity)
		assert.Empty(t, lookup.calls)
	})

	t.Run("looked-up name merges into an existing record", func(t *testing.T) {
		svc, repo, lookup := newInventoryFixture(domain.Item{ID: "cola", HouseholdID: testHousehold, Name: "coca-cola", Quantity: 1})

		item, err := svc.Scan(context.Background(), "5449000000996", 2)

		require.NoError(t, err)
		assert.Equal(t, "cola", item.ID)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, "5449000000996", item.Barcode)
		assert.Equal(t, []string{"5449000000996"}, lookup.calls)
		require.Len(t, repo.items, 1)
		assert.Equal(t, "5449000000996", repo.items[0].Barcode)
	})

	t.Run("digitless barcode is rejected", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		_, err := svc.Scan(context.Background(), "scan failed", 1)

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		_, err := svc.Scan(context.Background(), "12345670", -1)

		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})
}

func TestInventoryService_Create(t *testing.T) {
	t.Run("new item keeps its attributes", func(t *testing.T) {
		svc, _, lookup := newInventoryFixture()

		item, err := svc.Create(context.Background(), CreateInventoryItemRequest{
			Name:        "  Mehl  Type 405 ",
			Quantity:    1,
			MinQuantity: 2,
			Category:    "Backen",
		})

		require.NoError(t, err)
		assert.Equal(t, "Mehl Type 405", item.Name)
		assert.Equal(t, 2, item.MinQuantity)
		assert.Equal(t, "Backen", item.Category)
		assert.Empty(t, lookup.calls)
	})

	t.Run("same name merges and backfills barcode", func(t *testing.T) {
		svc, repo, _ := newInventoryFixture(domain.Item{ID: "flour", HouseholdID: testHousehold, Name: "Mehl", Quantity: 1})

		item, err := svc.Create(context.Background(), CreateInventoryItemRequest{Name: "mehl", Barcode: "4000521006075", Quantity: 2})

		require.NoError(t, err)
		assert.Equal(t, "flour", item.ID)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, "4000521006075", item.Barcode)
		assert.Equal(t, "Mehl", item.Name)
		assert.Len(t, repo.items, 1)
	})

	t.Run("missing quantity counts as one", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		item, err := svc.Create(context.Background(), CreateInventoryItemRequest{Name: "Zimt"})

		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("name or barcode required", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		_, err := svc.Create(context.Background(), CreateInventoryItemRequest{Name: "   "})

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		_, err := svc.Create(context.Background(), CreateInventoryItemRequest{Name: "Zimt", MinQuantity: -1})

		assert.ErrorIs(t, err, domain.ErrNegativeQuantity)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		svc, repo, _ := newInventoryFixture()
		repo.createError = errors.New("disk full")

		_, err := svc.Create(context.Background(), CreateInventoryItemRequest{Name: "Zimt"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "create item")
	})
}

func TestInventoryService_Update(t *testing.T) {
	existing := domain.Item{ID: "rice", HouseholdID: testHousehold, Name: "Reis", Barcode: "12345670", Quantity: 2}

	t.Run("partial update", func(t *testing.T) {
		svc, repo, _ := newInventoryFixture(existing)

		item, err := svc.Update(context.Background(), "rice", domain.ItemUpdate{
			Name:     strPtr(" Basmati  Reis "),
			Quantity: intPtr(5),
			Category: strPtr("Vorrat"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Basmati Reis", item.Name)
		assert.Equal(t, 5, item.Quantity)
		assert.Equal(t, "Vorrat", item.Category)
		assert.Equal(t, "12345670", item.Barcode)
		assert.Equal(t, *item, repo.items[0])
	})

	t.Run("barcode is normalized and can be cleared", func(t *testing.T) {
		svc, _, _ := newInventoryFixture(existing)

		item, err := svc.Update(context.Background(), "rice", domain.ItemUpdate{Barcode: strPtr("05449000000996")})
		require.NoError(t, err)
		assert.Equal(t, "5449000000996", item.Barcode)

		item, err = svc.Update(context.Background(), "rice", domain.ItemUpdate{Barcode: strPtr("")})
		require.NoError(t, err)
		assert.Empty(t, item.Barcode)
	})

	tests := []struct {
		name    string
		update  domain.ItemUpdate
		wantErr error
	}{
		{name: "empty name", update: domain.ItemUpdate{Name: strPtr("  ")}, wantErr: domain.ErrInvalidRequest},
		{name: "negative quantity", update: domain.ItemUpdate{Quantity: intPtr(-1)}, wantErr: domain.ErrNegativeQuantity},
		{name: "negative minimum", update: domain.ItemUpdate{MinQuantity: intPtr(-2)}, wantErr: domain.ErrNegativeQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newInventoryFixture(existing)

			_, err := svc.Update(context.Background(), "rice", tt.update)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, existing, repo.items[0])
		})
	}

	t.Run("unknown item", func(t *testing.T) {
		svc, _, _ := newInventoryFixture()

		_, err := svc.Update(context.Background(), "missing", domain.ItemUpdate{Quantity: intPtr(1)})

		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestInventoryService_AdjustQuantity(t *testing.T) {
	existing := domain.Item{ID: "eggs", HouseholdID: testHousehold, Name: "Eier", Quantity: 3}

	tests := []struct {
		name    string
		delta   int
		want    int
		wantErr error
	}{
		{name: "increment", delta: 1, want: 4},
		{name: "decrement", delta: -2, want: 1},
		{name: "down to zero", delta: -3, want: 0},
		{name: "below zero", delta: -4, wantErr: domain.ErrNegativeQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newInventoryFixture(existing)

			item, err := svc.AdjustQuantity(context.Background(), "eggs", tt.delta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 3, repo.items[0].Quantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Quantity)
			assert.Equal(t, tt.want, repo.items[0].Quantity)
		})
	}
}

func TestInventoryService_ListGetDelete(t *testing.T) {
	svc, _, _ := newInventoryFixture(
		domain.Item{ID: "a", HouseholdID: testHousehold, Name: "Salz"},
		domain.Item{ID: "b", HouseholdID: "household-2", Name: "Pfeffer"},
	)
	ctx := context.Background()

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)

	_, err = svc.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	require.NoError(t, svc.Delete(ctx, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, "a"), domain.ErrItemNotFound)
}
