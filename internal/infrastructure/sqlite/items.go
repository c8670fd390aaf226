package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pantry/backend/internal/domain"
)

const itemColumns = "id, household_id, name, barcode, brand, image_url, quantity, min_quantity, category, completed, created_at, updated_at"

// ItemRepository stores items of one collection (inventory or shopping list)
type ItemRepository struct {
	db    *sql.DB
	table string

	// openOnly restricts identity lookups to entries that are not completed
	openOnly bool
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// FindByBarcode returns the oldest item with the canonical barcode, or nil
func (r *ItemRepository) FindByBarcode(ctx context.Context, householdID, barcode string) (*domain.Item, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.findOne(ctx, "barcode = ?", householdID, barcode)
}

// FindByName returns the oldest item whose name matches case-insensitively, or nil
func (r *ItemRepository) FindByName(ctx context.Context, householdID, name string) (*domain.Item, error) {
	key := nameKey(name)
	if key == "" {
		return nil, nil
	}
	return r.findOne(ctx, "name_key = ?", householdID, key)
}

func (r *ItemRepository) findOne(ctx context.Context, condition, householdID, value string) (*domain.Item, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE household_id = ? AND %s", itemColumns, r.table, condition)
	if r.openOnly {
		query += " AND completed = 0"
	}
	query += " ORDER BY created_at ASC LIMIT 1"

	item, err := scanItem(r.db.QueryRowContext(ctx, query, householdID, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return item, nil
}

// List returns all items of the household. Open entries come first, newest first.
func (r *ItemRepository) List(ctx context.Context, householdID string) ([]domain.Item, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE household_id = ? ORDER BY completed ASC, created_at DESC",
		itemColumns, r.table,
	)
	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Get returns one item or ErrItemNotFound
func (r *ItemRepository) Get(ctx context.Context, householdID, id string) (*domain.Item, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE household_id = ? AND id = ?", itemColumns, r.table)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, householdID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Create inserts item, assigning an ID and timestamps
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := fmt.Sprintf(
		"INSERT INTO %s (%s, name_key) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.table, itemColumns,
	)
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.HouseholdID, item.Name, item.Barcode, item.Brand, item.ImageURL,
		item.Quantity, item.MinQuantity, item.Category, item.Completed,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt), nameKey(item.Name),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Update writes every mutable field of item. Missing items give ErrItemNotFound.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	updatedAt := time.Now().UTC()

	query := fmt.Sprintf(`UPDATE %s SET
		name = ?, name_key = ?, barcode = ?, brand = ?, image_url = ?,
		quantity = ?, min_quantity = ?, category = ?, completed = ?, updated_at = ?
		WHERE household_id = ? AND id = ?`, r.table)
	result, err := r.db.ExecContext(ctx, query,
		item.Name, nameKey(item.Name), item.Barcode, item.Brand, item.ImageURL,
		item.Quantity, item.MinQuantity, item.Category, item.Completed, formatTime(updatedAt),
		item.HouseholdID, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	item.UpdatedAt = updatedAt
	return nil
}

// Delete removes one item. Missing items give ErrItemNotFound.
func (r *ItemRepository) Delete(ctx context.Context, householdID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE household_id = ? AND id = ?", r.table)
	result, err := r.db.ExecContext(ctx, query, householdID, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	var createdAt, updatedAt string
	err := row.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &item.Barcode, &item.Brand, &item.ImageURL,
		&item.Quantity, &item.MinQuantity, &item.Category, &item.Completed,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

// nameKey is the case-insensitive identity of an item name
func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// timestamps are stored as fixed-width UTC text so they sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
