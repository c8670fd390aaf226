package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store owns the SQLite database holding inventory and shopping list items
type Store struct {
	db           *sql.DB
	inventory    *ItemRepository
	shoppingList *ItemRepository
}

// Open opens or creates the database at path and applies the schema.
// ":memory:" gives a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers; one connection also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:           db,
		inventory:    &ItemRepository{db: db, table: "inventory_items"},
		shoppingList: &ItemRepository{db: db, table: "shopping_list_items", openOnly: true},
	}, nil
}

// Inventory returns the repository of stocked items
func (s *Store) Inventory() *ItemRepository {
	return s.inventory
}

// ShoppingList returns the repository of shopping list entries.
// Identity lookups there only see entries that are not completed.
func (s *Store) ShoppingList() *ItemRepository {
	return s.shoppingList
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
