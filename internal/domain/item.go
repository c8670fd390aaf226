package domain

import "time"

// Item is a stored inventory or shopping list record scoped to a household
type Item struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	Name        string    `json:"name"`
	Barcode     string    `json:"barcode,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"minQuantity"`
	Category    string    `json:"category,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MergeAction tells the caller what to do with a resolved identity
type MergeAction string

const (
	// MergeActionMerge increments an existing record
	MergeActionMerge MergeAction = "merge"
	// MergeActionCreate inserts a new record
	MergeActionCreate MergeAction = "create"
)

// MergeDecision is the outcome of resolving a requested item against existing records
type MergeDecision struct {
	Action MergeAction `json:"action"`

	// Target is the record to merge into; nil when Action is create
	Target *Item `json:"target,omitempty"`

	QuantityDelta int `json:"quantityDelta"`

	// Barcode is the canonical barcode of the request, empty when none was supplied
	Barcode string `json:"barcode,omitempty"`

	// BackfillBarcode is set when Target had no barcode and should receive Barcode
	BackfillBarcode bool `json:"backfillBarcode"`

	// Name is the normalized requested name
	Name string `json:"name"`
}

// ItemUpdate carries a partial update; nil fields are left untouched
type ItemUpdate struct {
	Name        *string `json:"name,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	MinQuantity *int    `json:"minQuantity,omitempty"`
	Category    *string `json:"category,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ImportResult summarizes an utterance import into the shopping list
type ImportResult struct {
	CreatedItems []Item     `json:"createdItems"`
	ParsedNames  []string   `json:"parsedNames"`
	LineItems    []LineItem `json:"lineItems"`
}
