package domain

import "fmt"

// FallbackSource marks a descriptor synthesized after every provider declined
const FallbackSource = "fallback"

// ProductDescriptor is the human-readable identity of a scanned product
type ProductDescriptor struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Found    bool   `json:"found"`
	Source   string `json:"source,omitempty"` // provider that answered, or "fallback"
}

// NotFoundDescriptor builds the placeholder returned when no provider knows the barcode.
// It is a valid terminal result, not an error.
func NotFoundDescriptor(barcode string) *ProductDescriptor {
	return &ProductDescriptor{
		Barcode: barcode,
		Name:    fmt.Sprintf("Produkt %s", barcode),
		Found:   false,
		Source:  FallbackSource,
	}
}

// LineItem is one (name, quantity) entry extracted from an utterance
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
