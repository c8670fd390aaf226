package openfoodfacts

import (
	"strings"

	"github.com/pantry/backend/internal/domain"
)

// productResponse is the v0 product endpoint envelope
type productResponse struct {
	Status  int                    `json:"status"`
	Product map[string]interface{} `json:"product"`
}

// MapToDescriptor converts an Open Food Facts product into a descriptor.
// The name is taken from the first non-empty of product_name_<language>,
// product_name, generic_name and brands. Returns nil when none is set.
func MapToDescriptor(barcode string, product map[string]interface{}, language string) *domain.ProductDescriptor {
	nameFields := make([]string, 0, 4)
	if language != "" {
		nameFields = append(nameFields, "product_name_"+language)
	}
	nameFields = append(nameFields, "product_name", "generic_name", "brands")

	name := firstString(product, nameFields...)
	if name == "" {
		return nil
	}

	return &domain.ProductDescriptor{
		Barcode:  barcode,
		Name:     name,
		Brand:    FirstBrand(stringField(product, "brands")),
		ImageURL: firstString(product, "image_front_url", "image_url"),
		Found:    true,
	}
}

// FirstBrand returns the first entry of a comma separated brand list
func FirstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func firstString(product map[string]interface{}, fields ...string) string {
	for _, field := range fields {
		if value := stringField(product, field); value != "" {
			return value
		}
	}
	return ""
}

// stringField reads a string field; missing and non-string values are empty
func stringField(product map[string]interface{}, field string) string {
	value, ok := product[field].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
