package usecase

import "strings"

// GS1-128 application identifier for an embedded GTIN-14
const (
	gs1GTINIdentifier = "01"
	gtin14Length      = 14
)

// NormalizeBarcode reduces a scanned or typed barcode to its canonical key.
// UPC-A, EAN-13, EAN-14 and GS1-128 encodings of the same product converge on one key.
// The second result is false when the input carries no digits at all.
//
// Inputs that do not match a known structure (short codes, GS1 payloads that are
// cut off after the identifier) are passed through as their digit string.
func NormalizeBarcode(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if digits == "" {
		return "", false
	}

	digits = extractGS1GTIN(digits)

	// EAN-14 with a zero indicator digit is the EAN-13 code
	if len(digits) == 14 && digits[0] == '0' {
		digits = digits[1:]
	}

	// EAN-13 with a leading zero is a UPC-A code; the 12 digit form is canonical
	if len(digits) == 13 && digits[0] == '0' {
		return digits[1:], true
	}

	return digits, true
}

// digitsOnly drops every character that is not an ASCII digit
func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// extractGS1GTIN returns the 14 digits following the first "01" identifier.
// When fewer than 14 digits follow it the payload is malformed and the digit
// string is returned unchanged.
func extractGS1GTIN(digits string) string {
	idx := strings.Index(digits, gs1GTINIdentifier)
	if idx < 0 {
		return digits
	}
	start := idx + len(gs1GTINIdentifier)
	if len(digits)-start < gtin14Length {
		return digits
	}
	return digits[start : start+gtin14Length]
}
