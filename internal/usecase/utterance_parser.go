package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pantry/backend/internal/domain"
)

// Compiled patterns for utterance parsing
var (
	// Matches one leading filler word followed by whitespace ("bitte ", "setze ", "meine ")
	fillerPrefixPattern = regexp.MustCompile(`^(?:bitte|füge|setz|setze|auf|meine|meiner|liste|einkaufsliste)\s+`)

	// Matches a leading quantity with an optional unit: "2x milch", "3 stück eier", "1 packung reis"
	quantityPrefixPattern = regexp.MustCompile(`(?s)^(\d+)\s*(?:x|mal|stk|stück|packung|packungen)?\s+(.+)$`)
)

// connectorWords separate items inside one utterance
var connectorWords = map[string]bool{
	"und":   true,
	"sowie": true,
	"plus":  true,
	"mit":   true,
}

// trailingFillerWords close a spoken command ("... zur liste", "... auf die einkaufsliste", "... hinzu")
var trailingFillerWords = map[string]bool{
	"zur":           true,
	"zu":            true,
	"auf":           true,
	"die":           true,
	"meine":         true,
	"meiner":        true,
	"liste":         true,
	"einkaufsliste": true,
	"hinzu":         true,
	"bitte":         true,
}

// ParseUtterance splits a spoken or typed shopping request into ordered line items.
// "bitte füge 2x Milch und Butter zur Liste" yields [{milch 2} {butter 1}].
// The result is an empty slice when nothing usable is found.
func ParseUtterance(utterance string) []domain.LineItem {
	cleaned := strings.ToLower(strings.TrimSpace(utterance))
	if cleaned == "" {
		return []domain.LineItem{}
	}

	segments := splitSegments(replaceConnectors(cleaned))

	items := make([]domain.LineItem, 0, len(segments))
	for _, segment := range segments {
		candidate := stripFillerPrefixes(segment)
		quantity, candidate := extractQuantity(candidate)
		name := cleanItemName(candidate)
		if name == "" {
			continue
		}
		items = append(items, domain.LineItem{Name: name, Quantity: quantity})
	}
	return items
}

// replaceConnectors turns connector words and semicolons into commas.
// Words are runs of letters and digits, so "mit" inside "schmitt" is left alone.
func replaceConnectors(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		if connectorWords[string(word)] {
			b.WriteByte(',')
		} else {
			b.WriteString(string(word))
		}
		word = word[:0]
	}

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word = append(word, r)
			continue
		}
		flush()
		if r == ';' {
			b.WriteByte(',')
		} else {
			b.WriteRune(r)
		}
	}
	flush()

	return b.String()
}

// splitSegments splits on commas and drops empty segments, keeping order
func splitSegments(s string) []string {
	parts := strings.Split(s, ",")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// stripFillerPrefixes removes stacked leading fillers such as "bitte setze auf meine liste"
func stripFillerPrefixes(segment string) string {
	candidate := segment
	for {
		updated := strings.TrimSpace(fillerPrefixPattern.ReplaceAllString(candidate, ""))
		if updated == candidate {
			return candidate
		}
		candidate = updated
	}
}

// extractQuantity reads an optional leading count and returns it with the remaining text
func extractQuantity(segment string) (int, string) {
	match := quantityPrefixPattern.FindStringSubmatch(segment)
	if match == nil {
		return 1, segment
	}

	quantity, err := strconv.Atoi(match[1])
	if err != nil || quantity < 1 {
		// out of range counts are treated like "0x": at least one
		quantity = 1
	}
	return quantity, strings.TrimSpace(match[2])
}

// cleanItemName trims punctuation, drops closing list phrases and collapses whitespace
func cleanItemName(candidate string) string {
	name := trimTrailingPunctuation(candidate)

	words := strings.Fields(name)
	for len(words) > 0 && trailingFillerWords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}

	return trimTrailingPunctuation(strings.Join(words, " "))
}

func trimTrailingPunctuation(s string) string {
	return strings.TrimSpace(strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}
