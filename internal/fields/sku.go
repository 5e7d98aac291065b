// Package fields computes the values derived from what the operator types:
// SKUs, warranty status, the accessory string encoding and image URLs.
package fields

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// PreviewSKU is shown while all three SKU segments are still empty.
const PreviewSKU = "SKU-PREVIEW-000"

// MissingSegment stands in for an empty SKU segment.
const MissingSegment = "??"

// SKU assembles CODE-CATEGORY-NUMBER. Full-width characters typed through an
// IME are folded to their ASCII forms before upper-casing.
func SKU(code, category, number string) string {
	if code == "" && category == "" && number == "" {
		return PreviewSKU
	}
	segs := []string{code, category, number}
	for i, s := range segs {
		if s == "" {
			segs[i] = MissingSegment
			continue
		}
		segs[i] = NormalizeSegment(s)
	}
	return strings.Join(segs, "-")
}

// NormalizeSegment folds width and upper-cases a single SKU segment.
func NormalizeSegment(s string) string {
	return cases.Upper(language.Und).String(width.Fold.String(s))
}

// StoreKey converts a SKU into a key that is safe to use as a path segment
// in the document store, which reserves '/' and '.'.
func StoreKey(sku string) string {
	return strings.NewReplacer("/", "_", ".", "_").Replace(sku)
}
