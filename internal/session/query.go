package session

import (
	"strings"

	"github.com/keapril/webinventory/internal/model"
)

// Filter returns the items matching query and location. The query is matched
// case-insensitively against SKU, name and serial number; an empty location
// matches every site.
func Filter(items []model.CatalogItem, query, location string) []model.CatalogItem {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []model.CatalogItem
	for _, item := range items {
		if location != "" && item.Location != location {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.SKU), query) &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.SerialNumber), query) {
			continue
		}
		out = append(out, item)
	}
	return out
}
