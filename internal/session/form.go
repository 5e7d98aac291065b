package session

import (
	"slices"
	"strings"
	"time"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// Form is the flat edit buffer behind the maintenance page.
type Form struct {
	Code           string
	Category       string
	Number         string
	Name           string
	SerialNumber   string
	Location       string
	Stock          int
	HasWarranty    bool
	WarrantyStart  string
	WarrantyEnd    string
	Accessories    []model.Accessory
	ImageReference string
}

// NewForm returns the defaults for a new item.
func NewForm() Form {
	return Form{
		Location: model.DefaultLocation(),
		Stock:    1,
	}
}

// FormFromItem fills a form from an existing item.
func FormFromItem(item model.CatalogItem) Form {
	f := Form{
		Code:           item.Code,
		Category:       item.Category,
		Number:         item.Number,
		Name:           item.Name,
		SerialNumber:   item.SerialNumber,
		Location:       item.Location,
		Stock:          item.Stock,
		HasWarranty:    item.HasWarranty(),
		Accessories:    slices.Clone(item.Accessories),
		ImageReference: item.ImageReference,
	}
	if item.WarrantyStart != nil {
		f.WarrantyStart = *item.WarrantyStart
	}
	if item.WarrantyEnd != nil {
		f.WarrantyEnd = *item.WarrantyEnd
	}
	return f
}

// SKU returns the live SKU preview for the current segments.
func (f Form) SKU() string {
	return fields.SKU(strings.TrimSpace(f.Code), strings.TrimSpace(f.Category), strings.TrimSpace(f.Number))
}

// Validate checks required fields and value ranges.
func (f Form) Validate() error {
	var bad []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"code", f.Code},
		{"category", f.Category},
		{"number", f.Number},
		{"name", f.Name},
	} {
		if strings.TrimSpace(field.value) == "" {
			bad = append(bad, field.name)
		}
	}
	if f.Stock < 0 {
		bad = append(bad, "stock")
	}
	if f.HasWarranty {
		if !validDate(f.WarrantyStart) {
			bad = append(bad, "warranty_start")
		}
		if !validDate(f.WarrantyEnd) {
			bad = append(bad, "warranty_end")
		}
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// Item builds the catalog item the form describes. Call Validate first.
func (f Form) Item() model.CatalogItem {
	item := model.CatalogItem{
		SKU:            f.SKU(),
		Code:           fields.NormalizeSegment(strings.TrimSpace(f.Code)),
		Category:       fields.NormalizeSegment(strings.TrimSpace(f.Category)),
		Number:         fields.NormalizeSegment(strings.TrimSpace(f.Number)),
		Name:           strings.TrimSpace(f.Name),
		ImageReference: strings.TrimSpace(f.ImageReference),
		Stock:          f.Stock,
		Location:       f.Location,
		SerialNumber:   strings.TrimSpace(f.SerialNumber),
		Accessories:    slices.Clone(f.Accessories),
	}
	if item.Location == "" {
		item.Location = model.DefaultLocation()
	}
	if f.HasWarranty {
		start, end := f.WarrantyStart, f.WarrantyEnd
		item.WarrantyStart = &start
		item.WarrantyEnd = &end
	}
	return item
}

func validDate(s string) bool {
	_, err := time.Parse(fields.DateLayout, s)
	return err == nil
}
