package model

// CatalogItem is one stocked piece of equipment or consumable, keyed by SKU.
type CatalogItem struct {
	SKU            string      `json:"sku"`
	Code           string      `json:"code"`
	Category       string      `json:"category"`
	Number         string      `json:"number"`
	Name           string      `json:"name"`
	ImageReference string      `json:"image_reference,omitempty"`
	Stock          int         `json:"stock"`
	Location       string      `json:"location"`
	SerialNumber   string      `json:"serial_number,omitempty"`
	WarrantyStart  *string     `json:"warranty_start,omitempty"`
	WarrantyEnd    *string     `json:"warranty_end,omitempty"`
	Accessories    []Accessory `json:"accessories,omitempty"`
}

// Accessory is a bundled part shipped with an item.
type Accessory struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// HasWarranty reports whether warranty dates are tracked for the item.
func (c CatalogItem) HasWarranty() bool {
	return c.WarrantyEnd != nil
}

// LowStockThreshold is the stock level at or below which an item is flagged.
const LowStockThreshold = 5

// LowStock reports whether the item should be flagged as running out.
func (c CatalogItem) LowStock() bool {
	return c.Stock <= LowStockThreshold
}
