package remote

import (
	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// Collection names in the document store.
const (
	ItemsCollection = "products"
	LogsCollection  = "logs"
)

// wireItem is the catalog document as stored remotely. Accessories stay in
// their legacy flat-string form here and nowhere else.
type wireItem struct {
	SKU           string  `json:"SKU"`
	Code          string  `json:"Code"`
	Category      string  `json:"Category"`
	Number        string  `json:"Number"`
	Name          string  `json:"Name"`
	ImageFile     string  `json:"ImageFile"`
	Stock         int     `json:"Stock"`
	Location      string  `json:"Location"`
	SN            string  `json:"SN"`
	WarrantyStart *string `json:"WarrantyStart"`
	WarrantyEnd   *string `json:"WarrantyEnd"`
	Accessories   string  `json:"Accessories"`
}

type wireLog struct {
	Time     string       `json:"Time"`
	User     string       `json:"User"`
	Type     model.Action `json:"Type"`
	SKU      string       `json:"SKU"`
	Name     string       `json:"Name"`
	Quantity int          `json:"Quantity"`
	Note     string       `json:"Note"`
}

func toWireItem(item model.CatalogItem) wireItem {
	return wireItem{
		SKU:           item.SKU,
		Code:          item.Code,
		Category:      item.Category,
		Number:        item.Number,
		Name:          item.Name,
		ImageFile:     item.ImageReference,
		Stock:         item.Stock,
		Location:      item.Location,
		SN:            item.SerialNumber,
		WarrantyStart: emptyToNil(item.WarrantyStart),
		WarrantyEnd:   emptyToNil(item.WarrantyEnd),
		Accessories:   fields.FormatAccessories(item.Accessories),
	}
}

func (w wireItem) model() model.CatalogItem {
	return model.CatalogItem{
		SKU:            w.SKU,
		Code:           w.Code,
		Category:       w.Category,
		Number:         w.Number,
		Name:           w.Name,
		ImageReference: w.ImageFile,
		Stock:          w.Stock,
		Location:       w.Location,
		SerialNumber:   w.SN,
		WarrantyStart:  emptyToNil(w.WarrantyStart),
		WarrantyEnd:    emptyToNil(w.WarrantyEnd),
		Accessories:    fields.ParseAccessories(w.Accessories),
	}
}

func toWireLog(e model.LogEntry) wireLog {
	return wireLog{
		Time:     e.Timestamp,
		User:     e.Actor,
		Type:     e.Action,
		SKU:      e.SKU,
		Name:     e.Name,
		Quantity: e.Quantity,
		Note:     e.Note,
	}
}

func (w wireLog) model() model.LogEntry {
	return model.LogEntry{
		Timestamp: w.Time,
		Actor:     w.User,
		Action:    w.Type,
		SKU:       w.SKU,
		Name:      w.Name,
		Quantity:  w.Quantity,
		Note:      w.Note,
	}
}

// emptyToNil collapses "" to nil; older documents store untracked warranty
// dates as empty strings.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
