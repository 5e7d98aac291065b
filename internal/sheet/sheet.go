// Package sheet reads and writes the catalog as an xlsx workbook, one item
// per row under a header row.
package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// SheetName is the worksheet Export writes.
const SheetName = "Inventory"

// Columns is the header row, in order.
var Columns = []string{
	"SKU", "Code", "Category", "Number", "Name", "ImageFile",
	"Stock", "Location", "SN", "WarrantyStart", "WarrantyEnd", "Accessories",
}

var columnWidths = []float64{16, 8, 10, 8, 28, 40, 8, 10, 16, 14, 14, 36}

// Export writes items to w as an xlsx workbook.
func Export(w io.Writer, items []model.CatalogItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	for i, name := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, name)
		f.SetCellStyle(SheetName, cell, cell, header)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, col, col, columnWidths[i])
	}

	for r, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		row := []any{
			item.SKU, item.Code, item.Category, item.Number, item.Name, item.ImageReference,
			item.Stock, item.Location, item.SerialNumber,
			deref(item.WarrantyStart), deref(item.WarrantyEnd),
			fields.FormatAccessories(item.Accessories),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", r+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Import reads items from the first worksheet of an xlsx workbook. Columns
// are matched by header name, case-insensitively, and may appear in any
// order; unknown columns are ignored. Blank rows are skipped.
func Import(r io.Reader) ([]model.CatalogItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["sku"]; !ok {
		if _, ok := index["code"]; !ok {
			return nil, fmt.Errorf("header row needs a SKU or Code column")
		}
	}

	var items []model.CatalogItem
	for _, row := range rows[1:] {
		get := func(name string) string {
			i, ok := index[strings.ToLower(name)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		item := model.CatalogItem{
			SKU:            get("SKU"),
			Code:           get("Code"),
			Category:       get("Category"),
			Number:         get("Number"),
			Name:           get("Name"),
			ImageReference: get("ImageFile"),
			Stock:          parseStock(get("Stock")),
			Location:       get("Location"),
			SerialNumber:   get("SN"),
			Accessories:    fields.ParseAccessories(get("Accessories")),
		}
		start, end := parseDate(get("WarrantyStart")), parseDate(get("WarrantyEnd"))
		if start != nil && end != nil {
			item.WarrantyStart, item.WarrantyEnd = start, end
		}
		items = append(items, item)
	}
	return items, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseStock accepts integers and whole floats such as "5.0"; anything else,
// including negative values, reads as zero.
func parseStock(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == math.Trunc(f) {
		return int(f)
	}
	return 0
}

var dateLayouts = []string{fields.DateLayout, "2006/01/02", "2006/1/2", "01-02-06", "2006-01-02 15:04:05"}

func parseDate(s string) *string {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v := t.Format(fields.DateLayout)
			return &v
		}
	}
	return nil
}
