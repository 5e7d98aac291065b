package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// MoveStock books qty units in or out of sku. Outbound movements that would
// leave negative stock are rejected with ErrInsufficientStock.
func (c *Controller) MoveStock(ctx context.Context, sku string, action model.Action, qty int, note string) (model.CatalogItem, error) {
	if !action.IsStockMovement() {
		return model.CatalogItem{}, fmt.Errorf("moving stock: %q is not a stock movement", action)
	}
	if qty < 1 {
		return model.CatalogItem{}, &ValidationError{Fields: []string{"quantity"}}
	}
	item, ok := c.Item(sku)
	if !ok {
		return model.CatalogItem{}, fmt.Errorf("moving stock of %s: %w", sku, ErrUnknownSKU)
	}

	next := item.Stock + qty
	if action == model.ActionOutbound {
		next = item.Stock - qty
	}
	if next < 0 {
		return model.CatalogItem{}, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, sku, item.Stock)
	}
	item.Stock = next

	if err := c.write(ctx, item, c.entry(action, item, qty, note)); err != nil {
		return model.CatalogItem{}, err
	}
	slog.Info("stock moved", "sku", sku, "action", action, "quantity", qty, "stock", next)

	c.Load(ctx)
	return item, nil
}

// Delete removes sku from the store and logs the deletion.
func (c *Controller) Delete(ctx context.Context, sku string) error {
	item, ok := c.Item(sku)
	if !ok {
		return fmt.Errorf("deleting %s: %w", sku, ErrUnknownSKU)
	}
	if err := c.store.DeleteItem(ctx, sku); err != nil {
		slog.Warn("failed to delete item", "sku", sku, "error", err)
		return fmt.Errorf("deleting %s: %w", sku, err)
	}
	if err := c.store.AppendLog(ctx, c.entry(model.ActionDeleted, item, item.Stock, "刪除品項")); err != nil {
		slog.Warn("item deleted without log entry", "sku", sku, "error", err)
		return fmt.Errorf("logging deletion of %s: %w", sku, err)
	}
	slog.Info("item deleted", "sku", sku)

	c.mu.Lock()
	if e, ok := c.state.(Editing); ok && e.Item.SKU == sku {
		c.state = Browsing{}
		c.form = NewForm()
	}
	c.mu.Unlock()

	c.Load(ctx)
	return nil
}

// Purge deletes the whole catalog from the store. The log is kept. It
// returns the number of items that were cached before the purge.
func (c *Controller) Purge(ctx context.Context) (int, error) {
	n := len(c.Items())
	if err := c.store.DeleteAllItems(ctx); err != nil {
		slog.Warn("failed to purge catalog", "error", err)
		return 0, fmt.Errorf("purging catalog: %w", err)
	}
	slog.Info("catalog purged", "items", n)

	c.mu.Lock()
	c.state = Browsing{}
	c.form = NewForm()
	c.mu.Unlock()

	c.Load(ctx)
	return n, nil
}

// Import upserts every row with a usable SKU, logging each as created or
// modified. The SKU is derived from the segments when they are present. It
// stops at the first failed write and returns how many rows were written.
func (c *Controller) Import(ctx context.Context, items []model.CatalogItem) (int, error) {
	written := 0
	for _, row := range items {
		item, ok := importedSKU(row)
		if !ok {
			continue
		}
		if item.Location == "" {
			item.Location = model.DefaultLocation()
		}

		action := model.ActionCreated
		if _, exists := c.Item(item.SKU); exists {
			action = model.ActionModified
		}
		if err := c.write(ctx, item, c.entry(action, item, item.Stock, "匯入")); err != nil {
			c.Load(ctx)
			return written, err
		}
		written++
	}
	slog.Info("catalog imported", "rows", len(items), "written", written)

	c.Load(ctx)
	return written, nil
}

// importedSKU normalises the segments of a spreadsheet row and derives its
// SKU from them. Rows without all three segments fall back to the SKU
// column, which is split back into segments when it has three parts.
func importedSKU(item model.CatalogItem) (model.CatalogItem, bool) {
	code := fields.NormalizeSegment(strings.TrimSpace(item.Code))
	category := fields.NormalizeSegment(strings.TrimSpace(item.Category))
	number := fields.NormalizeSegment(strings.TrimSpace(item.Number))

	if code == "" || category == "" || number == "" {
		sku := fields.NormalizeSegment(strings.TrimSpace(item.SKU))
		if sku == "" {
			return item, false
		}
		parts := strings.Split(sku, "-")
		if len(parts) != 3 || slices.Contains(parts, "") {
			item.SKU = sku
			return item, true
		}
		code, category, number = parts[0], parts[1], parts[2]
	}

	item.Code, item.Category, item.Number = code, category, number
	item.SKU = fields.SKU(code, category, number)
	return item, true
}
