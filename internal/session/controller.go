// Package session holds the operator's view of the catalog: the cached items
// and log, the edit mode, and the form buffer. Every write goes to the remote
// store and is followed by a full reload.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// Store is the remote document store. *remote.Client implements it.
type Store interface {
	FetchAllItems(ctx context.Context) ([]model.CatalogItem, error)
	FetchAllLogs(ctx context.Context) ([]model.LogEntry, error)
	UpsertItem(ctx context.Context, item model.CatalogItem) error
	AppendLog(ctx context.Context, entry model.LogEntry) error
	DeleteItem(ctx context.Context, sku string) error
	DeleteAllItems(ctx context.Context) error
}

// ImageUploader stores a processed JPEG and returns its public reference.
type ImageUploader interface {
	Upload(ctx context.Context, sku string, data []byte) (string, error)
}

// Controller is safe for concurrent use. The lock is never held across a
// store call; the last reload to finish wins.
type Controller struct {
	store    Store
	uploader ImageUploader
	now      func() time.Time
	loc      *time.Location

	mu    sync.Mutex
	items []model.CatalogItem
	logs  []model.LogEntry
	state State
	form  Form
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source for log timestamps and warranty checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLocation sets the zone log timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// WithUploader sets where item photos are stored. Without one, photos are
// kept inline as data URLs.
func WithUploader(u ImageUploader) Option {
	return func(c *Controller) { c.uploader = u }
}

// New creates a controller showing the seed catalog until Load is called.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		now:   time.Now,
		loc:   time.Local,
		items: model.SeedItems(),
		logs:  model.SeedLogs(),
		state: Browsing{},
		form:  NewForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the cached catalog and log with the store's contents. A
// failed read is logged and shows up as an empty list.
func (c *Controller) Load(ctx context.Context) {
	items, err := c.store.FetchAllItems(ctx)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		items = []model.CatalogItem{}
	}
	logs, err := c.store.FetchAllLogs(ctx)
	if err != nil {
		slog.Error("failed to load logs", "error", err)
		logs = []model.LogEntry{}
	}

	c.mu.Lock()
	c.items = items
	c.logs = logs
	c.mu.Unlock()
}

// Items returns a copy of the cached catalog.
func (c *Controller) Items() []model.CatalogItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Logs returns a copy of the cached log, newest first.
func (c *Controller) Logs() []model.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.logs)
}

// Item looks up one cached item.
func (c *Controller) Item(sku string) (model.CatalogItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(sku)
}

// State returns the current edit mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Form returns a copy of the edit buffer.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	f.Accessories = slices.Clone(f.Accessories)
	return f
}

// Now returns the current time in the controller's zone.
func (c *Controller) Now() time.Time {
	return c.now().In(c.loc)
}

// BeginCreate switches to Creating with a default form.
func (c *Controller) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Creating{}
	c.form = NewForm()
}

// BeginEdit switches to Editing with the form filled from sku.
func (c *Controller) BeginEdit(sku string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.findLocked(sku)
	if !ok {
		return fmt.Errorf("editing %s: %w", sku, ErrUnknownSKU)
	}
	c.state = Editing{Item: item}
	c.form = FormFromItem(item)
	return nil
}

// UpdateForm replaces the edit buffer.
func (c *Controller) UpdateForm(f Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editingLocked() {
		return ErrNotEditing
	}
	f.Accessories = slices.Clone(f.Accessories)
	c.form = f
	return nil
}

// AddAccessory appends an accessory to the form. A quantity below one is
// stored as one.
func (c *Controller) AddAccessory(name string, qty int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Fields: []string{"accessory_name"}}
	}
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editingLocked() {
		return ErrNotEditing
	}
	c.form.Accessories = append(c.form.Accessories, model.Accessory{Name: name, Quantity: qty})
	return nil
}

// RemoveAccessory drops the accessory at index i. Out-of-range indexes are
// ignored.
func (c *Controller) RemoveAccessory(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editingLocked() {
		return ErrNotEditing
	}
	if i >= 0 && i < len(c.form.Accessories) {
		c.form.Accessories = slices.Delete(c.form.Accessories, i, i+1)
	}
	return nil
}

// PreviewSKU returns the SKU the form would be saved under.
func (c *Controller) PreviewSKU() string {
	return c.Form().SKU()
}

// Submit validates the form, writes the item and its log entry, returns to
// Browsing and reloads. Validation failures make no store calls. A failed
// write leaves the session unchanged.
func (c *Controller) Submit(ctx context.Context) (model.CatalogItem, error) {
	c.mu.Lock()
	if !c.editingLocked() {
		c.mu.Unlock()
		return model.CatalogItem{}, ErrNotEditing
	}
	form := c.form
	c.mu.Unlock()

	if err := form.Validate(); err != nil {
		return model.CatalogItem{}, err
	}
	item := form.Item()

	action, note := model.ActionCreated, "建立品項"
	if _, exists := c.Item(item.SKU); exists {
		action, note = model.ActionModified, "更新品項"
	}

	if err := c.write(ctx, item, c.entry(action, item, item.Stock, note)); err != nil {
		return model.CatalogItem{}, err
	}
	slog.Info("item saved", "sku", item.SKU, "action", action)

	c.mu.Lock()
	c.state = Browsing{}
	c.form = NewForm()
	c.mu.Unlock()

	c.Load(ctx)
	return item, nil
}

// Cancel discards the edit buffer and returns to Browsing.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Browsing{}
	c.form = NewForm()
}

// Reset restores the seed catalog and log locally. Nothing is deleted from
// the store; the next Load brings its data back.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = model.SeedItems()
	c.logs = model.SeedLogs()
	c.state = Browsing{}
	c.form = NewForm()
}

// WarrantyAlerts lists cached items whose warranty has expired or ends soon.
func (c *Controller) WarrantyAlerts() []fields.WarrantyAlert {
	return fields.WarrantyAlerts(c.Items(), c.Now())
}

// write upserts item and then appends entry. The two requests are not
// atomic: if the append fails the item stays written.
func (c *Controller) write(ctx context.Context, item model.CatalogItem, entry model.LogEntry) error {
	if err := c.store.UpsertItem(ctx, item); err != nil {
		slog.Warn("failed to save item", "sku", item.SKU, "error", err)
		return fmt.Errorf("saving %s: %w", item.SKU, err)
	}
	if err := c.store.AppendLog(ctx, entry); err != nil {
		slog.Warn("item saved without log entry", "sku", item.SKU, "action", entry.Action, "error", err)
		return fmt.Errorf("logging %s for %s: %w", entry.Action, item.SKU, err)
	}
	return nil
}

func (c *Controller) entry(action model.Action, item model.CatalogItem, qty int, note string) model.LogEntry {
	return model.LogEntry{
		Timestamp: c.Now().Format(model.TimestampLayout),
		Actor:     model.DefaultActor,
		Action:    action,
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  qty,
		Note:      note,
	}
}

func (c *Controller) editingLocked() bool {
	switch c.state.(type) {
	case Creating, Editing:
		return true
	}
	return false
}

func (c *Controller) findLocked(sku string) (model.CatalogItem, bool) {
	for _, item := range c.items {
		if item.SKU == sku {
			return cloneItem(item), true
		}
	}
	return model.CatalogItem{}, false
}

func cloneItems(items []model.CatalogItem) []model.CatalogItem {
	out := make([]model.CatalogItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func cloneItem(item model.CatalogItem) model.CatalogItem {
	item.Accessories = slices.Clone(item.Accessories)
	return item
}
