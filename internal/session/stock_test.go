package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/keapril/webinventory/internal/model"
)

func loadedController(t *testing.T) (*Controller, *fakeStore) {
	t.Helper()
	store := newFakeStore(model.SeedItems()...)
	c := newController(t, store)
	c.Load(context.Background())
	return c, store
}

func TestMoveStock(t *testing.T) {
	tests := []struct {
		name      string
		action    model.Action
		qty       int
		wantStock int
		wantErr   error
	}{
		{"inbound", model.ActionInbound, 3, 8, nil},
		{"outbound", model.ActionOutbound, 5, 0, nil},
		{"outbound too many", model.ActionOutbound, 6, 5, ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := loadedController(t)

			_, err := c.MoveStock(context.Background(), "EQ-NC-001", tt.action, tt.qty, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			item, _ := c.Item("EQ-NC-001")
			if item.Stock != tt.wantStock {
				t.Errorf("expected stock %d, got %d", tt.wantStock, item.Stock)
			}
			if tt.wantErr != nil {
				if len(store.writes()) != 0 {
					t.Errorf("expected no writes, got %v", store.writes())
				}
				return
			}
			newest := c.Logs()[0]
			if newest.Action != tt.action || newest.Quantity != tt.qty {
				t.Errorf("unexpected log %+v", newest)
			}
		})
	}
}

func TestMoveStockRejects(t *testing.T) {
	c, _ := loadedController(t)
	ctx := context.Background()

	if _, err := c.MoveStock(ctx, "EQ-NC-001", model.ActionCreated, 1, ""); err == nil {
		t.Error("expected error for non-movement action")
	}
	var verr *ValidationError
	if _, err := c.MoveStock(ctx, "EQ-NC-001", model.ActionInbound, 0, ""); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for zero quantity, got %v", err)
	}
	if _, err := c.MoveStock(ctx, "XX-YY-999", model.ActionInbound, 1, ""); !errors.Is(err, ErrUnknownSKU) {
		t.Errorf("expected ErrUnknownSKU, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c, store := loadedController(t)
	c.BeginEdit("CS-PP-002")

	if err := c.Delete(context.Background(), "CS-PP-002"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Item("CS-PP-002"); ok {
		t.Error("expected item gone")
	}
	if _, ok := c.State().(Browsing); !ok {
		t.Errorf("expected editing of the deleted item to end, got %T", c.State())
	}
	newest := c.Logs()[0]
	if newest.Action != model.ActionDeleted || newest.SKU != "CS-PP-002" || newest.Quantity != 200 {
		t.Errorf("unexpected log %+v", newest)
	}
	if w := store.writes(); !slices.Equal(w, []string{"delete", "append"}) {
		t.Errorf("unexpected writes %v", w)
	}
}

func TestPurgeKeepsLogs(t *testing.T) {
	c, store := loadedController(t)
	store.logs = model.SeedLogs()

	n, err := c.Purge(context.Background())
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}
	if len(c.Items()) != 0 {
		t.Errorf("expected empty catalog")
	}
	if len(c.Logs()) != 1 {
		t.Errorf("expected logs kept, got %d", len(c.Logs()))
	}
}

func TestImport(t *testing.T) {
	c, store := loadedController(t)

	rows := []model.CatalogItem{
		{SKU: "CS-PP-002", Name: "5ml 移液管", Stock: 10, Location: "中辦"},
		{Code: "ab", Category: "cd", Number: "7", Name: "derived"},
		{Name: "no sku at all"},
	}
	n, err := c.Import(context.Background(), rows)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows written, got %d", n)
	}

	item, ok := c.Item("AB-CD-7")
	if !ok {
		t.Fatal("expected derived SKU AB-CD-7")
	}
	if item.Location != model.DefaultLocation() {
		t.Errorf("expected default location, got %q", item.Location)
	}

	var actions []model.Action
	for _, e := range store.logs {
		actions = append(actions, e.Action)
	}
	if !slices.Equal(actions, []model.Action{model.ActionModified, model.ActionCreated}) {
		t.Errorf("unexpected actions %v", actions)
	}
}

func TestImportDerivesSKUFromSegments(t *testing.T) {
	tests := []struct {
		name string
		row  model.CatalogItem
		sku  string
		code string
	}{
		{"segments win over sku column", model.CatalogItem{SKU: "eq-nc-001", Code: "EQ", Category: "NC", Number: "002"}, "EQ-NC-002", "EQ"},
		{"lower-case segments", model.CatalogItem{Code: "eq", Category: "nc", Number: "001"}, "EQ-NC-001", "EQ"},
		{"sku column only", model.CatalogItem{SKU: "eq-nc-001"}, "EQ-NC-001", "EQ"},
		{"full-width sku column", model.CatalogItem{SKU: "ｅｑ-ｎｃ-００９"}, "EQ-NC-009", "EQ"},
		{"free-form sku column", model.CatalogItem{SKU: "legacy.1"}, "LEGACY.1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := loadedController(t)
			tt.row.Name = "imported"

			if _, err := c.Import(context.Background(), []model.CatalogItem{tt.row}); err != nil {
				t.Fatalf("Import: %v", err)
			}
			got, ok := store.items[tt.sku]
			if !ok {
				t.Fatalf("expected document %s, have %v", tt.sku, slices.Collect(maps.Keys(store.items)))
			}
			if got.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, got.Code)
			}
			if _, ok := store.items[tt.row.SKU]; ok && tt.row.SKU != tt.sku {
				t.Errorf("raw sku %s should not be stored", tt.row.SKU)
			}
		})
	}
}

func TestImportReplacesExistingItemRegardlessOfCase(t *testing.T) {
	c, store := loadedController(t)
	before := len(store.items)

	rows := []model.CatalogItem{{SKU: "eq-nc-001", Name: "Oscilloscope", Stock: 3}}
	if _, err := c.Import(context.Background(), rows); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(store.items) != before {
		t.Errorf("expected %d documents, got %d", before, len(store.items))
	}
	if got := store.items["EQ-NC-001"]; got.Stock != 3 {
		t.Errorf("expected EQ-NC-001 replaced, got %+v", got)
	}
	if store.logs[len(store.logs)-1].Action != model.ActionModified {
		t.Errorf("expected modified log, got %s", store.logs[len(store.logs)-1].Action)
	}
}

type fakeUploader struct {
	sku  string
	size int
}

func (u *fakeUploader) Upload(ctx context.Context, sku string, data []byte) (string, error) {
	u.sku, u.size = sku, len(data)
	return "https://img.example.com/images/" + sku + ".jpg", nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAttachImageUploads(t *testing.T) {
	store := newFakeStore(model.SeedItems()...)
	up := &fakeUploader{}
	c := New(store, WithUploader(up))
	c.Load(context.Background())

	item, err := c.AttachImage(context.Background(), "CS-PP-002", bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("AttachImage: %v", err)
	}
	if up.sku != "CS-PP-002" || up.size == 0 {
		t.Errorf("uploader not called as expected: %+v", up)
	}
	if item.ImageReference != "https://img.example.com/images/CS-PP-002.jpg" {
		t.Errorf("unexpected reference %s", item.ImageReference)
	}
	if got, _ := c.Item("CS-PP-002"); got.ImageReference != item.ImageReference {
		t.Error("expected reload to show the new image")
	}
}

func TestAttachImageInlineWithoutUploader(t *testing.T) {
	c, _ := loadedController(t)

	item, err := c.AttachImage(context.Background(), "CS-PP-002", bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("AttachImage: %v", err)
	}
	if !strings.HasPrefix(item.ImageReference, "data:image/jpeg;base64,") {
		t.Errorf("expected inline data URL, got %.40s", item.ImageReference)
	}
}

func TestAttachImageRejectsBadData(t *testing.T) {
	c, store := loadedController(t)
	if _, err := c.AttachImage(context.Background(), "CS-PP-002", strings.NewReader("plain text")); err == nil {
		t.Error("expected error")
	}
	if len(store.writes()) != 0 {
		t.Error("expected no writes")
	}
}

func TestFilter(t *testing.T) {
	items := model.SeedItems()
	tests := []struct {
		query, location string
		want            []string
	}{
		{"", "", []string{"EQ-NC-001", "CS-PP-002"}},
		{"eq-nc", "", []string{"EQ-NC-001"}},
		{"移液管", "", []string{"CS-PP-002"}},
		{"sn-a123", "", []string{"EQ-NC-001"}},
		{"", "中辦", []string{"CS-PP-002"}},
		{"示波器", "中辦", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, item := range Filter(items, tt.query, tt.location) {
			got = append(got, item.SKU)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Filter(%q, %q) = %v, want %v", tt.query, tt.location, got, tt.want)
		}
	}
}

func TestWarrantyAlertsUsesClock(t *testing.T) {
	c, _ := loadedController(t)
	alerts := c.WarrantyAlerts()
	if len(alerts) != 1 || alerts[0].Item.SKU != "EQ-NC-001" {
		t.Fatalf("expected the seed oscilloscope to be flagged, got %+v", alerts)
	}
}
