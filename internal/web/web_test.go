package web

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/keapril/webinventory/internal/api"
	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/db"
	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/remote"
	"github.com/keapril/webinventory/internal/session"
)

// setupTestServer wires the pages to a real session backed by the SQLite
// document store.
func setupTestServer(t *testing.T, opts ...session.Option) (http.Handler, *session.Controller) {
	t.Helper()
	store := httptest.NewServer(api.NewRouter(db.NewTestDB(t)))
	t.Cleanup(store.Close)

	sess := session.New(remote.New(store.URL), opts...)
	bridge := assistant.NewBridge(nil, assistant.WithNoCredentialDelay(time.Millisecond))

	handler, err := NewRouter(sess, bridge, fields.DefaultImageHost)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return handler, sess
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// postWithPhoto sends form as multipart with a small PNG in the image field.
func postWithPhoto(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range form {
		for _, v := range vs {
			mw.WriteField(k, v)
		}
	}
	fw, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	if err := png.Encode(fw, img); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type countingUploader struct {
	skus []string
}

func (u *countingUploader) Upload(ctx context.Context, sku string, data []byte) (string, error) {
	u.skus = append(u.skus, sku)
	return "https://img.example.com/" + sku + ".jpg", nil
}

func TestOverviewShowsSeed(t *testing.T) {
	h, _ := setupTestServer(t)

	w := get(t, h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "EQ-NC-001") || !strings.Contains(body, "CS-PP-002") {
		t.Error("expected seed items on the overview")
	}
	if !strings.Contains(body, "電源線x1, 探頭x2") {
		t.Error("expected accessories listed")
	}
}

func TestOverviewFilters(t *testing.T) {
	h, _ := setupTestServer(t)

	body := get(t, h, "/?location="+url.QueryEscape("中辦")).Body.String()
	if strings.Contains(body, "<div class=\"sku\">EQ-NC-001</div>") || !strings.Contains(body, "CS-PP-002") {
		t.Error("expected only the 中辦 item")
	}
}

func TestCreateItemFlow(t *testing.T) {
	h, sess := setupTestServer(t)
	sess.Load(context.Background())

	if w := get(t, h, "/maintenance"); w.Code != http.StatusOK {
		t.Fatalf("maintenance page: %d", w.Code)
	}
	if _, ok := sess.State().(session.Creating); !ok {
		t.Fatalf("expected Creating after opening maintenance, got %T", sess.State())
	}

	w := post(t, h, "/maintenance", url.Values{
		"action":         {"save"},
		"code":           {"EQ"},
		"category":       {"NC"},
		"number":         {"001"},
		"name":           {"Oscilloscope"},
		"location":       {"北辦"},
		"stock":          {"5"},
		"accessory_name": {"probe", ""},
		"accessory_qty":  {"2", ""},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/?ok=") {
		t.Errorf("unexpected redirect %s", loc)
	}

	items := sess.Items()
	if len(items) != 1 || items[0].SKU != "EQ-NC-001" || items[0].Stock != 5 {
		t.Fatalf("unexpected catalog %+v", items)
	}
	if len(items[0].Accessories) != 1 || items[0].Accessories[0].Quantity != 2 {
		t.Errorf("unexpected accessories %v", items[0].Accessories)
	}

	logs := get(t, h, "/logs").Body.String()
	if !strings.Contains(logs, "新增") || !strings.Contains(logs, "EQ-NC-001") {
		t.Error("expected created log entry on the log page")
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	h, sess := setupTestServer(t)
	sess.BeginCreate()

	w := post(t, h, "/maintenance", url.Values{
		"action": {"save"}, "code": {"EQ"}, "category": {"NC"}, "number": {"001"}, "stock": {"5"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "名稱") {
		t.Error("expected the missing field to be named")
	}
	if _, ok := sess.State().(session.Creating); !ok {
		t.Errorf("expected to stay in Creating, got %T", sess.State())
	}
}

func TestRejectedFormStoresNoPhoto(t *testing.T) {
	up := &countingUploader{}
	h, sess := setupTestServer(t, session.WithUploader(up))
	sess.BeginCreate()

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"save without name", url.Values{"action": {"save"}, "code": {"EQ"}, "category": {"NC"}, "number": {"001"}, "stock": {"1"}}, http.StatusBadRequest},
		{"save with nothing", url.Values{"action": {"save"}, "stock": {"1"}}, http.StatusBadRequest},
		{"preview", url.Values{"action": {"preview"}, "code": {"EQ"}, "name": {"x"}, "stock": {"1"}}, http.StatusOK},
		{"add accessory", url.Values{"action": {"add_accessory"}, "new_accessory_name": {"探頭"}, "stock": {"1"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWithPhoto(t, h, "/maintenance", tt.form)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
	if len(up.skus) != 0 {
		t.Errorf("expected no uploads, got %v", up.skus)
	}
	if len(sess.Items()) != 2 {
		t.Errorf("expected the seed catalog untouched, got %d items", len(sess.Items()))
	}
}

func TestSavedFormStoresPhoto(t *testing.T) {
	up := &countingUploader{}
	h, sess := setupTestServer(t, session.WithUploader(up))
	sess.BeginCreate()

	w := postWithPhoto(t, h, "/maintenance", url.Values{
		"action": {"save"}, "code": {"eq"}, "category": {"nc"}, "number": {"009"}, "name": {"Probe kit"}, "stock": {"2"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if len(up.skus) != 1 || up.skus[0] != "EQ-NC-009" {
		t.Fatalf("expected one upload for EQ-NC-009, got %v", up.skus)
	}
	item, ok := sess.Item("EQ-NC-009")
	if !ok {
		t.Fatal("expected saved item")
	}
	if item.ImageReference != "https://img.example.com/EQ-NC-009.jpg" {
		t.Errorf("unexpected image reference %q", item.ImageReference)
	}
}

func TestAccessoryButtons(t *testing.T) {
	h, sess := setupTestServer(t)
	sess.BeginCreate()

	base := url.Values{"code": {"A"}, "category": {"B"}, "number": {"1"}, "stock": {"1"}}
	add := url.Values{"action": {"add_accessory"}, "new_accessory_name": {"cable"}, "new_accessory_qty": {"3"}}
	for k, v := range base {
		add[k] = v
	}
	if w := post(t, h, "/maintenance", add); w.Code != http.StatusOK {
		t.Fatalf("add accessory: %d", w.Code)
	}
	if acc := sess.Form().Accessories; len(acc) != 1 || acc[0].Name != "cable" || acc[0].Quantity != 3 {
		t.Fatalf("unexpected accessories %v", acc)
	}

	remove := url.Values{"remove": {"0"}, "accessory_name": {"cable"}, "accessory_qty": {"3"}}
	for k, v := range base {
		remove[k] = v
	}
	if w := post(t, h, "/maintenance", remove); w.Code != http.StatusOK {
		t.Fatalf("remove accessory: %d", w.Code)
	}
	if acc := sess.Form().Accessories; len(acc) != 0 {
		t.Errorf("expected accessory removed, got %v", acc)
	}
}

func TestEditAndCancel(t *testing.T) {
	h, sess := setupTestServer(t)

	w := post(t, h, "/items/edit", url.Values{"sku": {"EQ-NC-001"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	page := get(t, h, "/maintenance").Body.String()
	if !strings.Contains(page, "正在修改：EQ-NC-001") {
		t.Error("expected edit banner")
	}

	post(t, h, "/maintenance", url.Values{"action": {"cancel"}})
	if _, ok := sess.State().(session.Browsing); !ok {
		t.Errorf("expected Browsing after cancel, got %T", sess.State())
	}

	if w := post(t, h, "/items/edit", url.Values{"sku": {"NOPE"}}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown SKU, got %d", w.Code)
	}
}

func TestSKUPreview(t *testing.T) {
	h, _ := setupTestServer(t)

	tests := map[string]string{
		"/maintenance/sku":                              fields.PreviewSKU,
		"/maintenance/sku?code=eq":                      "EQ-??-??",
		"/maintenance/sku?code=eq&category=nc&number=1": "EQ-NC-1",
	}
	for path, want := range tests {
		if got := get(t, h, path).Body.String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestStockMovement(t *testing.T) {
	h, sess := setupTestServer(t)
	ctx := context.Background()
	sess.BeginCreate()
	post(t, h, "/maintenance", url.Values{
		"action": {"save"}, "code": {"CS"}, "category": {"PP"}, "number": {"002"},
		"name": {"Pipette"}, "stock": {"3"},
	})

	w := post(t, h, "/stock", url.Values{"sku": {"CS-PP-002"}, "direction": {"out"}, "quantity": {"5"}})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	w = post(t, h, "/stock", url.Values{"sku": {"CS-PP-002"}, "direction": {"in"}, "quantity": {"4"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	sess.Load(ctx)
	item, _ := sess.Item("CS-PP-002")
	if item.Stock != 7 {
		t.Errorf("expected stock 7, got %d", item.Stock)
	}
}

func TestAssistantWithoutCredential(t *testing.T) {
	h, _ := setupTestServer(t)

	w := post(t, h, "/assistant", url.Values{"question": {"還有幾台示波器？"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	page := get(t, h, "/assistant").Body.String()
	if !strings.Contains(page, assistant.NoCredentialMessage) {
		t.Error("expected the no-credential reply in the transcript")
	}

	if w := post(t, h, "/assistant", url.Values{"question": {" "}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank question, got %d", w.Code)
	}
}

func TestDataTools(t *testing.T) {
	h, sess := setupTestServer(t)

	w := get(t, h, "/export.xlsx")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("unexpected export response %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Body.Len() == 0 {
		t.Error("expected workbook bytes")
	}

	if w := post(t, h, "/purge", url.Values{}); w.Code != http.StatusBadRequest {
		t.Errorf("expected purge without confirmation to be refused, got %d", w.Code)
	}

	sess.Load(context.Background())
	if w := post(t, h, "/reset", url.Values{}); w.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", w.Code)
	}
	if len(sess.Items()) != 2 {
		t.Errorf("expected seed after reset, got %d items", len(sess.Items()))
	}
}

func TestWarrantyPage(t *testing.T) {
	h, _ := setupTestServer(t)
	body := get(t, h, "/warranty").Body.String()
	if !strings.Contains(body, "EQ-NC-001") || !strings.Contains(body, "已過期") {
		t.Error("expected the expired seed warranty listed")
	}
}

func TestCrossOriginPostRejected(t *testing.T) {
	h, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
