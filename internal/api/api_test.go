package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keapril/webinventory/internal/db"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, strings.TrimSpace(string(data))
}

func TestEmptyCollectionIsNull(t *testing.T) {
	server := setupTestServer(t)

	status, body := doRequest(t, "GET", server.URL+"/products.json", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body != "null" {
		t.Errorf("expected null, got %q", body)
	}
}

func TestPutThenListCollection(t *testing.T) {
	server := setupTestServer(t)

	status, body := doRequest(t, "PUT", server.URL+"/products/EQ-NC-001.json", `{"SKU":"EQ-NC-001","Stock":5}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if body != `{"SKU":"EQ-NC-001","Stock":5}` {
		t.Errorf("PUT should echo the document, got %s", body)
	}

	doRequest(t, "PUT", server.URL+"/products/EQ-NC-001.json", `{"SKU":"EQ-NC-001","Stock":7}`)

	_, body = doRequest(t, "GET", server.URL+"/products.json", "")
	var docs map[string]map[string]any
	if err := json.Unmarshal([]byte(body), &docs); err != nil {
		t.Fatalf("decoding collection: %v (%s)", err, body)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after two PUTs, got %d", len(docs))
	}
	if docs["EQ-NC-001"]["Stock"] != float64(7) {
		t.Errorf("expected replaced stock 7, got %v", docs["EQ-NC-001"]["Stock"])
	}

	_, body = doRequest(t, "GET", server.URL+"/products/EQ-NC-001.json", "")
	if body != `{"SKU":"EQ-NC-001","Stock":7}` {
		t.Errorf("unexpected single document %s", body)
	}
}

func TestPushAssignsKeysInOrder(t *testing.T) {
	server := setupTestServer(t)

	var names []string
	for _, note := range []string{"first", "second", "third"} {
		status, body := doRequest(t, "POST", server.URL+"/logs.json", `{"Note":"`+note+`"}`)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		var resp map[string]string
		json.Unmarshal([]byte(body), &resp)
		if resp["name"] == "" {
			t.Fatalf("expected generated name, got %s", body)
		}
		names = append(names, resp["name"])
	}

	_, body := doRequest(t, "GET", server.URL+"/logs.json", "")
	first := strings.Index(body, names[0])
	second := strings.Index(body, names[1])
	third := strings.Index(body, names[2])
	if first < 0 || !(first < second && second < third) {
		t.Errorf("expected documents in append order, got %s", body)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	server := setupTestServer(t)

	doRequest(t, "PUT", server.URL+"/products/A.json", `{"SKU":"A"}`)
	doRequest(t, "PUT", server.URL+"/products/B.json", `{"SKU":"B"}`)

	status, body := doRequest(t, "DELETE", server.URL+"/products/A.json", "")
	if status != http.StatusOK || body != "null" {
		t.Fatalf("DELETE document: %d %s", status, body)
	}
	_, body = doRequest(t, "GET", server.URL+"/products/A.json", "")
	if body != "null" {
		t.Errorf("expected deleted document to read as null, got %s", body)
	}

	doRequest(t, "DELETE", server.URL+"/products.json", "")
	_, body = doRequest(t, "GET", server.URL+"/products.json", "")
	if body != "null" {
		t.Errorf("expected empty collection after delete, got %s", body)
	}
}

func TestRejectsBadRequests(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		method, path, body string
		expected           int
	}{
		{"GET", "/products", "", http.StatusNotFound},
		{"PUT", "/products/A", `{}`, http.StatusNotFound},
		{"PUT", "/products/A.json", `{bad`, http.StatusBadRequest},
		{"PUT", "/products/A.json", `[1,2]`, http.StatusBadRequest},
		{"POST", "/logs.json", `"text"`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		status, _ := doRequest(t, tt.method, server.URL+tt.path, tt.body)
		if status != tt.expected {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.expected, status)
		}
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x.json", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("short and stout")) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
