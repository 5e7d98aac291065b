// Package remote talks to the JSON document store that owns the catalog and
// the change log. The store is addressed as base/{collection}.json and
// base/{collection}/{key}.json.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

// DefaultBaseURL is the hosted document store used when none is configured.
const DefaultBaseURL = "https://product-system-900c4-default-rtdb.firebaseio.com"

// Client performs single, unretried requests against the document store.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// FetchAllItems returns every catalog item sorted by SKU. The SKU embedded in
// each document is authoritative; the store's own keys are discarded.
func (c *Client) FetchAllItems(ctx context.Context) ([]model.CatalogItem, error) {
	var docs []wireItem
	if err := c.readCollection(ctx, ItemsCollection, func(raw json.RawMessage) error {
		var w wireItem
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		docs = append(docs, w)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}

	items := make([]model.CatalogItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.model())
	}
	slices.SortStableFunc(items, func(a, b model.CatalogItem) int {
		return strings.Compare(a.SKU, b.SKU)
	})
	return items, nil
}

// FetchAllLogs returns the change log newest first. The store returns
// entries in append order, which is reversed here.
func (c *Client) FetchAllLogs(ctx context.Context) ([]model.LogEntry, error) {
	var logs []model.LogEntry
	if err := c.readCollection(ctx, LogsCollection, func(raw json.RawMessage) error {
		var w wireLog
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		logs = append(logs, w.model())
		return nil
	}); err != nil {
		return nil, fmt.Errorf("fetching logs: %w", err)
	}
	slices.Reverse(logs)
	if logs == nil {
		logs = []model.LogEntry{}
	}
	return logs, nil
}

// UpsertItem replaces the whole document for the item's SKU.
func (c *Client) UpsertItem(ctx context.Context, item model.CatalogItem) error {
	body, err := json.Marshal(toWireItem(item))
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	if err := c.do(ctx, http.MethodPut, c.docURL(ItemsCollection, fields.StoreKey(item.SKU)), body, nil); err != nil {
		return fmt.Errorf("upserting item %s: %w", item.SKU, err)
	}
	return nil
}

// AppendLog adds an entry to the log collection. The key assigned by the
// store is not used.
func (c *Client) AppendLog(ctx context.Context, entry model.LogEntry) error {
	body, err := json.Marshal(toWireLog(entry))
	if err != nil {
		return fmt.Errorf("encoding log entry: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, c.collectionURL(LogsCollection), body, nil); err != nil {
		return fmt.Errorf("appending log: %w", err)
	}
	return nil
}

// DeleteItem removes the document for sku.
func (c *Client) DeleteItem(ctx context.Context, sku string) error {
	if err := c.do(ctx, http.MethodDelete, c.docURL(ItemsCollection, fields.StoreKey(sku)), nil, nil); err != nil {
		return fmt.Errorf("deleting item %s: %w", sku, err)
	}
	return nil
}

// DeleteAllItems removes the whole catalog collection. Logs are kept.
func (c *Client) DeleteAllItems(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, c.collectionURL(ItemsCollection), nil, nil); err != nil {
		return fmt.Errorf("deleting catalog: %w", err)
	}
	return nil
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/" + url.PathEscape(collection) + ".json"
}

func (c *Client) docURL(collection, key string) string {
	return c.baseURL + "/" + url.PathEscape(collection) + "/" + url.PathEscape(key) + ".json"
}

// readCollection fetches a collection and calls fn for every value in the
// order the store sent them. A null body is an empty collection.
func (c *Client) readCollection(ctx context.Context, collection string, fn func(json.RawMessage) error) error {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, c.collectionURL(collection), nil, &raw); err != nil {
		return err
	}
	return decodeMapping(raw, fn)
}

// decodeMapping walks a JSON object (or null) without losing member order,
// which a map[string]T would. A document fn rejects is logged and skipped so
// one bad record does not hide the rest of the collection.
func decodeMapping(raw []byte, fn func(json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decoding collection: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decoding collection: expected object, got %v", tok)
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding collection key: %w", err)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding document %v: %w", key, err)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if err := fn(value); err != nil {
			slog.Warn("skipping malformed document", "key", key, "error", err)
			continue
		}
	}
	return nil
}

// do sends one request. When out is non-nil the response body is stored in it.
func (c *Client) do(ctx context.Context, method, u string, body []byte, out *[]byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	slog.Debug("document store request", "method", method, "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: u, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out != nil {
		*out = data
	}
	return nil
}
