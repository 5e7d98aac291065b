package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/keapril/webinventory/internal/store"
)

// DocumentsHandler serves collections and documents addressed as
// /{collection}.json and /{collection}/{key}.json.
type DocumentsHandler struct {
	DB *sql.DB
}

// pathName strips the mandatory .json suffix from a path segment.
func pathName(w http.ResponseWriter, segment string) (string, bool) {
	name, ok := strings.CutSuffix(segment, ".json")
	if !ok || name == "" {
		jsonError(w, http.StatusNotFound, "path must end in .json")
		return "", false
	}
	return name, true
}

// ListCollection handles GET /{collection}.json.
func (h *DocumentsHandler) ListCollection(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathName(w, r.PathValue("collection"))
	if !ok {
		return
	}

	docs, err := store.ListDocuments(r.Context(), h.DB, collection)
	if err != nil {
		slog.Error("failed to list documents", "collection", collection, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if len(docs) == 0 {
		rawResponse(w, http.StatusOK, []byte("null\n"))
		return
	}

	rawResponse(w, http.StatusOK, encodeOrdered(docs))
}

// encodeOrdered writes documents as one JSON object, members in the order
// given. encoding/json would sort map keys instead.
func encodeOrdered(docs []store.Document) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(d.Key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(d.Body)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// Push handles POST /{collection}.json.
func (h *DocumentsHandler) Push(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathName(w, r.PathValue("collection"))
	if !ok {
		return
	}
	body, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	key, err := store.PushDocument(r.Context(), h.DB, collection, body)
	if err != nil {
		slog.Error("failed to push document", "collection", collection, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to push document")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"name": key})
}

// DeleteCollection handles DELETE /{collection}.json.
func (h *DocumentsHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathName(w, r.PathValue("collection"))
	if !ok {
		return
	}

	n, err := store.DeleteCollection(r.Context(), h.DB, collection)
	if err != nil {
		slog.Error("failed to delete collection", "collection", collection, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete collection")
		return
	}

	slog.Info("collection deleted", "collection", collection, "documents", n)
	rawResponse(w, http.StatusOK, []byte("null\n"))
}

// Get handles GET /{collection}/{key}.json.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, ok := pathName(w, r.PathValue("key"))
	if !ok {
		return
	}
	collection := r.PathValue("collection")

	doc, err := store.GetDocument(r.Context(), h.DB, collection, key)
	if err != nil {
		slog.Error("failed to get document", "collection", collection, "key", key, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil {
		rawResponse(w, http.StatusOK, []byte("null\n"))
		return
	}

	rawResponse(w, http.StatusOK, append(doc.Body, '\n'))
}

// Put handles PUT /{collection}/{key}.json. The document is replaced whole.
func (h *DocumentsHandler) Put(w http.ResponseWriter, r *http.Request) {
	key, ok := pathName(w, r.PathValue("key"))
	if !ok {
		return
	}
	collection := r.PathValue("collection")

	body, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	if err := store.PutDocument(r.Context(), h.DB, collection, key, body); err != nil {
		slog.Error("failed to put document", "collection", collection, "key", key, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to put document")
		return
	}

	rawResponse(w, http.StatusOK, append(body, '\n'))
}

// Delete handles DELETE /{collection}/{key}.json.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := pathName(w, r.PathValue("key"))
	if !ok {
		return
	}
	collection := r.PathValue("collection")

	if err := store.DeleteDocument(r.Context(), h.DB, collection, key); err != nil {
		slog.Error("failed to delete document", "collection", collection, "key", key, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	rawResponse(w, http.StatusOK, []byte("null\n"))
}
