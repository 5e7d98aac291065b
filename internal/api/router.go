// Package api serves the JSON document store over HTTP.
package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the document store router with all endpoints registered.
func NewRouter(db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	docs := &DocumentsHandler{DB: db}

	// Collections.
	mux.HandleFunc("GET /{collection}", docs.ListCollection)
	mux.HandleFunc("POST /{collection}", docs.Push)
	mux.HandleFunc("DELETE /{collection}", docs.DeleteCollection)

	// Single documents.
	mux.HandleFunc("GET /{collection}/{key}", docs.Get)
	mux.HandleFunc("PUT /{collection}/{key}", docs.Put)
	mux.HandleFunc("DELETE /{collection}/{key}", docs.Delete)

	return mux
}
