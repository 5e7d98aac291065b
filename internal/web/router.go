// Package web serves the operator pages: overview, maintenance form, stock
// movements, logs, warranty alerts, the assistant and data tools.
package web

import (
	"net/http"

	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/session"
	webembed "github.com/keapril/webinventory/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	Session   *session.Controller
	Assistant *assistant.Bridge
	Templates *Templates
	ImageHost string
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(sess *session.Controller, bridge *assistant.Bridge, imageHost string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Session:   sess,
		Assistant: bridge,
		Templates: templates,
		ImageHost: imageHost,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.OverviewPage)

	mux.HandleFunc("GET /maintenance", s.MaintenancePage)
	mux.HandleFunc("POST /maintenance", s.MaintenanceSubmit)
	mux.HandleFunc("POST /maintenance/new", s.MaintenanceNew)
	mux.HandleFunc("GET /maintenance/sku", s.SKUPreview)

	mux.HandleFunc("POST /items/edit", s.ItemEditSubmit)
	mux.HandleFunc("POST /items/delete", s.ItemDeleteSubmit)
	mux.HandleFunc("POST /items/image", s.ItemImageSubmit)

	mux.HandleFunc("GET /stock", s.StockPage)
	mux.HandleFunc("POST /stock", s.StockSubmit)

	mux.HandleFunc("GET /logs", s.LogsPage)
	mux.HandleFunc("GET /warranty", s.WarrantyPage)

	mux.HandleFunc("GET /assistant", s.AssistantPage)
	mux.HandleFunc("POST /assistant", s.AssistantSubmit)

	mux.HandleFunc("GET /data", s.DataPage)
	mux.HandleFunc("GET /export.xlsx", s.ExportSheet)
	mux.HandleFunc("POST /import", s.ImportSubmit)
	mux.HandleFunc("POST /reload", s.ReloadSubmit)
	mux.HandleFunc("POST /reset", s.ResetSubmit)
	mux.HandleFunc("POST /purge", s.PurgeSubmit)

	return Protect(mux), nil
}
