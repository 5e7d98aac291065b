package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
	"github.com/keapril/webinventory/internal/session"
	webembed "github.com/keapril/webinventory/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"actionClass": func(a model.Action) string {
			switch a {
			case model.ActionInbound:
				return "tag-in"
			case model.ActionOutbound:
				return "tag-out"
			case model.ActionDeleted:
				return "tag-del"
			default:
				return "tag-neutral"
			}
		},
		"warrantyClass": func(s fields.WarrantyStatus) string {
			switch s {
			case fields.WarrantyExpired:
				return "tag-out"
			case fields.WarrantyExpiringSoon:
				return "tag-warn"
			default:
				return "tag-neutral"
			}
		},
		"warrantyLabel": func(w fields.WarrantyInfo) string {
			switch w.Status {
			case fields.WarrantyExpired:
				return "已過期 " + w.Display() + " 天"
			case fields.WarrantyExpiringSoon:
				return "剩 " + w.Display() + " 天"
			}
			if !w.Tracked {
				return w.Display()
			}
			return "剩 " + w.Display() + " 天"
		},
		"accessories": fields.FormatAccessories,
		"fromOperator": func(m assistant.Message) bool {
			return m.Role == assistant.RoleOperator
		},
		"stateName": session.StateName,
	}
}

var pages = []string{
	"overview.html",
	"maintenance.html",
	"stock.html",
	"logs.html",
	"warranty.html",
	"assistant.html",
	"data.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layout, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		body, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}
		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(body)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}
	return ts, nil
}

// Render renders a page with the given status code.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Nav     string
	Error   string
	Success string
}
