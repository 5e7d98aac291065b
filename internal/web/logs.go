package web

import (
	"net/http"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
)

type logsData struct {
	PageData
	Logs    []model.LogEntry
	Action  model.Action
	Actions []model.Action
}

// LogsPage handles GET /logs, newest first, optionally filtered by action.
func (s *Server) LogsPage(w http.ResponseWriter, r *http.Request) {
	action := model.Action(r.URL.Query().Get("action"))
	logs := s.Session.Logs()
	if action.Valid() {
		filtered := logs[:0]
		for _, e := range logs {
			if e.Action == action {
				filtered = append(filtered, e)
			}
		}
		logs = filtered
	} else {
		action = ""
	}

	s.Templates.Render(w, http.StatusOK, "logs.html", &logsData{
		PageData: pageData(r, "異動紀錄", "logs"),
		Logs:     logs,
		Action:   action,
		Actions:  model.Actions,
	})
}

type warrantyData struct {
	PageData
	Alerts []fields.WarrantyAlert
	Window int
}

// WarrantyPage handles GET /warranty.
func (s *Server) WarrantyPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "warranty.html", &warrantyData{
		PageData: pageData(r, "保固管理", "warranty"),
		Alerts:   s.Session.WarrantyAlerts(),
		Window:   fields.ExpiringWindowDays,
	})
}
