package web

import (
	"net/http"
	"strings"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/model"
	"github.com/keapril/webinventory/internal/session"
)

// ItemView is a catalog item with its display fields resolved.
type ItemView struct {
	model.CatalogItem
	ImageURL string
	Warranty fields.WarrantyInfo
	Low      bool
}

func (s *Server) itemViews(items []model.CatalogItem) []ItemView {
	now := s.Session.Now()
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{
			CatalogItem: item,
			ImageURL:    fields.ResolveImageURL(s.ImageHost, item.ImageReference),
			Warranty:    fields.Warranty(item.WarrantyEnd, now),
			Low:         item.LowStock(),
		})
	}
	return views
}

type overviewData struct {
	PageData
	Items      []ItemView
	Query      string
	Location   string
	Locations  []string
	TotalItems int
	TotalStock int
	LowCount   int
	AlertCount int
}

// OverviewPage handles GET /.
func (s *Server) OverviewPage(w http.ResponseWriter, r *http.Request) {
	s.renderOverview(w, r, http.StatusOK, "")
}

func (s *Server) renderOverview(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	all := s.Session.Items()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	location := r.URL.Query().Get("location")

	data := overviewData{
		PageData:   pageData(r, "庫存總覽", "overview"),
		Items:      s.itemViews(session.Filter(all, query, location)),
		Query:      query,
		Location:   location,
		Locations:  model.Locations,
		TotalItems: len(all),
		AlertCount: len(s.Session.WarrantyAlerts()),
	}
	data.Error = errMsg
	for _, item := range all {
		data.TotalStock += item.Stock
		if item.LowStock() {
			data.LowCount++
		}
	}
	s.Templates.Render(w, status, "overview.html", &data)
}

// ItemEditSubmit handles POST /items/edit.
func (s *Server) ItemEditSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.BeginEdit(r.FormValue("sku")); err != nil {
		msg, status := userError(err)
		s.renderOverview(w, r, status, msg)
		return
	}
	redirect(w, r, "/maintenance", "")
}

// ItemDeleteSubmit handles POST /items/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	sku := r.FormValue("sku")
	if err := s.Session.Delete(r.Context(), sku); err != nil {
		msg, status := userError(err)
		s.renderOverview(w, r, status, msg)
		return
	}
	redirect(w, r, "/", "已刪除 "+sku)
}

// ItemImageSubmit handles POST /items/image.
func (s *Server) ItemImageSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderOverview(w, r, http.StatusBadRequest, "圖片檔案過大或格式錯誤")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.renderOverview(w, r, http.StatusBadRequest, "請選擇圖片")
		return
	}
	defer file.Close()

	sku := r.FormValue("sku")
	if _, err := s.Session.AttachImage(r.Context(), sku, file); err != nil {
		msg, status := userError(err)
		s.renderOverview(w, r, status, msg)
		return
	}
	redirect(w, r, "/", "圖片已更新 "+sku)
}
