package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/keapril/webinventory/internal/sheet"
)

type dataPageData struct {
	PageData
	Items int
	Logs  int
}

// DataPage handles GET /data.
func (s *Server) DataPage(w http.ResponseWriter, r *http.Request) {
	s.renderData(w, r, http.StatusOK, "")
}

func (s *Server) renderData(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	data := dataPageData{
		PageData: pageData(r, "資料工具", "data"),
		Items:    len(s.Session.Items()),
		Logs:     len(s.Session.Logs()),
	}
	data.Error = errMsg
	s.Templates.Render(w, status, "data.html", &data)
}

// ExportSheet handles GET /export.xlsx.
func (s *Server) ExportSheet(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("inventory-%s.xlsx", s.Session.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := sheet.Export(w, s.Session.Items()); err != nil {
		slog.Error("failed to export catalog", "error", err)
	}
}

// ImportSubmit handles POST /import with an xlsx upload.
func (s *Server) ImportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderData(w, r, http.StatusBadRequest, "檔案過大或格式錯誤")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.renderData(w, r, http.StatusBadRequest, "請選擇 xlsx 檔案")
		return
	}
	defer file.Close()

	items, err := sheet.Import(file)
	if err != nil {
		slog.Warn("failed to read import file", "error", err)
		s.renderData(w, r, http.StatusBadRequest, "無法讀取檔案："+err.Error())
		return
	}
	n, err := s.Session.Import(r.Context(), items)
	if err != nil {
		msg, status := userError(err)
		s.renderData(w, r, status, fmt.Sprintf("已匯入 %d 筆後中斷：%s", n, msg))
		return
	}
	redirect(w, r, "/data", "匯入完成，共 "+strconv.Itoa(n)+" 筆")
}

// ReloadSubmit handles POST /reload.
func (s *Server) ReloadSubmit(w http.ResponseWriter, r *http.Request) {
	s.Session.Load(r.Context())
	redirect(w, r, "/", "已重新載入")
}

// ResetSubmit handles POST /reset. Only the local view is reset.
func (s *Server) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	s.Session.Reset()
	redirect(w, r, "/", "已還原為初始資料")
}

// PurgeSubmit handles POST /purge, which deletes the whole remote catalog.
func (s *Server) PurgeSubmit(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.renderData(w, r, http.StatusBadRequest, "請勾選確認後再清空資料庫")
		return
	}
	n, err := s.Session.Purge(r.Context())
	if err != nil {
		msg, status := userError(err)
		s.renderData(w, r, status, msg)
		return
	}
	redirect(w, r, "/data", "已刪除 "+strconv.Itoa(n)+" 筆")
}
