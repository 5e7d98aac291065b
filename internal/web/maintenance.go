package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/imaging"
	"github.com/keapril/webinventory/internal/model"
	"github.com/keapril/webinventory/internal/session"
)

const maxUploadBytes = imaging.MaxInputBytes + 1<<20

type maintenanceData struct {
	PageData
	Form      session.Form
	SKU       string
	State     session.State
	EditSKU   string
	Locations []string
	ImageURL  string
}

// MaintenancePage handles GET /maintenance. Opening it while browsing starts
// a new item.
func (s *Server) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.Session.State().(session.Browsing); ok {
		s.Session.BeginCreate()
	}
	s.renderMaintenance(w, r, http.StatusOK, "")
}

// MaintenanceNew handles POST /maintenance/new, discarding any edit.
func (s *Server) MaintenanceNew(w http.ResponseWriter, r *http.Request) {
	s.Session.BeginCreate()
	redirect(w, r, "/maintenance", "")
}

// MaintenanceSubmit handles POST /maintenance. The action field selects
// between saving, cancelling and editing the accessory list.
func (s *Server) MaintenanceSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderMaintenance(w, r, http.StatusBadRequest, "表單過大或格式錯誤")
		return
	}

	if r.FormValue("action") == "cancel" {
		s.Session.Cancel()
		redirect(w, r, "/", "")
		return
	}

	form := formFromRequest(r)
	if err := s.Session.UpdateForm(form); errors.Is(err, session.ErrNotEditing) {
		s.Session.BeginCreate()
		s.Session.UpdateForm(form)
	}

	if idx := r.FormValue("remove"); idx != "" {
		i, _ := strconv.Atoi(idx)
		s.Session.RemoveAccessory(i)
		s.renderMaintenance(w, r, http.StatusOK, "")
		return
	}

	switch r.FormValue("action") {
	case "add_accessory":
		qty, _ := strconv.Atoi(r.FormValue("new_accessory_qty"))
		if err := s.Session.AddAccessory(r.FormValue("new_accessory_name"), qty); err != nil {
			msg, status := userError(err)
			s.renderMaintenance(w, r, status, msg)
			return
		}
		s.renderMaintenance(w, r, http.StatusOK, "")
	case "preview":
		s.renderMaintenance(w, r, http.StatusOK, "")
	default:
		s.saveMaintenance(w, r, form)
	}
}

// saveMaintenance validates the form before a photo is stored, so a
// rejected form never reaches the bucket or the document store.
func (s *Server) saveMaintenance(w http.ResponseWriter, r *http.Request, form session.Form) {
	if err := form.Validate(); err != nil {
		msg, status := userError(err)
		s.renderMaintenance(w, r, status, msg)
		return
	}

	if err := s.attachUpload(r, &form); err != nil {
		slog.Warn("failed to store form image", "error", err)
		s.renderMaintenance(w, r, http.StatusBadRequest, "圖片處理失敗："+err.Error())
		return
	}
	if err := s.Session.UpdateForm(form); err != nil {
		msg, status := userError(err)
		s.renderMaintenance(w, r, status, msg)
		return
	}

	item, err := s.Session.Submit(r.Context())
	if err != nil {
		msg, status := userError(err)
		s.renderMaintenance(w, r, status, msg)
		return
	}
	redirect(w, r, "/", "已儲存 "+item.SKU)
}

// SKUPreview handles GET /maintenance/sku, returning the SKU for the given
// segments as plain text.
func (s *Server) SKUPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, fields.SKU(
		strings.TrimSpace(q.Get("code")),
		strings.TrimSpace(q.Get("category")),
		strings.TrimSpace(q.Get("number")),
	))
}

func (s *Server) renderMaintenance(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	state := s.Session.State()
	form := s.Session.Form()
	data := maintenanceData{
		PageData:  pageData(r, "資料維護", "maintenance"),
		Form:      form,
		SKU:       form.SKU(),
		State:     state,
		Locations: model.Locations,
		ImageURL:  fields.ResolveImageURL(s.ImageHost, form.ImageReference),
	}
	if e, ok := state.(session.Editing); ok {
		data.Title = "編輯品項"
		data.EditSKU = e.Item.SKU
	}
	data.Error = errMsg
	s.Templates.Render(w, status, "maintenance.html", &data)
}

// attachUpload stores an uploaded photo, if any, and points the form at it.
func (s *Server) attachUpload(r *http.Request, form *session.Form) error {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()
	if header.Size == 0 {
		return nil
	}

	ref, err := s.Session.StoreImage(r.Context(), form.SKU(), file)
	if err != nil {
		return err
	}
	form.ImageReference = ref
	return nil
}

// formFromRequest reads the maintenance form fields. Accessories arrive as
// parallel accessory_name and accessory_qty lists.
func formFromRequest(r *http.Request) session.Form {
	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock")))
	if err != nil {
		stock = -1
	}
	f := session.Form{
		Code:           r.FormValue("code"),
		Category:       r.FormValue("category"),
		Number:         r.FormValue("number"),
		Name:           r.FormValue("name"),
		SerialNumber:   r.FormValue("serial_number"),
		Location:       r.FormValue("location"),
		Stock:          stock,
		HasWarranty:    r.FormValue("has_warranty") == "on",
		WarrantyStart:  r.FormValue("warranty_start"),
		WarrantyEnd:    r.FormValue("warranty_end"),
		ImageReference: r.FormValue("image_reference"),
	}

	names, qtys := r.Form["accessory_name"], r.Form["accessory_qty"]
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		qty := 1
		if i < len(qtys) {
			if n, err := strconv.Atoi(qtys[i]); err == nil && n > 0 {
				qty = n
			}
		}
		f.Accessories = append(f.Accessories, model.Accessory{Name: name, Quantity: qty})
	}
	return f
}
