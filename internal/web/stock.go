package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/keapril/webinventory/internal/model"
)

type stockData struct {
	PageData
	Items     []model.CatalogItem
	Direction string
	SKU       string
}

// StockPage handles GET /stock.
func (s *Server) StockPage(w http.ResponseWriter, r *http.Request) {
	s.renderStock(w, r, http.StatusOK, "", r.URL.Query().Get("direction"), r.URL.Query().Get("sku"))
}

// StockSubmit handles POST /stock: an inbound or outbound movement by SKU.
func (s *Server) StockSubmit(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimSpace(r.FormValue("sku"))
	direction := r.FormValue("direction")
	qty, _ := strconv.Atoi(r.FormValue("quantity"))

	action := model.ActionInbound
	if direction == "out" {
		action = model.ActionOutbound
	}

	item, err := s.Session.MoveStock(r.Context(), sku, action, qty, strings.TrimSpace(r.FormValue("note")))
	if err != nil {
		msg, status := userError(err)
		s.renderStock(w, r, status, msg, direction, sku)
		return
	}
	redirect(w, r, "/stock", string(action)+"成功："+item.SKU+"，目前庫存 "+strconv.Itoa(item.Stock))
}

func (s *Server) renderStock(w http.ResponseWriter, r *http.Request, status int, errMsg, direction, sku string) {
	if direction != "out" {
		direction = "in"
	}
	data := stockData{
		PageData:  pageData(r, "入庫 / 出庫", "stock"),
		Items:     s.Session.Items(),
		Direction: direction,
		SKU:       sku,
	}
	data.Error = errMsg
	s.Templates.Render(w, status, "stock.html", &data)
}
