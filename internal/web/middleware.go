package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/keapril/webinventory/internal/session"
)

// Protect rejects cross-origin form posts and keeps pages out of caches.
// There are no user accounts, so a forged POST would act as the operator.
func Protect(next http.Handler) http.Handler {
	cop := http.NewCrossOriginProtection()
	return cop.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	}))
}

// redirect sends the browser to path with an optional success notice.
func redirect(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		path += "?ok=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// pageData builds the common page fields, picking up a notice left by
// redirect.
func pageData(r *http.Request, title, nav string) PageData {
	return PageData{Title: title, Nav: nav, Success: r.URL.Query().Get("ok")}
}

var fieldLabels = map[string]string{
	"code":           "代碼",
	"category":       "類別",
	"number":         "編號",
	"name":           "名稱",
	"stock":          "庫存",
	"warranty_start": "保固起",
	"warranty_end":   "保固迄",
	"accessory_name": "配件名稱",
	"quantity":       "數量",
}

// userError turns an operation error into a notice and a status code.
func userError(err error) (string, int) {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "請確認以下欄位："
		for i, f := range verr.Fields {
			if i > 0 {
				msg += "、"
			}
			if label, ok := fieldLabels[f]; ok {
				msg += label
			} else {
				msg += f
			}
		}
		return msg, http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownSKU):
		return "SKU 不存在", http.StatusNotFound
	case errors.Is(err, session.ErrInsufficientStock):
		return "庫存不足", http.StatusConflict
	case errors.Is(err, session.ErrNotEditing):
		return "目前沒有正在編輯的品項", http.StatusConflict
	}
	slog.Warn("operation failed", "error", err)
	return "操作失敗，請稍後再試", http.StatusBadGateway
}
