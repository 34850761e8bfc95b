package print

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/invoice"
	"github.com/noah-isme/backend-billing/internal/settings"
)

// Handler renders stored invoices for printing.
type Handler struct {
	Invoices *invoice.Service
	Settings *settings.Service
}

// Invoice handles GET /api/v1/invoices/{id}/print. The response format
// follows the account's printer settings: plain text for thermal
// printers, PDF for laser.
func (h Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	if h.Invoices == nil || h.Settings == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "print handler not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}

	snap, err := h.Invoices.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	company, err := h.Settings.Company(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	prefs, err := h.Settings.Printer(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	contentType, data, err := Render(Document{Company: company, Settings: prefs, Invoice: snap})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
