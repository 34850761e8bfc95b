package report

import (
	"fmt"
	"net/http"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/invoice"
)

// Handler exposes HTTP handlers for reporting endpoints.
type Handler struct {
	Svc *Service
}

// Summary handles GET /api/v1/reports/summary?from=&to=.
func (h Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "report service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	from, to, err := invoice.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from/to must be YYYY-MM-DD dates", nil)
		return
	}
	sum, err := h.Svc.Summary(r.Context(), userID, from, to)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sum})
}

// Export handles GET /api/v1/reports/export?from=&to= and streams CSV.
func (h Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "report service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	from, to, err := invoice.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from/to must be YYYY-MM-DD dates", nil)
		return
	}
	data, err := h.Svc.Export(r.Context(), userID, from, to)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.Svc.ExportFilename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
