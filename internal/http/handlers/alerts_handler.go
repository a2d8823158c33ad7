package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"wattline/internal/http/middleware"
	"wattline/internal/models"
	"wattline/internal/service"
)

// AlertsHandlers expose the alert log to the authenticated user.
type AlertsHandlers struct {
	alerts *service.AlertEngine
	logger *zap.Logger
}

// NewAlertsHandlers returns handler set.
func NewAlertsHandlers(alerts *service.AlertEngine, logger *zap.Logger) *AlertsHandlers {
	return &AlertsHandlers{alerts: alerts, logger: logger}
}

// List handles GET /api/me/alerts?filter=all|system|consumption&limit=&offset=.
func (h *AlertsHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	class := models.AlertClass(r.URL.Query().Get("filter"))
	limit := queryIntDefault(r, "limit", 10)
	offset := queryIntDefault(r, "offset", 0)

	alerts, err := h.alerts.ListAlerts(r.Context(), userID, class, limit, offset)
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	unread, err := h.alerts.HasUnread(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to check unread alerts", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":     alerts,
		"has_unread": unread,
	})
}

// MarkAllRead handles POST /api/me/alerts/read.
func (h *AlertsHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.alerts.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("failed to mark alerts read", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type markReadInput struct {
	AlertID int64 `json:"alert_id"`
}

// MarkRead handles POST /api/alerts/read.
func (h *AlertsHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	var input markReadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.alerts.MarkRead(r.Context(), input.AlertID); err != nil {
		h.logger.Error("failed to mark alert read", zap.Int64("alert_id", input.AlertID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryIntDefault(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
