package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wattline/internal/http/middleware"
	"wattline/internal/service"
)

// UserConsumptionHandlers expose the aggregated views scoped to the
// authenticated user.
type UserConsumptionHandlers struct {
	aggregator *service.Aggregator
	logger     *zap.Logger
}

// NewUserConsumptionHandlers returns handler set.
func NewUserConsumptionHandlers(aggregator *service.Aggregator, logger *zap.Logger) *UserConsumptionHandlers {
	return &UserConsumptionHandlers{aggregator: aggregator, logger: logger}
}

// Aggregate handles GET /api/me/consumption with an optional from/to window.
func (h *UserConsumptionHandlers) Aggregate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	agg, err := h.aggregator.AggregateForUser(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("failed to aggregate user consumption", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// Summary handles GET /api/me/consumption/summary.
func (h *UserConsumptionHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.aggregator.RangeSummary(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to build range summary", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Detail handles GET /api/me/consumption/detail with an optional zoom window.
func (h *UserConsumptionHandlers) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	detail, err := h.aggregator.RangeDetail(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("failed to build range detail", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Report handles GET /api/me/report?from=&to=.
func (h *UserConsumptionHandlers) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	from, to, err := requireWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := h.aggregator.Report(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("failed to build report", zap.Int64("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
