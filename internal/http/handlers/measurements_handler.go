package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"wattline/internal/service"
)

// MeasurementsHandler accepts sensor readings over HTTP.
type MeasurementsHandler struct {
	ingestor *service.Ingestor
	logger   *zap.Logger
}

// NewMeasurementsHandler returns handler.
func NewMeasurementsHandler(ingestor *service.Ingestor, logger *zap.Logger) *MeasurementsHandler {
	return &MeasurementsHandler{ingestor: ingestor, logger: logger}
}

// ServeHTTP handles POST /api/measurements.
func (h *MeasurementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var input service.MeasurementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sample, err := h.ingestor.Ingest(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to ingest measurement", zap.String("sensor", input.SensorRef), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "ok", "sample_id": sample.ID})
}
