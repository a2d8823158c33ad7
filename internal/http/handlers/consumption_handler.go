package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
	"wattline/internal/service"
)

// DeviceReader resolves device rows for sensor lookups.
type DeviceReader interface {
	ByID(ctx context.Context, deviceID int64) (*models.Device, error)
}

// ConsumptionHandlers expose per-sensor and per-device estimation endpoints.
type ConsumptionHandlers struct {
	estimator *service.Estimator
	devices   DeviceReader
	logger    *zap.Logger
}

// NewConsumptionHandlers returns handler set.
func NewConsumptionHandlers(estimator *service.Estimator, devices DeviceReader, logger *zap.Logger) *ConsumptionHandlers {
	return &ConsumptionHandlers{estimator: estimator, devices: devices, logger: logger}
}

// Current handles GET /api/consumption/current?sensor_id=N.
func (h *ConsumptionHandlers) Current(w http.ResponseWriter, r *http.Request) {
	sensorID, err := queryInt64(r, "sensor_id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	record, err := h.estimator.Instant(r.Context(), sensorID)
	if err != nil {
		h.logger.Error("failed to estimate current consumption", zap.Int64("sensor_id", sensorID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Range handles GET /api/consumption/range?sensor_id=N|device_id=N&from=&to=.
// A missing window defaults to the trailing day.
func (h *ConsumptionHandlers) Range(w http.ResponseWriter, r *http.Request) {
	sensorID, err := h.resolveSensor(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var record *models.ConsumptionRecord
	if from != nil && to != nil {
		record, err = h.estimator.Range(r.Context(), sensorID, *from, *to)
	} else {
		record, err = h.estimator.RangeDefault(r.Context(), sensorID)
	}
	if err != nil {
		h.logger.Error("failed to estimate range consumption", zap.Int64("sensor_id", sensorID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Series handles GET /api/consumption/series?device_id=N&from=&to=.
func (h *ConsumptionHandlers) Series(w http.ResponseWriter, r *http.Request) {
	deviceID, err := queryInt64(r, "device_id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	from, to, err := requireWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	series, err := h.estimator.Series(r.Context(), deviceID, from, to)
	if err != nil {
		h.logger.Error("failed to build consumption series", zap.Int64("device_id", deviceID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// Metric handles GET /api/metrics?device_id=N&kind=voltage&from=&to=.
func (h *ConsumptionHandlers) Metric(w http.ResponseWriter, r *http.Request) {
	deviceID, err := queryInt64(r, "device_id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	kind, err := models.ParseMetricKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	from, to, err := requireWindow(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	series, err := h.estimator.Metric(r.Context(), deviceID, kind, from, to)
	if err != nil {
		h.logger.Error("failed to build metric series", zap.Int64("device_id", deviceID), zap.String("kind", string(kind)), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (h *ConsumptionHandlers) resolveSensor(r *http.Request) (int64, error) {
	if raw := r.URL.Query().Get("sensor_id"); raw != "" {
		return queryInt64(r, "sensor_id")
	}
	deviceID, err := queryInt64(r, "device_id")
	if err != nil {
		return 0, &models.ValidationError{Field: "sensor_id", Reason: "sensor_id or device_id required"}
	}
	device, err := h.devices.ByID(r.Context(), deviceID)
	if err != nil {
		return 0, err
	}
	return device.SensorID, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &models.ValidationError{Field: name, Reason: "required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &models.ValidationError{Field: name, Reason: "must be numeric"}
	}
	return id, nil
}

func requireWindow(r *http.Request) (time.Time, time.Time, error) {
	from, to, err := parseWindow(r)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, &models.ValidationError{Field: "from", Reason: "both from and to are required"}
	}
	return *from, *to, nil
}
