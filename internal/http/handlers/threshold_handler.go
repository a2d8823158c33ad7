package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"wattline/internal/models"
	"wattline/internal/service"
)

// ThresholdHandlers expose threshold config and device provisioning.
type ThresholdHandlers struct {
	thresholds *service.ThresholdService
	alerts     *service.AlertEngine
	logger     *zap.Logger
}

// NewThresholdHandlers returns handler set.
func NewThresholdHandlers(thresholds *service.ThresholdService, alerts *service.AlertEngine, logger *zap.Logger) *ThresholdHandlers {
	return &ThresholdHandlers{thresholds: thresholds, alerts: alerts, logger: logger}
}

// Get handles GET /api/devices/threshold?device_id=N.
func (h *ThresholdHandlers) Get(w http.ResponseWriter, r *http.Request) {
	deviceID, err := queryInt64(r, "device_id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cfg, err := h.thresholds.ForDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("failed to read threshold config", zap.Int64("device_id", deviceID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type thresholdInput struct {
	DeviceID     *int64  `json:"device_id,omitempty"`
	UserID       *int64  `json:"user_id,omitempty"`
	Minimum      float64 `json:"minimum"`
	Maximum      float64 `json:"maximum"`
	AlertTypeKey string  `json:"alert_type_key"`
	Message      *string `json:"message,omitempty"`
}

// Set handles PUT /api/devices/threshold. Bounds are kWh per sample. With no
// device_id the config applies user-wide, the fallback tier below
// device-specific rows.
func (h *ThresholdHandlers) Set(w http.ResponseWriter, r *http.Request) {
	var input thresholdInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	cfg := &models.ThresholdConfig{
		UserID:          input.UserID,
		DeviceID:        input.DeviceID,
		MinKWhPerSample: input.Minimum,
		MaxKWhPerSample: input.Maximum,
		AlertTypeKey:    input.AlertTypeKey,
		Message:         input.Message,
	}
	if err := h.thresholds.Set(r.Context(), cfg); err != nil {
		h.logger.Error("failed to upsert threshold config",
			zap.Int64p("device_id", input.DeviceID),
			zap.Int64p("user_id", input.UserID),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type provisionInput struct {
	DeviceID int64 `json:"device_id"`
	TypeID   int64 `json:"type_id"`
}

// Provision handles PUT /api/devices/type: changes the device type and
// records the system alert atomically. The new type's rated wattage bounds
// seed the device's threshold config; a seeding failure does not undo the
// type change.
func (h *ThresholdHandlers) Provision(w http.ResponseWriter, r *http.Request) {
	var input provisionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	device, newType, err := h.alerts.ProvisionDeviceType(r.Context(), input.DeviceID, input.TypeID)
	if err != nil {
		h.logger.Error("failed to provision device type",
			zap.Int64("device_id", input.DeviceID),
			zap.Int64("type_id", input.TypeID),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	if newType.MaxPowerW > 0 {
		if err := h.thresholds.SetFromWatts(r.Context(), device.ID, device.OwnerUserID, newType.MinPowerW, newType.MaxPowerW); err != nil {
			h.logger.Warn("failed to seed threshold from device type",
				zap.Int64("device_id", device.ID),
				zap.Error(err),
			)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
