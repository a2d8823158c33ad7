package service

import (
	"context"

	"wattline/internal/models"
)

// ThresholdWriter persists device-level threshold configuration.
type ThresholdWriter interface {
	ByDevice(ctx context.Context, deviceID int64) (*models.ThresholdConfig, error)
	Upsert(ctx context.Context, cfg *models.ThresholdConfig) error
}

// ThresholdService exposes read/upsert access to consumption bounds. Bounds
// are stored in kWh per sample; SetFromWatts converts watt bounds coming
// from device-type defaults at write time so evaluation never mixes units.
type ThresholdService struct {
	store    ThresholdWriter
	interval Interval
}

// NewThresholdService returns service instance.
func NewThresholdService(store ThresholdWriter, interval Interval) *ThresholdService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &ThresholdService{store: store, interval: interval}
}

// ForDevice returns the stored config, or the built-in default when none
// exists.
func (s *ThresholdService) ForDevice(ctx context.Context, deviceID int64) (*models.ThresholdConfig, error) {
	cfg, err := s.store.ByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		def := models.DefaultThresholdConfig()
		def.DeviceID = &deviceID
		return &def, nil
	}
	return cfg, nil
}

// Set validates and upserts a config with bounds already in kWh per sample:
// device-scoped when DeviceID is set, user-wide otherwise.
func (s *ThresholdService) Set(ctx context.Context, cfg *models.ThresholdConfig) error {
	if cfg.DeviceID == nil && cfg.UserID == nil {
		return &models.ValidationError{Field: "device_id", Reason: "device id or user id required"}
	}
	if cfg.MinKWhPerSample < 0 {
		return &models.ValidationError{Field: "minimum", Reason: "must not be negative"}
	}
	if cfg.MaxKWhPerSample <= cfg.MinKWhPerSample {
		return &models.ValidationError{Field: "maximum", Reason: "must be greater than minimum"}
	}
	if cfg.AlertTypeKey == "" {
		cfg.AlertTypeKey = models.DefaultAlertTypeKey
	}
	return s.store.Upsert(ctx, cfg)
}

// SetFromWatts converts device-type watt bounds into kWh per sample and
// upserts them. Used when provisioning seeds a config from the type's rated
// bounds.
func (s *ThresholdService) SetFromWatts(ctx context.Context, deviceID int64, userID int64, minW, maxW float64) error {
	cfg := &models.ThresholdConfig{
		UserID:          &userID,
		DeviceID:        &deviceID,
		MinKWhPerSample: s.interval.EnergyKWh(minW),
		MaxKWhPerSample: s.interval.EnergyKWh(maxW),
		AlertTypeKey:    models.DefaultAlertTypeKey,
	}
	return s.Set(ctx, cfg)
}
