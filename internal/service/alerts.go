package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wattline/internal/models"
)

// Projected-monthly-consumption bands carried over from the utility's
// residential tariff rules.
const (
	intermediateBandMinKWh = 151
	intermediateBandMaxKWh = 280
	dacRiskKWh             = 250
)

// Rated-wattage bounds that set the level of provisioning alerts.
const (
	provisioningHighW   = 1500
	provisioningMediumW = 600
)

// AlertStore is the alert log the engine writes to and reads from.
type AlertStore interface {
	InsertDeduped(ctx context.Context, a *models.Alert) (bool, error)
	TypeByKey(ctx context.Context, key string) (*models.AlertType, error)
	ListByUser(ctx context.Context, userID int64, class models.AlertClass, limit, offset int) ([]models.Alert, error)
	MarkRead(ctx context.Context, alertID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	HasUnread(ctx context.Context, userID int64) (bool, error)
}

// ThresholdSource resolves configured consumption bounds.
type ThresholdSource interface {
	ByDevice(ctx context.Context, deviceID int64) (*models.ThresholdConfig, error)
	ByUser(ctx context.Context, userID int64) (*models.ThresholdConfig, error)
}

// DeviceSource is the slice of device configuration the engine reads.
type DeviceSource interface {
	ByID(ctx context.Context, deviceID int64) (*models.Device, error)
	BySensor(ctx context.Context, sensorID int64) (*models.Device, error)
	TypeByID(ctx context.Context, typeID int64) (*models.DeviceType, error)
	UpdateTypeWithAlert(ctx context.Context, deviceID, typeID int64, alert *models.Alert) error
}

// AlertEngine evaluates samples against configured bounds and writes
// leveled, same-day-deduplicated alerts.
type AlertEngine struct {
	alerts     AlertStore
	thresholds ThresholdSource
	devices    DeviceSource
	interval   Interval
	logger     *zap.Logger
}

// NewAlertEngine returns service instance.
func NewAlertEngine(alerts AlertStore, thresholds ThresholdSource, devices DeviceSource, interval Interval, logger *zap.Logger) *AlertEngine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &AlertEngine{
		alerts:     alerts,
		thresholds: thresholds,
		devices:    devices,
		interval:   interval,
		logger:     logger,
	}
}

// EvaluateSample checks one sample against the resolved threshold config and
// the monthly consumption bands. Failures are logged and swallowed: alerting
// must never fail the ingestion that triggered it.
func (e *AlertEngine) EvaluateSample(ctx context.Context, sample *models.Sample) {
	device, err := e.devices.BySensor(ctx, sample.SensorID)
	if err != nil {
		if !models.IsNotFound(err) {
			e.logger.Error("failed to resolve device for alert evaluation", zap.Int64("sensor_id", sample.SensorID), zap.Error(err))
		}
		return
	}

	cfg, err := e.resolveThreshold(ctx, device)
	if err != nil {
		e.logger.Error("failed to resolve threshold config", zap.Int64("device_id", device.ID), zap.Error(err))
		return
	}

	energy := e.interval.EnergyKWh(sample.PowerW)
	e.checkBounds(ctx, device, sample, cfg, energy)
	e.checkBands(ctx, device, sample, energy)
}

// resolveThreshold walks device-specific, then user-wide, then built-in
// default configuration.
func (e *AlertEngine) resolveThreshold(ctx context.Context, device *models.Device) (models.ThresholdConfig, error) {
	cfg, err := e.thresholds.ByDevice(ctx, device.ID)
	if err != nil {
		return models.ThresholdConfig{}, err
	}
	if cfg != nil {
		return *cfg, nil
	}

	cfg, err = e.thresholds.ByUser(ctx, device.OwnerUserID)
	if err != nil {
		return models.ThresholdConfig{}, err
	}
	if cfg != nil {
		return *cfg, nil
	}

	return models.DefaultThresholdConfig(), nil
}

func (e *AlertEngine) checkBounds(ctx context.Context, device *models.Device, sample *models.Sample, cfg models.ThresholdConfig, energy float64) {
	var (
		level   models.AlertLevel
		message string
	)
	switch {
	case energy > cfg.MaxKWhPerSample:
		level = models.LevelHigh
		message = fmt.Sprintf("Consumption of %.2f kWh per sample exceeds the configured maximum of %.2f kWh", energy, cfg.MaxKWhPerSample)
	case energy < cfg.MinKWhPerSample:
		level = models.LevelLow
		message = fmt.Sprintf("Consumption of %.2f kWh per sample is below the configured minimum of %.2f kWh", energy, cfg.MinKWhPerSample)
	default:
		return
	}
	if cfg.Message != nil && *cfg.Message != "" {
		message = *cfg.Message
	}

	e.emitLevel(ctx, device, sample, cfg.AlertTypeKey, level, message)
}

// checkBands raises the utility-band alerts derived from the projected
// monthly consumption.
func (e *AlertEngine) checkBands(ctx context.Context, device *models.Device, sample *models.Sample, energy float64) {
	monthlyKWh := energy * e.interval.SamplesPerMonth()

	if monthlyKWh >= intermediateBandMinKWh && monthlyKWh <= intermediateBandMaxKWh {
		message := fmt.Sprintf("Projected monthly consumption of %.2f kWh is in the intermediate band (151-280 kWh)", monthlyKWh)
		e.emitLevel(ctx, device, sample, models.AlertKeyIntermediateBand, models.LevelMedium, message)
	}
	if monthlyKWh > dacRiskKWh {
		message := fmt.Sprintf("Projected monthly consumption of %.2f kWh risks reclassification to the high-consumption tariff", monthlyKWh)
		e.emitLevel(ctx, device, sample, models.AlertKeyDACRisk, models.LevelHigh, message)
	}
}

func (e *AlertEngine) emitLevel(ctx context.Context, device *models.Device, sample *models.Sample, typeKey string, level models.AlertLevel, message string) {
	alertType, err := e.alerts.TypeByKey(ctx, typeKey)
	if err != nil {
		e.logger.Error("failed to resolve alert type", zap.String("key", typeKey), zap.Error(err))
		return
	}

	alert := &models.Alert{
		UserID:      &device.OwnerUserID,
		DeviceID:    &device.ID,
		SensorID:    &sample.SensorID,
		Message:     message,
		Level:       level,
		AlertTypeID: alertType.ID,
	}
	created, err := e.alerts.InsertDeduped(ctx, alert)
	if err != nil {
		e.logger.Error("failed to store alert", zap.Int64("device_id", device.ID), zap.String("key", typeKey), zap.Error(err))
		return
	}
	if created {
		e.logger.Info("alert created",
			zap.Int64("device_id", device.ID),
			zap.String("key", typeKey),
			zap.String("level", string(level)),
		)
	}
}

// ProvisionDeviceType changes a device's type and records the provisioning
// alert atomically. These alerts mark discrete configuration events, so they
// always insert a new row with no same-day dedup. Returns the device and its
// new type so callers can seed threshold bounds from the rated wattage.
func (e *AlertEngine) ProvisionDeviceType(ctx context.Context, deviceID, typeID int64) (*models.Device, *models.DeviceType, error) {
	device, err := e.devices.ByID(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	newType, err := e.devices.TypeByID(ctx, typeID)
	if err != nil {
		return nil, nil, err
	}

	level := models.LevelLow
	switch {
	case newType.MaxPowerW >= provisioningHighW:
		level = models.LevelHigh
	case newType.MaxPowerW >= provisioningMediumW:
		level = models.LevelMedium
	}

	message := fmt.Sprintf("Device type set to %q (rated maximum %.0f W)", newType.Name, newType.MaxPowerW)
	if currentType, err := e.devices.TypeByID(ctx, device.TypeID); err == nil && currentType.ID != newType.ID {
		message = fmt.Sprintf("Device type changed from %q to %q (rated maximum %.0f W)", currentType.Name, newType.Name, newType.MaxPowerW)
	}

	alertType, err := e.alerts.TypeByKey(ctx, models.AlertKeySystem)
	if err != nil {
		return nil, nil, err
	}

	alert := &models.Alert{
		UserID:      &device.OwnerUserID,
		DeviceID:    &device.ID,
		Message:     message,
		Level:       level,
		AlertTypeID: alertType.ID,
	}
	if err := e.devices.UpdateTypeWithAlert(ctx, deviceID, typeID, alert); err != nil {
		return nil, nil, err
	}
	return device, newType, nil
}

// ListAlerts returns a page of the user's unread alerts.
func (e *AlertEngine) ListAlerts(ctx context.Context, userID int64, class models.AlertClass, limit, offset int) ([]models.Alert, error) {
	switch class {
	case models.ClassAll, models.ClassSystem, models.ClassConsumption:
	case "":
		class = models.ClassAll
	default:
		return nil, &models.ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown class %q", class)}
	}
	return e.alerts.ListByUser(ctx, userID, class, limit, offset)
}

// MarkRead flips one alert's read flag.
func (e *AlertEngine) MarkRead(ctx context.Context, alertID int64) error {
	return e.alerts.MarkRead(ctx, alertID)
}

// MarkAllRead flips every unread alert of a user.
func (e *AlertEngine) MarkAllRead(ctx context.Context, userID int64) error {
	return e.alerts.MarkAllRead(ctx, userID)
}

// HasUnread reports whether the user has pending alerts.
func (e *AlertEngine) HasUnread(ctx context.Context, userID int64) (bool, error) {
	return e.alerts.HasUnread(ctx, userID)
}
