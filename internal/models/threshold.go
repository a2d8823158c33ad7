package models

// Built-in threshold bounds applied when neither a device-specific nor a
// user-wide config exists. Expressed in kWh per sample.
const (
	DefaultMinKWhPerSample = 0.05
	DefaultMaxKWhPerSample = 0.83
)

// DefaultAlertTypeKey classifies threshold breaches with no explicit config.
const DefaultAlertTypeKey = "consumption"

// ThresholdConfig bounds per-sample energy for alerting. Device-specific rows
// take precedence over user-wide rows (DeviceID nil). Bounds are stored in
// kWh per sample; watt bounds coming from device types are converted at
// write time using the sampling interval.
type ThresholdConfig struct {
	ID              int64   `db:"id" json:"id"`
	UserID          *int64  `db:"user_id" json:"user_id,omitempty"`
	DeviceID        *int64  `db:"device_id" json:"device_id,omitempty"`
	MinKWhPerSample float64 `db:"min_kwh" json:"min_kwh_per_sample"`
	MaxKWhPerSample float64 `db:"max_kwh" json:"max_kwh_per_sample"`
	AlertTypeKey    string  `db:"alert_type_key" json:"alert_type_key"`
	Message         *string `db:"message" json:"message,omitempty"`
}

// DefaultThresholdConfig returns the built-in fallback bounds.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		MinKWhPerSample: DefaultMinKWhPerSample,
		MaxKWhPerSample: DefaultMaxKWhPerSample,
		AlertTypeKey:    DefaultAlertTypeKey,
	}
}
