package models

import (
	"strings"
	"time"
)

// AlertLevel ranks alert severity.
type AlertLevel string

const (
	LevelLow    AlertLevel = "Low"
	LevelMedium AlertLevel = "Medium"
	LevelHigh   AlertLevel = "High"
)

// Alert type keys used by the built-in evaluation rules.
const (
	AlertKeyIntermediateBand = "intermediate_band"
	AlertKeyDACRisk          = "dac_risk"
	AlertKeySystem           = "system"
)

// AlertClass is the coarse classification exposed to list filters.
type AlertClass string

const (
	ClassAll         AlertClass = "all"
	ClassSystem      AlertClass = "system"
	ClassConsumption AlertClass = "consumption"
)

// Alert is one generated notification. Rows are write-once except for the
// read flag. At most one alert of a given type per device-or-sensor per
// calendar day, enforced by a unique index on
// (subject_id, alert_type_id, dedup_day); subject_id is the device when
// known, the sensor otherwise, and NULL for provisioning notices.
type Alert struct {
	ID          int64      `db:"id" json:"id"`
	UserID      *int64     `db:"user_id" json:"user_id,omitempty"`
	DeviceID    *int64     `db:"device_id" json:"device_id,omitempty"`
	SensorID    *int64     `db:"sensor_id" json:"sensor_id,omitempty"`
	Message     string     `db:"message" json:"message"`
	Level       AlertLevel `db:"level" json:"level"`
	AlertTypeID int64      `db:"alert_type_id" json:"alert_type_id"`
	TypeKey     string     `db:"type_key" json:"type_key"`
	Class       AlertClass `db:"-" json:"class"`
	Read        bool       `db:"read" json:"read"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// AlertType is static reference data keyed by a stable string.
type AlertType struct {
	ID          int64  `db:"id" json:"id"`
	Key         string `db:"key" json:"key"`
	DisplayName string `db:"display_name" json:"display_name"`
	IconRef     string `db:"icon_ref" json:"icon_ref"`
}

// ClassifyAlertKey maps a type key to the system/consumption split. Keys
// containing "system" are system alerts, everything else tracks consumption.
func ClassifyAlertKey(key string) AlertClass {
	if strings.Contains(strings.ToLower(key), "system") {
		return ClassSystem
	}
	return ClassConsumption
}
