package models

import "time"

// Sample represents a single electrical reading from a sensor.
type Sample struct {
	ID          int64     `db:"id" json:"id"`
	SensorID    int64     `db:"sensor_id" json:"sensor_id"`
	VoltageV    float64   `db:"voltage_v" json:"voltage_v"`
	CurrentA    float64   `db:"current_a" json:"current_a"`
	PowerW      float64   `db:"power_w" json:"power_w"`
	PowerFactor float64   `db:"power_factor" json:"power_factor"`
	FrequencyHz float64   `db:"frequency_hz" json:"frequency_hz"`
	EnergyKWh   float64   `db:"energy_kwh" json:"energy_kwh"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Sensor links a physical meter to a device.
type Sensor struct {
	ID         int64  `db:"id" json:"id"`
	MACAddress string `db:"mac_address" json:"mac_address"`
	DeviceID   int64  `db:"device_id" json:"device_id"`
}

// DailyPower is the average power of one sensor over one calendar day.
type DailyPower struct {
	Day       time.Time `json:"day"`
	AvgPowerW float64   `json:"avg_power_w"`
}

// PowerStats summarizes raw power over a window.
type PowerStats struct {
	MinW    float64 `json:"min_w"`
	AvgW    float64 `json:"avg_w"`
	MaxW    float64 `json:"max_w"`
	Samples int     `json:"samples"`
}

// PowerBucket is the average power over one calendar-aligned bucket.
type PowerBucket struct {
	Start     time.Time `json:"start"`
	AvgPowerW float64   `json:"avg_power_w"`
}
