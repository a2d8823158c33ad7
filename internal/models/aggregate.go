package models

import "time"

// UngroupedName labels the synthetic bucket for devices without a group.
const UngroupedName = "Sin Grupo"

// DeviceConsumption is one device's estimate inside a user aggregate.
type DeviceConsumption struct {
	DeviceID   int64             `json:"device_id"`
	DeviceName string            `json:"device_name"`
	GroupID    *int64            `json:"group_id,omitempty"`
	GroupName  string            `json:"group_name"`
	SensorID   int64             `json:"sensor_id"`
	Record     ConsumptionRecord `json:"record"`
}

// GroupConsumption folds member devices into additive totals.
type GroupConsumption struct {
	GroupID         *int64              `json:"group_id,omitempty"`
	GroupName       string              `json:"group_name"`
	Devices         []DeviceConsumption `json:"devices"`
	EnergyKWh       float64             `json:"energy_kwh"`
	CostPerSample   float64             `json:"cost_per_sample"`
	DailyKWh        float64             `json:"daily_kwh"`
	DailyCost       float64             `json:"daily_cost"`
	MonthlyKWh      float64             `json:"monthly_kwh"`
	MonthlyCost     float64             `json:"monthly_cost"`
}

// DayEnergy is the summed energy of all devices for one calendar day.
type DayEnergy struct {
	Day       time.Time `json:"day"`
	EnergyKWh float64   `json:"energy_kwh"`
}

// UserAggregate is the grouped consumption summary for one user.
type UserAggregate struct {
	UserID  int64               `json:"user_id"`
	From    *time.Time          `json:"from,omitempty"`
	To      *time.Time          `json:"to,omitempty"`
	Devices []DeviceConsumption `json:"devices"`
	Groups  []GroupConsumption  `json:"groups"`
	Total   GroupConsumption    `json:"total"`
	PerDay  []DayEnergy         `json:"per_day"`

	// NoDevices marks a valid empty result for a user without devices.
	NoDevices bool `json:"no_devices,omitempty"`
}

// EnergyStats holds min/avg/max of per-sample energy over a window.
type EnergyStats struct {
	Label   string  `json:"label"`
	MinKWh  float64 `json:"min_kwh"`
	AvgKWh  float64 `json:"avg_kwh"`
	MaxKWh  float64 `json:"max_kwh"`
	Samples int     `json:"samples"`
}

// RangeSummary covers the fixed lookback buckets.
type RangeSummary struct {
	UserID  int64         `json:"user_id"`
	Buckets []EnergyStats `json:"buckets"`
}

// SeriesPoint is one labeled bucket of average per-sample energy, emitted in
// ascending chronological order.
type SeriesPoint struct {
	Start  time.Time `json:"start"`
	Label  string    `json:"label"`
	AvgKWh float64   `json:"avg_kwh"`
}

// RangeDetail carries the zoomable bucket series plus the fixed trailing
// daily/weekly/monthly series.
type RangeDetail struct {
	UserID  int64         `json:"user_id"`
	Zoom    []SeriesPoint `json:"zoom"`
	Daily   []SeriesPoint `json:"daily"`
	Weekly  []SeriesPoint `json:"weekly"`
	Monthly []SeriesPoint `json:"monthly"`
}

// Report is the per-period rollup consumed by the external report renderer.
type Report struct {
	UserID        int64         `json:"user_id"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	GeneratedAt   time.Time     `json:"generated_at"`
	DaysInPeriod  int           `json:"days_in_period"`
	Aggregate     UserAggregate `json:"aggregate"`
	AvgKWhPerDay  float64       `json:"avg_kwh_per_day"`
	AvgCostPerDay float64       `json:"avg_cost_per_day"`
}
