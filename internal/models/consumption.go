package models

import "time"

// TariffDetail echoes the tariff components an estimate was priced with.
type TariffDetail struct {
	TariffID                int64   `json:"tariff_id"`
	Provider                string  `json:"provider"`
	VariableChargePerKWh    float64 `json:"variable_charge_per_kwh"`
	CapacityChargePerKW     float64 `json:"capacity_charge_per_kw"`
	DistributionChargePerKW float64 `json:"distribution_charge_per_kw"`
	FixedChargePerMonth     float64 `json:"fixed_charge_per_month"`
}

// CostDetail decomposes the projected monthly cost.
type CostDetail struct {
	Variable     float64 `json:"variable"`
	Capacity     float64 `json:"capacity"`
	Distribution float64 `json:"distribution"`
	Fixed        float64 `json:"fixed"`
}

// ConsumptionRecord is one consumption/cost estimate for a sensor, either
// from its latest sample or from the average power over a window.
type ConsumptionRecord struct {
	SensorID   int64      `json:"sensor_id"`
	SampledAt  time.Time  `json:"sampled_at"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	PowerW     float64    `json:"power_w"`
	EnergyKWh  float64    `json:"energy_kwh_per_sample"`
	DailyKWh   float64    `json:"daily_kwh"`
	MonthlyKWh float64    `json:"monthly_kwh"`
	DemandKW   float64    `json:"demand_kw"`

	CostPerSample float64    `json:"cost_per_sample"`
	DailyCost     float64    `json:"daily_cost"`
	MonthlyCost   float64    `json:"monthly_cost"`
	Costs         CostDetail `json:"cost_detail"`

	Tariff TariffDetail `json:"tariff_detail"`

	// NoData marks a valid empty result for a sensor without samples.
	NoData bool `json:"no_data,omitempty"`
}

// SamplePoint is the per-sample energy of one stored reading.
type SamplePoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	PowerW     float64   `json:"power_w"`
	EnergyKWh  float64   `json:"energy_kwh"`
}

// ConsumptionSeries lists per-sample energy over a window with the window
// total and extremes.
type ConsumptionSeries struct {
	DeviceID  int64         `json:"device_id"`
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	TotalKWh  float64       `json:"total_kwh"`
	Min       *SamplePoint  `json:"min,omitempty"`
	Max       *SamplePoint  `json:"max,omitempty"`
	Points    []SamplePoint `json:"points"`
}
