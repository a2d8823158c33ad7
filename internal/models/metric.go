package models

import (
	"fmt"
	"time"
)

// MetricKind selects which measured field a series query returns. One
// parameterized query serves all five metrics.
type MetricKind string

const (
	MetricVoltage     MetricKind = "voltage"
	MetricCurrent     MetricKind = "current"
	MetricPower       MetricKind = "power"
	MetricPowerFactor MetricKind = "power_factor"
	MetricFrequency   MetricKind = "frequency"
)

// ParseMetricKind validates a raw kind string.
func ParseMetricKind(raw string) (MetricKind, error) {
	switch MetricKind(raw) {
	case MetricVoltage, MetricCurrent, MetricPower, MetricPowerFactor, MetricFrequency:
		return MetricKind(raw), nil
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown metric %q", raw)}
}

// Column returns the samples-table column holding this metric.
func (k MetricKind) Column() string {
	switch k {
	case MetricVoltage:
		return "voltage_v"
	case MetricCurrent:
		return "current_a"
	case MetricPower:
		return "power_w"
	case MetricPowerFactor:
		return "power_factor"
	case MetricFrequency:
		return "frequency_hz"
	}
	return ""
}

// Unit returns the human readable unit of measure.
func (k MetricKind) Unit() string {
	switch k {
	case MetricVoltage:
		return "Volt (V)"
	case MetricCurrent:
		return "Ampere (A)"
	case MetricPower:
		return "Watt (W)"
	case MetricPowerFactor:
		return "dimensionless"
	case MetricFrequency:
		return "Hertz (Hz)"
	}
	return ""
}

// MetricPoint is one value of a metric series.
type MetricPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

// MetricSeries is an ordered series of one metric for one device, with the
// window extremes precomputed.
type MetricSeries struct {
	DeviceID int64         `json:"device_id"`
	Kind     MetricKind    `json:"kind"`
	Unit     string        `json:"unit"`
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Min      float64       `json:"min"`
	Max      float64       `json:"max"`
	Points   []MetricPoint `json:"points"`
}
