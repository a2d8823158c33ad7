package service

import "time"

// DefaultInterval is the expected gap between sensor readings. Callers that
// sample faster (the live dashboard feed uses 10s) construct their own
// Interval; the value is always threaded explicitly so figures computed under
// different intervals stay distinguishable.
const DefaultInterval = Interval(5 * time.Minute)

// daysPerMonth fixes the projection horizon. A month is always treated as
// exactly 30 days.
const daysPerMonth = 30

// defaultLoadFactor converts projected monthly energy into demand when the
// tariff does not carry its own factor.
const defaultLoadFactor = 0.9

// Interval is the sampling interval all per-sample/daily/monthly projections
// derive from.
type Interval time.Duration

// Hours returns the interval length in hours.
func (iv Interval) Hours() float64 {
	return time.Duration(iv).Hours()
}

// SamplesPerDay returns how many samples one day holds at this interval.
func (iv Interval) SamplesPerDay() float64 {
	return 24 / iv.Hours()
}

// SamplesPerMonth returns how many samples a 30-day month holds.
func (iv Interval) SamplesPerMonth() float64 {
	return iv.SamplesPerDay() * daysPerMonth
}

// EnergyKWh converts one sample's power draw into the energy consumed over
// the interval: (powerW / 1000) * intervalHours.
func (iv Interval) EnergyKWh(powerW float64) float64 {
	return (powerW / 1000) * iv.Hours()
}
