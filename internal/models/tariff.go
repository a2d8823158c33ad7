package models

import "time"

// Tariff holds the four charge components of the active utility tariff.
// Rows are versioned; estimates record the tariff id they were computed with.
type Tariff struct {
	ID                      int64     `db:"id" json:"id"`
	ProviderName            string    `db:"provider_name" json:"provider_name"`
	VariableChargePerKWh    float64   `db:"variable_charge_per_kwh" json:"variable_charge_per_kwh"`
	CapacityChargePerKW     float64   `db:"capacity_charge_per_kw" json:"capacity_charge_per_kw"`
	DistributionChargePerKW float64   `db:"distribution_charge_per_kw" json:"distribution_charge_per_kw"`
	FixedChargePerMonth     float64   `db:"fixed_charge_per_month" json:"fixed_charge_per_month"`
	LoadFactor              float64   `db:"load_factor" json:"load_factor"`
	Active                  bool      `db:"active" json:"active"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}
