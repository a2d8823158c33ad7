package repository

import (
	"context"
	"database/sql"
	"errors"

	"wattline/internal/models"
)

// TariffRepository reads the active utility tariff. Tariff rows are owned by
// the external CRUD layer; this core only reads them.
type TariffRepository struct {
	db *sql.DB
}

// NewTariffRepository returns repository.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// Active returns the currently active tariff. A missing row is a data
// integrity error, never defaulted, because every monetary figure depends
// on it.
func (r *TariffRepository) Active(ctx context.Context) (*models.Tariff, error) {
	const query = `
		SELECT id, provider_name, variable_charge_per_kwh, capacity_charge_per_kw,
		       distribution_charge_per_kw, fixed_charge_per_month, load_factor, active, updated_at
		FROM tariffs
		WHERE active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var t models.Tariff
	err := r.db.QueryRowContext(ctx, query).Scan(
		&t.ID,
		&t.ProviderName,
		&t.VariableChargePerKWh,
		&t.CapacityChargePerKW,
		&t.DistributionChargePerKW,
		&t.FixedChargePerMonth,
		&t.LoadFactor,
		&t.Active,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNoActiveTariff
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
