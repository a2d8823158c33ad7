package repository

import (
	"context"
	"database/sql"
	"errors"

	"wattline/internal/models"
)

// ThresholdRepository stores per-device and user-wide consumption bounds.
type ThresholdRepository struct {
	db *sql.DB
}

// NewThresholdRepository returns repository.
func NewThresholdRepository(db *sql.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

const thresholdColumns = `id, user_id, device_id, min_kwh, max_kwh, alert_type_key, message`

// ByDevice returns the device-specific config, or nil when none exists.
func (r *ThresholdRepository) ByDevice(ctx context.Context, deviceID int64) (*models.ThresholdConfig, error) {
	const query = `
		SELECT ` + thresholdColumns + `
		FROM threshold_configs
		WHERE device_id = $1
		LIMIT 1
	`
	return r.scanOne(ctx, query, deviceID)
}

// ByUser returns the user-wide fallback config, or nil when none exists.
func (r *ThresholdRepository) ByUser(ctx context.Context, userID int64) (*models.ThresholdConfig, error) {
	const query = `
		SELECT ` + thresholdColumns + `
		FROM threshold_configs
		WHERE user_id = $1 AND device_id IS NULL
		LIMIT 1
	`
	return r.scanOne(ctx, query, userID)
}

// Upsert writes a config row, replacing any previous one for the same
// scope. Device-specific rows conflict on device_id; user-wide rows
// (device_id NULL) conflict on the partial unique index over user_id, since
// NULL device ids never collide on the device key.
func (r *ThresholdRepository) Upsert(ctx context.Context, cfg *models.ThresholdConfig) error {
	if cfg.DeviceID != nil {
		const query = `
			INSERT INTO threshold_configs (user_id, device_id, min_kwh, max_kwh, alert_type_key, message)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (device_id) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				min_kwh = EXCLUDED.min_kwh,
				max_kwh = EXCLUDED.max_kwh,
				alert_type_key = EXCLUDED.alert_type_key,
				message = EXCLUDED.message
			RETURNING id
		`
		return r.db.QueryRowContext(ctx, query,
			cfg.UserID,
			cfg.DeviceID,
			cfg.MinKWhPerSample,
			cfg.MaxKWhPerSample,
			cfg.AlertTypeKey,
			cfg.Message,
		).Scan(&cfg.ID)
	}

	const query = `
		INSERT INTO threshold_configs (user_id, device_id, min_kwh, max_kwh, alert_type_key, message)
		VALUES ($1, NULL, $2, $3, $4, $5)
		ON CONFLICT (user_id) WHERE device_id IS NULL DO UPDATE SET
			min_kwh = EXCLUDED.min_kwh,
			max_kwh = EXCLUDED.max_kwh,
			alert_type_key = EXCLUDED.alert_type_key,
			message = EXCLUDED.message
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		cfg.UserID,
		cfg.MinKWhPerSample,
		cfg.MaxKWhPerSample,
		cfg.AlertTypeKey,
		cfg.Message,
	).Scan(&cfg.ID)
}

func (r *ThresholdRepository) scanOne(ctx context.Context, query string, arg any) (*models.ThresholdConfig, error) {
	var cfg models.ThresholdConfig
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&cfg.ID,
		&cfg.UserID,
		&cfg.DeviceID,
		&cfg.MinKWhPerSample,
		&cfg.MaxKWhPerSample,
		&cfg.AlertTypeKey,
		&cfg.Message,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
