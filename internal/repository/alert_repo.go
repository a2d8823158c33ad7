package repository

import (
	"context"
	"database/sql"
	"errors"

	"wattline/internal/models"
)

// AlertRepository appends and reads generated alerts.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository returns repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// InsertDeduped stores a consumption alert unless one of the same type
// already exists for the same subject on the same calendar day. The
// at-most-one-per-day invariant is enforced by the unique index on
// (subject_id, alert_type_id, dedup_day), so concurrent breaches cannot
// slip past the check. Returns whether a row was created.
func (r *AlertRepository) InsertDeduped(ctx context.Context, a *models.Alert) (bool, error) {
	subject := a.DeviceID
	if subject == nil {
		subject = a.SensorID
	}

	const query = `
		INSERT INTO alerts (user_id, device_id, sensor_id, subject_id, message, level, alert_type_id, dedup_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_DATE, NOW())
		ON CONFLICT (subject_id, alert_type_id, dedup_day) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.UserID,
		a.DeviceID,
		a.SensorID,
		subject,
		a.Message,
		a.Level,
		a.AlertTypeID,
	).Scan(&a.ID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TypeByKey returns alert-type reference data.
func (r *AlertRepository) TypeByKey(ctx context.Context, key string) (*models.AlertType, error) {
	const query = `SELECT id, key, display_name, icon_ref FROM alert_types WHERE key = $1 LIMIT 1`
	var t models.AlertType
	err := r.db.QueryRowContext(ctx, query, key).Scan(&t.ID, &t.Key, &t.DisplayName, &t.IconRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("alert type", key)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser returns a user's unread alerts newest first, filtered by the
// coarse system/consumption classification and paginated by limit/offset.
func (r *AlertRepository) ListByUser(ctx context.Context, userID int64, class models.AlertClass, limit, offset int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT a.id, a.user_id, a.device_id, a.sensor_id, a.message, a.level, a.alert_type_id, t.key, a.read, a.created_at
		FROM alerts a
		LEFT JOIN alert_types t ON t.id = a.alert_type_id
		WHERE a.user_id = $1 AND a.read = false
	`
	switch class {
	case models.ClassSystem:
		query += ` AND t.key LIKE '%system%'`
	case models.ClassConsumption:
		query += ` AND t.key NOT LIKE '%system%'`
	}
	query += `
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			a   models.Alert
			key sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.DeviceID, &a.SensorID, &a.Message, &a.Level, &a.AlertTypeID, &key, &a.Read, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.TypeKey = key.String
		a.Class = models.ClassifyAlertKey(key.String)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkRead flips the read flag on one alert.
func (r *AlertRepository) MarkRead(ctx context.Context, alertID int64) error {
	const query = `UPDATE alerts SET read = true WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, alertID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NewNotFound("alert", "")
	}
	return nil
}

// MarkAllRead flips the read flag on every unread alert of a user.
func (r *AlertRepository) MarkAllRead(ctx context.Context, userID int64) error {
	const query = `UPDATE alerts SET read = true WHERE user_id = $1 AND read = false`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// HasUnread reports whether the user has any unread alerts.
func (r *AlertRepository) HasUnread(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM alerts WHERE user_id = $1 AND read = false`
	var total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return false, err
	}
	return total > 0, nil
}
