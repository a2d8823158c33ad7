package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"wattline/internal/models"
)

// DeviceRepository reads device and device-type configuration.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository returns repository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `
	d.id, d.name, d.owner_user_id, d.group_id, g.name, d.sensor_id, COALESCE(d.type_id, 0)
`

// ByID returns one device with its group name.
func (r *DeviceRepository) ByID(ctx context.Context, deviceID int64) (*models.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		LEFT JOIN groups g ON g.id = d.group_id
		WHERE d.id = $1
	`
	return r.scanOne(ctx, query, strconv.FormatInt(deviceID, 10), deviceID)
}

// BySensor returns the device wired to a sensor.
func (r *DeviceRepository) BySensor(ctx context.Context, sensorID int64) (*models.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		LEFT JOIN groups g ON g.id = d.group_id
		WHERE d.sensor_id = $1
	`
	return r.scanOne(ctx, query, "sensor "+strconv.FormatInt(sensorID, 10), sensorID)
}

// ListByUser returns all devices owned by a user with their group names.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID int64) ([]models.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		LEFT JOIN groups g ON g.id = d.group_id
		WHERE d.owner_user_id = $1
		ORDER BY d.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerUserID, &d.GroupID, &d.GroupName, &d.SensorID, &d.TypeID); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// TypeByID returns device-type reference data.
func (r *DeviceRepository) TypeByID(ctx context.Context, typeID int64) (*models.DeviceType, error) {
	const query = `SELECT id, name, min_power_w, max_power_w FROM device_types WHERE id = $1`
	var t models.DeviceType
	err := r.db.QueryRowContext(ctx, query, typeID).Scan(&t.ID, &t.Name, &t.MinPowerW, &t.MaxPowerW)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("device type", strconv.FormatInt(typeID, 10))
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTypeWithAlert changes a device's type and records the provisioning
// alert in the same transaction, so both land or both roll back.
func (r *DeviceRepository) UpdateTypeWithAlert(ctx context.Context, deviceID, typeID int64, alert *models.Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE devices SET type_id = $2 WHERE id = $1`, deviceID, typeID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NewNotFound("device", strconv.FormatInt(deviceID, 10))
	}

	const insert = `
		INSERT INTO alerts (user_id, device_id, sensor_id, subject_id, message, level, alert_type_id, dedup_day, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5, $6, CURRENT_DATE, NOW())
	`
	// Provisioning alerts always insert a new row: subject_id stays NULL so
	// the same-day uniqueness index does not apply to them.
	if _, err := tx.ExecContext(ctx, insert,
		alert.UserID,
		alert.DeviceID,
		alert.SensorID,
		alert.Message,
		alert.Level,
		alert.AlertTypeID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *DeviceRepository) scanOne(ctx context.Context, query, ref string, arg any) (*models.Device, error) {
	var d models.Device
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&d.ID,
		&d.Name,
		&d.OwnerUserID,
		&d.GroupID,
		&d.GroupName,
		&d.SensorID,
		&d.TypeID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("device", ref)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
