package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"wattline/internal/models"
)

// SensorRepository resolves sensor references.
type SensorRepository struct {
	db *sql.DB
}

// NewSensorRepository returns repository.
func NewSensorRepository(db *sql.DB) *SensorRepository {
	return &SensorRepository{db: db}
}

// Resolve looks up a sensor by numeric id or MAC address.
func (r *SensorRepository) Resolve(ctx context.Context, ref string) (*models.Sensor, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewNotFound("sensor", ref)
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return r.byID(ctx, id)
	}
	return r.byMAC(ctx, ref)
}

func (r *SensorRepository) byID(ctx context.Context, id int64) (*models.Sensor, error) {
	const query = `SELECT id, mac_address, device_id FROM sensors WHERE id = $1`
	return r.scanOne(ctx, query, strconv.FormatInt(id, 10), id)
}

func (r *SensorRepository) byMAC(ctx context.Context, mac string) (*models.Sensor, error) {
	const query = `SELECT id, mac_address, device_id FROM sensors WHERE LOWER(mac_address) = LOWER($1)`
	return r.scanOne(ctx, query, mac, mac)
}

func (r *SensorRepository) scanOne(ctx context.Context, query, ref string, arg any) (*models.Sensor, error) {
	var s models.Sensor
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.MACAddress, &s.DeviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("sensor", ref)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
