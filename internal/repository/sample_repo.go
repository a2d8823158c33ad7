package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wattline/internal/models"
)

// SampleRepository persists and queries raw measurement samples.
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository returns repository.
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Insert stores a new sample.
func (r *SampleRepository) Insert(ctx context.Context, s *models.Sample) error {
	const query = `
		INSERT INTO samples (sensor_id, voltage_v, current_a, power_w, power_factor, frequency_hz, energy_kwh, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		s.SensorID,
		s.VoltageV,
		s.CurrentA,
		s.PowerW,
		s.PowerFactor,
		s.FrequencyHz,
		s.EnergyKWh,
		s.RecordedAt,
	).Scan(&s.ID, &s.CreatedAt)
}

// Latest returns the most recent sample for a sensor, or sql.ErrNoRows.
func (r *SampleRepository) Latest(ctx context.Context, sensorID int64) (*models.Sample, error) {
	const query = `
		SELECT id, sensor_id, voltage_v, current_a, power_w, power_factor, frequency_hz, energy_kwh, recorded_at, created_at
		FROM samples
		WHERE sensor_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	var s models.Sample
	err := r.db.QueryRowContext(ctx, query, sensorID).Scan(
		&s.ID,
		&s.SensorID,
		&s.VoltageV,
		&s.CurrentA,
		&s.PowerW,
		&s.PowerFactor,
		&s.FrequencyHz,
		&s.EnergyKWh,
		&s.RecordedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AveragePower returns the mean power of one sensor over a window and the
// number of samples it covers.
func (r *SampleRepository) AveragePower(ctx context.Context, sensorID int64, from, to time.Time) (float64, int, error) {
	const query = `
		SELECT COALESCE(AVG(power_w), 0), COUNT(*)
		FROM samples
		WHERE sensor_id = $1 AND recorded_at BETWEEN $2 AND $3
	`
	var (
		avg float64
		n   int
	)
	if err := r.db.QueryRowContext(ctx, query, sensorID, from, to).Scan(&avg, &n); err != nil {
		return 0, 0, err
	}
	return avg, n, nil
}

// DailyAveragePower returns the per-calendar-day mean power of one sensor,
// ascending by day.
func (r *SampleRepository) DailyAveragePower(ctx context.Context, sensorID int64, from, to time.Time) ([]models.DailyPower, error) {
	const query = `
		SELECT date_trunc('day', recorded_at) AS day, AVG(power_w)
		FROM samples
		WHERE sensor_id = $1 AND recorded_at BETWEEN $2 AND $3
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sensorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DailyPower
	for rows.Next() {
		var d models.DailyPower
		if err := rows.Scan(&d.Day, &d.AvgPowerW); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// UserPowerStats summarizes raw power across all of a user's devices.
func (r *SampleRepository) UserPowerStats(ctx context.Context, userID int64, from, to time.Time) (models.PowerStats, error) {
	const query = `
		SELECT COALESCE(MIN(m.power_w), 0), COALESCE(AVG(m.power_w), 0), COALESCE(MAX(m.power_w), 0), COUNT(*)
		FROM samples m
		INNER JOIN devices d ON d.sensor_id = m.sensor_id
		WHERE d.owner_user_id = $1 AND m.recorded_at BETWEEN $2 AND $3
	`
	var stats models.PowerStats
	err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(
		&stats.MinW,
		&stats.AvgW,
		&stats.MaxW,
		&stats.Samples,
	)
	return stats, err
}

// UserBucketAverages returns the mean power across all of a user's devices
// grouped into calendar buckets, ascending. The bucket unit must come from
// the service-side whitelist, never from user input.
func (r *SampleRepository) UserBucketAverages(ctx context.Context, userID int64, from, to time.Time, bucket string) ([]models.PowerBucket, error) {
	const query = `
		SELECT date_trunc($4, m.recorded_at) AS bucket, AVG(m.power_w)
		FROM samples m
		INNER JOIN devices d ON d.sensor_id = m.sensor_id
		WHERE d.owner_user_id = $1 AND m.recorded_at BETWEEN $2 AND $3
		GROUP BY bucket
		ORDER BY bucket ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []models.PowerBucket
	for rows.Next() {
		var b models.PowerBucket
		if err := rows.Scan(&b.Start, &b.AvgPowerW); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// MetricSeries returns one measured field of a device's samples over a
// window, ascending by time, plus the window extremes. The column is fixed
// by the MetricKind enum.
func (r *SampleRepository) MetricSeries(ctx context.Context, deviceID int64, kind models.MetricKind, from, to time.Time) ([]models.MetricPoint, float64, float64, error) {
	column := kind.Column()
	if column == "" {
		return nil, 0, 0, fmt.Errorf("repository: no column for metric %q", kind)
	}

	seriesQuery := fmt.Sprintf(`
		SELECT m.%s, m.recorded_at
		FROM samples m
		INNER JOIN devices d ON d.sensor_id = m.sensor_id
		WHERE d.id = $1 AND m.recorded_at BETWEEN $2 AND $3
		ORDER BY m.recorded_at ASC
	`, column)

	rows, err := r.db.QueryContext(ctx, seriesQuery, deviceID, from, to)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var points []models.MetricPoint
	for rows.Next() {
		var p models.MetricPoint
		if err := rows.Scan(&p.Value, &p.RecordedAt); err != nil {
			return nil, 0, 0, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	var min, max float64
	for i, p := range points {
		if i == 0 || p.Value < min {
			min = p.Value
		}
		if i == 0 || p.Value > max {
			max = p.Value
		}
	}
	return points, min, max, nil
}
