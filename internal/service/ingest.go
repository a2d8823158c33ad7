package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

// evalTimeout bounds the detached alert evaluation triggered by ingestion.
const evalTimeout = 30 * time.Second

// SensorResolver maps an external sensor reference to a stored sensor.
type SensorResolver interface {
	Resolve(ctx context.Context, ref string) (*models.Sensor, error)
}

// SampleWriter appends samples to the sample store.
type SampleWriter interface {
	Insert(ctx context.Context, s *models.Sample) error
}

// SampleEvaluator runs alert evaluation over a stored sample.
type SampleEvaluator interface {
	EvaluateSample(ctx context.Context, sample *models.Sample)
}

// SnapshotInvalidator drops stale cached estimates.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, sensorID int64) error
}

// MeasurementInput is one reading delivered by a sensor over HTTP or the
// websocket feed.
type MeasurementInput struct {
	SensorRef   string    `json:"sensor_id"`
	VoltageV    float64   `json:"voltage_v"`
	CurrentA    float64   `json:"current_a"`
	PowerW      float64   `json:"power_w"`
	PowerFactor float64   `json:"power_factor"`
	FrequencyHz float64   `json:"frequency_hz"`
	EnergyKWh   float64   `json:"energy_kwh"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ingestor persists incoming samples and triggers alert evaluation without
// blocking the submitting sensor.
type Ingestor struct {
	sensors SensorResolver
	samples SampleWriter
	alerts  SampleEvaluator
	cache   SnapshotInvalidator
	logger  *zap.Logger
}

// NewIngestor returns service instance. cache may be nil.
func NewIngestor(sensors SensorResolver, samples SampleWriter, alerts SampleEvaluator, cache SnapshotInvalidator, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		sensors: sensors,
		samples: samples,
		alerts:  alerts,
		cache:   cache,
		logger:  logger,
	}
}

// Ingest resolves the sensor, stores the sample and kicks off alert
// evaluation on a detached context. Evaluation failures never reach the
// caller.
func (s *Ingestor) Ingest(ctx context.Context, input MeasurementInput) (*models.Sample, error) {
	if input.SensorRef == "" {
		return nil, &models.ValidationError{Field: "sensor_id", Reason: "sensor reference required"}
	}

	sensor, err := s.sensors.Resolve(ctx, input.SensorRef)
	if err != nil {
		return nil, err
	}

	recordedAt := input.Timestamp
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	sample := &models.Sample{
		SensorID:    sensor.ID,
		VoltageV:    input.VoltageV,
		CurrentA:    input.CurrentA,
		PowerW:      input.PowerW,
		PowerFactor: input.PowerFactor,
		FrequencyHz: input.FrequencyHz,
		EnergyKWh:   input.EnergyKWh,
		RecordedAt:  recordedAt.UTC(),
	}
	if err := s.samples.Insert(ctx, sample); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sensor.ID); err != nil {
			s.logger.Warn("failed to invalidate consumption cache", zap.Int64("sensor_id", sensor.ID), zap.Error(err))
		}
	}

	go s.evaluate(sample)

	return sample, nil
}

func (s *Ingestor) evaluate(sample *models.Sample) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("alert evaluation panicked", zap.Int64("sensor_id", sample.SensorID), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	s.alerts.EvaluateSample(ctx, sample)
}
