package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

type fakeSensorResolver struct {
	sensor *models.Sensor
}

func (f *fakeSensorResolver) Resolve(ctx context.Context, ref string) (*models.Sensor, error) {
	if f.sensor == nil {
		return nil, models.NewNotFound("sensor", ref)
	}
	return f.sensor, nil
}

type fakeSampleWriter struct {
	inserted *models.Sample
}

func (f *fakeSampleWriter) Insert(ctx context.Context, s *models.Sample) error {
	s.ID = 42
	f.inserted = s
	return nil
}

type fakeEvaluator struct {
	evaluated chan *models.Sample
}

func (f *fakeEvaluator) EvaluateSample(ctx context.Context, sample *models.Sample) {
	f.evaluated <- sample
}

type fakeInvalidator struct {
	sensorID int64
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, sensorID int64) error {
	f.sensorID = sensorID
	return nil
}

func TestIngestStoresAndEvaluates(t *testing.T) {
	resolver := &fakeSensorResolver{sensor: &models.Sensor{ID: 11, MACAddress: "aa:bb:cc:dd:ee:ff"}}
	writer := &fakeSampleWriter{}
	evaluator := &fakeEvaluator{evaluated: make(chan *models.Sample, 1)}
	invalidator := &fakeInvalidator{}

	ing := NewIngestor(resolver, writer, evaluator, invalidator, zap.NewNop())

	sample, err := ing.Ingest(context.Background(), MeasurementInput{
		SensorRef: "aa:bb:cc:dd:ee:ff",
		PowerW:    260,
		VoltageV:  127,
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if sample.ID != 42 || sample.SensorID != 11 {
		t.Fatalf("sample = %+v, want ID 42 on sensor 11", sample)
	}
	if writer.inserted == nil {
		t.Fatal("sample not stored")
	}
	if sample.RecordedAt.IsZero() {
		t.Fatal("RecordedAt not defaulted")
	}
	if invalidator.sensorID != 11 {
		t.Fatalf("cache invalidated for sensor %d, want 11", invalidator.sensorID)
	}

	select {
	case evaluated := <-evaluator.evaluated:
		if evaluated.SensorID != 11 {
			t.Fatalf("evaluated sensor %d, want 11", evaluated.SensorID)
		}
	case <-time.After(time.Second):
		t.Fatal("alert evaluation never ran")
	}
}

func TestIngestRequiresSensorRef(t *testing.T) {
	ing := NewIngestor(&fakeSensorResolver{}, &fakeSampleWriter{}, &fakeEvaluator{evaluated: make(chan *models.Sample, 1)}, nil, zap.NewNop())

	if _, err := ing.Ingest(context.Background(), MeasurementInput{PowerW: 260}); !models.IsValidation(err) {
		t.Fatalf("Ingest error = %v, want validation error", err)
	}
}

func TestIngestUnknownSensor(t *testing.T) {
	ing := NewIngestor(&fakeSensorResolver{}, &fakeSampleWriter{}, &fakeEvaluator{evaluated: make(chan *models.Sample, 1)}, nil, zap.NewNop())

	if _, err := ing.Ingest(context.Background(), MeasurementInput{SensorRef: "nope"}); !models.IsNotFound(err) {
		t.Fatalf("Ingest error = %v, want not found", err)
	}
}
