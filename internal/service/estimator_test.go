package service

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

type fakeSampleSource struct {
	latest      *models.Sample
	latestErr   error
	latestCalls int

	avgPower float64
	avgCount int
	avgErr   error

	points []models.MetricPoint
	min    float64
	max    float64
}

func (f *fakeSampleSource) Latest(ctx context.Context, sensorID int64) (*models.Sample, error) {
	f.latestCalls++
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeSampleSource) AveragePower(ctx context.Context, sensorID int64, from, to time.Time) (float64, int, error) {
	if f.avgErr != nil {
		return 0, 0, f.avgErr
	}
	return f.avgPower, f.avgCount, nil
}

func (f *fakeSampleSource) MetricSeries(ctx context.Context, deviceID int64, kind models.MetricKind, from, to time.Time) ([]models.MetricPoint, float64, float64, error) {
	return f.points, f.min, f.max, nil
}

type fakeTariffSource struct {
	tariff *models.Tariff
	err    error
	calls  int
}

func (f *fakeTariffSource) Active(ctx context.Context) (*models.Tariff, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tariff, nil
}

type fakeSnapshotCache struct {
	record   *models.ConsumptionRecord
	saved    *models.ConsumptionRecord
	getCalls int
}

func (f *fakeSnapshotCache) Get(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error) {
	f.getCalls++
	return f.record, nil
}

func (f *fakeSnapshotCache) Save(ctx context.Context, record *models.ConsumptionRecord) error {
	f.saved = record
	return nil
}

func testTariff() *models.Tariff {
	return &models.Tariff{
		ID:                      1,
		ProviderName:            "CFE",
		VariableChargePerKWh:    1.41,
		CapacityChargePerKW:     313.44,
		DistributionChargePerKW: 211.58,
		FixedChargePerMonth:     474.54,
		LoadFactor:              0.9,
		Active:                  true,
	}
}

func almostEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-4 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestEstimatorInstantProjectsConsumptionAndCost(t *testing.T) {
	samples := &fakeSampleSource{latest: &models.Sample{SensorID: 7, PowerW: 260, RecordedAt: time.Now().UTC()}}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, nil, DefaultInterval, zap.NewNop())
	record, err := est.Instant(context.Background(), 7)
	if err != nil {
		t.Fatalf("Instant returned error: %v", err)
	}
	if record.NoData {
		t.Fatal("expected a populated record, got NoData")
	}

	almostEqual(t, "EnergyKWh", record.EnergyKWh, 0.0216667)
	almostEqual(t, "DailyKWh", record.DailyKWh, 6.24)
	almostEqual(t, "MonthlyKWh", record.MonthlyKWh, 187.2)
	almostEqual(t, "DemandKW", record.DemandKW, 0.2888889)

	almostEqual(t, "Costs.Variable", record.Costs.Variable, 187.2*1.41)
	almostEqual(t, "Costs.Capacity", record.Costs.Capacity, 0.2888889*313.44)
	almostEqual(t, "Costs.Distribution", record.Costs.Distribution, 0.2888889*211.58)
	almostEqual(t, "Costs.Fixed", record.Costs.Fixed, 474.54)

	wantMonthly := record.Costs.Variable + record.Costs.Capacity + record.Costs.Distribution + record.Costs.Fixed
	almostEqual(t, "MonthlyCost", record.MonthlyCost, wantMonthly)
	almostEqual(t, "CostPerSample*samplesPerMonth", record.CostPerSample*DefaultInterval.SamplesPerMonth(), record.MonthlyCost)
	almostEqual(t, "DailyCost", record.DailyCost, record.CostPerSample*DefaultInterval.SamplesPerDay())

	if record.Tariff.Provider != "CFE" {
		t.Fatalf("Tariff.Provider = %q, want CFE", record.Tariff.Provider)
	}
}

func TestEstimatorInstantNoSamples(t *testing.T) {
	samples := &fakeSampleSource{latestErr: sql.ErrNoRows}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, nil, DefaultInterval, zap.NewNop())
	record, err := est.Instant(context.Background(), 7)
	if err != nil {
		t.Fatalf("Instant returned error: %v", err)
	}
	if !record.NoData {
		t.Fatal("expected NoData record for a sensor without samples")
	}
	if tariffs.calls != 0 {
		t.Fatalf("tariff queried %d times for an empty sensor, want 0", tariffs.calls)
	}
}

func TestEstimatorInstantMissingTariff(t *testing.T) {
	samples := &fakeSampleSource{latest: &models.Sample{SensorID: 7, PowerW: 260}}
	tariffs := &fakeTariffSource{err: models.ErrNoActiveTariff}

	est := NewEstimator(samples, tariffs, nil, DefaultInterval, zap.NewNop())
	if _, err := est.Instant(context.Background(), 7); err != models.ErrNoActiveTariff {
		t.Fatalf("Instant error = %v, want ErrNoActiveTariff", err)
	}
}

func TestEstimatorInstantServesFromCache(t *testing.T) {
	cached := &models.ConsumptionRecord{SensorID: 7, PowerW: 100}
	cache := &fakeSnapshotCache{record: cached}
	samples := &fakeSampleSource{latest: &models.Sample{SensorID: 7, PowerW: 260}}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, cache, DefaultInterval, zap.NewNop())
	record, err := est.Instant(context.Background(), 7)
	if err != nil {
		t.Fatalf("Instant returned error: %v", err)
	}
	if record != cached {
		t.Fatal("expected the cached record to be returned")
	}
	if samples.latestCalls != 0 {
		t.Fatalf("sample store queried %d times on cache hit, want 0", samples.latestCalls)
	}
}

func TestEstimatorInstantSavesToCache(t *testing.T) {
	cache := &fakeSnapshotCache{}
	samples := &fakeSampleSource{latest: &models.Sample{SensorID: 7, PowerW: 260, RecordedAt: time.Now().UTC()}}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, cache, DefaultInterval, zap.NewNop())
	if _, err := est.Instant(context.Background(), 7); err != nil {
		t.Fatalf("Instant returned error: %v", err)
	}
	if cache.saved == nil {
		t.Fatal("expected the estimate to be cached")
	}
	almostEqual(t, "cached MonthlyKWh", cache.saved.MonthlyKWh, 187.2)
}

func TestEstimatorRangeAveragesWindow(t *testing.T) {
	samples := &fakeSampleSource{avgPower: 500, avgCount: 12}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, nil, DefaultInterval, zap.NewNop())
	to := time.Now().UTC()
	from := to.Add(-time.Hour)

	record, err := est.Range(context.Background(), 7, from, to)
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}
	almostEqual(t, "PowerW", record.PowerW, 500)
	almostEqual(t, "EnergyKWh", record.EnergyKWh, 0.5/12)
	if record.From == nil || record.To == nil {
		t.Fatal("expected window bounds on the record")
	}
	if !record.From.Equal(from) || !record.To.Equal(to) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", record.From, record.To, from, to)
	}
}

func TestEstimatorRangeNoSamples(t *testing.T) {
	samples := &fakeSampleSource{avgCount: 0}
	tariffs := &fakeTariffSource{tariff: testTariff()}

	est := NewEstimator(samples, tariffs, nil, DefaultInterval, zap.NewNop())
	to := time.Now().UTC()

	record, err := est.Range(context.Background(), 7, to.Add(-time.Hour), to)
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}
	if !record.NoData {
		t.Fatal("expected NoData record for an empty window")
	}
}

func TestEstimatorRangeRejectsInvertedWindow(t *testing.T) {
	est := NewEstimator(&fakeSampleSource{}, &fakeTariffSource{tariff: testTariff()}, nil, DefaultInterval, zap.NewNop())

	now := time.Now().UTC()
	_, err := est.Range(context.Background(), 7, now, now.Add(-time.Hour))
	if !models.IsValidation(err) {
		t.Fatalf("Range error = %v, want validation error", err)
	}
}

func TestEstimatorSeriesTotalsAndExtremes(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	samples := &fakeSampleSource{points: []models.MetricPoint{
		{RecordedAt: base, Value: 200},
		{RecordedAt: base.Add(5 * time.Minute), Value: 100},
		{RecordedAt: base.Add(10 * time.Minute), Value: 300},
	}}
	est := NewEstimator(samples, &fakeTariffSource{tariff: testTariff()}, nil, DefaultInterval, zap.NewNop())

	series, err := est.Series(context.Background(), 3, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Series returned error: %v", err)
	}
	if len(series.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(series.Points))
	}
	almostEqual(t, "TotalKWh", series.TotalKWh, (0.2+0.1+0.3)/12)
	almostEqual(t, "Min.EnergyKWh", series.Min.EnergyKWh, 0.1/12)
	almostEqual(t, "Max.EnergyKWh", series.Max.EnergyKWh, 0.3/12)
}

func TestEstimatorMetricCarriesUnitAndExtremes(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	samples := &fakeSampleSource{
		points: []models.MetricPoint{{RecordedAt: base, Value: 127.3}},
		min:    126.8,
		max:    127.9,
	}
	est := NewEstimator(samples, &fakeTariffSource{tariff: testTariff()}, nil, DefaultInterval, zap.NewNop())

	series, err := est.Metric(context.Background(), 3, models.MetricVoltage, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Metric returned error: %v", err)
	}
	if series.Unit != "Volt (V)" {
		t.Fatalf("Unit = %q, want Volt (V)", series.Unit)
	}
	almostEqual(t, "Min", series.Min, 126.8)
	almostEqual(t, "Max", series.Max, 127.9)
}
