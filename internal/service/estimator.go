package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

// SampleSource is the slice of the sample store the estimator reads.
type SampleSource interface {
	Latest(ctx context.Context, sensorID int64) (*models.Sample, error)
	AveragePower(ctx context.Context, sensorID int64, from, to time.Time) (float64, int, error)
	MetricSeries(ctx context.Context, deviceID int64, kind models.MetricKind, from, to time.Time) ([]models.MetricPoint, float64, float64, error)
}

// TariffSource provides the active tariff version.
type TariffSource interface {
	Active(ctx context.Context) (*models.Tariff, error)
}

// SnapshotCache caches latest estimates. Optional; cache failures are logged
// and never surfaced.
type SnapshotCache interface {
	Get(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error)
	Save(ctx context.Context, record *models.ConsumptionRecord) error
}

// Estimator turns power samples into energy, demand and cost figures under
// the active tariff.
type Estimator struct {
	samples  SampleSource
	tariffs  TariffSource
	cache    SnapshotCache
	interval Interval
	logger   *zap.Logger
}

// NewEstimator returns service instance. cache may be nil.
func NewEstimator(samples SampleSource, tariffs TariffSource, cache SnapshotCache, interval Interval, logger *zap.Logger) *Estimator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Estimator{
		samples:  samples,
		tariffs:  tariffs,
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the sampling interval the estimator projects with.
func (e *Estimator) Interval() Interval {
	return e.interval
}

// Instant estimates from the sensor's most recent sample. A sensor without
// samples yields a NoData record, not an error. A missing tariff always
// surfaces: every monetary figure depends on it.
func (e *Estimator) Instant(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error) {
	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, sensorID); err == nil && cached != nil {
			return cached, nil
		}
	}

	sample, err := e.samples.Latest(ctx, sensorID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.ConsumptionRecord{SensorID: sensorID, NoData: true}, nil
	}
	if err != nil {
		return nil, err
	}

	tariff, err := e.tariffs.Active(ctx)
	if err != nil {
		return nil, err
	}

	record := e.estimate(sensorID, sample.PowerW, sample.RecordedAt, tariff)

	if e.cache != nil {
		if err := e.cache.Save(ctx, &record); err != nil {
			e.logger.Warn("failed to cache consumption estimate", zap.Int64("sensor_id", sensorID), zap.Error(err))
		}
	}
	return &record, nil
}

// Range estimates from the average power over an explicit window, feeding
// that average through the same projection as Instant.
func (e *Estimator) Range(ctx context.Context, sensorID int64, from, to time.Time) (*models.ConsumptionRecord, error) {
	if err := ValidateWindow(from, to); err != nil {
		return nil, err
	}

	avgPower, n, err := e.samples.AveragePower(ctx, sensorID, from, to)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &models.ConsumptionRecord{SensorID: sensorID, From: &from, To: &to, NoData: true}, nil
	}

	tariff, err := e.tariffs.Active(ctx)
	if err != nil {
		return nil, err
	}

	record := e.estimate(sensorID, avgPower, to, tariff)
	record.From = &from
	record.To = &to
	return &record, nil
}

// RangeDefault estimates over the trailing day, the fallback window when a
// caller gives no explicit range.
func (e *Estimator) RangeDefault(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error) {
	now := time.Now().UTC()
	return e.Range(ctx, sensorID, now.Add(-24*time.Hour), now)
}

// Series lists per-sample energy for a device over a window, with the window
// total and extremes.
func (e *Estimator) Series(ctx context.Context, deviceID int64, from, to time.Time) (*models.ConsumptionSeries, error) {
	if err := ValidateWindow(from, to); err != nil {
		return nil, err
	}

	points, _, _, err := e.samples.MetricSeries(ctx, deviceID, models.MetricPower, from, to)
	if err != nil {
		return nil, err
	}

	series := &models.ConsumptionSeries{DeviceID: deviceID, From: from, To: to}
	for _, p := range points {
		sp := models.SamplePoint{
			RecordedAt: p.RecordedAt,
			PowerW:     p.Value,
			EnergyKWh:  e.interval.EnergyKWh(p.Value),
		}
		series.Points = append(series.Points, sp)
		series.TotalKWh += sp.EnergyKWh
		if series.Min == nil || sp.EnergyKWh < series.Min.EnergyKWh {
			m := sp
			series.Min = &m
		}
		if series.Max == nil || sp.EnergyKWh > series.Max.EnergyKWh {
			m := sp
			series.Max = &m
		}
	}
	return series, nil
}

// Metric returns one measured field of a device's samples over a window.
func (e *Estimator) Metric(ctx context.Context, deviceID int64, kind models.MetricKind, from, to time.Time) (*models.MetricSeries, error) {
	if err := ValidateWindow(from, to); err != nil {
		return nil, err
	}

	points, min, max, err := e.samples.MetricSeries(ctx, deviceID, kind, from, to)
	if err != nil {
		return nil, err
	}
	return &models.MetricSeries{
		DeviceID: deviceID,
		Kind:     kind,
		Unit:     kind.Unit(),
		From:     from,
		To:       to,
		Min:      min,
		Max:      max,
		Points:   points,
	}, nil
}

// estimate projects one power figure to per-sample, daily and monthly
// energy and cost under the given tariff.
func (e *Estimator) estimate(sensorID int64, powerW float64, sampledAt time.Time, tariff *models.Tariff) models.ConsumptionRecord {
	samplesPerDay := e.interval.SamplesPerDay()
	samplesPerMonth := e.interval.SamplesPerMonth()

	loadFactor := tariff.LoadFactor
	if loadFactor <= 0 {
		loadFactor = defaultLoadFactor
	}

	energy := e.interval.EnergyKWh(powerW)
	monthlyKWh := energy * samplesPerMonth
	demandKW := monthlyKWh / (24 * daysPerMonth * loadFactor)

	costs := models.CostDetail{
		Variable:     monthlyKWh * tariff.VariableChargePerKWh,
		Capacity:     demandKW * tariff.CapacityChargePerKW,
		Distribution: demandKW * tariff.DistributionChargePerKW,
		Fixed:        tariff.FixedChargePerMonth,
	}
	monthlyCost := costs.Variable + costs.Capacity + costs.Distribution + costs.Fixed
	costPerSample := monthlyCost / samplesPerMonth

	return models.ConsumptionRecord{
		SensorID:      sensorID,
		SampledAt:     sampledAt,
		PowerW:        powerW,
		EnergyKWh:     energy,
		DailyKWh:      energy * samplesPerDay,
		MonthlyKWh:    monthlyKWh,
		DemandKW:      demandKW,
		CostPerSample: costPerSample,
		DailyCost:     costPerSample * samplesPerDay,
		MonthlyCost:   monthlyCost,
		Costs:         costs,
		Tariff: models.TariffDetail{
			TariffID:                tariff.ID,
			Provider:                tariff.ProviderName,
			VariableChargePerKWh:    tariff.VariableChargePerKWh,
			CapacityChargePerKW:     tariff.CapacityChargePerKW,
			DistributionChargePerKW: tariff.DistributionChargePerKW,
			FixedChargePerMonth:     tariff.FixedChargePerMonth,
		},
	}
}
