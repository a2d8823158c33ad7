package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

// Calendar buckets accepted by the sample store rollup query.
const (
	bucketMinute = "minute"
	bucketHour   = "hour"
	bucketDay    = "day"
	bucketWeek   = "week"
	bucketMonth  = "month"
)

// DeviceLister enumerates a user's devices.
type DeviceLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Device, error)
}

// ConsumptionSource produces per-sensor estimates; the aggregator folds them.
type ConsumptionSource interface {
	Instant(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error)
	Range(ctx context.Context, sensorID int64, from, to time.Time) (*models.ConsumptionRecord, error)
}

// RollupSampleSource is the slice of the sample store the aggregator reads.
type RollupSampleSource interface {
	DailyAveragePower(ctx context.Context, sensorID int64, from, to time.Time) ([]models.DailyPower, error)
	UserPowerStats(ctx context.Context, userID int64, from, to time.Time) (models.PowerStats, error)
	UserBucketAverages(ctx context.Context, userID int64, from, to time.Time, bucket string) ([]models.PowerBucket, error)
}

// Aggregator rolls per-sensor estimates up across a user's devices, groups
// and calendar buckets.
type Aggregator struct {
	devices   DeviceLister
	estimates ConsumptionSource
	samples   RollupSampleSource
	interval  Interval
	logger    *zap.Logger
}

// NewAggregator returns service instance.
func NewAggregator(devices DeviceLister, estimates ConsumptionSource, samples RollupSampleSource, interval Interval, logger *zap.Logger) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Aggregator{
		devices:   devices,
		estimates: estimates,
		samples:   samples,
		interval:  interval,
		logger:    logger,
	}
}

// AggregateForUser folds per-device estimates into group totals, a grand
// total and a per-calendar-day energy series. With a window the estimates
// use range mode, otherwise each device's latest sample. A user without
// devices yields a NoDevices result; a device without samples stays in the
// output with zero values so group totals remain complete.
func (a *Aggregator) AggregateForUser(ctx context.Context, userID int64, from, to *time.Time) (*models.UserAggregate, error) {
	if from != nil && to != nil {
		if err := ValidateWindow(*from, *to); err != nil {
			return nil, err
		}
	}

	devices, err := a.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return &models.UserAggregate{UserID: userID, NoDevices: true}, nil
	}

	agg := &models.UserAggregate{UserID: userID, From: from, To: to}
	groupIndex := map[string]int{}

	for _, device := range devices {
		var record *models.ConsumptionRecord
		if from != nil && to != nil {
			record, err = a.estimates.Range(ctx, device.SensorID, *from, *to)
		} else {
			record, err = a.estimates.Instant(ctx, device.SensorID)
		}
		if err != nil {
			return nil, err
		}

		groupName := models.UngroupedName
		if device.GroupName != nil && *device.GroupName != "" {
			groupName = *device.GroupName
		}

		dc := models.DeviceConsumption{
			DeviceID:   device.ID,
			DeviceName: device.Name,
			GroupID:    device.GroupID,
			GroupName:  groupName,
			SensorID:   device.SensorID,
			Record:     *record,
		}
		agg.Devices = append(agg.Devices, dc)

		idx, ok := groupIndex[groupName]
		if !ok {
			idx = len(agg.Groups)
			groupIndex[groupName] = idx
			agg.Groups = append(agg.Groups, models.GroupConsumption{
				GroupID:   device.GroupID,
				GroupName: groupName,
			})
		}
		foldDevice(&agg.Groups[idx], dc)
		foldDevice(&agg.Total, dc)
	}
	agg.Total.GroupName = "total"

	perDay, err := a.perDaySeries(ctx, devices, from, to)
	if err != nil {
		return nil, err
	}
	agg.PerDay = perDay

	return agg, nil
}

// foldDevice adds a device's metrics into a bucket. Consumption and cost are
// additive across devices; no weighted averaging.
func foldDevice(g *models.GroupConsumption, dc models.DeviceConsumption) {
	g.Devices = append(g.Devices, dc)
	g.EnergyKWh += dc.Record.EnergyKWh
	g.CostPerSample += dc.Record.CostPerSample
	g.DailyKWh += dc.Record.DailyKWh
	g.DailyCost += dc.Record.DailyCost
	g.MonthlyKWh += dc.Record.MonthlyKWh
	g.MonthlyCost += dc.Record.MonthlyCost
}

// perDaySeries averages power per calendar day per device, converts the day
// average to energy and sums across devices, ascending by day.
func (a *Aggregator) perDaySeries(ctx context.Context, devices []models.Device, from, to *time.Time) ([]models.DayEnergy, error) {
	start, end := a.seriesWindow(from, to)

	byDay := map[time.Time]float64{}
	for _, device := range devices {
		days, err := a.samples.DailyAveragePower(ctx, device.SensorID, start, end)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			day := d.Day.UTC().Truncate(24 * time.Hour)
			byDay[day] += (d.AvgPowerW / 1000) * 24
		}
	}

	series := make([]models.DayEnergy, 0, len(byDay))
	for day, energy := range byDay {
		series = append(series, models.DayEnergy{Day: day, EnergyKWh: energy})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day.Before(series[j].Day) })
	return series, nil
}

func (a *Aggregator) seriesWindow(from, to *time.Time) (time.Time, time.Time) {
	if from != nil && to != nil {
		return *from, *to
	}
	now := time.Now().UTC()
	return now.AddDate(0, 0, -7), now
}

// RangeSummary computes min/avg/max of per-sample energy across all of the
// user's devices for today and the trailing 7/30/60 day windows.
func (a *Aggregator) RangeSummary(ctx context.Context, userID int64) (*models.RangeSummary, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	windows := []struct {
		label string
		from  time.Time
	}{
		{"today", midnight},
		{"last_7d", now.AddDate(0, 0, -7)},
		{"last_30d", now.AddDate(0, 0, -30)},
		{"last_60d", now.AddDate(0, 0, -60)},
	}

	summary := &models.RangeSummary{UserID: userID}
	for _, w := range windows {
		stats, err := a.samples.UserPowerStats(ctx, userID, w.from, now)
		if err != nil {
			return nil, err
		}
		summary.Buckets = append(summary.Buckets, models.EnergyStats{
			Label:   w.label,
			MinKWh:  a.interval.EnergyKWh(stats.MinW),
			AvgKWh:  a.interval.EnergyKWh(stats.AvgW),
			MaxKWh:  a.interval.EnergyKWh(stats.MaxW),
			Samples: stats.Samples,
		})
	}
	return summary, nil
}

// RangeDetail returns the zoomable bucket series (minute buckets for an
// explicit window, hour buckets for today) plus the fixed trailing daily,
// weekly and monthly series. All series are ascending by time.
func (a *Aggregator) RangeDetail(ctx context.Context, userID int64, from, to *time.Time) (*models.RangeDetail, error) {
	now := time.Now().UTC()

	var (
		zoomFrom, zoomTo time.Time
		zoomBucket       string
	)
	if from != nil && to != nil {
		if err := ValidateWindow(*from, *to); err != nil {
			return nil, err
		}
		zoomFrom, zoomTo, zoomBucket = *from, *to, bucketMinute
	} else {
		zoomFrom = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		zoomTo, zoomBucket = now, bucketHour
	}

	detail := &models.RangeDetail{UserID: userID}

	var err error
	if detail.Zoom, err = a.bucketSeries(ctx, userID, zoomFrom, zoomTo, zoomBucket); err != nil {
		return nil, err
	}
	if detail.Daily, err = a.bucketSeries(ctx, userID, now.AddDate(0, 0, -7), now, bucketDay); err != nil {
		return nil, err
	}
	if detail.Weekly, err = a.bucketSeries(ctx, userID, now.AddDate(0, 0, -28), now, bucketWeek); err != nil {
		return nil, err
	}
	if detail.Monthly, err = a.bucketSeries(ctx, userID, now.AddDate(0, -2, 0), now, bucketMonth); err != nil {
		return nil, err
	}
	return detail, nil
}

func (a *Aggregator) bucketSeries(ctx context.Context, userID int64, from, to time.Time, bucket string) ([]models.SeriesPoint, error) {
	rows, err := a.samples.UserBucketAverages(ctx, userID, from, to, bucket)
	if err != nil {
		return nil, err
	}

	series := make([]models.SeriesPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, models.SeriesPoint{
			Start:  row.Start,
			Label:  bucketLabel(row.Start, bucket),
			AvgKWh: a.interval.EnergyKWh(row.AvgPowerW),
		})
	}
	// The store query already orders ascending; sorting again keeps the
	// contract independent of fetch order.
	sort.Slice(series, func(i, j int) bool { return series[i].Start.Before(series[j].Start) })
	return series, nil
}

func bucketLabel(start time.Time, bucket string) string {
	switch bucket {
	case bucketMinute:
		return start.Format("15:04")
	case bucketHour:
		return start.Format("15:00")
	case bucketDay, bucketWeek:
		return start.Format("2006-01-02")
	case bucketMonth:
		return start.Format("2006-01")
	}
	return start.Format(time.RFC3339)
}

// Report builds the per-period rollup the external report renderer consumes.
func (a *Aggregator) Report(ctx context.Context, userID int64, from, to time.Time) (*models.Report, error) {
	if err := ValidateWindow(from, to); err != nil {
		return nil, err
	}

	agg, err := a.AggregateForUser(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}

	days := int(to.Sub(from).Hours()/24) + 1

	var totalKWh float64
	for _, d := range agg.PerDay {
		totalKWh += d.EnergyKWh
	}

	return &models.Report{
		UserID:        userID,
		From:          from,
		To:            to,
		GeneratedAt:   time.Now().UTC(),
		DaysInPeriod:  days,
		Aggregate:     *agg,
		AvgKWhPerDay:  totalKWh / float64(days),
		AvgCostPerDay: agg.Total.DailyCost,
	}, nil
}
