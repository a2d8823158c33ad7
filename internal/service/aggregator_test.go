package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"wattline/internal/models"
)

type fakeDeviceLister struct {
	devices []models.Device
	err     error
}

func (f *fakeDeviceLister) ListByUser(ctx context.Context, userID int64) ([]models.Device, error) {
	return f.devices, f.err
}

type fakeConsumptionSource struct {
	records    map[int64]*models.ConsumptionRecord
	rangeCalls int
}

func (f *fakeConsumptionSource) Instant(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error) {
	if r, ok := f.records[sensorID]; ok {
		return r, nil
	}
	return &models.ConsumptionRecord{SensorID: sensorID, NoData: true}, nil
}

func (f *fakeConsumptionSource) Range(ctx context.Context, sensorID int64, from, to time.Time) (*models.ConsumptionRecord, error) {
	f.rangeCalls++
	return f.Instant(ctx, sensorID)
}

type fakeRollupSource struct {
	dailies map[int64][]models.DailyPower
	stats   models.PowerStats
	buckets []models.PowerBucket

	requestedBuckets []string
}

func (f *fakeRollupSource) DailyAveragePower(ctx context.Context, sensorID int64, from, to time.Time) ([]models.DailyPower, error) {
	return f.dailies[sensorID], nil
}

func (f *fakeRollupSource) UserPowerStats(ctx context.Context, userID int64, from, to time.Time) (models.PowerStats, error) {
	return f.stats, nil
}

func (f *fakeRollupSource) UserBucketAverages(ctx context.Context, userID int64, from, to time.Time, bucket string) ([]models.PowerBucket, error) {
	f.requestedBuckets = append(f.requestedBuckets, bucket)
	return f.buckets, nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestAggregateForUserFoldsGroups(t *testing.T) {
	devices := &fakeDeviceLister{devices: []models.Device{
		{ID: 1, Name: "Fridge", OwnerUserID: 9, GroupID: int64Ptr(4), GroupName: strPtr("Kitchen"), SensorID: 11},
		{ID: 2, Name: "Microwave", OwnerUserID: 9, GroupID: int64Ptr(4), GroupName: strPtr("Kitchen"), SensorID: 12},
		{ID: 3, Name: "Heater", OwnerUserID: 9, SensorID: 13},
	}}
	estimates := &fakeConsumptionSource{records: map[int64]*models.ConsumptionRecord{
		11: {SensorID: 11, EnergyKWh: 0.02, MonthlyKWh: 170, MonthlyCost: 800, DailyKWh: 5.7, DailyCost: 26},
		12: {SensorID: 12, EnergyKWh: 0.01, MonthlyKWh: 85, MonthlyCost: 620, DailyKWh: 2.8, DailyCost: 20},
		13: {SensorID: 13, EnergyKWh: 0.05, MonthlyKWh: 430, MonthlyCost: 1900, DailyKWh: 14.3, DailyCost: 63},
	}}
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	rollup := &fakeRollupSource{dailies: map[int64][]models.DailyPower{
		11: {{Day: day, AvgPowerW: 1000}},
		13: {{Day: day.AddDate(0, 0, -1), AvgPowerW: 500}},
	}}

	agg := NewAggregator(devices, estimates, rollup, DefaultInterval, zap.NewNop())
	result, err := agg.AggregateForUser(context.Background(), 9, nil, nil)
	if err != nil {
		t.Fatalf("AggregateForUser returned error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(result.Groups))
	}
	kitchen, ungrouped := result.Groups[0], result.Groups[1]
	if kitchen.GroupName != "Kitchen" {
		t.Fatalf("Groups[0].GroupName = %q, want Kitchen", kitchen.GroupName)
	}
	if ungrouped.GroupName != models.UngroupedName {
		t.Fatalf("Groups[1].GroupName = %q, want %q", ungrouped.GroupName, models.UngroupedName)
	}
	if len(kitchen.Devices) != 2 || len(ungrouped.Devices) != 1 {
		t.Fatalf("group sizes = %d/%d, want 2/1", len(kitchen.Devices), len(ungrouped.Devices))
	}

	almostEqual(t, "kitchen.MonthlyKWh", kitchen.MonthlyKWh, 255)
	almostEqual(t, "ungrouped.MonthlyKWh", ungrouped.MonthlyKWh, 430)
	almostEqual(t, "Total.MonthlyKWh", result.Total.MonthlyKWh, kitchen.MonthlyKWh+ungrouped.MonthlyKWh)
	almostEqual(t, "Total.MonthlyCost", result.Total.MonthlyCost, 800+620+1900)
	if result.Total.GroupName != "total" {
		t.Fatalf("Total.GroupName = %q, want total", result.Total.GroupName)
	}
	if estimates.rangeCalls != 0 {
		t.Fatalf("range estimates used without a window: %d calls", estimates.rangeCalls)
	}

	if len(result.PerDay) != 2 {
		t.Fatalf("len(PerDay) = %d, want 2", len(result.PerDay))
	}
	if !result.PerDay[0].Day.Before(result.PerDay[1].Day) {
		t.Fatal("PerDay series is not ascending")
	}
	almostEqual(t, "PerDay[0].EnergyKWh", result.PerDay[0].EnergyKWh, 12)
	almostEqual(t, "PerDay[1].EnergyKWh", result.PerDay[1].EnergyKWh, 24)
}

func TestAggregateForUserNoDevices(t *testing.T) {
	agg := NewAggregator(&fakeDeviceLister{}, &fakeConsumptionSource{}, &fakeRollupSource{}, DefaultInterval, zap.NewNop())

	result, err := agg.AggregateForUser(context.Background(), 9, nil, nil)
	if err != nil {
		t.Fatalf("AggregateForUser returned error: %v", err)
	}
	if !result.NoDevices {
		t.Fatal("expected NoDevices for a user without devices")
	}
}

func TestAggregateForUserKeepsEmptyDevices(t *testing.T) {
	devices := &fakeDeviceLister{devices: []models.Device{
		{ID: 1, Name: "Fridge", OwnerUserID: 9, SensorID: 11},
	}}
	agg := NewAggregator(devices, &fakeConsumptionSource{}, &fakeRollupSource{}, DefaultInterval, zap.NewNop())

	result, err := agg.AggregateForUser(context.Background(), 9, nil, nil)
	if err != nil {
		t.Fatalf("AggregateForUser returned error: %v", err)
	}
	if len(result.Devices) != 1 {
		t.Fatalf("len(Devices) = %d, want 1", len(result.Devices))
	}
	if !result.Devices[0].Record.NoData {
		t.Fatal("expected NoData record for a device without samples")
	}
	almostEqual(t, "Total.MonthlyKWh", result.Total.MonthlyKWh, 0)
}

func TestAggregateForUserUsesRangeWithWindow(t *testing.T) {
	devices := &fakeDeviceLister{devices: []models.Device{
		{ID: 1, Name: "Fridge", OwnerUserID: 9, SensorID: 11},
	}}
	estimates := &fakeConsumptionSource{}
	agg := NewAggregator(devices, estimates, &fakeRollupSource{}, DefaultInterval, zap.NewNop())

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -3)
	if _, err := agg.AggregateForUser(context.Background(), 9, &from, &to); err != nil {
		t.Fatalf("AggregateForUser returned error: %v", err)
	}
	if estimates.rangeCalls != 1 {
		t.Fatalf("rangeCalls = %d, want 1", estimates.rangeCalls)
	}
}

func TestRangeSummaryBuckets(t *testing.T) {
	rollup := &fakeRollupSource{stats: models.PowerStats{MinW: 120, AvgW: 240, MaxW: 480, Samples: 100}}
	agg := NewAggregator(&fakeDeviceLister{}, &fakeConsumptionSource{}, rollup, DefaultInterval, zap.NewNop())

	summary, err := agg.RangeSummary(context.Background(), 9)
	if err != nil {
		t.Fatalf("RangeSummary returned error: %v", err)
	}
	labels := []string{"today", "last_7d", "last_30d", "last_60d"}
	if len(summary.Buckets) != len(labels) {
		t.Fatalf("len(Buckets) = %d, want %d", len(summary.Buckets), len(labels))
	}
	for i, want := range labels {
		if summary.Buckets[i].Label != want {
			t.Fatalf("Buckets[%d].Label = %q, want %q", i, summary.Buckets[i].Label, want)
		}
	}
	almostEqual(t, "MinKWh", summary.Buckets[0].MinKWh, 0.01)
	almostEqual(t, "AvgKWh", summary.Buckets[0].AvgKWh, 0.02)
	almostEqual(t, "MaxKWh", summary.Buckets[0].MaxKWh, 0.04)
}

func TestRangeDetailBucketSelection(t *testing.T) {
	rollup := &fakeRollupSource{}
	agg := NewAggregator(&fakeDeviceLister{}, &fakeConsumptionSource{}, rollup, DefaultInterval, zap.NewNop())

	if _, err := agg.RangeDetail(context.Background(), 9, nil, nil); err != nil {
		t.Fatalf("RangeDetail returned error: %v", err)
	}
	want := []string{"hour", "day", "week", "month"}
	if len(rollup.requestedBuckets) != len(want) {
		t.Fatalf("requested buckets = %v, want %v", rollup.requestedBuckets, want)
	}
	for i := range want {
		if rollup.requestedBuckets[i] != want[i] {
			t.Fatalf("requested buckets = %v, want %v", rollup.requestedBuckets, want)
		}
	}

	rollup.requestedBuckets = nil
	to := time.Now().UTC()
	from := to.Add(-2 * time.Hour)
	if _, err := agg.RangeDetail(context.Background(), 9, &from, &to); err != nil {
		t.Fatalf("RangeDetail returned error: %v", err)
	}
	if rollup.requestedBuckets[0] != "minute" {
		t.Fatalf("zoom bucket = %q, want minute", rollup.requestedBuckets[0])
	}
}

func TestRangeDetailSortsBuckets(t *testing.T) {
	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	rollup := &fakeRollupSource{buckets: []models.PowerBucket{
		{Start: base.Add(2 * time.Hour), AvgPowerW: 300},
		{Start: base, AvgPowerW: 100},
		{Start: base.Add(time.Hour), AvgPowerW: 200},
	}}
	agg := NewAggregator(&fakeDeviceLister{}, &fakeConsumptionSource{}, rollup, DefaultInterval, zap.NewNop())

	detail, err := agg.RangeDetail(context.Background(), 9, nil, nil)
	if err != nil {
		t.Fatalf("RangeDetail returned error: %v", err)
	}
	if len(detail.Zoom) != 3 {
		t.Fatalf("len(Zoom) = %d, want 3", len(detail.Zoom))
	}
	for i := 1; i < len(detail.Zoom); i++ {
		if !detail.Zoom[i-1].Start.Before(detail.Zoom[i].Start) {
			t.Fatalf("Zoom not ascending: %v before %v", detail.Zoom[i-1].Start, detail.Zoom[i].Start)
		}
	}
	almostEqual(t, "Zoom[0].AvgKWh", detail.Zoom[0].AvgKWh, 0.1/12)
	almostEqual(t, "Zoom[2].AvgKWh", detail.Zoom[2].AvgKWh, 0.3/12)
}

func TestReportAverages(t *testing.T) {
	devices := &fakeDeviceLister{devices: []models.Device{
		{ID: 1, Name: "Fridge", OwnerUserID: 9, SensorID: 11},
	}}
	estimates := &fakeConsumptionSource{records: map[int64]*models.ConsumptionRecord{
		11: {SensorID: 11, DailyCost: 30},
	}}
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	rollup := &fakeRollupSource{dailies: map[int64][]models.DailyPower{
		11: {
			{Day: from.Truncate(24 * time.Hour), AvgPowerW: 1000},
			{Day: to.Truncate(24 * time.Hour), AvgPowerW: 1000},
		},
	}}
	agg := NewAggregator(devices, estimates, rollup, DefaultInterval, zap.NewNop())

	report, err := agg.Report(context.Background(), 9, from, to)
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if report.DaysInPeriod != 2 {
		t.Fatalf("DaysInPeriod = %d, want 2", report.DaysInPeriod)
	}
	almostEqual(t, "AvgKWhPerDay", report.AvgKWhPerDay, 24)
	almostEqual(t, "AvgCostPerDay", report.AvgCostPerDay, 30)
}
