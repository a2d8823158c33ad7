package models

import "testing"

func TestParseMetricKind(t *testing.T) {
	for _, raw := range []string{"voltage", "current", "power", "power_factor", "frequency"} {
		kind, err := ParseMetricKind(raw)
		if err != nil {
			t.Fatalf("ParseMetricKind(%q) returned error: %v", raw, err)
		}
		if kind.Column() == "" {
			t.Fatalf("%q has no column", raw)
		}
		if kind.Unit() == "" {
			t.Fatalf("%q has no unit", raw)
		}
	}

	if _, err := ParseMetricKind("temperature"); !IsValidation(err) {
		t.Fatalf("ParseMetricKind(temperature) error = %v, want validation error", err)
	}
}

func TestMetricColumns(t *testing.T) {
	cases := map[MetricKind]string{
		MetricVoltage:     "voltage_v",
		MetricCurrent:     "current_a",
		MetricPower:       "power_w",
		MetricPowerFactor: "power_factor",
		MetricFrequency:   "frequency_hz",
	}
	for kind, want := range cases {
		if got := kind.Column(); got != want {
			t.Fatalf("%s.Column() = %q, want %q", kind, got, want)
		}
	}
}

func TestClassifyAlertKey(t *testing.T) {
	if got := ClassifyAlertKey("system"); got != ClassSystem {
		t.Fatalf("ClassifyAlertKey(system) = %q", got)
	}
	if got := ClassifyAlertKey("System_Notice"); got != ClassSystem {
		t.Fatalf("ClassifyAlertKey(System_Notice) = %q", got)
	}
	if got := ClassifyAlertKey("consumption"); got != ClassConsumption {
		t.Fatalf("ClassifyAlertKey(consumption) = %q", got)
	}
	if got := ClassifyAlertKey("dac_risk"); got != ClassConsumption {
		t.Fatalf("ClassifyAlertKey(dac_risk) = %q", got)
	}
}
