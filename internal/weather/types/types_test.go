package types

import (
	"testing"
	"time"
)

func TestLocationCoordinates(t *testing.T) {
	loc := NewLocation("Berlin", 52.52, 13.405)

	want := "Latitude: 52.52, Longitude: 13.405"
	if got := loc.Coordinates(); got != want {
		t.Errorf("Coordinates() = %q, want %q", got, want)
	}
}

func TestLocationKey(t *testing.T) {
	a := NewLocation("Berlin", 52.52, 13.405)
	b := NewLocation("Berlin", 52.52, 13.405)
	c := NewLocation("Berlin", 48.13, 11.57)

	if a.Key() != b.Key() {
		t.Errorf("identical locations produced different keys: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("locations with different coordinates share key %q", a.Key())
	}
}

func TestReportSummary(t *testing.T) {
	ts := time.Date(2025, time.June, 1, 12, 30, 0, 0, time.UTC)
	r := Report{
		Location:    NewLocation("Berlin", 52.52, 13.405),
		Temperature: 25.0,
		Humidity:    60,
		Condition:   Sunny,
		Timestamp:   ts,
	}

	want := "Weather in Berlin: 25.0°C, 60% humidity, Sunny (2025-06-01 12:30)"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestForecastDay(t *testing.T) {
	loc := NewLocation("Berlin", 52.52, 13.405)
	f := Forecast{
		Location: loc,
		Reports: []Report{
			{Location: loc, Temperature: 25.0},
			{Location: loc, Temperature: 26.0},
			{Location: loc, Temperature: 27.0},
		},
	}

	tests := []struct {
		name     string
		day      int
		wantTemp float64
		wantOK   bool
	}{
		{name: "first day", day: 0, wantTemp: 25.0, wantOK: true},
		{name: "last day", day: 2, wantTemp: 27.0, wantOK: true},
		{name: "negative index", day: -1, wantOK: false},
		{name: "index equals length", day: 3, wantOK: false},
		{name: "index beyond length", day: 10, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Day(tt.day)
			if ok != tt.wantOK {
				t.Fatalf("Day(%d) ok = %v, want %v", tt.day, ok, tt.wantOK)
			}
			if ok && got.Temperature != tt.wantTemp {
				t.Errorf("Day(%d) temperature = %v, want %v", tt.day, got.Temperature, tt.wantTemp)
			}
			if !ok && (got != Report{}) {
				t.Errorf("Day(%d) returned non-zero report for out-of-range index", tt.day)
			}
		})
	}

	if got := f.Days(); got != 3 {
		t.Errorf("Days() = %d, want 3", got)
	}
}
