package sensor

import (
	"testing"
	"time"

	"tidewatch/internal/config"
	"tidewatch/pkg/coops"
)

func tempEntry() config.Entry {
	e := config.Entry{StationID: "9413745", Kind: config.Temp}
	e.ApplyDefaults()
	return e
}

func TestTemperature(t *testing.T) {
	now := time.Date(2024, time.March, 1, 13, 0, 0, 0, time.Local)
	d := TempData{
		Water: coops.ObservationList{obs(now.Add(-10*time.Minute), 57.4)},
		Air:   coops.ObservationList{obs(now.Add(-10*time.Minute), 61.2)},
	}

	s := Temperature(tempEntry(), d, now)

	if s.State != 57.4 {
		t.Errorf("state = %v, want the water temperature", s.State)
	}
	if s.Unit != "°F" {
		t.Errorf("unit = %q", s.Unit)
	}
	if got := s.Attributes["temperature"]; got != 57.4 {
		t.Errorf("temperature = %v", got)
	}
	if got := s.Attributes["air_temperature"]; got != 61.2 {
		t.Errorf("air_temperature = %v", got)
	}
	wantTime := now.Add(-10 * time.Minute).Format("2006-01-02T15:04")
	if got := s.Attributes["temperature_time"]; got != wantTime {
		t.Errorf("temperature_time = %v, want %v", got, wantTime)
	}
}

func TestTemperatureAirFallback(t *testing.T) {
	now := time.Date(2024, time.March, 1, 13, 0, 0, 0, time.Local)
	d := TempData{
		Air: coops.ObservationList{obs(now.Add(-10*time.Minute), 61.2)},
	}

	s := Temperature(tempEntry(), d, now)
	if s.State != 61.2 {
		t.Errorf("state = %v, want the air temperature fallback", s.State)
	}
	if _, ok := s.Attributes["temperature"]; ok {
		t.Errorf("water temperature attribute present without data")
	}
}

func TestTemperatureNoData(t *testing.T) {
	now := time.Date(2024, time.March, 1, 13, 0, 0, 0, time.Local)
	s := Temperature(tempEntry(), TempData{}, now)
	if s.State != nil {
		t.Errorf("state = %v, want nil", s.State)
	}

	metric := tempEntry()
	metric.Units = "metric"
	if got := Temperature(metric, TempData{}, now); got.Unit != "°C" {
		t.Errorf("unit = %q, want °C for metric units", got.Unit)
	}
}
