// Package sensor computes sensor states from fetched station data. A station
// entry's kind fixes its sensor set: tide stations yield a tides sensor and a
// current water level sensor, temperature stations a temperature sensor, and
// buoys a buoy sensor.
package sensor

import (
	"time"

	"tidewatch/internal/config"
)

const (
	NOAAAttribution = "Data provided by NOAA"
	NDBCAttribution = "Data provided by NDBC"

	attrTimeFormat = "2006-01-02T15:04"
)

// State is one sensor's externally visible snapshot: a primary state value
// plus named attributes, in the shape a home automation host expects.
type State struct {
	ID          string         `json:"id"`
	EntryID     string         `json:"entry_id"`
	Name        string         `json:"name"`
	State       any            `json:"state"`
	Unit        string         `json:"unit,omitempty"`
	Attribution string         `json:"attribution"`
	Attributes  map[string]any `json:"attributes"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newState(e config.Entry, suffix, name, attribution string, now time.Time) State {
	return State{
		ID:          e.ID() + "_" + suffix,
		EntryID:     e.ID(),
		Name:        name,
		Attribution: attribution,
		Attributes:  make(map[string]any),
		UpdatedAt:   now,
	}
}

func lengthUnit(e config.Entry) string {
	if e.Metric() {
		return "m"
	}
	return "ft"
}

func temperatureUnit(e config.Entry) string {
	if e.Metric() {
		return "°C"
	}
	return "°F"
}
