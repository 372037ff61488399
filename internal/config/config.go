// Package config holds station entries: which stations to poll, what kind
// they are, and how to present their readings. Entries come from a TOML file
// or from the setup wizard, which persists them in postgres.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Kind is the station type, decided once at configuration time. Each kind
// maps to a fixed set of sensors.
type Kind string

const (
	Tides Kind = "tides"
	Temp  Kind = "temp"
	Buoy  Kind = "buoy"
)

func (k Kind) Valid() bool {
	switch k {
	case Tides, Temp, Buoy:
		return true
	}
	return false
}

const (
	DefaultName     = "NOAA Tides"
	DefaultTimeZone = "lst_ldt"
	DefaultUnits    = "english"
)

var (
	timeZones   = map[string]bool{"gmt": true, "lst": true, "lst_ldt": true}
	unitSystems = map[string]bool{"english": true, "metric": true}
)

// Entry is one configured station. Lat/Lng are filled in during validation
// for stations the directory knows about.
type Entry struct {
	StationID string `toml:"station_id" json:"station_id"`
	Kind      Kind   `toml:"type" json:"type"`
	Name      string `toml:"name" json:"name"`
	TimeZone  string `toml:"time_zone" json:"time_zone"`
	Units     string `toml:"units" json:"units"`

	Lat float64 `toml:"-" json:"lat"`
	Lng float64 `toml:"-" json:"lng"`
}

// ID uniquely identifies the entry. Duplicate protection keys on it.
func (e Entry) ID() string {
	return fmt.Sprintf("%s_%s", e.StationID, e.Kind)
}

// Metric reports whether the entry wants metric output.
func (e Entry) Metric() bool {
	return e.Units == "metric"
}

// ApplyDefaults fills unset optional fields.
func (e *Entry) ApplyDefaults() {
	if e.Name == "" {
		e.Name = DefaultName
	}
	if e.TimeZone == "" {
		e.TimeZone = DefaultTimeZone
	}
	if e.Units == "" {
		e.Units = DefaultUnits
	}
}

// Check validates the entry's fields without touching the network.
func (e Entry) Check() error {
	if e.StationID == "" {
		return fmt.Errorf("entry is missing station_id")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("entry %s: unknown type %q", e.StationID, e.Kind)
	}
	if !timeZones[e.TimeZone] {
		return fmt.Errorf("entry %s: unknown time_zone %q", e.StationID, e.TimeZone)
	}
	if !unitSystems[e.Units] {
		return fmt.Errorf("entry %s: unknown units %q", e.StationID, e.Units)
	}
	return nil
}

// fileFormat is the station entries file: a list of [[station]] tables.
type fileFormat struct {
	Stations []Entry `toml:"station"`
}

// Load reads station entries from a TOML file, applying defaults and
// rejecting malformed entries.
func Load(path string) ([]Entry, error) {
	var f fileFormat
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	seen := make(map[string]bool)
	for i := range f.Stations {
		f.Stations[i].ApplyDefaults()
		if err := f.Stations[i].Check(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		id := f.Stations[i].ID()
		if seen[id] {
			return nil, fmt.Errorf("%s: duplicate entry %s", path, id)
		}
		seen[id] = true
	}
	return f.Stations, nil
}
