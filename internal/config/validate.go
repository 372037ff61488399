package config

import (
	"context"

	"tidewatch/pkg/stations"
)

// ErrorCode is one of the fixed set of user-facing setup failures. The empty
// code means the entry validated.
type ErrorCode string

const (
	CodeOK                ErrorCode = ""
	CodeCannotConnect     ErrorCode = "cannot_connect"
	CodeInvalidStation    ErrorCode = "invalid_station"
	CodeInvalidBuoyID     ErrorCode = "invalid_buoy_id"
	CodeAlreadyConfigured ErrorCode = "already_configured"
	CodeUnknown           ErrorCode = "unknown"
)

// Message renders the code for form display.
func (c ErrorCode) Message() string {
	switch c {
	case CodeCannotConnect:
		return "Could not reach the station directory. Check connectivity and try again."
	case CodeInvalidStation:
		return "No station with that id exists."
	case CodeInvalidBuoyID:
		return "Buoy ids are at least 5 letters and digits."
	case CodeAlreadyConfigured:
		return "That station is already configured."
	case CodeUnknown:
		return "Something unexpected went wrong."
	}
	return ""
}

// Validator checks candidate entries against the station directory.
type Validator struct {
	Directory *stations.Directory

	// Exists reports whether an entry with the same station and kind is
	// already configured. Optional.
	Exists func(e Entry) bool
}

// Validate confirms an entry can be set up. CO-OPS station ids are checked
// against the directory; buoy ids are checked by shape only, since the buoy
// feed has no directory and can be slow. On success the entry's coordinates
// are filled from the directory record when one exists.
func (v *Validator) Validate(ctx context.Context, e *Entry) ErrorCode {
	e.ApplyDefaults()
	if err := e.Check(); err != nil {
		return CodeUnknown
	}

	if v.Exists != nil && v.Exists(*e) {
		return CodeAlreadyConfigured
	}

	if e.Kind == Buoy {
		if !stations.ValidBuoyID(e.StationID) {
			return CodeInvalidBuoyID
		}
		return CodeOK
	}

	station, found, err := v.Directory.Lookup(ctx, e.StationID)
	if err != nil {
		return CodeCannotConnect
	}
	if !found {
		return CodeInvalidStation
	}

	e.Lat = station.Lat
	e.Lng = station.Lng
	return CodeOK
}
