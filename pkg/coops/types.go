package coops

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const stampFormat = "2006-01-02 15:04"

// Product selects which data series a Query asks for.
type Product string

const (
	Predictions      Product = "predictions"
	WaterLevel       Product = "water_level"
	WaterTemperature Product = "water_temperature"
	AirTemperature   Product = "air_temperature"
)

// Units selects the measurement system for returned values.
type Units string

const (
	UnitsEnglish Units = "english"
	UnitsMetric  Units = "metric"
)

// TimeZone selects how the API localizes timestamps.
type TimeZone string

const (
	GMT           TimeZone = "gmt"
	LocalStandard TimeZone = "lst"
	LocalDaylight TimeZone = "lst_ldt"
)

// Prediction holds a single tide extremum prediction.
type Prediction struct {
	// Local time of tide prediction
	Time Time `json:"t"`
	// Height relative to the MLLW datum
	Height Height `json:"v"`
	// High or Low tide, "H" or "L" when encoded
	Type Tide `json:"type"`
}

// T returns the prediction time as a plain time.Time.
func (p Prediction) T() time.Time {
	return time.Time(p.Time)
}

// PredictionList is a time series of Prediction.
type PredictionList []Prediction

// Observation is a single timestamped measurement from an observation
// product (water level or temperature).
type Observation struct {
	Time  Time   `json:"t"`
	Value Height `json:"v"`
}

// T returns the observation time as a plain time.Time.
func (o Observation) T() time.Time {
	return time.Time(o.Time)
}

// ObservationList is a time series of Observation.
type ObservationList []Observation

// Latest returns the most recent observation in the list.
func (l ObservationList) Latest() (Observation, bool) {
	if len(l) == 0 {
		return Observation{}, false
	}
	return l[len(l)-1], true
}

// Verify the custom types can be unmarshaled
var _ json.Unmarshaler = &Time{}
var _ json.Unmarshaler = new(Height)
var _ json.Unmarshaler = new(Tide)

// result is the envelope returned by the API. Errors are reported in-band
// with HTTP 200.
type result struct {
	Predictions PredictionList  `json:"predictions"`
	Data        ObservationList `json:"data"`
	Error       *apiError       `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// APIError is an error reported by the CO-OPS API itself, e.g. an unknown
// station or a window with no data, as opposed to a transport failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("co-ops api: %s", e.Message)
}

type Time time.Time

func (t *Time) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("timestamp %q not string: %w", buf, err)
	}
	parsed, err := time.ParseInLocation(stampFormat, s, time.Local)
	if err != nil {
		return fmt.Errorf("timestamp %q not in fmt %q: %w", s, stampFormat, err)
	}
	*t = Time(parsed)
	return nil
}

type Height float64

func (h *Height) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("value %q not string: %w", buf, err)
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("value %q not a float: %w", s, err)
	}
	*h = Height(parsed)
	return nil
}

type Tide uint

const (
	HighTide Tide = iota
	LowTide
)

func (t Tide) Valid() bool {
	return t == HighTide || t == LowTide
}

func (t *Tide) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("tide %q not a string: %w", buf, err)
	}
	switch s {
	case "H":
		*t = HighTide
	case "L":
		*t = LowTide
	default:
		return fmt.Errorf("invalid tide type %q", s)
	}
	return nil
}

func (t Tide) String() string {
	switch t {
	case HighTide:
		return "H"
	case LowTide:
		return "L"
	default:
		return "invalid"
	}
}

func (p Prediction) String() string {
	return fmt.Sprintf("{t: %s, v: %f, type: %s}",
		time.Time(p.Time).Format(time.RFC822),
		p.Height,
		p.Type.String())
}
