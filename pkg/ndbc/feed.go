// Package ndbc fetches and decodes the NDBC realtime2 buoy feed. The feed is
// plain text with a field-name header, a unit header, and data rows ordered
// most recent first. Missing values are marked with the sentinel "MM".
package ndbc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://www.ndbc.noaa.gov/data/realtime2"

	// Sentinel marks a column with no data in the feed.
	Sentinel = "MM"

	// WaterTemp is the field name for water temperature, reported in degC.
	WaterTemp = "WTMP"

	// Celsius is the unit string the feed uses for temperatures.
	Celsius = "degC"
	// Fahrenheit is the unit string for converted temperatures.
	Fahrenheit = "degF"
)

// ErrShortFeed reports a feed body without the two header lines and at least
// one data row.
var ErrShortFeed = errors.New("ndbc: feed has fewer than 3 lines")

// dateFields are the columns that assemble into the observation timestamp.
var dateFields = map[string]bool{
	"YY": true, "MM": true, "DD": true, "hh": true, "mm": true,
}

// Measurement is one decoded column: a value with its unit. Missing columns
// retain the unit but carry no value.
type Measurement struct {
	Unit    string
	Value   float64
	Integer bool
	Missing bool
}

// Number returns the value with the same numeric kind the feed used: int for
// tokens without a decimal point, float64 otherwise. Missing measurements
// return nil.
func (m Measurement) Number() any {
	if m.Missing {
		return nil
	}
	if m.Integer {
		return int(m.Value)
	}
	return m.Value
}

// Observation is the most recent data row of a buoy feed.
type Observation struct {
	// Time of the observation in UTC, assembled from the date columns.
	// Zero if any date column was absent.
	Time time.Time

	Fields map[string]Measurement
}

// Field returns the named measurement if it is present and carries a value.
func (o *Observation) Field(name string) (Measurement, bool) {
	m, ok := o.Fields[name]
	if !ok || m.Missing {
		return Measurement{}, false
	}
	return m, true
}

// DateField reports whether name is one of the columns that make up the
// observation timestamp.
func DateField(name string) bool {
	return dateFields[name]
}

// Parse decodes the latest observation from a raw feed body.
func Parse(text string) (*Observation, error) {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[2]) == "" {
		return nil, ErrShortFeed
	}

	fields := strings.Fields(strings.TrimLeft(lines[0], "#"))
	units := strings.Fields(strings.TrimLeft(lines[1], "#"))
	values := strings.Fields(lines[2]) // latest values are at the top of the file

	obs := &Observation{Fields: make(map[string]Measurement, len(fields))}
	for i := range fields {
		if i >= len(units) || i >= len(values) {
			break
		}
		m := Measurement{Unit: units[i]}
		token := values[i]
		switch {
		case token == Sentinel:
			m.Missing = true
		case strings.Contains(token, "."):
			v, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, fmt.Errorf("ndbc: field %s: %w", fields[i], err)
			}
			m.Value = v
		default:
			v, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("ndbc: field %s: %w", fields[i], err)
			}
			m.Value = float64(v)
			m.Integer = true
		}
		obs.Fields[fields[i]] = m
	}

	obs.Time = timestamp(obs.Fields)
	return obs, nil
}

// timestamp assembles the UTC observation time from the date columns.
func timestamp(fields map[string]Measurement) time.Time {
	var parts [5]int
	for i, name := range []string{"YY", "MM", "DD", "hh", "mm"} {
		m, ok := fields[name]
		if !ok || m.Missing {
			return time.Time{}
		}
		parts[i] = int(m.Value)
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC)
}

// ToFahrenheit converts a Celsius reading to Fahrenheit rounded to one
// decimal place, matching the precision the feed reports.
func ToFahrenheit(c float64) float64 {
	return math.Round((c*9/5+32)*10) / 10
}

// Client fetches buoy feeds by station id.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client against the production feed with a request
// timeout.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Latest fetches and decodes the most recent observation for a station.
func (c *Client) Latest(ctx context.Context, station string) (*Observation, error) {
	addr := fmt.Sprintf("%s/%s.txt", c.BaseURL, station)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ndbc: buoy %s responded %s", station, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return Parse(string(body))
}
