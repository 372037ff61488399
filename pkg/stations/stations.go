// Package stations looks up NOAA station metadata from the CO-OPS directory
// API. Directory responses are cached per query type with an explicit TTL so
// a long-running process eventually sees new stations.
package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"tidewatch/pkg/cache"
)

const (
	DefaultBaseURL = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi/stations.json"

	// DefaultTTL bounds how stale the cached directory may get.
	DefaultTTL = 6 * time.Hour
)

// QueryType selects which station directory to fetch.
type QueryType string

const (
	TidePredictions QueryType = "tidepredictions"
	WaterLevels     QueryType = "waterlevels"
)

// Station is one directory record.
type Station struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Label renders the station for selection lists, e.g. "Santa Cruz (9413745)".
func (s Station) Label() string {
	name := s.Name
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s (%s)", name, s.ID)
}

type directoryResult struct {
	Stations []Station `json:"stations"`
}

// Directory fetches and caches station directories.
type Directory struct {
	BaseURL    string
	HTTPClient *http.Client

	cache *cache.Timed[[]Station]
}

// NewDirectory returns a Directory whose cached listings expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewDirectory(ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Directory{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.NewTimed[[]Station](ttl),
	}
}

// Stations returns the directory for a query type, from cache when fresh.
func (d *Directory) Stations(ctx context.Context, t QueryType) ([]Station, error) {
	key := string(t)
	if cached, ok := d.cache.Get(key); ok {
		return cached, nil
	}

	addr, err := url.Parse(d.BaseURL)
	if err != nil {
		return nil, err
	}
	q := make(url.Values)
	q.Add("type", string(t))
	addr.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("station directory responded %s", resp.Status)
	}

	var result directoryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	d.cache.Set(key, result.Stations)
	return result.Stations, nil
}

// States returns the sorted set of states that have tide prediction stations.
func (d *Directory) States(ctx context.Context) ([]string, error) {
	stations, err := d.Stations(ctx, TidePredictions)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var states []string
	for _, s := range stations {
		if s.State == "" || seen[s.State] {
			continue
		}
		seen[s.State] = true
		states = append(states, s.State)
	}
	sort.Strings(states)
	return states, nil
}

// ByState returns the tide prediction stations in a state.
func (d *Directory) ByState(ctx context.Context, state string) ([]Station, error) {
	stations, err := d.Stations(ctx, TidePredictions)
	if err != nil {
		return nil, err
	}

	var result []Station
	for _, s := range stations {
		if s.State == state {
			result = append(result, s)
		}
	}
	return result, nil
}

// Lookup finds a station by exact id, checking the tide prediction directory
// and then the water level directory. A missing station is reported through
// found, not an error.
func (d *Directory) Lookup(ctx context.Context, id string) (station Station, found bool, err error) {
	for _, t := range []QueryType{TidePredictions, WaterLevels} {
		stations, err := d.Stations(ctx, t)
		if err != nil {
			return Station{}, false, err
		}
		for _, s := range stations {
			if s.ID == id {
				return s, true, nil
			}
		}
	}
	return Station{}, false, nil
}

// ValidBuoyID checks the shape of an NDBC buoy id: at least 5 alphanumeric
// characters. Buoy feeds have no directory to consult, so validation is by
// format only.
func ValidBuoyID(id string) bool {
	if len(id) < 5 {
		return false
	}
	for _, r := range id {
		alnum := r >= '0' && r <= '9' ||
			r >= 'a' && r <= 'z' ||
			r >= 'A' && r <= 'Z'
		if !alnum {
			return false
		}
	}
	return true
}
