package coops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

	queryTimeFormat = "20060102 15:04"
	datumMLLW       = "MLLW"
)

// Query describes one request against the CO-OPS data API. Zero values for
// Units and TimeZone fall back to english units and local station time.
type Query struct {
	Station  string
	Start    time.Time
	End      time.Time
	Product  Product
	Units    Units
	TimeZone TimeZone
}

// Client talks to the CO-OPS data API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client with the production endpoint and a request
// timeout.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetPredictions fetches hi/lo tide predictions for the query window.
func (c *Client) GetPredictions(ctx context.Context, q *Query) (PredictionList, error) {
	q.Product = Predictions
	var res result
	if err := c.get(ctx, q, &res); err != nil {
		return nil, err
	}
	return res.Predictions, nil
}

// GetObservations fetches an observation product (water level or a
// temperature series) for the query window.
func (c *Client) GetObservations(ctx context.Context, q *Query) (ObservationList, error) {
	var res result
	if err := c.get(ctx, q, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) get(ctx context.Context, q *Query, res *result) error {
	addr, err := q.url(c.BaseURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("co-ops responded %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return err
	}

	// The API reports failures in-band with a 200 status.
	if res.Error != nil {
		return &APIError{Message: res.Error.Message}
	}

	return nil
}

func (q *Query) url(base string) (*url.URL, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *Query) build() url.Values {
	units := q.Units
	if units == "" {
		units = UnitsEnglish
	}
	tz := q.TimeZone
	if tz == "" {
		tz = LocalDaylight
	}

	vals := make(url.Values)
	vals.Add("begin_date", q.Start.Format(queryTimeFormat))
	vals.Add("end_date", q.End.Format(queryTimeFormat))
	vals.Add("station", q.Station)
	vals.Add("product", string(q.Product))
	vals.Add("units", string(units))
	vals.Add("time_zone", string(tz))
	vals.Add("format", "json")

	switch q.Product {
	case Predictions:
		vals.Add("datum", datumMLLW)
		vals.Add("interval", "hilo")
	case WaterLevel:
		vals.Add("datum", datumMLLW)
	}

	return vals
}
