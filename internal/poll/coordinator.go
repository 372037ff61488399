// Package poll schedules station fetches. Each configured entry gets one
// coordinator that owns a single result slot: the sensor states from the
// last successful fetch. A failed fetch keeps the previous states in place
// until the next interval comes around.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tidewatch/internal/config"
	"tidewatch/internal/metrics"
	"tidewatch/internal/sensor"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/ndbc"
	"tidewatch/pkg/sunset"
)

const (
	TidesInterval = time.Hour
	TempInterval  = 30 * time.Minute
	BuoyInterval  = 30 * time.Minute

	// Prediction queries reach back a day so the previous extremum is always
	// in the window, and forward another day for the next one.
	predictionLookback = 24 * time.Hour
	predictionWindow   = 48 * time.Hour

	waterLevelLookback  = 1 * time.Hour
	temperatureLookback = 60 * time.Minute
)

// FetchFunc gathers one poll's worth of sensor states for an entry.
type FetchFunc func(ctx context.Context, now time.Time) ([]sensor.State, error)

// Coordinator periodically runs a fetch and retains its latest result.
type Coordinator struct {
	entry    config.Entry
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger

	// now is the wall clock, factored out for tests.
	now func() time.Time

	// onUpdate runs after each successful refresh, outside the lock.
	onUpdate func(entryID string, states []sensor.State)

	mu          sync.RWMutex
	states      []sensor.State
	lastSuccess time.Time
	lastErr     error
}

// NewCoordinator builds a coordinator around an explicit fetch. Most callers
// want ForEntry instead.
func NewCoordinator(e config.Entry, interval time.Duration, fetch FetchFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		entry:    e,
		interval: interval,
		fetch:    fetch,
		logger:   logger.With("entry", e.ID()),
		now:      time.Now,
	}
}

// Clients are the upstream APIs coordinators fetch from.
type Clients struct {
	COOPS *coops.Client
	NDBC  *ndbc.Client
}

// ForEntry builds the coordinator matching the entry's station kind.
func ForEntry(e config.Entry, c Clients, logger *slog.Logger) *Coordinator {
	switch e.Kind {
	case config.Tides:
		return NewCoordinator(e, TidesInterval, tidesFetch(e, c, logger), logger)
	case config.Temp:
		return NewCoordinator(e, TempInterval, tempFetch(e, c, logger), logger)
	default:
		return NewCoordinator(e, BuoyInterval, buoyFetch(e, c), logger)
	}
}

// OnUpdate registers a hook that observes every successful refresh.
func (c *Coordinator) OnUpdate(f func(entryID string, states []sensor.State)) {
	c.onUpdate = f
}

// Entry returns the entry this coordinator polls.
func (c *Coordinator) Entry() config.Entry {
	return c.entry
}

// Run refreshes immediately and then on every interval tick until the
// context is canceled.
func (c *Coordinator) Run(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("refresh failed", "error", err)
			}
		}
	}
}

// Refresh performs one fetch. On failure the previous states stay in place
// and the error is retained for inspection.
func (c *Coordinator) Refresh(ctx context.Context) error {
	start := time.Now()
	now := c.now()
	states, err := c.fetch(ctx, now)
	metrics.ObservePoll(c.entry.ID(), time.Since(start), err)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.states = states
	c.lastSuccess = now
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debug("refreshed", "sensors", len(states))
	if c.onUpdate != nil {
		c.onUpdate(c.entry.ID(), states)
	}
	return nil
}

// States returns the sensor states from the last successful fetch.
func (c *Coordinator) States() []sensor.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]sensor.State, len(c.states))
	copy(out, c.states)
	return out
}

// LastError returns the most recent fetch error, nil after a success.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// LastSuccess returns when the slot was last filled.
func (c *Coordinator) LastSuccess() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

func tidesFetch(e config.Entry, c Clients, logger *slog.Logger) FetchFunc {
	return func(ctx context.Context, now time.Time) ([]sensor.State, error) {
		begin := now.Add(-predictionLookback)
		preds, err := c.COOPS.GetPredictions(ctx, &coops.Query{
			Station:  e.StationID,
			Start:    begin,
			End:      begin.Add(predictionWindow),
			Units:    coops.Units(e.Units),
			TimeZone: coops.TimeZone(e.TimeZone),
		})
		if err != nil {
			return nil, err
		}

		d := sensor.TideData{Predictions: preds}

		// The water level observation is garnish; stations without the
		// product still report tides.
		wl, err := c.COOPS.GetObservations(ctx, &coops.Query{
			Station:  e.StationID,
			Start:    now.Add(-waterLevelLookback),
			End:      now,
			Product:  coops.WaterLevel,
			Units:    coops.Units(e.Units),
			TimeZone: coops.TimeZone(e.TimeZone),
		})
		if err != nil {
			logger.Debug("no current water level", "error", err)
		} else {
			d.WaterLevel = wl
		}

		if e.Lat != 0 || e.Lng != 0 {
			d.SunEvents = sunset.GetSunEvents(now, 48*time.Hour, sunset.Place{Lat: e.Lat, Long: e.Lng})
		}

		return []sensor.State{
			sensor.Tide(e, d, now),
			sensor.CurrentWaterLevel(e, d, now),
		}, nil
	}
}

func tempFetch(e config.Entry, c Clients, logger *slog.Logger) FetchFunc {
	return func(ctx context.Context, now time.Time) ([]sensor.State, error) {
		var d sensor.TempData
		for _, series := range []struct {
			product coops.Product
			dst     *coops.ObservationList
		}{
			{coops.WaterTemperature, &d.Water},
			{coops.AirTemperature, &d.Air},
		} {
			obs, err := c.COOPS.GetObservations(ctx, &coops.Query{
				Station:  e.StationID,
				Start:    now.Add(-temperatureLookback),
				End:      now,
				Product:  series.product,
				Units:    coops.Units(e.Units),
				TimeZone: coops.TimeZone(e.TimeZone),
			})
			// Stations missing a product answer with an in-band API error;
			// that leaves the series empty. Transport failures fail the poll.
			var apiErr *coops.APIError
			if errors.As(err, &apiErr) {
				logger.Debug("product unavailable", "product", series.product, "error", err)
				continue
			}
			if err != nil {
				return nil, err
			}
			*series.dst = obs
		}

		return []sensor.State{sensor.Temperature(e, d, now)}, nil
	}
}

func buoyFetch(e config.Entry, c Clients) FetchFunc {
	return func(ctx context.Context, now time.Time) ([]sensor.State, error) {
		obs, err := c.NDBC.Latest(ctx, e.StationID)
		if err != nil {
			return nil, err
		}
		return []sensor.State{sensor.Buoy(e, obs, now)}, nil
	}
}
