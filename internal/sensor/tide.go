package sensor

import (
	"fmt"
	"math"
	"time"

	"tidewatch/internal/config"
	"tidewatch/internal/tides"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/coops/splines"
	"tidewatch/pkg/sunset"
	"tidewatch/pkg/timetricks"
)

// TideData is everything a tide station poll gathers.
type TideData struct {
	Predictions coops.PredictionList
	// WaterLevel holds the recent water level observations, best effort.
	WaterLevel coops.ObservationList
	// SunEvents covers the prediction window when the station's coordinates
	// are known.
	SunEvents sunset.SunEvents
}

// Tide builds the tides sensor. Its state announces the next extremum; its
// attributes carry the position within the current cycle. With no future
// extremum in the window the next-tide attributes are omitted, not an error.
func Tide(e config.Entry, d TideData, now time.Time) State {
	s := newState(e, "tides", "Tides", NOAAAttribution, now)

	if latest, ok := d.WaterLevel.Latest(); ok {
		s.Attributes["current_water_level"] = float64(latest.Value)
		s.Attributes["current_water_level_time"] = latest.T().Format(attrTimeFormat)
	}

	if level := splines.CurvesBetween(d.Predictions).Eval(now); !math.IsNaN(level) {
		s.Attributes["predicted_water_level"] = math.Round(level*1000) / 1000
	}

	if rise, ok := d.SunEvents.NextOfKind(now, sunset.Sunrise); ok {
		s.Attributes["next_sunrise"] = rise.Time.Format(attrTimeFormat)
	}
	if set, ok := d.SunEvents.NextOfKind(now, sunset.Sunset); ok {
		s.Attributes["next_sunset"] = set.Time.Format(attrTimeFormat)
	}

	next, ok := tides.Next(d.Predictions, now)
	if !ok {
		return s
	}
	s.State = fmt.Sprintf("%s tide at %s", tideName(next.Type), timetricks.Clock(next.T()))

	iv, ok := tides.Around(d.Predictions, now)
	if !ok {
		return s
	}
	s.Attributes["next_tide_time"] = timetricks.Clock(iv.Next.T())
	s.Attributes["last_tide_time"] = timetricks.Clock(iv.Last.T())
	s.Attributes["next_tide_type"] = tideName(iv.Next.Type)
	s.Attributes["last_tide_type"] = tideName(opposite(iv.Next.Type))
	if iv.Rising() {
		s.Attributes["high_tide_level"] = float64(iv.Next.Height)
	} else {
		s.Attributes["low_tide_level"] = float64(iv.Next.Height)
	}
	s.Attributes["tide_factor"] = tides.Factor(iv, now)

	return s
}

// CurrentWaterLevel builds the water level sensor for a tide station.
func CurrentWaterLevel(e config.Entry, d TideData, now time.Time) State {
	s := newState(e, "current_water_level", "Current Water Level", NOAAAttribution, now)
	s.Unit = lengthUnit(e)

	latest, ok := d.WaterLevel.Latest()
	if !ok {
		return s
	}
	s.State = float64(latest.Value)
	s.Attributes["observation_time"] = latest.T().Format(attrTimeFormat)
	return s
}

func tideName(t coops.Tide) string {
	if t == coops.HighTide {
		return "High"
	}
	return "Low"
}

func opposite(t coops.Tide) coops.Tide {
	if t == coops.HighTide {
		return coops.LowTide
	}
	return coops.HighTide
}
