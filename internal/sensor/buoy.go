package sensor

import (
	"time"

	"tidewatch/internal/config"
	"tidewatch/pkg/ndbc"
)

// Buoy builds the buoy sensor from the latest feed observation. Water
// temperature is the state; every other measured column becomes an attribute
// with unit and observation time companions. Missing columns are omitted so
// a consumer keeps its previous values.
func Buoy(e config.Entry, obs *ndbc.Observation, now time.Time) State {
	s := newState(e, "buoy", "Water Temperature", NDBCAttribution, now)
	s.Unit = temperatureUnit(e)
	if obs == nil {
		return s
	}

	if wtmp, ok := obs.Field(ndbc.WaterTemp); ok {
		if e.Metric() {
			s.State = wtmp.Value
		} else {
			s.State = ndbc.ToFahrenheit(wtmp.Value)
		}
	}

	var timeStr string
	if !obs.Time.IsZero() {
		t := obs.Time
		if e.TimeZone != "gmt" {
			t = t.Local()
		}
		timeStr = t.Format(attrTimeFormat)
	}

	for name, m := range obs.Fields {
		if ndbc.DateField(name) || m.Missing {
			continue
		}

		if timeStr != "" {
			s.Attributes[name+"_time"] = timeStr
		}

		if !e.Metric() && m.Unit == ndbc.Celsius {
			s.Attributes[name+"_unit"] = ndbc.Fahrenheit
			s.Attributes[name] = ndbc.ToFahrenheit(m.Value)
		} else {
			s.Attributes[name+"_unit"] = m.Unit
			s.Attributes[name] = m.Number()
		}
	}

	return s
}
