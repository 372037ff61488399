package sensor

import (
	"time"

	"tidewatch/internal/config"
	"tidewatch/pkg/coops"
)

// TempData holds the recent temperature observations for a temperature
// station. Either series may be empty when the station lacks that product.
type TempData struct {
	Water coops.ObservationList
	Air   coops.ObservationList
}

// Temperature builds the temperature sensor. Water temperature is the state;
// stations without it fall back to air temperature.
func Temperature(e config.Entry, d TempData, now time.Time) State {
	s := newState(e, "temp", "Water Temperature", NOAAAttribution, now)
	s.Unit = temperatureUnit(e)

	if water, ok := d.Water.Latest(); ok {
		s.State = float64(water.Value)
		s.Attributes["temperature"] = float64(water.Value)
		s.Attributes["temperature_time"] = water.T().Format(attrTimeFormat)
	}
	if air, ok := d.Air.Latest(); ok {
		if s.State == nil {
			// If there is no water temperature use the air temperature
			s.State = float64(air.Value)
		}
		s.Attributes["air_temperature"] = float64(air.Value)
		s.Attributes["air_temperature_time"] = air.T().Format(attrTimeFormat)
	}

	return s
}
