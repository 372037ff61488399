package sensor

import (
	"testing"
	"time"

	"tidewatch/internal/config"
	"tidewatch/pkg/ndbc"
)

const buoyFeed = `#YY  MM DD hh mm WDIR WSPD ATMP  WTMP  DEWP
#yr  mo dy hr mn degT m/s  degC  degC  degC
2024 03 01 17 50 200  5.0  11.2  12.6    MM
`

func buoyEntry(units, tz string) config.Entry {
	e := config.Entry{StationID: "41001", Kind: config.Buoy, Units: units, TimeZone: tz}
	e.ApplyDefaults()
	return e
}

func parseFeed(t *testing.T) *ndbc.Observation {
	t.Helper()
	obs, err := ndbc.Parse(buoyFeed)
	if err != nil {
		t.Fatal(err)
	}
	return obs
}

func TestBuoyEnglish(t *testing.T) {
	now := time.Now()
	s := Buoy(buoyEntry("english", "lst_ldt"), parseFeed(t), now)

	// 12.6 degC converts to 54.7 degF.
	if s.State != 54.7 {
		t.Errorf("state = %v, want 54.7", s.State)
	}
	if got := s.Attributes["WTMP"]; got != 54.7 {
		t.Errorf("WTMP = %v, want 54.7", got)
	}
	if got := s.Attributes["WTMP_unit"]; got != "degF" {
		t.Errorf("WTMP_unit = %v, want degF", got)
	}

	// Non-temperature units pass through, integers stay integers.
	if got := s.Attributes["WDIR"]; got != 200 {
		t.Errorf("WDIR = %v (%T), want int 200", got, got)
	}
	if got := s.Attributes["WDIR_unit"]; got != "degT" {
		t.Errorf("WDIR_unit = %v", got)
	}

	// Date columns and missing columns never become attributes.
	for _, key := range []string{"YY", "MM", "DD", "hh", "mm", "DEWP", "DEWP_unit", "DEWP_time"} {
		if _, ok := s.Attributes[key]; ok {
			t.Errorf("attribute %s should be omitted", key)
		}
	}

	wantTime := time.Date(2024, time.March, 1, 17, 50, 0, 0, time.UTC).Local().Format("2006-01-02T15:04")
	if got := s.Attributes["WTMP_time"]; got != wantTime {
		t.Errorf("WTMP_time = %v, want %v", got, wantTime)
	}
}

func TestBuoyMetricGMT(t *testing.T) {
	now := time.Now()
	s := Buoy(buoyEntry("metric", "gmt"), parseFeed(t), now)

	if s.State != 12.6 {
		t.Errorf("state = %v, want 12.6 unconverted", s.State)
	}
	if got := s.Attributes["WTMP_unit"]; got != "degC" {
		t.Errorf("WTMP_unit = %v, want degC", got)
	}
	if got := s.Attributes["WTMP_time"]; got != "2024-03-01T17:50" {
		t.Errorf("WTMP_time = %v, want the UTC stamp", got)
	}
}

func TestBuoyMissingWaterTemp(t *testing.T) {
	feed := "#YY  MM DD hh mm WTMP\n#yr  mo dy hr mn degC\n2024 03 01 17 50   MM\n"
	obs, err := ndbc.Parse(feed)
	if err != nil {
		t.Fatal(err)
	}

	s := Buoy(buoyEntry("english", "lst_ldt"), obs, time.Now())
	if s.State != nil {
		t.Errorf("state = %v, want nil when WTMP is the sentinel", s.State)
	}
}

func TestBuoyNilObservation(t *testing.T) {
	s := Buoy(buoyEntry("english", "lst_ldt"), nil, time.Now())
	if s.State != nil || len(s.Attributes) != 0 {
		t.Errorf("nil observation produced state %v attrs %v", s.State, s.Attributes)
	}
}
