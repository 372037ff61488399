package ndbc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi hPa    ft
2024 03 01 17 50 200  5.0  6.0   1.2     9   6.6 220 1017.1  11.2  12.6    MM   MM -1.1    MM
2024 03 01 16 50 210  4.0  5.0   1.1     9   6.4 220 1017.9  11.0  12.5    MM   MM -1.0    MM
`

func TestParse(t *testing.T) {
	obs, err := Parse(sampleFeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Floats keep their decimal kind.
	wtmp, ok := obs.Field(WaterTemp)
	if !ok {
		t.Fatalf("WTMP missing from parsed feed")
	}
	if wtmp.Unit != "degC" || wtmp.Value != 12.6 || wtmp.Integer {
		t.Errorf("WTMP = %+v, want 12.6 degC float", wtmp)
	}

	// Tokens without a decimal point decode as integers.
	wdir, ok := obs.Field("WDIR")
	if !ok {
		t.Fatalf("WDIR missing from parsed feed")
	}
	if !wdir.Integer || wdir.Number() != 200 || wdir.Unit != "degT" {
		t.Errorf("WDIR = %+v, want integer 200 degT", wdir)
	}

	// Sentinel columns keep the unit but carry no value.
	dewp := obs.Fields["DEWP"]
	if !dewp.Missing || dewp.Unit != "degC" {
		t.Errorf("DEWP = %+v, want missing with unit degC", dewp)
	}
	if dewp.Number() != nil {
		t.Errorf("missing measurement reported a number: %v", dewp.Number())
	}
	if _, ok := obs.Field("DEWP"); ok {
		t.Errorf("Field returned a missing measurement")
	}

	// Only the most recent row decodes.
	if pres := obs.Fields["PRES"]; pres.Value != 1017.1 {
		t.Errorf("PRES = %v, want the first data row's 1017.1", pres.Value)
	}

	want := time.Date(2024, time.March, 1, 17, 50, 0, 0, time.UTC)
	if !obs.Time.Equal(want) {
		t.Errorf("observation time = %v, want %v", obs.Time, want)
	}
}

func TestParseShortFeed(t *testing.T) {
	for _, text := range []string{
		"",
		"#YY  MM DD hh mm WDIR",
		"#YY  MM DD hh mm WDIR\n#yr  mo dy hr mn degT",
		"#YY  MM DD hh mm WDIR\n#yr  mo dy hr mn degT\n",
		"#YY  MM DD hh mm WDIR\r\n#yr  mo dy hr mn degT\r\n",
		"#YY  MM DD hh mm WDIR\n#yr  mo dy hr mn degT\n\n",
	} {
		if _, err := Parse(text); !errors.Is(err, ErrShortFeed) {
			t.Errorf("Parse(%q) = %v, want ErrShortFeed", text, err)
		}
	}
}

func TestParseBadToken(t *testing.T) {
	feed := "#YY  MM DD hh mm WDIR\n#yr  mo dy hr mn degT\n2024 03 01 17 50 north\n"
	if _, err := Parse(feed); err == nil {
		t.Errorf("expected error for non-numeric token")
	}
}

func TestToFahrenheit(t *testing.T) {
	table := []struct {
		c, f float64
	}{
		{0, 32.0},
		{100, 212.0},
		{12.6, 54.7},
		{-40, -40},
	}
	for _, tc := range table {
		if got := ToFahrenheit(tc.c); got != tc.f {
			t.Errorf("ToFahrenheit(%v) = %v, want %v", tc.c, got, tc.f)
		}
	}
}

func TestClientLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/41001.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	obs, err := c.Latest(context.Background(), "41001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := obs.Field(WaterTemp); !ok {
		t.Errorf("fetched observation lost WTMP")
	}

	if _, err := c.Latest(context.Background(), "nosuch"); err == nil {
		t.Errorf("expected error for 404 response")
	}
}
