package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
[[station]]
station_id = "9413745"
type = "tides"
name = "Santa Cruz Tides"

[[station]]
station_id = "41001"
type = "buoy"
units = "metric"
time_zone = "gmt"
`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Entry{{
		StationID: "9413745",
		Kind:      Tides,
		Name:      "Santa Cruz Tides",
		TimeZone:  "lst_ldt",
		Units:     "english",
	}, {
		StationID: "41001",
		Kind:      Buoy,
		Name:      "NOAA Tides",
		TimeZone:  "gmt",
		Units:     "metric",
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("unexpected entries (-want,+got): %s", diff)
	}
}

func TestLoadRejectsBadEntries(t *testing.T) {
	table := []struct {
		name    string
		content string
	}{{
		name:    "missing station id",
		content: "[[station]]\ntype = \"tides\"\n",
	}, {
		name:    "bad kind",
		content: "[[station]]\nstation_id = \"9413745\"\ntype = \"surf\"\n",
	}, {
		name:    "bad units",
		content: "[[station]]\nstation_id = \"9413745\"\ntype = \"tides\"\nunits = \"imperial\"\n",
	}, {
		name:    "bad time zone",
		content: "[[station]]\nstation_id = \"9413745\"\ntype = \"tides\"\ntime_zone = \"pst\"\n",
	}, {
		name: "duplicate",
		content: "[[station]]\nstation_id = \"9413745\"\ntype = \"tides\"\n" +
			"[[station]]\nstation_id = \"9413745\"\ntype = \"tides\"\n",
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tc.content)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestEntryID(t *testing.T) {
	e := Entry{StationID: "9413745", Kind: Tides}
	if got := e.ID(); got != "9413745_tides" {
		t.Errorf("ID() = %q", got)
	}
}
