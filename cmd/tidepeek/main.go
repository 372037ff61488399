// Command tidepeek prints upcoming tide extrema for a station, along with
// the current cycle position. Handy for checking a station id before
// configuring it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tidewatch/internal/tides"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/timetricks"
)

func main() {
	station := flag.String("station", "9413745", "CO-OPS station id")
	days := flag.Int("days", 2, "days of predictions to print")
	flag.Parse()

	now := time.Now()
	client := coops.NewClient()
	preds, err := client.GetPredictions(context.Background(), &coops.Query{
		Station: *station,
		Start:   now.Add(-24 * time.Hour),
		End:     now.Add(time.Duration(*days) * 24 * time.Hour),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch predictions: %v\n", err)
		os.Exit(1)
	}

	lastDay := ""
	for _, p := range preds {
		if p.T().Before(now) {
			continue
		}
		if d := timetricks.UniqueDay(p.T()); d != lastDay {
			lastDay = d
			fmt.Printf("%s\n", dayLabel(p.T()))
		}
		kind := "Low "
		if p.Type == coops.HighTide {
			kind = "High"
		}
		fmt.Printf("  %s tide at %s  %6.2f ft\n",
			kind, timetricks.Clock(p.T()), float64(p.Height))
	}

	if iv, ok := tides.Around(preds, now); ok {
		fmt.Printf("\ntide factor now: %.0f\n", tides.Factor(iv, now))
	}
}

func dayLabel(t time.Time) string {
	switch {
	case timetricks.Today(t):
		return "Today"
	case timetricks.Tomorrow(t):
		return "Tomorrow"
	}
	return t.Format("Mon Jan 2")
}
