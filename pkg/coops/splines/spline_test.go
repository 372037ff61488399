package splines

import (
	"fmt"
	"math"
	"testing"
	"time"

	"tidewatch/pkg/coops"
)

func ExampleDiscrete() {
	tstart := time.Date(2021, time.April, 3, 10, 30, 0, 0, time.Local)
	preds := coops.PredictionList{{
		Time:   coops.Time(tstart),
		Height: 10,
	}, {
		Time:   coops.Time(tstart.Add(1000 * time.Hour)),
		Height: 1,
	}}
	discrete := Discrete(CurvesBetween(preds), 10)
	for i := range discrete {
		fmt.Println(math.Round(discrete[i]))
	}
	// Output:
	// 10
	// 10
	// 9
	// 8
	// 6
	// 5
	// 3
	// 2
	// 1
	// 1
}

func TestEvalEndpoints(t *testing.T) {
	tstart := time.Date(2021, time.April, 3, 10, 30, 0, 0, time.Local)
	tend := tstart.Add(6 * time.Hour)
	preds := coops.PredictionList{{
		Time:   coops.Time(tstart),
		Height: -1,
		Type:   coops.LowTide,
	}, {
		Time:   coops.Time(tend),
		Height: 5,
		Type:   coops.HighTide,
	}}
	spl := CurvesBetween(preds)

	if got := spl.Eval(tstart); math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("Eval(start) = %f, want -1", got)
	}
	if got := spl.Eval(tend); math.Abs(got-5) > 1e-9 {
		t.Errorf("Eval(end) = %f, want 5", got)
	}

	// A cubic with zero slope at both ends passes through the midpoint of the
	// heights at the midpoint of the interval.
	mid := tstart.Add(3 * time.Hour)
	if got := spl.Eval(mid); math.Abs(got-2) > 1e-6 {
		t.Errorf("Eval(mid) = %f, want 2", got)
	}
}

func TestEvalOutsideWindow(t *testing.T) {
	tstart := time.Date(2021, time.April, 3, 10, 30, 0, 0, time.Local)
	preds := coops.PredictionList{{
		Time:   coops.Time(tstart),
		Height: 0,
	}, {
		Time:   coops.Time(tstart.Add(time.Hour)),
		Height: 1,
	}}
	spl := CurvesBetween(preds)
	if got := spl.Eval(tstart.Add(-time.Minute)); !math.IsNaN(got) {
		t.Errorf("Eval before window = %f, want NaN", got)
	}
	if got := spl.Eval(tstart.Add(12 * time.Hour)); !math.IsNaN(got) {
		t.Errorf("Eval after window = %f, want NaN", got)
	}
}

// Eval must terminate for times past the last curve; the search used to spin
// forever there instead of falling out with NaN.
func TestEvalAfterWindowTerminates(t *testing.T) {
	tstart := time.Date(2021, time.April, 3, 10, 30, 0, 0, time.Local)
	preds := coops.PredictionList{
		{Time: coops.Time(tstart), Height: 0, Type: coops.LowTide},
		{Time: coops.Time(tstart.Add(6 * time.Hour)), Height: 5, Type: coops.HighTide},
		{Time: coops.Time(tstart.Add(12 * time.Hour)), Height: 1, Type: coops.LowTide},
	}
	spl := CurvesBetween(preds)

	done := make(chan float64, 1)
	go func() {
		done <- spl.Eval(tstart.Add(24 * time.Hour))
	}()
	select {
	case got := <-done:
		if !math.IsNaN(got) {
			t.Errorf("Eval after last curve = %f, want NaN", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Eval did not return for a time after the last curve")
	}
}

func TestCurvesBetweenTooFewPoints(t *testing.T) {
	if got := CurvesBetween(coops.PredictionList{{}}); got != nil {
		t.Errorf("got %v, want nil for a single prediction", got)
	}
}
