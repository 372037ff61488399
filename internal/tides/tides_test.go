package tides

import (
	"math"
	"testing"
	"time"

	"tidewatch/pkg/coops"
)

func pred(t time.Time, h float64, kind coops.Tide) coops.Prediction {
	return coops.Prediction{
		Time:   coops.Time(t),
		Height: coops.Height(h),
		Type:   kind,
	}
}

func TestAround(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	preds := coops.PredictionList{
		pred(base.Add(-8*time.Hour), 5.1, coops.HighTide),
		pred(base.Add(-2*time.Hour), -0.5, coops.LowTide),
		pred(base.Add(4*time.Hour), 4.8, coops.HighTide),
		pred(base.Add(10*time.Hour), 0.2, coops.LowTide),
	}

	iv, ok := Around(preds, base)
	if !ok {
		t.Fatalf("expected a bracketing interval")
	}
	if !iv.Last.T().Equal(base.Add(-2 * time.Hour)) {
		t.Errorf("last = %v, want the low 2h ago", iv.Last.T())
	}
	if !iv.Next.T().Equal(base.Add(4 * time.Hour)) {
		t.Errorf("next = %v, want the high in 4h", iv.Next.T())
	}
	if !iv.Rising() {
		t.Errorf("interval toward a high tide should be rising")
	}
}

func TestAroundNoFuture(t *testing.T) {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.Local)
	preds := coops.PredictionList{
		pred(base.Add(-8*time.Hour), 5.1, coops.HighTide),
		pred(base.Add(-2*time.Hour), -0.5, coops.LowTide),
	}
	if _, ok := Around(preds, base); ok {
		t.Errorf("found an interval with no future predictions")
	}
	if _, ok := Around(nil, base); ok {
		t.Errorf("found an interval in an empty window")
	}
	if _, ok := Next(preds, base); ok {
		t.Errorf("found a next tide with no future predictions")
	}
}

func TestAroundAllFuture(t *testing.T) {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.Local)
	preds := coops.PredictionList{
		pred(base.Add(2*time.Hour), 5.1, coops.HighTide),
	}
	if _, ok := Around(preds, base); ok {
		t.Errorf("found an interval with no past predictions")
	}
	next, ok := Next(preds, base)
	if !ok || !next.T().Equal(base.Add(2*time.Hour)) {
		t.Errorf("Next = %v, %v, want the future high", next, ok)
	}
}

func TestFactorHalfway(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	rising := Interval{
		Last: pred(base, -0.5, coops.LowTide),
		Next: pred(base.Add(6*time.Hour), 4.8, coops.HighTide),
	}
	if got := Factor(rising, base.Add(3*time.Hour)); math.Abs(got-50) > 1e-9 {
		t.Errorf("rising halfway factor = %f, want 50", got)
	}

	falling := Interval{
		Last: pred(base, 4.8, coops.HighTide),
		Next: pred(base.Add(6*time.Hour), -0.5, coops.LowTide),
	}
	if got := Factor(falling, base.Add(3*time.Hour)); math.Abs(got-50) > 1e-9 {
		t.Errorf("falling halfway factor = %f, want 50", got)
	}
}

func TestFactorEndpoints(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	rising := Interval{
		Last: pred(base, -0.5, coops.LowTide),
		Next: pred(base.Add(6*time.Hour), 4.8, coops.HighTide),
	}
	if got := Factor(rising, base); math.Abs(got-0) > 1e-9 {
		t.Errorf("factor at the low = %f, want 0", got)
	}
	if got := Factor(rising, base.Add(6*time.Hour)); math.Abs(got-100) > 1e-9 {
		t.Errorf("factor at the high = %f, want 100", got)
	}

	// A quarter of the way in, the eased gauge lags the linear one.
	got := Factor(rising, base.Add(90*time.Minute))
	want := 50 - 50*math.Cos(math.Pi/4)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("quarter factor = %f, want %f", got, want)
	}
}

func TestFactorAcrossMidnight(t *testing.T) {
	// An interval from 10 PM to 4 AM. Deriving the factor from wall clock
	// strings would see a negative period here; timestamps do not.
	last := time.Date(2024, time.March, 1, 22, 0, 0, 0, time.Local)
	next := time.Date(2024, time.March, 2, 4, 0, 0, 0, time.Local)
	iv := Interval{
		Last: pred(last, -0.5, coops.LowTide),
		Next: pred(next, 4.8, coops.HighTide),
	}
	if got := Factor(iv, time.Date(2024, time.March, 2, 1, 0, 0, 0, time.Local)); math.Abs(got-50) > 1e-9 {
		t.Errorf("midnight-spanning halfway factor = %f, want 50", got)
	}
}
