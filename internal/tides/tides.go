// Package tides derives the position within the current tidal cycle from a
// window of hi/lo predictions.
package tides

import (
	"math"
	"time"

	"tidewatch/pkg/coops"
)

// Interval is the pair of extrema bracketing a point in time. The interval's
// character comes from Next: an interval bound for a high tide is rising, one
// bound for a low tide is falling.
type Interval struct {
	Last, Next coops.Prediction
}

// Rising reports whether the water is coming up over this interval.
func (iv Interval) Rising() bool {
	return iv.Next.Type == coops.HighTide
}

// Around finds the most recent prediction at or before now and the first
// prediction strictly after now. It reports ok=false when the window does not
// bracket now on both sides.
func Around(preds coops.PredictionList, now time.Time) (Interval, bool) {
	var iv Interval
	var haveLast, haveNext bool
	for _, p := range preds {
		t := p.T()
		if !t.After(now) {
			if !haveLast || t.After(iv.Last.T()) {
				iv.Last = p
				haveLast = true
			}
		} else {
			iv.Next = p
			haveNext = true
			break
		}
	}
	return iv, haveLast && haveNext
}

// Next finds the first prediction strictly after now. With a window that is
// entirely in the past there is no next tide and ok is false.
func Next(preds coops.PredictionList, now time.Time) (coops.Prediction, bool) {
	for _, p := range preds {
		if p.T().After(now) {
			return p, true
		}
	}
	return coops.Prediction{}, false
}

// Factor maps now onto a 0-100 gauge of the tidal cycle using a half-cosine
// easing between the interval's extrema: 0 at a low tide, 100 at a high tide,
// 50 exactly halfway through. It works on the prediction timestamps directly,
// so intervals that span midnight behave.
func Factor(iv Interval, now time.Time) float64 {
	period := iv.Next.T().Sub(iv.Last.T()).Seconds()
	if period <= 0 {
		return 0
	}
	elapsed := now.Sub(iv.Last.T()).Seconds()
	eased := 50 * math.Cos(elapsed*math.Pi/period)
	if iv.Rising() {
		return 50 - eased
	}
	return 50 + eased
}
