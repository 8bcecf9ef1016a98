package analysis

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLengthMismatch = errors.New("analysis: dates and values differ in length")
	ErrWindowSize     = errors.New("analysis: window size out of range")
)

// MovingAverage smooths a series with a symmetric window-point moving
// average.
//
// For an odd window the returned domain equals the input domain and the
// first and last window/2 points carry the raw values, so the length is
// preserved. For an even window the domain shifts by half a sampling
// interval onto the midpoints and is one element shorter; the edge segments
// use a 2-point blend rather than the full window.
//
// The window must lie in [1, len(values)].
func MovingAverage(dates []time.Time, values []float64, window int) ([]time.Time, []float64, error) {
	if len(dates) != len(values) {
		return nil, nil, ErrLengthMismatch
	}
	if window < 1 || window > len(values) {
		return nil, nil, ErrWindowSize
	}

	if window%2 == 1 {
		out := make([]time.Time, len(dates))
		copy(out, dates)
		return out, smoothValues(values, window), nil
	}

	n := len(values)
	core := slidingMeans(values, window)
	half := window/2 - 1

	smoothed := make([]float64, 0, n-1)
	smoothed = append(smoothed, pairBlends(values[:half+1])...)
	smoothed = append(smoothed, core...)
	smoothed = append(smoothed, pairBlends(values[n-half-1:])...)

	// Midpoint domain: every date moves forward half a sampling interval and
	// the final point drops, matching the shortened series.
	interval := dates[1].Sub(dates[0])
	shifted := make([]time.Time, n-1)
	for i := range shifted {
		shifted[i] = dates[i].Add(interval / 2)
	}
	return shifted, smoothed, nil
}

// smoothValues applies the odd-window policy over a bare value slice,
// preserving length by leaving the edge points raw. Shared with the rapid
// fluctuation test, which runs on an index domain.
func smoothValues(values []float64, window int) []float64 {
	core := slidingMeans(values, window)
	front := (window - 1) / 2
	back := len(values) - front - len(core)

	out := make([]float64, 0, len(values))
	out = append(out, values[:front]...)
	out = append(out, core...)
	out = append(out, values[len(values)-back:]...)
	return out
}

// slidingMeans returns the len(values)-window+1 full-window means.
func slidingMeans(values []float64, window int) []float64 {
	out := make([]float64, len(values)-window+1)
	for i := range out {
		out[i] = floats.Sum(values[i:i+window]) / float64(window)
	}
	return out
}

// pairBlends returns the averages of each adjacent pair.
func pairBlends(values []float64) []float64 {
	out := make([]float64, len(values)-1)
	for i := range out {
		out[i] = (values[i] + values[i+1]) / 2
	}
	return out
}
