// Package analysis provides data-quality sanitization and trend tools for
// sensor time series: warning-flagged repair of malformed readings, moving
// averages and least-squares polynomial fits.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// Sample is one time-series reading as delivered by the feed. The feed
// occasionally emits a tuple of numbers instead of a single reading; the
// extra values land in Candidates and Value is NaN until resolved.
type Sample struct {
	Value      float64
	Candidates []float64
}

// Numeric reports whether the primary value is a usable number.
func (s Sample) Numeric() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

// Warning kinds, used to aggregate warnings for metrics.
const (
	WarnTuple       = "tuple"
	WarnNegative    = "negative"
	WarnSpike       = "spike"
	WarnFluctuation = "fluctuation"
)

// WarningSet is a deduplicated collection of data-quality warnings, each
// tagged with its kind. Each distinct issue type contributes at most one
// entry per sanitization pass.
type WarningSet map[string]string

func (w WarningSet) add(kind, format string, args ...any) {
	w[fmt.Sprintf(format, args...)] = kind
}

// Strings returns the warning messages in sorted order.
func (w WarningSet) Strings() []string {
	out := make([]string, 0, len(w))
	for msg := range w {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

// KindCounts returns the number of distinct warnings per kind.
func (w WarningSet) KindCounts() map[string]int {
	counts := make(map[string]int)
	for _, kind := range w {
		counts[kind]++
	}
	return counts
}

// SanitizeOptions lists every recognized sanitization policy flag and
// threshold. Use DefaultSanitizeOptions as the starting point.
type SanitizeOptions struct {
	// NegativeToZero clamps negative readings on non-tidal stations to 0.
	// The warning is emitted whether or not the repair runs.
	NegativeToZero bool

	// FallbackIndex selects which candidate replaces a tuple-valued reading.
	FallbackIndex int

	// HighCutoff is the spike threshold in the same units as the series.
	// Empirically chosen default; no documented derivation.
	HighCutoff float64

	// SpikeToPrevious replaces an above-cutoff reading with its predecessor.
	// The warning is emitted whether or not the repair runs.
	SpikeToPrevious bool

	// FluctuationWindow is the moving-average window for the rapid
	// fluctuation test.
	FluctuationWindow int

	// FluctuationTol is the mean squared deviation threshold, as a fraction
	// of the squared series mean. Empirically chosen.
	FluctuationTol float64

	// RiverContext enables the rapid fluctuation test. Rainfall series are
	// legitimately bursty and must not set it.
	RiverContext bool
}

// DefaultSanitizeOptions returns the option defaults for river-level series.
func DefaultSanitizeOptions() SanitizeOptions {
	return SanitizeOptions{
		NegativeToZero:    true,
		FallbackIndex:     1,
		HighCutoff:        2500,
		SpikeToPrevious:   true,
		FluctuationWindow: 3,
		FluctuationTol:    5e-3,
		RiverContext:      true,
	}
}

// SanitizeSeries checks one sensor's series for dubious values, repairing
// samples in place per the option flags and returning a deduplicated warning
// set. st supplies station context (tidal stations may legitimately read
// negative) and may be nil for gauge series. A clean series comes back
// untouched with an empty set.
func SanitizeSeries(label string, samples []Sample, st *station.Station, opts SanitizeOptions) WarningSet {
	warnings := make(WarningSet)
	tidal := st != nil && st.Tidal

	for i := range samples {
		if !samples[i].Numeric() {
			if v, ok := fallbackValue(samples[i], opts.FallbackIndex); ok {
				samples[i].Value = v
				warnings.add(WarnTuple, "data for %s station may be unreliable: tuple-valued readings were replaced with their candidate at index %d", label, opts.FallbackIndex)
			} else {
				warnings.add(WarnTuple, "data for %s station may be unreliable: non-numeric readings with no usable fallback were left unchanged", label)
				continue
			}
		}

		if samples[i].Value < 0 && !tidal {
			if opts.NegativeToZero {
				samples[i].Value = 0
				warnings.add(WarnNegative, "data for %s station may be unreliable: negative levels on a non-tidal station were set to 0", label)
			} else {
				warnings.add(WarnNegative, "data for %s station may be unreliable: negative levels found on a non-tidal station", label)
			}
		}

		if samples[i].Value > opts.HighCutoff && len(samples) >= 2 {
			// A spike in the very first sample has no predecessor to fall
			// back on, so it is flagged but kept.
			if opts.SpikeToPrevious && i > 0 {
				samples[i].Value = samples[i-1].Value
				warnings.add(WarnSpike, "data for %s station may be unreliable: levels above %g were set to the preceding value", label, opts.HighCutoff)
			} else {
				warnings.add(WarnSpike, "data for %s station may be unreliable: levels above %g found", label, opts.HighCutoff)
			}
		}
	}

	if opts.RiverContext && hasRapidFluctuations(samples, opts.FluctuationWindow, opts.FluctuationTol) {
		warnings.add(WarnFluctuation, "data for %s station may be unreliable: many sudden spikes between consecutive readings; values were not altered", label)
	}

	return warnings
}

func fallbackValue(s Sample, index int) (float64, bool) {
	if index < 0 || index >= len(s.Candidates) {
		return 0, false
	}
	v := s.Candidates[index]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// hasRapidFluctuations tests whether the mean squared deviation of the
// series from its short-window moving average exceeds tol as a fraction of
// the squared series mean. Observational only: daily tidal cycles pass, a
// noisy sensor does not.
func hasRapidFluctuations(samples []Sample, window int, tol float64) bool {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Numeric() {
			values = append(values, s.Value)
		}
	}
	if window < 1 || len(values) < window {
		return false
	}

	smoothed := smoothValues(values, window)
	var sq float64
	for i, v := range values {
		d := v - smoothed[i]
		sq += d * d
	}
	mse := sq / float64(len(values))
	mean := stat.Mean(values, nil)
	return mse/(mean*mean) >= tol
}
