package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

func numericSamples(values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{Value: v}
	}
	return out
}

func sampleValues(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

func tidalStation(name string) *station.Station {
	return station.New("m-"+name, name, nil, nil, station.Attrs{Tidal: true})
}

func riverStation(name string) *station.Station {
	return station.New("m-"+name, name, nil, nil, station.Attrs{})
}

func TestSanitizeSeries_CleanSeriesIsIdempotent(t *testing.T) {
	samples := numericSamples(1.1, 1.2, 1.15, 1.18, 1.22, 1.19)
	original := sampleValues(samples)

	warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())

	assert.Empty(t, warnings)
	assert.Equal(t, original, sampleValues(samples))
}

func TestSanitizeSeries_TupleValuedReading(t *testing.T) {
	t.Run("resolved from fallback candidate", func(t *testing.T) {
		samples := numericSamples(1.0, 1.1, 1.2)
		samples[1] = Sample{Value: math.NaN(), Candidates: []float64{9.9, 1.05}}

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings.Strings()[0], "tuple-valued")
		assert.Equal(t, 1.05, samples[1].Value)
	})

	t.Run("unresolved when no usable candidate", func(t *testing.T) {
		samples := numericSamples(1.0, 1.1, 1.2)
		samples[1] = Sample{Value: math.NaN()}

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings.Strings()[0], "no usable fallback")
		assert.True(t, math.IsNaN(samples[1].Value), "unresolved samples are left untouched")
	})

	t.Run("one warning for repeated tuples", func(t *testing.T) {
		samples := []Sample{
			{Value: math.NaN(), Candidates: []float64{0, 1.0}},
			{Value: math.NaN(), Candidates: []float64{0, 1.1}},
			{Value: 1.2},
		}

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())
		assert.Len(t, warnings, 1, "warnings deduplicate per issue type")
	})
}

func TestSanitizeSeries_NegativeLevels(t *testing.T) {
	// The fluctuation test would also flag these short dipping series, so it
	// is switched off to isolate the negative-level policy.
	opts := DefaultSanitizeOptions()
	opts.RiverContext = false

	t.Run("clamped on a river station", func(t *testing.T) {
		samples := numericSamples(0.5, -0.2, 0.4)

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), opts)

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings.Strings()[0], "set to 0")
		assert.Equal(t, []float64{0.5, 0, 0.4}, sampleValues(samples))
	})

	t.Run("warned but kept when clamping is disabled", func(t *testing.T) {
		samples := numericSamples(0.5, -0.2, 0.4)
		kept := opts
		kept.NegativeToZero = false

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), kept)

		require.Len(t, warnings, 1)
		assert.Equal(t, -0.2, samples[1].Value)
	})

	t.Run("legitimate on a tidal station", func(t *testing.T) {
		samples := numericSamples(0.5, -0.2, 0.4)

		warnings := SanitizeSeries("Dover", samples, tidalStation("Dover"), opts)

		assert.Empty(t, warnings)
		assert.Equal(t, -0.2, samples[1].Value)
	})
}

func TestSanitizeSeries_SpikeSuppression(t *testing.T) {
	t.Run("spike replaced with preceding value", func(t *testing.T) {
		samples := numericSamples(1.0, 3000, 1.2)

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())

		require.NotEmpty(t, warnings)
		assert.Equal(t, []float64{1.0, 1.0, 1.2}, sampleValues(samples))
	})

	t.Run("first-sample spike has no predecessor and is kept", func(t *testing.T) {
		samples := numericSamples(3000, 1.0, 1.2)
		opts := DefaultSanitizeOptions()
		opts.RiverContext = false

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), opts)

		require.Len(t, warnings, 1)
		assert.Equal(t, 1, warnings.KindCounts()[WarnSpike])
		assert.Equal(t, []float64{3000, 1.0, 1.2}, sampleValues(samples))
	})

	t.Run("warned but kept when suppression is disabled", func(t *testing.T) {
		samples := numericSamples(1.0, 3000, 1.2)
		opts := DefaultSanitizeOptions()
		opts.SpikeToPrevious = false
		opts.RiverContext = false

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), opts)

		require.Len(t, warnings, 1)
		assert.Equal(t, 3000.0, samples[1].Value)
	})

	t.Run("custom cutoff", func(t *testing.T) {
		samples := numericSamples(1.0, 6.0, 1.2)
		opts := DefaultSanitizeOptions()
		opts.HighCutoff = 5
		opts.RiverContext = false

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), opts)

		require.Len(t, warnings, 1)
		assert.Equal(t, 1.0, samples[1].Value)
	})
}

func TestSanitizeSeries_RapidFluctuation(t *testing.T) {
	noisy := numericSamples(1, 9, 1, 9, 1, 9, 1, 9, 1, 9)

	t.Run("flagged on river series without altering values", func(t *testing.T) {
		samples := make([]Sample, len(noisy))
		copy(samples, noisy)
		original := sampleValues(samples)

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings.Strings()[0], "sudden spikes")
		assert.Equal(t, original, sampleValues(samples), "the fluctuation test is observational only")
	})

	t.Run("skipped for rainfall context", func(t *testing.T) {
		samples := make([]Sample, len(noisy))
		copy(samples, noisy)
		opts := DefaultSanitizeOptions()
		opts.RiverContext = false

		warnings := SanitizeSeries("E24871", samples, nil, opts)
		assert.Empty(t, warnings)
	})

	t.Run("smooth series passes", func(t *testing.T) {
		samples := numericSamples(2.00, 2.01, 2.02, 2.01, 2.00, 1.99, 2.00, 2.01)

		warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), DefaultSanitizeOptions())
		assert.Empty(t, warnings)
	})
}

func TestWarningSet_Strings(t *testing.T) {
	w := make(WarningSet)
	w.add(WarnSpike, "b message")
	w.add(WarnNegative, "a message")
	w.add(WarnSpike, "b message")

	assert.Equal(t, []string{"a message", "b message"}, w.Strings())
}

func TestWarningSet_KindCounts(t *testing.T) {
	w := make(WarningSet)
	w.add(WarnSpike, "spike repaired")
	w.add(WarnSpike, "spike kept")
	w.add(WarnNegative, "negative clamped")

	assert.Equal(t, map[string]int{WarnSpike: 2, WarnNegative: 1}, w.KindCounts())
	assert.Empty(t, make(WarningSet).KindCounts())
}

func TestSanitizeSeries_WarningKinds(t *testing.T) {
	samples := []Sample{
		{Value: 0.5},
		{Value: -0.2},
		{Value: 3000},
	}

	opts := DefaultSanitizeOptions()
	opts.RiverContext = false
	warnings := SanitizeSeries("Cambridge", samples, riverStation("Cambridge"), opts)

	counts := warnings.KindCounts()
	assert.Equal(t, 1, counts[WarnNegative])
	assert.Equal(t, 1, counts[WarnSpike])
	assert.Zero(t, counts[WarnTuple])
	assert.Zero(t, counts[WarnFluctuation])
}
