// Package flood derives flood-risk signals from the station catalog:
// threshold-based ranking of relative water levels and town-level severity
// tiers.
package flood

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

var (
	ErrInvalidThreshold = errors.New("flood: threshold is not a number")
	ErrCountOutOfRange  = errors.New("flood: requested count out of range")
)

// StationLevel pairs a station with its relative water level.
type StationLevel struct {
	Station       *station.Station
	RelativeLevel float64
}

// StationsOverThreshold returns the stations whose relative water level is
// strictly above tol, in descending level order. Stations with an
// inconsistent typical range or no latest level are excluded, never errors:
// one station's bad data must not sink the rest of the batch.
func StationsOverThreshold(stations []*station.Station, tol float64) ([]StationLevel, error) {
	if math.IsNaN(tol) {
		return nil, ErrInvalidThreshold
	}

	var over []StationLevel
	for _, sl := range rankedByLevel(stations) {
		if sl.RelativeLevel > tol {
			over = append(over, sl)
		}
	}
	return over, nil
}

// HighestRelativeLevel returns the n stations with the highest relative
// water level, descending. n outside [0, number of valid stations] is an
// input error, never silently clamped.
func HighestRelativeLevel(stations []*station.Station, n int) ([]*station.Station, error) {
	ranked := rankedByLevel(stations)
	if n < 0 || n > len(ranked) {
		return nil, fmt.Errorf("%w: n=%d with %d valid stations", ErrCountOutOfRange, n, len(ranked))
	}

	top := make([]*station.Station, n)
	for i := range top {
		top[i] = ranked[i].Station
	}
	return top, nil
}

// rankedByLevel collects the stations with a defined relative water level in
// descending level order, names breaking ties.
func rankedByLevel(stations []*station.Station) []StationLevel {
	var ranked []StationLevel
	for _, s := range stations {
		if level, ok := s.RelativeWaterLevel(); ok {
			ranked = append(ranked, StationLevel{Station: s, RelativeLevel: level})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelativeLevel != ranked[j].RelativeLevel {
			return ranked[i].RelativeLevel > ranked[j].RelativeLevel
		}
		return ranked[i].Station.Name() < ranked[j].Station.Name()
	})
	return ranked
}
