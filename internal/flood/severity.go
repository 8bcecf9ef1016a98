package flood

import (
	"github.com/lorcan2440/flood-warning-system/internal/geo"
	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// Tier is a coarse flood-severity bucket for a town.
type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
	TierSevere
)

func (t Tier) String() string {
	switch t {
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	case TierSevere:
		return "severe"
	default:
		return "low"
	}
}

// TierFor buckets an average relative water level into a severity tier.
// Breakpoints follow the operational convention: below 0.9 low, below 1.5
// moderate, below 2.0 high, otherwise severe.
func TierFor(avgRelativeLevel float64) Tier {
	switch {
	case avgRelativeLevel < 0.9:
		return TierLow
	case avgRelativeLevel < 1.5:
		return TierModerate
	case avgRelativeLevel < 2.0:
		return TierHigh
	default:
		return TierSevere
	}
}

// TownSeverity maps each town to a severity tier derived from the average
// relative water level across its valid stations (those with a town, a
// latest level and a consistent typical range). Towns with no valid
// stations are omitted.
func TownSeverity(stations []*station.Station) map[string]Tier {
	severities := make(map[string]Tier)
	for _, group := range geo.GroupByTown(stations) {
		var sum float64
		for _, s := range group.Stations {
			level, _ := s.RelativeWaterLevel()
			sum += level
		}
		avg := sum / float64(len(group.Stations))
		severities[group.Town] = TierFor(avg)
	}
	return severities
}
