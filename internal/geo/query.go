package geo

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// StationDistance pairs a station with its distance from a reference point.
type StationDistance struct {
	Station  *station.Station
	Distance float64 // kilometres
}

// RankByDistance returns (station, distance) pairs ordered by ascending
// distance from the reference point. Stations without a coordinate are
// silently skipped; a live feed always contains some.
func (c *Calculator) RankByDistance(stations []*station.Station, ref station.Coord) ([]StationDistance, error) {
	kept := make([]*station.Station, 0, len(stations))
	coords := make([]station.Coord, 0, len(stations))
	refs := make([]station.Coord, 0, len(stations))
	for _, s := range stations {
		if s.Coord() == nil || !s.Coord().Valid() {
			continue
		}
		kept = append(kept, s)
		coords = append(coords, *s.Coord())
		refs = append(refs, ref)
	}

	distances, err := c.DistanceMany(coords, refs, Kilometers)
	if err != nil {
		return nil, fmt.Errorf("rank by distance: %w", err)
	}

	ranked := make([]StationDistance, len(kept))
	for i, s := range kept {
		ranked[i] = StationDistance{Station: s, Distance: distances[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked, nil
}

// WithinRadius returns the stations at most radiusKm kilometres from the
// centre. The boundary is inclusive: a station exactly at the radius is kept.
func (c *Calculator) WithinRadius(stations []*station.Station, centre station.Coord, radiusKm float64) ([]*station.Station, error) {
	ranked, err := c.RankByDistance(stations, centre)
	if err != nil {
		return nil, err
	}
	var inside []*station.Station
	for _, sd := range ranked {
		if sd.Distance > radiusKm {
			break
		}
		inside = append(inside, sd.Station)
	}
	return inside, nil
}

// GroupByRiver maps each river name to the stations on it. Stations with no
// river recorded appear in no group.
func GroupByRiver(stations []*station.Station) map[string][]*station.Station {
	groups := make(map[string][]*station.Station)
	for _, s := range stations {
		if s.River == "" {
			continue
		}
		groups[s.River] = append(groups[s.River], s)
	}
	return groups
}

// RiversWithStation returns the sorted names of rivers that have at least
// one monitoring station.
func RiversWithStation(stations []*station.Station) []string {
	groups := GroupByRiver(stations)
	rivers := make([]string, 0, len(groups))
	for river := range groups {
		rivers = append(rivers, river)
	}
	slices.Sort(rivers)
	return rivers
}

// TownGroup is one town's stations, as used by the flood severity
// aggregation.
type TownGroup struct {
	Town     string
	Stations []*station.Station
}

// GroupByTown groups stations by town, ordered by descending group size
// (ties broken by town name). A station joins its town's group only when it
// has a town, a defined latest level and a consistent typical range; this
// mirrors the flood-aggregation contract and must not be weakened.
func GroupByTown(stations []*station.Station) []TownGroup {
	byTown := make(map[string][]*station.Station)
	for _, s := range stations {
		if s.Town == "" || s.LatestLevel == nil || !s.TypicalRangeConsistent() {
			continue
		}
		byTown[s.Town] = append(byTown[s.Town], s)
	}

	groups := make([]TownGroup, 0, len(byTown))
	for town, members := range byTown {
		groups = append(groups, TownGroup{Town: town, Stations: members})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Stations) != len(groups[j].Stations) {
			return len(groups[i].Stations) > len(groups[j].Stations)
		}
		return groups[i].Town < groups[j].Town
	})
	return groups
}

// RiverCount pairs a river name with its station count.
type RiverCount struct {
	River string
	Count int
}

// TopRiversByStationCount returns the n rivers with the most stations in
// descending count order. Rivers tying with the count at rank n are all
// included, so the result can be longer than n. n below 1 is an input error.
func TopRiversByStationCount(stations []*station.Station, n int) ([]RiverCount, error) {
	if n < 1 {
		return nil, fmt.Errorf("top rivers by station count: n must be at least 1, got %d", n)
	}

	groups := GroupByRiver(stations)
	counts := make([]RiverCount, 0, len(groups))
	for river, members := range groups {
		counts = append(counts, RiverCount{River: river, Count: len(members)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return strings.Compare(counts[i].River, counts[j].River) < 0
	})

	if len(counts) <= n {
		return counts, nil
	}

	// Extend past n while rivers tie with the count at rank n.
	cutoff := counts[n-1].Count
	end := n
	for end < len(counts) && counts[end].Count == cutoff {
		end++
	}
	return counts[:end], nil
}
