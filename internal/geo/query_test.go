package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

var cambridge = station.Coord{Lat: 52.2053, Lon: 0.1218}

func namedStation(name string, coord *station.Coord, attrs station.Attrs) *station.Station {
	return station.New("measure-"+name, name, coord, nil, attrs)
}

func townStation(name, town string, level *float64, r *station.Range) *station.Station {
	s := station.New("measure-"+name, name, nil, r, station.Attrs{Town: town})
	s.LatestLevel = level
	return s
}

func floatPtr(v float64) *float64 { return &v }

func TestRankByDistance(t *testing.T) {
	far := namedStation("Far", &station.Coord{Lat: 54.97, Lon: -1.61}, station.Attrs{})
	near := namedStation("Near", &station.Coord{Lat: 52.21, Lon: 0.13}, station.Attrs{})
	mid := namedStation("Mid", &station.Coord{Lat: 52.75, Lon: 0.39}, station.Attrs{})
	noCoord := namedStation("Lost", nil, station.Attrs{})

	calc := testCalculator(BackendVector)
	ranked, err := calc.RankByDistance([]*station.Station{far, noCoord, near, mid}, cambridge)
	require.NoError(t, err)

	require.Len(t, ranked, 3, "stations without coordinates are skipped")
	assert.Equal(t, near, ranked[0].Station)
	assert.Equal(t, mid, ranked[1].Station)
	assert.Equal(t, far, ranked[2].Station)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i].Distance, ranked[i-1].Distance)
	}
}

func TestWithinRadius_InclusiveBoundary(t *testing.T) {
	centre := cambridge
	onBoundary := namedStation("Boundary", &station.Coord{Lat: 52.2053, Lon: 0.3}, station.Attrs{})

	calc := testCalculator(BackendScalar)
	exact, err := Distance(onBoundary.Coord(), &centre, Kilometers)
	require.NoError(t, err)

	inside, err := calc.WithinRadius([]*station.Station{onBoundary}, centre, exact)
	require.NoError(t, err)
	assert.Len(t, inside, 1, "a station exactly at the radius is included")

	epsilon := exact * 1e-12
	outside, err := calc.WithinRadius([]*station.Station{onBoundary}, centre, exact-epsilon)
	require.NoError(t, err)
	assert.Empty(t, outside, "one epsilon beyond the radius is excluded")
}

func TestWithinRadius_Filters(t *testing.T) {
	near := namedStation("Near", &station.Coord{Lat: 52.21, Lon: 0.13}, station.Attrs{})
	far := namedStation("Far", &station.Coord{Lat: 54.97, Lon: -1.61}, station.Attrs{})

	calc := testCalculator(BackendVector)
	inside, err := calc.WithinRadius([]*station.Station{near, far}, cambridge, 10)
	require.NoError(t, err)
	assert.Equal(t, []*station.Station{near}, inside)
}

func TestGroupByRiver(t *testing.T) {
	cam1 := namedStation("Jesus Lock", nil, station.Attrs{River: "River Cam"})
	cam2 := namedStation("Baits Bite", nil, station.Attrs{River: "River Cam"})
	aire := namedStation("Armley", nil, station.Attrs{River: "River Aire"})
	unassigned := namedStation("Unassigned", nil, station.Attrs{})

	groups := GroupByRiver([]*station.Station{cam1, aire, cam2, unassigned})

	require.Len(t, groups, 2, "stations with no river form no bucket")
	assert.Equal(t, []*station.Station{cam1, cam2}, groups["River Cam"])
	assert.Equal(t, []*station.Station{aire}, groups["River Aire"])
}

func TestRiversWithStation(t *testing.T) {
	stations := []*station.Station{
		namedStation("a", nil, station.Attrs{River: "River Thames"}),
		namedStation("b", nil, station.Attrs{River: "River Aire"}),
		namedStation("c", nil, station.Attrs{River: "River Thames"}),
		namedStation("d", nil, station.Attrs{}),
	}
	assert.Equal(t, []string{"River Aire", "River Thames"}, RiversWithStation(stations))
}

func TestGroupByTown(t *testing.T) {
	ok := &station.Range{Low: 0, High: 10}
	avonA := townStation("A", "Bath", floatPtr(5), ok)
	avonB := townStation("B", "Bath", floatPtr(6), ok)
	camA := townStation("C", "Cambridge", floatPtr(4), ok)

	noTown := townStation("D", "", floatPtr(4), ok)
	noLevel := townStation("E", "York", nil, ok)
	badRange := townStation("F", "York", floatPtr(4), &station.Range{Low: 10, High: 0})

	groups := GroupByTown([]*station.Station{camA, avonA, noTown, noLevel, badRange, avonB})

	require.Len(t, groups, 2)
	assert.Equal(t, "Bath", groups[0].Town, "largest group first")
	assert.Len(t, groups[0].Stations, 2)
	assert.Equal(t, "Cambridge", groups[1].Town)
	assert.Len(t, groups[1].Stations, 1)
}

func TestTopRiversByStationCount(t *testing.T) {
	build := func(river string, n int) []*station.Station {
		out := make([]*station.Station, n)
		for i := range out {
			out[i] = namedStation(river+"-"+string(rune('a'+i)), nil, station.Attrs{River: river})
		}
		return out
	}

	t.Run("ties at rank n are all included", func(t *testing.T) {
		var stations []*station.Station
		stations = append(stations, build("river-A", 2)...)
		stations = append(stations, build("river-B", 3)...)
		stations = append(stations, build("river-C", 3)...)
		stations = append(stations, build("river-D", 3)...)

		top, err := TopRiversByStationCount(stations, 2)
		require.NoError(t, err)
		assert.Equal(t, []RiverCount{
			{River: "river-B", Count: 3},
			{River: "river-C", Count: 3},
			{River: "river-D", Count: 3},
		}, top)
	})

	t.Run("tie below rank n pulls in every equal river", func(t *testing.T) {
		var stations []*station.Station
		stations = append(stations, build("river-A", 2)...)
		stations = append(stations, build("river-B", 2)...)
		stations = append(stations, build("river-C", 3)...)
		stations = append(stations, build("river-D", 2)...)
		stations = append(stations, build("river-E", 1)...)

		top, err := TopRiversByStationCount(stations, 2)
		require.NoError(t, err)
		assert.Equal(t, []RiverCount{
			{River: "river-C", Count: 3},
			{River: "river-A", Count: 2},
			{River: "river-B", Count: 2},
			{River: "river-D", Count: 2},
		}, top)
	})

	t.Run("n covering every river returns them all", func(t *testing.T) {
		stations := append(build("river-A", 1), build("river-B", 2)...)
		top, err := TopRiversByStationCount(stations, 5)
		require.NoError(t, err)
		assert.Len(t, top, 2)
	})

	t.Run("n below one is an error", func(t *testing.T) {
		_, err := TopRiversByStationCount(nil, 0)
		assert.Error(t, err)
	})
}
