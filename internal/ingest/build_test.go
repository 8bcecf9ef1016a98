package ingest

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

const stationFeedJSON = `{
  "items": [
    {
      "@id": "http://environment.data.gov.uk/flood-monitoring/id/stations/E60101",
      "label": "Cambridge Jesus Lock",
      "lat": 52.211454, "long": 0.11925,
      "riverName": "River Cam",
      "town": "Cambridge",
      "RLOIid": "2266",
      "stageScale": {
        "typicalRangeLow": 0.157, "typicalRangeHigh": 0.316,
        "minOnRecord": {"value": 0.068}, "maxOnRecord": {"value": 0.846}
      },
      "measures": [
        {"@id": "http://environment.data.gov.uk/flood-monitoring/id/measures/E60101-flow"},
        {"@id": "http://environment.data.gov.uk/flood-monitoring/id/measures/E60101-level"}
      ]
    },
    {
      "@id": "http://environment.data.gov.uk/flood-monitoring/id/stations/NOMEASURE",
      "label": "No Measure",
      "lat": 51.0, "long": 0.5,
      "measures": []
    },
    {
      "@id": "http://environment.data.gov.uk/flood-monitoring/id/stations/NOCOORD",
      "label": "No Coordinate",
      "measures": [{"@id": "http://environment.data.gov.uk/flood-monitoring/id/measures/NOCOORD-level"}]
    },
    {
      "@id": "http://environment.data.gov.uk/flood-monitoring/id/stations/LISTLABEL",
      "label": ["Hayes Basin", "Sluice"],
      "lat": 51.5, "long": -0.4,
      "measures": [{"@id": "http://environment.data.gov.uk/flood-monitoring/id/measures/LISTLABEL-level"}]
    }
  ]
}`

func TestBuildStations(t *testing.T) {
	var feed StationFeed
	require.NoError(t, json.Unmarshal([]byte(stationFeedJSON), &feed))

	stations := BuildStations(&feed, KindRiver)
	require.Len(t, stations, 2, "records without a measure handle or coordinate are dropped")

	cam := stations[0]
	assert.Equal(t, "http://environment.data.gov.uk/flood-monitoring/id/measures/E60101-level", cam.MeasureID(), "the last listed measure is used")
	assert.Equal(t, "Cambridge Jesus Lock", cam.Name())
	require.NotNil(t, cam.Coord())
	assert.Equal(t, 52.211454, cam.Coord().Lat)
	assert.Equal(t, 0.11925, cam.Coord().Lon)
	require.NotNil(t, cam.TypicalRange())
	assert.Equal(t, station.Range{Low: 0.157, High: 0.316}, *cam.TypicalRange())
	require.NotNil(t, cam.RecordRange)
	assert.Equal(t, station.Range{Low: 0.068, High: 0.846}, *cam.RecordRange)
	assert.Equal(t, "River Cam", cam.River)
	assert.Equal(t, "Cambridge", cam.Town)
	assert.Equal(t, station.TypeRiverLevel, cam.Type())
	assert.Equal(t, "https://check-for-flooding.service.gov.uk/station/2266", cam.URL)

	assert.Equal(t, "Hayes Basin", stations[1].Name(), "list labels resolve to their first element")
}

func TestBuildStations_KindFlags(t *testing.T) {
	var feed StationFeed
	require.NoError(t, json.Unmarshal([]byte(stationFeedJSON), &feed))

	tidal := BuildStations(&feed, KindTidal)
	require.NotEmpty(t, tidal)
	assert.True(t, tidal[0].Tidal)
	assert.Equal(t, station.TypeTidal, tidal[0].Type())

	ground := BuildStations(&feed, KindGroundwater)
	require.NotEmpty(t, ground)
	assert.True(t, ground[0].Groundwater)
	assert.Equal(t, station.TypeGroundwater, ground[0].Type())
}

func TestBuildGauges(t *testing.T) {
	feedJSON := `{
	  "items": [
	    {
	      "@id": "g1", "stationReference": "E24871",
	      "lat": 52.226, "long": 0.127,
	      "measures": [{"@id": "m-rain-1", "period": 900}]
	    },
	    {"@id": "g2", "stationReference": "E00001", "measures": [{"@id": "m-rain-2"}]}
	  ]
	}`
	var feed GaugeFeed
	require.NoError(t, json.Unmarshal([]byte(feedJSON), &feed))

	gauges := BuildGauges(&feed)
	require.Len(t, gauges, 1, "gauges require both coordinate and measure handle")

	g := gauges[0]
	assert.Equal(t, "m-rain-1", g.MeasureID())
	assert.Equal(t, "E24871", g.GaugeNumber())
	require.NotNil(t, g.Period)
	assert.Equal(t, 900.0, *g.Period)
}

func TestRefreshStationLevels(t *testing.T) {
	buildStation := func(measureID string) *station.Station {
		return station.New(measureID, measureID, nil, nil, station.Attrs{})
	}
	fresh := buildStation("m-1")
	stale := buildStation("m-2")
	tupleValued := buildStation("m-3")

	// Seed stale state to prove it is reset, not left behind.
	old := 9.9
	then := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	stale.LatestLevel = &old
	stale.LatestReadingTime = &then

	readingTime := time.Date(2024, 3, 2, 9, 45, 0, 0, time.UTC)
	latest := &LatestFeed{Items: []MeasureItem{
		{ID: "m-1", LatestReading: &Reading{Measure: "m-1", DateTime: readingTime, Value: ReadingValue{Value: 1.234}}},
		{ID: "m-3", LatestReading: &Reading{Measure: "m-3", DateTime: readingTime, Value: ReadingValue{Value: math.NaN(), Candidates: []float64{0, 1}}}},
	}}

	RefreshStationLevels([]*station.Station{fresh, stale, tupleValued}, latest)

	require.NotNil(t, fresh.LatestLevel)
	assert.Equal(t, 1.234, *fresh.LatestLevel)
	require.NotNil(t, fresh.LatestReadingTime)
	assert.Equal(t, readingTime, *fresh.LatestReadingTime)

	assert.Nil(t, stale.LatestLevel, "a measure absent from the feed resets to unknown")
	assert.Nil(t, stale.LatestReadingTime)

	assert.Nil(t, tupleValued.LatestLevel, "a non-numeric latest reading resets to unknown")
}

func TestRefreshGaugeLevels(t *testing.T) {
	g := station.NewGauge("m-rain-1", &station.Coord{Lat: 52, Lon: 0}, "E24871")
	readingTime := time.Date(2024, 3, 2, 9, 45, 0, 0, time.UTC)

	RefreshGaugeLevels([]*station.Gauge{g}, &LatestFeed{Items: []MeasureItem{
		{ID: "m-rain-1", LatestReading: &Reading{Measure: "m-rain-1", DateTime: readingTime, Value: ReadingValue{Value: 0.2}}},
	}})

	require.NotNil(t, g.LatestLevel)
	assert.Equal(t, 0.2, *g.LatestLevel)

	RefreshGaugeLevels([]*station.Gauge{g}, &LatestFeed{})
	assert.Nil(t, g.LatestLevel)
	assert.Nil(t, g.LatestReadingTime)
}

func TestReadingValue_UnmarshalJSON(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		var v ReadingValue
		require.NoError(t, json.Unmarshal([]byte(`0.337`), &v))
		assert.True(t, v.Numeric())
		assert.Equal(t, 0.337, v.Value)
		assert.Nil(t, v.Candidates)
	})

	t.Run("tuple of numbers", func(t *testing.T) {
		var v ReadingValue
		require.NoError(t, json.Unmarshal([]byte(`[0.1, 0.337]`), &v))
		assert.False(t, v.Numeric())
		assert.Equal(t, []float64{0.1, 0.337}, v.Candidates)
	})

	t.Run("null", func(t *testing.T) {
		var v ReadingValue
		require.NoError(t, json.Unmarshal([]byte(`null`), &v))
		assert.False(t, v.Numeric())
		assert.Empty(t, v.Candidates)
	})
}

func TestHandle(t *testing.T) {
	s := station.New("m-1", "Cambridge", nil, nil, station.Attrs{})

	resolved := StationHandle(s)
	assert.Equal(t, "m-1", resolved.MeasureID())
	got, ok := resolved.Station()
	require.True(t, ok)
	assert.Equal(t, s, got)

	raw := RawHandle("m-raw")
	assert.Equal(t, "m-raw", raw.MeasureID())
	_, ok = raw.Station()
	assert.False(t, ok)
}
