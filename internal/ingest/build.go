package ingest

import (
	"time"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// StationKind identifies which feed endpoint a station record came from,
// which in turn fixes the tidal/groundwater flags.
type StationKind int

const (
	KindRiver StationKind = iota
	KindTidal
	KindGroundwater
)

// BuildStations turns a station feed into Station entities, one per record
// with a resolvable measure handle. Records missing the handle or a
// coordinate are dropped, not errored: the live feed always contains some
// incomplete entries.
func BuildStations(feed *StationFeed, kind StationKind) []*station.Station {
	if feed == nil {
		return nil
	}

	stations := make([]*station.Station, 0, len(feed.Items))
	for _, rec := range feed.Items {
		measureID := lastMeasureID(rec.Measures)
		if measureID == "" || rec.Lat == nil || rec.Long == nil {
			continue
		}

		coord := &station.Coord{Lat: *rec.Lat, Lon: *rec.Long}
		stations = append(stations, station.New(measureID, string(rec.Label), coord, typicalRange(rec.StageScale), station.Attrs{
			River:       rec.RiverName,
			Town:        rec.Town,
			Tidal:       kind == KindTidal,
			Groundwater: kind == KindGroundwater,
			RecordRange: recordRange(rec.StageScale),
			RLOIID:      rec.RLOIID,
		}))
	}
	return stations
}

// BuildGauges turns a rainfall feed into Gauge entities. A coordinate and a
// measure handle are both required; records lacking either are dropped.
func BuildGauges(feed *GaugeFeed) []*station.Gauge {
	if feed == nil {
		return nil
	}

	gauges := make([]*station.Gauge, 0, len(feed.Items))
	for _, rec := range feed.Items {
		measureID := lastMeasureID(rec.Measures)
		if measureID == "" || rec.Lat == nil || rec.Long == nil {
			continue
		}

		g := station.NewGauge(measureID, &station.Coord{Lat: *rec.Lat, Lon: *rec.Long}, rec.StationReference)
		if p := lastMeasurePeriod(rec.Measures); p != nil {
			g.Period = p
		}
		gauges = append(gauges, g)
	}
	return gauges
}

// RefreshStationLevels attaches the latest feed readings to stations in
// place. A station whose measure is absent from the feed, or whose reading
// is not a plain number, has its live fields reset to unknown rather than
// left stale.
func RefreshStationLevels(stations []*station.Station, latest *LatestFeed) {
	readings := latestByMeasure(latest)
	for _, s := range stations {
		applyReading(readings[s.MeasureID()], &s.LatestLevel, &s.LatestReadingTime)
	}
}

// RefreshGaugeLevels is the rainfall counterpart of RefreshStationLevels.
func RefreshGaugeLevels(gauges []*station.Gauge, latest *LatestFeed) {
	readings := latestByMeasure(latest)
	for _, g := range gauges {
		applyReading(readings[g.MeasureID()], &g.LatestLevel, &g.LatestReadingTime)
	}
}

func latestByMeasure(latest *LatestFeed) map[string]*Reading {
	readings := make(map[string]*Reading)
	if latest == nil {
		return readings
	}
	for i := range latest.Items {
		item := &latest.Items[i]
		if item.LatestReading != nil {
			readings[item.LatestReading.Measure] = item.LatestReading
		}
	}
	return readings
}

func applyReading(r *Reading, level **float64, readingTime **time.Time) {
	if r == nil || !r.Value.Numeric() {
		*level = nil
		*readingTime = nil
		return
	}
	v := r.Value.Value
	t := r.DateTime
	*level = &v
	*readingTime = &t
}

func lastMeasureID(measures []MeasureRef) string {
	if len(measures) == 0 {
		return ""
	}
	return measures[len(measures)-1].ID
}

func lastMeasurePeriod(measures []MeasureRef) *float64 {
	if len(measures) == 0 {
		return nil
	}
	return measures[len(measures)-1].Period
}

func typicalRange(scale *StageScale) *station.Range {
	if scale == nil || scale.TypicalRangeLow == nil || scale.TypicalRangeHigh == nil {
		return nil
	}
	return &station.Range{Low: *scale.TypicalRangeLow, High: *scale.TypicalRangeHigh}
}

func recordRange(scale *StageScale) *station.Range {
	if scale == nil || scale.MinOnRecord == nil || scale.MaxOnRecord == nil {
		return nil
	}
	return &station.Range{Low: scale.MinOnRecord.Value, High: scale.MaxOnRecord.Value}
}
