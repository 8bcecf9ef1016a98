package station

import "time"

// Gauge represents one tipping-bucket rainfall gauge. Identity fields are
// fixed at construction; live-reading fields are overwritten on refresh.
type Gauge struct {
	measureID   string
	coord       *Coord
	gaugeNumber string

	// Live fields, assigned externally on each refresh.
	LatestLevel       *float64 // millimetres of precipitation
	LatestReadingTime *time.Time
	Period            *float64 // seconds between readings, usually 900
}

// NewGauge constructs a Gauge. Unlike stations, a coordinate is required by
// the ingestion contract, so coord is never nil for gauges built from a feed.
func NewGauge(measureID string, coord *Coord, gaugeNumber string) *Gauge {
	return &Gauge{
		measureID:   measureID,
		coord:       coord,
		gaugeNumber: gaugeNumber,
	}
}

// MeasureID returns the opaque feed handle for the gauge's rainfall measure.
func (g *Gauge) MeasureID() string { return g.measureID }

// Coord returns the gauge position. Accurate only to the nearest 100 m
// despite the feed quoting 6 decimal places.
func (g *Gauge) Coord() *Coord { return g.coord }

// GaugeNumber returns the numeric reference string identifying the gauge.
func (g *Gauge) GaugeNumber() string { return g.gaugeNumber }

// Catalog holds the current station and gauge collections. It is the
// explicit context passed between the ingestion adapter and the analysis
// layers; nothing in this module keeps process-wide entity state.
type Catalog struct {
	Stations []*Station
	Gauges   []*Gauge
}
