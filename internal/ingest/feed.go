// Package ingest adapts the Environment Agency real-time flood-monitoring
// feed into the station catalog: decoding feed JSON, building entities and
// attaching live readings on each refresh cycle.
package ingest

import (
	"encoding/json"
	"math"
	"time"
)

// StationFeed is the response shape of the stations endpoint with
// _view=full.
type StationFeed struct {
	Items []StationRecord `json:"items"`
}

// StationRecord is one station entry in the feed. Many fields are
// optional; absence means unknown, not an error.
type StationRecord struct {
	ID         string       `json:"@id"`
	Label      Label        `json:"label"`
	Lat        *float64     `json:"lat"`
	Long       *float64     `json:"long"`
	RiverName  string       `json:"riverName"`
	Town       string       `json:"town"`
	RLOIID     string       `json:"RLOIid"`
	StageScale *StageScale  `json:"stageScale"`
	Measures   []MeasureRef `json:"measures"`
}

// StageScale carries the documented typical range bounds in metres.
type StageScale struct {
	TypicalRangeLow  *float64 `json:"typicalRangeLow"`
	TypicalRangeHigh *float64 `json:"typicalRangeHigh"`
	MinOnRecord      *Extreme `json:"minOnRecord"`
	MaxOnRecord      *Extreme `json:"maxOnRecord"`
}

// Extreme is a historical min/max record entry.
type Extreme struct {
	Value float64 `json:"value"`
}

// MeasureRef points at a measure resource attached to a station.
type MeasureRef struct {
	ID     string   `json:"@id"`
	Period *float64 `json:"period"`
}

// Label is a station label that the feed serializes either as a string or
// as a list of strings; a list resolves to its first element.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Label(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*l = Label(list[0])
	}
	return nil
}

// GaugeFeed is the response shape of the rainfall stations endpoint.
type GaugeFeed struct {
	Items []GaugeRecord `json:"items"`
}

// GaugeRecord is one rainfall gauge entry in the feed.
type GaugeRecord struct {
	ID               string       `json:"@id"`
	StationReference string       `json:"stationReference"`
	Lat              *float64     `json:"lat"`
	Long             *float64     `json:"long"`
	Measures         []MeasureRef `json:"measures"`
}

// LatestFeed is the response shape of the measures endpoint carrying the
// latest reading per measure.
type LatestFeed struct {
	Items []MeasureItem `json:"items"`
}

// MeasureItem is one measure with its most recent reading, when any.
type MeasureItem struct {
	ID            string   `json:"@id"`
	LatestReading *Reading `json:"latestReading"`
}

// ReadingsFeed is the response shape of a measure's readings endpoint.
type ReadingsFeed struct {
	Items []Reading `json:"items"`
}

// Reading is a single timestamped observation.
type Reading struct {
	Measure  string       `json:"measure"`
	DateTime time.Time    `json:"dateTime"`
	Value    ReadingValue `json:"value"`
}

// ReadingValue is a feed value that is usually a number but occasionally a
// tuple of numbers. Value is NaN when no plain number was supplied; the
// tuple lands in Candidates for the sanitizer's fallback extraction.
type ReadingValue struct {
	Value      float64
	Candidates []float64
}

// Numeric reports whether the primary value is a usable number.
func (v ReadingValue) Numeric() bool {
	return !math.IsNaN(v.Value) && !math.IsInf(v.Value, 0)
}

func (v *ReadingValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		v.Value = math.NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.Value = f
		return nil
	}
	v.Value = math.NaN()
	var tuple []float64
	if err := json.Unmarshal(data, &tuple); err == nil {
		v.Candidates = tuple
		return nil
	}
	// Anything else (string, null, object) stays non-numeric with no
	// candidates; the sanitizer flags it downstream.
	return nil
}
