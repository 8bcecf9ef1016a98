// Command mockfeed serves a small canned flood-monitoring API for local
// development: the stations, rainfall and latest-reading endpoints that the
// service polls, with deterministic readings derived from a fixed clock.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :8081
//	API_BASE_URL=http://localhost:8081 go run ./cmd/floodwatch
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lorcan2440/flood-warning-system/internal/ingest"
)

var baseDate = time.Date(2024, time.March, 2, 9, 45, 0, 0, time.UTC)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	flag.Parse()

	// Fixed clock for reproducible reading timestamps.
	clock := clockwork.NewFakeClockAt(baseDate)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /id/stations", handleStations)
	mux.HandleFunc("GET /id/measures", handleMeasures(clock))

	log.Printf("mock feed listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

type mockStation struct {
	id     string
	label  string
	lat    float64
	lon    float64
	river  string
	town   string
	rloi   string
	low    float64
	high   float64
	level  float64
	kind   string // EA station type: SingleLevel, Coastal or Groundwater
	isRain bool
}

func fixtures() []mockStation {
	return []mockStation{
		{id: "E60101", label: "Cambridge Jesus Lock", lat: 52.211454, lon: 0.11925, river: "River Cam", town: "Cambridge", rloi: "2266", low: 0.157, high: 0.316, level: 0.21, kind: "SingleLevel"},
		{id: "2067", label: "Bath St James", lat: 51.3797, lon: -2.3563, river: "River Avon", town: "Bath", rloi: "2067", low: 0.3, high: 0.8, level: 1.9, kind: "SingleLevel"},
		{id: "L2404", label: "York Viking Recorder", lat: 53.9576, lon: -1.0827, river: "River Ouse", town: "York", rloi: "8208", low: 0.9, high: 2.2, level: 1.3, kind: "SingleLevel"},
		{id: "E71539", label: "Dover Harbour", lat: 51.1145, lon: 1.3089, town: "Dover", rloi: "6101", low: -2.5, high: 4.2, level: 1.1, kind: "Coastal"},
		{id: "TQ27_38", label: "Therfield Rectory", lat: 52.0122, lon: -0.0561, town: "Therfield", rloi: "9312", low: 85.0, high: 92.4, level: 88.2, kind: "Groundwater"},
		{id: "E24871", label: "Cambridge Rain Gauge", lat: 52.226, lon: 0.127, isRain: true, level: 0.2},
	}
}

func handleStations(w http.ResponseWriter, r *http.Request) {
	rainfall := r.URL.Query().Get("parameter") == "rainfall"
	stationType := r.URL.Query().Get("type")

	var feed ingest.StationFeed
	var gauges ingest.GaugeFeed
	for _, s := range fixtures() {
		if s.isRain != rainfall {
			continue
		}
		if !rainfall && stationType != "" && s.kind != stationType {
			continue
		}
		lat, lon := s.lat, s.lon
		measures := []ingest.MeasureRef{{ID: measureURL(r, s.id)}}
		if rainfall {
			period := 900.0
			measures[0].Period = &period
			gauges.Items = append(gauges.Items, ingest.GaugeRecord{
				ID:               stationURL(r, s.id),
				StationReference: s.id,
				Lat:              &lat,
				Long:             &lon,
				Measures:         measures,
			})
			continue
		}
		low, high := s.low, s.high
		feed.Items = append(feed.Items, ingest.StationRecord{
			ID:        stationURL(r, s.id),
			Label:     ingest.Label(s.label),
			Lat:       &lat,
			Long:      &lon,
			RiverName: s.river,
			Town:      s.town,
			RLOIID:    s.rloi,
			StageScale: &ingest.StageScale{
				TypicalRangeLow:  &low,
				TypicalRangeHigh: &high,
			},
			Measures: measures,
		})
	}

	if rainfall {
		writeJSON(w, gauges)
		return
	}
	writeJSON(w, feed)
}

func handleMeasures(clock clockwork.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rainfall := r.URL.Query().Get("parameter") == "rainfall"
		at := clock.Now().UTC()

		var feed latestFeedOut
		for _, s := range fixtures() {
			if s.isRain != rainfall {
				continue
			}
			feed.Items = append(feed.Items, measureItemOut{
				ID: measureURL(r, s.id),
				LatestReading: readingOut{
					Measure:  measureURL(r, s.id),
					DateTime: at,
					Value:    jitter(s.level, at),
				},
			})
		}
		writeJSON(w, feed)
	}
}

// Feed types marshal their own output shape: ingest.ReadingValue only
// implements the decode direction.
type latestFeedOut struct {
	Items []measureItemOut `json:"items"`
}

type measureItemOut struct {
	ID            string     `json:"@id"`
	LatestReading readingOut `json:"latestReading"`
}

type readingOut struct {
	Measure  string    `json:"measure"`
	DateTime time.Time `json:"dateTime"`
	Value    float64   `json:"value"`
}

// jitter nudges a level deterministically so repeated polls show movement.
func jitter(level float64, at time.Time) float64 {
	return level + 0.01*math.Sin(float64(at.Unix())/900)
}

func stationURL(r *http.Request, id string) string {
	return "http://" + r.Host + "/id/stations/" + id
}

func measureURL(r *http.Request, id string) string {
	return "http://" + r.Host + "/id/measures/" + id + "-level-stage-i-15_min-m"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
