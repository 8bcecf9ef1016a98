package pipeline

import "time"

// StationReading is one station's contribution to a town alert.
type StationReading struct {
	Name          string  `json:"name"`
	RelativeLevel float64 `json:"relative_level"`
}

// Alert is the outbound notification for a town whose averaged relative
// water level has left the low tier.
type Alert struct {
	Town        string           `json:"town"`
	Severity    string           `json:"severity"`
	Stations    []StationReading `json:"stations"`
	GeneratedAt time.Time        `json:"generated_at"`
}
