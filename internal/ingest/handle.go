package ingest

import "github.com/lorcan2440/flood-warning-system/internal/station"

// Handle identifies a measure either through an already-built station or by
// its raw measure URL. The two cases are constructed explicitly so call
// sites never pass a bare string where a station was meant.
type Handle struct {
	resolved *station.Station
	raw      string
}

// StationHandle wraps a resolved station.
func StationHandle(s *station.Station) Handle {
	return Handle{resolved: s}
}

// RawHandle wraps a bare measure URL, for measures with no catalog entry.
func RawHandle(measureID string) Handle {
	return Handle{raw: measureID}
}

// MeasureID returns the measure URL the handle points at.
func (h Handle) MeasureID() string {
	if h.resolved != nil {
		return h.resolved.MeasureID()
	}
	return h.raw
}

// Station returns the resolved station, if the handle carries one.
func (h Handle) Station() (*station.Station, bool) {
	return h.resolved, h.resolved != nil
}
