package station

import (
	"math"
	"strings"
	"time"
)

// stationPageBaseURL is the public page for a station, keyed by its RLOI
// (River Levels On the Internet) ID.
const stationPageBaseURL = "https://check-for-flooding.service.gov.uk/station/"

// Coord is a WGS-84 (latitude, longitude) pair in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite numbers.
func (c Coord) Valid() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

// Range is a (low, high) water-level interval in metres.
type Range struct {
	Low  float64
	High float64
}

// Type classifies a monitoring station by what it measures.
type Type int

const (
	TypeUnknown Type = iota
	TypeRiverLevel
	TypeTidal
	TypeGroundwater
)

func (t Type) String() string {
	switch t {
	case TypeRiverLevel:
		return "River Level"
	case TypeTidal:
		return "Tidal"
	case TypeGroundwater:
		return "Groundwater"
	default:
		return "Unknown"
	}
}

// Attrs carries the optional attributes recognized when constructing a
// Station. The zero value is valid: an inland river-level station with no
// river, town or record range known.
type Attrs struct {
	River       string // name of the river the station monitors
	Town        string // nearest town or named place
	Tidal       bool   // measures coastal water levels relative to datum
	Groundwater bool   // measures aquifer levels
	RecordRange *Range // lowest/highest level ever recorded, metres
	RLOIID      string // RLOI page ID; when set, the reference URL is derived from it
}

// Station represents one water-level monitoring station. Identity fields
// (measure ID, name, coordinate, typical range) are fixed at construction;
// the live-reading fields are overwritten by the ingestion adapter on every
// refresh cycle.
type Station struct {
	measureID    string
	name         string
	coord        *Coord
	typicalRange *Range
	stationType  Type

	// Live fields, assigned externally on each refresh. A nil level means
	// the latest feed carried no usable reading for this station.
	LatestLevel       *float64
	LatestReadingTime *time.Time

	River       string
	Town        string
	Tidal       bool
	Groundwater bool
	RecordRange *Range
	URL         string
}

// New constructs a Station. The coordinate and typical range may be nil when
// the feed omits them; such stations are skipped by the spatial queries and
// fail the consistency check respectively.
func New(measureID, name string, coord *Coord, typicalRange *Range, attrs Attrs) *Station {
	s := &Station{
		measureID:    measureID,
		name:         name,
		coord:        coord,
		typicalRange: typicalRange,
		River:        attrs.River,
		Town:         attrs.Town,
		Tidal:        attrs.Tidal,
		Groundwater:  attrs.Groundwater,
		RecordRange:  attrs.RecordRange,
	}
	if attrs.RLOIID != "" {
		s.URL = stationPageBaseURL + attrs.RLOIID
	}

	switch {
	case attrs.Tidal && attrs.Groundwater:
		s.stationType = TypeUnknown
	case attrs.Tidal:
		s.stationType = TypeTidal
	case attrs.Groundwater:
		s.stationType = TypeGroundwater
	default:
		s.stationType = TypeRiverLevel
	}
	return s
}

// MeasureID returns the opaque feed handle for the station's level measure.
func (s *Station) MeasureID() string { return s.measureID }

// Name returns the station label, usually the surrounding village or
// district. Not guaranteed unique.
func (s *Station) Name() string { return s.name }

// Coord returns the station position, or nil when the feed omitted it.
func (s *Station) Coord() *Coord { return s.coord }

// TypicalRange returns the documented normal variation band, or nil.
func (s *Station) TypicalRange() *Range { return s.typicalRange }

// Type returns the station classification derived at construction.
func (s *Station) Type() Type { return s.stationType }

// TypicalRangeConsistent reports whether the typical range is present, has
// finite bounds and is correctly ordered with low strictly below high.
func (s *Station) TypicalRangeConsistent() bool {
	r := s.typicalRange
	if r == nil || !isFinite(r.Low) || !isFinite(r.High) {
		return false
	}
	return r.Low < r.High
}

// RelativeWaterLevel returns the latest level as a fraction of the typical
// range, where 0 sits at the low bound and 1 at the high bound. The value
// may exceed 1 during floods. The second return is false when the range is
// inconsistent or no latest level is attached.
func (s *Station) RelativeWaterLevel() (float64, bool) {
	if !s.TypicalRangeConsistent() || s.LatestLevel == nil {
		return 0, false
	}
	r := s.typicalRange
	return (*s.LatestLevel - r.Low) / (r.High - r.Low), true
}

// Compare orders stations for ranking: by relative water level when both
// sides have one, falling back to name otherwise (and on level ties, so the
// order is deterministic).
func Compare(a, b *Station) int {
	la, oka := a.RelativeWaterLevel()
	lb, okb := b.RelativeWaterLevel()
	if oka && okb {
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
	}
	return strings.Compare(a.name, b.name)
}

// InconsistentRangeStations returns the stations whose typical range data
// fails the consistency check.
func InconsistentRangeStations(stations []*Station) []*Station {
	var bad []*Station
	for _, s := range stations {
		if !s.TypicalRangeConsistent() {
			bad = append(bad, s)
		}
	}
	return bad
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
