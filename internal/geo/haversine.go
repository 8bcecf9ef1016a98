// Package geo provides great-circle geometry and the spatial queries over
// the station catalog built on top of it.
package geo

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// meanEarthRadiusKm is the mean Earth radius,
// https://en.wikipedia.org/wiki/Earth_radius#Mean_radius.
const meanEarthRadiusKm = 6371.0088

// Unit of length for distance results.
type Unit string

const (
	Kilometers    Unit = "km"
	Meters        Unit = "m"
	Miles         Unit = "mi"
	NauticalMiles Unit = "nmi"
	Feet          Unit = "ft"
	Inches        Unit = "in"
)

// conversions from kilometres, per http://www.unitconversion.org/unit_converter/length.html.
var conversions = map[Unit]float64{
	Kilometers:    1.0,
	Meters:        1000.0,
	Miles:         0.621371192,
	NauticalMiles: 0.539956803,
	Feet:          3280.839895013,
	Inches:        39370.078740158,
}

var (
	ErrMissingCoordinate = errors.New("geo: missing or malformed coordinate")
	ErrLengthMismatch    = errors.New("geo: coordinate slices differ in length")
)

// EarthRadius returns the mean Earth radius in the chosen unit.
func EarthRadius(unit Unit) (float64, error) {
	factor, ok := conversions[unit]
	if !ok {
		return 0, fmt.Errorf("geo: unsupported unit %q", unit)
	}
	return meanEarthRadiusKm * factor, nil
}

// Distance computes the great-circle (haversine) distance between two points
// given as (latitude, longitude) pairs in decimal degrees. A nil or
// non-finite point is a domain error: callers holding stations without
// coordinates are expected to filter them out first.
func Distance(a, b *station.Coord, unit Unit) (float64, error) {
	radius, err := EarthRadius(unit)
	if err != nil {
		return 0, err
	}
	if a == nil || b == nil || !a.Valid() || !b.Valid() {
		return 0, ErrMissingCoordinate
	}
	return haversine(*a, *b) * radius, nil
}

// haversine returns the central angle factor for two points; multiplying by
// the sphere radius yields the arc length. The formula is antimeridian-safe
// with no special-casing.
func haversine(a, b station.Coord) float64 {
	lat1 := degToRad * a.Lat
	lat2 := degToRad * b.Lat
	dLat := lat2 - lat1
	dLon := degToRad * (b.Lon - a.Lon)

	sinLat := math.Sin(dLat * 0.5)
	sinLon := math.Sin(dLon * 0.5)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * math.Asin(math.Sqrt(h))
}

const degToRad = math.Pi / 180

// Backend selects how a Calculator evaluates distance batches.
type Backend int

const (
	// BackendVector precomputes the trigonometric terms over whole slices.
	BackendVector Backend = iota
	// BackendScalar falls back to repeated scalar Distance calls.
	BackendScalar
)

// Calculator evaluates distances with a backend fixed at construction. Both
// backends produce results identical to the scalar formula to floating-point
// precision; the scalar fallback only trades throughput, never correctness.
type Calculator struct {
	backend  Backend
	logger   *slog.Logger
	warnOnce sync.Once
}

// NewCalculator builds a Calculator. A nil logger defaults to slog.Default.
func NewCalculator(backend Backend, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{backend: backend, logger: logger}
}

// DistanceMany computes the haversine distance elementwise over two
// equal-length coordinate slices. Every point must be finite.
func (c *Calculator) DistanceMany(a, b []station.Coord, unit Unit) ([]float64, error) {
	radius, err := EarthRadius(unit)
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	for i := range a {
		if !a[i].Valid() || !b[i].Valid() {
			return nil, ErrMissingCoordinate
		}
	}

	if c.backend == BackendScalar {
		c.warnOnce.Do(func() {
			c.logger.Warn("vector distance backend disabled, using repeated scalar calls",
				"points", len(a))
		})
		out := make([]float64, len(a))
		for i := range a {
			out[i] = haversine(a[i], b[i]) * radius
		}
		return out, nil
	}

	return distanceManyVector(a, b, radius), nil
}

// distanceManyVector evaluates the batch with slice arithmetic: the degree
// conversions and angle differences run over whole slices before the final
// per-element trigonometry.
func distanceManyVector(a, b []station.Coord, radius float64) []float64 {
	n := len(a)
	lat1 := make([]float64, n)
	lat2 := make([]float64, n)
	dLat := make([]float64, n)
	dLon := make([]float64, n)
	for i := range a {
		lat1[i] = a[i].Lat
		lat2[i] = b[i].Lat
		dLat[i] = b[i].Lat - a[i].Lat
		dLon[i] = b[i].Lon - a[i].Lon
	}
	floats.Scale(degToRad, lat1)
	floats.Scale(degToRad, lat2)
	floats.Scale(degToRad*0.5, dLat)
	floats.Scale(degToRad*0.5, dLon)

	out := make([]float64, n)
	for i := range out {
		sinLat := math.Sin(dLat[i])
		sinLon := math.Sin(dLon[i])
		h := sinLat*sinLat + math.Cos(lat1[i])*math.Cos(lat2[i])*sinLon*sinLon
		out[i] = 2 * radius * math.Asin(math.Sqrt(h))
	}
	return out
}
