package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNonNumericValue = errors.New("analysis: series contains a non-finite value")
	ErrDegreeRange     = errors.New("analysis: polynomial degree out of range")
)

// Polynomial is an evaluable least-squares fit. Coefficients are stored in
// ascending power order.
type Polynomial struct {
	coeffs []float64
}

// Evaluate returns the polynomial value at x using Horner's scheme. Callers
// must subtract the fit's time offset from their axis first.
func (p Polynomial) Evaluate(x float64) float64 {
	var acc float64
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc*x + p.coeffs[i]
	}
	return acc
}

// Coefficients returns a copy of the coefficients in ascending power order.
func (p Polynomial) Coefficients() []float64 {
	out := make([]float64, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

// Degree returns the fitted polynomial degree.
func (p Polynomial) Degree() int { return len(p.coeffs) - 1 }

// PolynomialFit fits a least-squares polynomial of the given degree to the
// series. Dates are converted to a numeric axis of fractional days since the
// Unix epoch and centred on their mean to control numeric conditioning; the
// returned offset is that mean, which callers add back when plotting or
// extrapolating. Mismatched lengths, non-finite values and a degree outside
// [0, len(dates)-1] are input errors.
func PolynomialFit(dates []time.Time, values []float64, degree int) (Polynomial, float64, []float64, error) {
	if len(dates) != len(values) {
		return Polynomial{}, 0, nil, ErrLengthMismatch
	}
	if degree < 0 || degree > len(dates)-1 {
		return Polynomial{}, 0, nil, fmt.Errorf("%w: degree %d for %d points", ErrDegreeRange, degree, len(dates))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Polynomial{}, 0, nil, ErrNonNumericValue
		}
	}

	xs := make([]float64, len(dates))
	for i, d := range dates {
		xs[i] = dateNum(d)
	}
	offset := stat.Mean(xs, nil)

	// Vandermonde matrix over the centred axis.
	n := len(xs)
	cols := degree + 1
	a := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		x := xs[i] - offset
		pow := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, pow)
			pow *= x
		}
	}
	b := mat.NewDense(n, 1, values)

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return Polynomial{}, 0, nil, fmt.Errorf("polynomial fit: %w", err)
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = sol.At(j, 0)
	}
	return Polynomial{coeffs: coeffs}, offset, xs, nil
}

// dateNum converts a time to fractional days since the Unix epoch, the
// numeric axis used for fitting.
func dateNum(t time.Time) float64 {
	return float64(t.UnixMilli()) / (1000 * 86400)
}
