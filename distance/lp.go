package distance

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// Manhattan is the L1 distance.
type Manhattan struct{}

func (Manhattan) Dist(a, b vector.Vec) float64 {
	CheckDims("Manhattan.Dist", a, b)
	return vector.Distance(a, b, 1)
}

func (Manhattan) IsSymmetric() bool          { return true }
func (Manhattan) IsSubadditive() bool        { return true }
func (Manhattan) IsIndiscernible() bool      { return true }
func (Manhattan) MetricBound() float64       { return math.Inf(1) }
func (Manhattan) SupportsAcceleration() bool { return false }
func (Manhattan) NeedsTraining() bool        { return false }
func (m Manhattan) Clone() Metric            { return m }
func (Manhattan) String() string             { return "Manhattan" }

// Chebyshev is the L∞ distance.
type Chebyshev struct{}

func (Chebyshev) Dist(a, b vector.Vec) float64 {
	CheckDims("Chebyshev.Dist", a, b)
	return vector.Distance(a, b, math.Inf(1))
}

func (Chebyshev) IsSymmetric() bool          { return true }
func (Chebyshev) IsSubadditive() bool        { return true }
func (Chebyshev) IsIndiscernible() bool      { return true }
func (Chebyshev) MetricBound() float64       { return math.Inf(1) }
func (Chebyshev) SupportsAcceleration() bool { return false }
func (Chebyshev) NeedsTraining() bool        { return false }
func (c Chebyshev) Clone() Metric            { return c }
func (Chebyshev) String() string             { return "Chebyshev" }

// Minkowski is the Lp distance for p ≥ 1.
type Minkowski struct {
	P float64
}

// NewMinkowski returns the Lp metric. p must be at least 1, otherwise the
// triangle inequality does not hold and tree pruning would be unsound.
func NewMinkowski(p float64) (Minkowski, error) {
	if math.IsNaN(p) || p < 1 {
		return Minkowski{}, errors.NewValidationError("p", "must be >= 1", p)
	}
	return Minkowski{P: p}, nil
}

func (m Minkowski) Dist(a, b vector.Vec) float64 {
	if math.IsNaN(m.P) || m.P < 1 {
		panic(errors.NewValidationError("p", "must be >= 1", m.P))
	}
	CheckDims("Minkowski.Dist", a, b)
	return vector.Distance(a, b, m.P)
}

func (Minkowski) IsSymmetric() bool          { return true }
func (m Minkowski) IsSubadditive() bool      { return m.P >= 1 }
func (Minkowski) IsIndiscernible() bool      { return true }
func (Minkowski) MetricBound() float64       { return math.Inf(1) }
func (Minkowski) SupportsAcceleration() bool { return false }
func (Minkowski) NeedsTraining() bool        { return false }
func (m Minkowski) Clone() Metric            { return m }
func (m Minkowski) String() string           { return fmt.Sprintf("Minkowski(p=%g)", m.P) }
