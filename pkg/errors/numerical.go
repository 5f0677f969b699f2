package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf and returns an
// error if so. index identifies the offending vector in its collection, or -1.
func CheckNumericalStability(operation string, values []float64, index int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, index)
		}
	}
	return nil
}
