package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// NumericalInstabilityError reports a NaN or infinite value where a finite
// number is required. The output document is JSON, which cannot carry them.
type NumericalInstabilityError struct {
	Operation string
	Value     float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("treeport: non-finite value %v in %s", e.Value, e.Operation)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, value float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Value: value})
}

// CheckScalar checks a single scalar value for NaN or Inf.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, value)
	}
	return nil
}
