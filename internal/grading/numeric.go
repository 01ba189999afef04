package grading

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a numerical candidate cannot be parsed as a
// finite number. Callers surface it as invalid input, retryable.
var ErrNotANumber = errors.New("answer is not a finite number")

// numericStrategy passes a candidate iff it is within TolerancePercent of the
// target, measured relative to the target value:
//
//	|candidate - target| <= |target| * tolerance/100
//
// Boundary equality passes. A target of 0 therefore accepts only an exact 0;
// that is the intended behavior, not an oversight.
type numericStrategy struct{}

func (numericStrategy) Evaluate(q Q, candidate string) (bool, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false, ErrNotANumber
	}
	diff := math.Abs(v - q.Target)
	return diff <= math.Abs(q.Target)*(q.TolerancePercent/100), nil
}
