package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrDraftAssignment: write attempted on an unpublished assignment.
	// Non-retryable until the teacher publishes.
	ErrDraftAssignment = errors.New("assignment is in draft, progress cannot be saved")

	// ErrAccessRestricted: classroom network policy denied the write.
	// Matched with errors.Is against RestrictedError.
	ErrAccessRestricted = errors.New("access restricted by classroom network policy")

	// ErrInvalidInput: malformed index or answer; retryable immediately.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExhaustedVariations: variation mode ran out of eligible indices
	// before the pass threshold was reached. Distinct from completion; needs
	// operator intervention.
	ErrExhaustedVariations = errors.New("no eligible variations remain")

	// ErrNotFound: no progress record exists for the key.
	ErrNotFound = errors.New("progress record not found")
)

// RestrictedError carries the detected address so the denial can show it.
type RestrictedError struct {
	CurrentIP string
}

func (e *RestrictedError) Error() string {
	return fmt.Sprintf("access restricted by classroom network policy (your address: %s)", e.CurrentIP)
}

func (e *RestrictedError) Is(target error) bool { return target == ErrAccessRestricted }
