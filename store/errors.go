package store

import "fmt"

// HardError mirrors proof.HardError for rejections originating in the
// store layer itself (malformed sub-protocol bytes, an action delivered in
// a phase that doesn't expect it) before ever reaching the wrapped
// domain.State.
type HardError struct{ Reason string }

func (e *HardError) Error() string { return fmt.Sprintf("store: %s", e.Reason) }

// NewHardError constructs a HardError with a formatted reason.
func NewHardError(format string, args ...any) *HardError {
	return &HardError{Reason: fmt.Sprintf(format, args...)}
}
