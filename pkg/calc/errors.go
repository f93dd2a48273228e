package calc

import (
	"errors"
	"strings"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("binding cycle")

// ErrCannotPlay is returned when starting a timer on a box that can't be
// played.
var ErrCannotPlay = errors.New("box cannot be played")

// CycleError is returned when following bindings leads back to a box that is
// already being visited, or when a binding would create such a loop.
type CycleError struct {
	// IDs of the boxes on the cycle, with the first one repeated at the end.
	Path []string
}

func (e *CycleError) Error() string {
	return "binding cycle: " + strings.Join(e.Path, " -> ")
}

// Is makes errors.Is(err, ErrCycle) true for any *CycleError.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }
