package vrp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrDepotProtected is returned by mutators that would remove the depot.
	ErrDepotProtected = errors.New("depot cannot be removed")

	// ErrNodeNotFound is returned when a mutation names an unknown node id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSolvePending is returned when a solve is triggered while a
	// previous request is still outstanding.
	ErrSolvePending = errors.New("solve already in progress")

	// ErrNotImplemented marks acknowledged stubs, such as the save action.
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError is a pre-flight rejection. It never reaches the network
// and leaves the scenario unchanged; its message is shown to the user as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidateTimeWindow checks a time window pair. A nil window means "no
// constraint" and is always valid. Otherwise both bounds must be
// non-negative and start must be strictly before end.
func ValidateTimeWindow(tw *[2]int) error {
	if tw == nil {
		return nil
	}
	if tw[0] < 0 || tw[1] < 0 {
		return validationErrorf("time window bounds must be non-negative, got [%d, %d]", tw[0], tw[1])
	}
	if tw[0] >= tw[1] {
		return validationErrorf("time window start %d must be before end %d", tw[0], tw[1])
	}
	return nil
}

// ParseTimeWindow parses a pair of user-supplied bound strings into a
// validated time window. Both strings empty means "no constraint" (nil).
// Anything that does not parse as an integer is rejected rather than
// silently coerced to zero.
func ParseTimeWindow(start, end string) (*[2]int, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, validationErrorf("time window needs both start and end")
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return nil, validationErrorf("time window start %q is not an integer", start)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return nil, validationErrorf("time window end %q is not an integer", end)
	}
	tw := [2]int{s, e}
	if err := ValidateTimeWindow(&tw); err != nil {
		return nil, err
	}
	return &tw, nil
}

// ParseCount parses a user-supplied vehicle count. Rejects anything that
// is not a non-negative integer.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, validationErrorf("count %q is not an integer", s)
	}
	if n < 0 {
		return 0, validationErrorf("count must be non-negative, got %d", n)
	}
	return n, nil
}

// ValidateForSolve runs the client-side pre-flight checks that gate a
// solve trigger: the scenario needs at least one customer beyond the
// depot, customers need at least one vehicle, and every time window must
// be well-formed. A rejected scenario never reaches the network.
func ValidateForSolve(s Scenario) error {
	if len(s.Nodes) < 1 {
		return validationErrorf("add at least one node before solving")
	}
	if len(s.Nodes) < 2 {
		return validationErrorf("add at least one customer node before solving")
	}
	if s.NumVehicles < 1 {
		return validationErrorf("no vehicles available to serve customer nodes")
	}
	for _, n := range s.Nodes {
		if err := ValidateTimeWindow(n.TimeWindow); err != nil {
			return validationErrorf("node %d: %v", n.ID, err)
		}
	}
	return nil
}

// ValidateScenario checks structural consistency of a loaded scenario:
// unique node ids, non-negative vehicle count, and well-formed windows.
// Used by the scenario loaders before the data replaces store state.
func ValidateScenario(s Scenario) error {
	if s.NumVehicles < 0 {
		return fmt.Errorf("num_vehicles must be non-negative, got %d", s.NumVehicles)
	}
	seen := make(map[int]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
		if err := ValidateTimeWindow(n.TimeWindow); err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	return nil
}
