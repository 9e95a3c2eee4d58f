package cluster

import "fmt"

// Status is the lifecycle state of a job. A job only ever moves forward through
// NotCreated -> Pending -> Running -> Completed.
type Status int

const (
	NotCreated Status = iota
	Pending
	Running
	Completed
	// Failed exists in the taxonomy but nothing currently drives a job into it.
	Failed
)

var statusNames = map[Status]string{
	NotCreated: "NotCreated",
	Pending:    "Pending",
	Running:    "Running",
	Completed:  "Completed",
	Failed:     "Failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsValidTransition returns true if a job may go from s to next within a single step.
// Staying in the same state is always valid.
func (s Status) IsValidTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case NotCreated:
		return next == Pending
	case Pending:
		return next == Running
	case Running:
		return next == Completed
	default:
		return false
	}
}

// IsTerminal returns true for states a job never leaves.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed
}
