package models

import "fmt"

// RequestStatus represents the lifecycle state of a water request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusInTransit RequestStatus = "in_transit"
	StatusCompleted RequestStatus = "completed"
)

// ValidStatus reports whether status names a lifecycle state at all.
func ValidStatus(status string) bool {
	switch RequestStatus(status) {
	case StatusPending, StatusAccepted, StatusInTransit, StatusCompleted:
		return true
	}
	return false
}

// validTransitions is the authoritative state machine definition. The
// lifecycle is strictly forward: pending -> accepted -> in_transit ->
// completed. Re-asserting the current state is allowed so that repeated
// driver updates stay idempotent.
var validTransitions = map[RequestStatus]RequestStatus{
	StatusPending:   StatusAccepted,
	StatusAccepted:  StatusInTransit,
	StatusInTransit: StatusCompleted,
}

// ErrInvalidTransition is returned when a requested status change does not
// follow the lifecycle order.
type ErrInvalidTransition struct {
	From RequestStatus
	To   RequestStatus
}

func (e *ErrInvalidTransition) Error() string {
	next, ok := validTransitions[e.From]
	if !ok {
		return fmt.Sprintf("invalid transition: %s is a terminal state", e.From)
	}
	return fmt.Sprintf("invalid transition: %s -> %s (next valid status is %s)", e.From, e.To, next)
}

// CanTransition checks whether a request may move from one status to
// another. Self-transitions are permitted.
func CanTransition(from, to RequestStatus) error {
	if from == to {
		return nil
	}
	if validTransitions[from] == to {
		return nil
	}
	return &ErrInvalidTransition{From: from, To: to}
}

// NextStatus returns the single legal successor of a status, or "" for the
// terminal state.
func NextStatus(status RequestStatus) RequestStatus {
	return validTransitions[status]
}
