package deal

import "fmt"

// Status is a deal's position in the desking lifecycle.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingManager Status = "pending_manager"
	StatusApproved       Status = "approved"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// transitions is the closed lifecycle table:
// pending → pending_manager → approved → delivered, with cancellation
// reachable from any non-terminal state. Delivered and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:        {StatusPendingManager, StatusCancelled},
	StatusPendingManager: {StatusApproved, StatusCancelled},
	StatusApproved:       {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// InvalidTransitionError reports a status change not permitted by the
// lifecycle table, naming both states so the caller can re-fetch and present
// allowed next actions.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && ValidStatus(s)
}

// ValidateTransition checks whether moving from current to target is allowed
// by the lifecycle table. It returns nil if the transition is valid, an
// InvalidTransitionError otherwise.
func ValidateTransition(current, target Status) error {
	allowed, ok := transitions[current]
	if !ok {
		return &InvalidTransitionError{From: current, To: target}
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return &InvalidTransitionError{From: current, To: target}
}
