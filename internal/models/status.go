package models

// OrderStatus represents the status of an order in the kitchen workflow.
type OrderStatus string

const (
	StatusPendingApproval OrderStatus = "pending_approval"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusPreparing       OrderStatus = "preparing"
	StatusReady           OrderStatus = "ready"
	StatusCompleted       OrderStatus = "completed"
	StatusCancelled       OrderStatus = "cancelled"
)

// validTransitions is the authoritative state machine definition. Orders
// move forward one step at a time; cancellation is reachable from any state
// that has not yet been marked ready.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingApproval: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusPreparing, StatusCancelled},
	StatusPreparing:       {StatusReady, StatusCancelled},
	StatusReady:           {StatusCompleted},
	StatusCompleted:       nil,
	StatusCancelled:       nil,
}

// ParseOrderStatus validates a status string from the wire.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPendingApproval, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Message: "unknown status " + s}
}

// CanTransition checks whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) error {
	for _, next := range validTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// IsTerminal reports whether no further transitions are legal.
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
