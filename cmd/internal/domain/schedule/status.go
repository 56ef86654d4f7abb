package schedule

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: nil,
	StatusCompleted: nil,
}

func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s string) bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
// Same-state updates are never edges.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses hold a slot.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}
