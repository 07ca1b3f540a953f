package enums

import "fmt"

// KOTStatus tracks a kitchen ticket and each of its items. Transitions are
// monotonic forward; cancelled is terminal from any state.
type KOTStatus string

const (
	KOTStatusPending   KOTStatus = "pending"
	KOTStatusPreparing KOTStatus = "preparing"
	KOTStatusReady     KOTStatus = "ready"
	KOTStatusCompleted KOTStatus = "completed"
	KOTStatusCancelled KOTStatus = "cancelled"
)

var validKOTStatuses = []KOTStatus{
	KOTStatusPending,
	KOTStatusPreparing,
	KOTStatusReady,
	KOTStatusCompleted,
	KOTStatusCancelled,
}

var kotStatusRank = map[KOTStatus]int{
	KOTStatusPending:   0,
	KOTStatusPreparing: 1,
	KOTStatusReady:     2,
	KOTStatusCompleted: 3,
}

// String implements fmt.Stringer.
func (k KOTStatus) String() string {
	return string(k)
}

// IsValid reports whether the value is a known KOTStatus.
func (k KOTStatus) IsValid() bool {
	for _, candidate := range validKOTStatuses {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the ticket can no longer change state.
func (k KOTStatus) IsTerminal() bool {
	return k == KOTStatusCompleted || k == KOTStatusCancelled
}

// CanTransitionTo reports whether moving from k to next is a legal forward
// step. Cancelled is reachable from anywhere but never left.
func (k KOTStatus) CanTransitionTo(next KOTStatus) bool {
	if k == next {
		return false
	}
	if k.IsTerminal() {
		return false
	}
	if next == KOTStatusCancelled {
		return true
	}
	return kotStatusRank[next] > kotStatusRank[k]
}

// ParseKOTStatus converts raw input into a KOTStatus.
func ParseKOTStatus(value string) (KOTStatus, error) {
	for _, candidate := range validKOTStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kot status %q", value)
}
