package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axeyQ/restropos-backend/pkg/enums"
)

var allStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
	enums.OrderStatusPreparing,
	enums.OrderStatusReady,
	enums.OrderStatusServed,
	enums.OrderStatusCompleted,
	enums.OrderStatusCancelled,
}

func TestCanTransitionFullMatrix(t *testing.T) {
	allowed := map[enums.OrderStatus]map[enums.OrderStatus]bool{
		enums.OrderStatusPending: {
			enums.OrderStatusConfirmed: true,
			enums.OrderStatusPreparing: true,
			enums.OrderStatusCancelled: true,
		},
		enums.OrderStatusConfirmed: {
			enums.OrderStatusPreparing: true,
			enums.OrderStatusCancelled: true,
		},
		enums.OrderStatusPreparing: {
			enums.OrderStatusReady:     true,
			enums.OrderStatusCancelled: true,
		},
		enums.OrderStatusReady: {
			enums.OrderStatusServed:    true,
			enums.OrderStatusCompleted: true,
			enums.OrderStatusCancelled: true,
		},
		enums.OrderStatusServed: {
			enums.OrderStatusCompleted: true,
			enums.OrderStatusCancelled: true,
		},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from][to]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusCancelled} {
		for _, to := range allStatuses {
			assert.False(t, CanTransition(from, to), "%s -> %s should be blocked", from, to)
		}
	}
}

func TestSelfTransitionsAreBlocked(t *testing.T) {
	for _, status := range allStatuses {
		assert.False(t, CanTransition(status, status), "%s -> itself", status)
	}
}

func TestInvalidTransitionNamesBothStates(t *testing.T) {
	err := InvalidTransition(enums.OrderStatusReady, enums.OrderStatusConfirmed)
	assert.EqualError(t, err, "STATE_CONFLICT: cannot transition order from ready to confirmed")
}
