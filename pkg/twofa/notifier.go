package twofa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a credential lifecycle transition.
type EventKind string

const (
	EventEnabled              EventKind = "twofa.enabled"
	EventDisabled             EventKind = "twofa.disabled"
	EventRecoveryCodesRotated EventKind = "twofa.recovery_codes_rotated"
)

// Event describes a successful state transition, handed to the Notifier so
// the account owner can be informed through whatever channels the host
// application supports.
type Event struct {
	ID         string
	AccountID  string
	Kind       EventKind
	OccurredAt time.Time
}

func newEvent(accountID string, kind EventKind, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Kind:       kind,
		OccurredAt: at,
	}
}

// Notifier delivers lifecycle events to the account owner. Delivery is
// fire-and-forget from the lifecycle's perspective: the state transition has
// already committed when Notify runs, and a delivery error is logged, never
// rolled back.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NoOpNotifier discards all events. Useful for tests or when no delivery
// channel is wired up.
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}
