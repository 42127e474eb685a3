package broker

import (
	"time"

	"github.com/google/uuid"
)

// EventKind tags an Event with the operation that produced it.
type EventKind string

const (
	KindLogin  EventKind = "login"
	KindLogout EventKind = "logout"
	KindAction EventKind = "action"
)

// Event is an immutable record of one session occurrence. It is created
// once per operation, handed to every matching observer, then discarded.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Kind       EventKind `json:"kind"`
	UserName   string    `json:"user_name"`
	Label      string    `json:"label,omitempty"` // set only for KindAction
	OccurredAt time.Time `json:"occurred_at"`
}

// Observer receives events from the operation that emitted them.
// Implementations that hold locks must not call back into the broker's
// mutation operations.
type Observer func(Event)

// Subscription identifies one registered observer.
type Subscription struct {
	broker *Broker
	kind   EventKind
	id     uint64
}

// Cancel removes the observer. Events already being dispatched may still
// reach it; subsequent events will not. Cancel is idempotent.
func (s *Subscription) Cancel() {
	b := s.broker
	b.obsMu.Lock()
	defer b.obsMu.Unlock()

	regs := b.observers[s.kind]
	for i, reg := range regs {
		if reg.id == s.id {
			// Full-slice-expression copy keeps in-flight emit snapshots intact.
			b.observers[s.kind] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}
