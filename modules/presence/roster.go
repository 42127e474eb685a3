package presence

import (
	"slices"
	"sync"

	"github.com/FeiJiang1234/presencekit/pkg/broker"
)

// Roster is an observer keeping its own view of who is online, derived
// solely from the events it has seen. The view is never reconciled
// against the broker's table, so it can diverge under interleaving; it is
// a best-effort derived view, not an authority.
type Roster struct {
	mu    sync.Mutex
	users []string // insertion order
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Observe applies a login or logout event to the local view. Action
// events are ignored.
func (r *Roster) Observe(ev broker.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case broker.KindLogin:
		if !slices.Contains(r.users, ev.UserName) {
			r.users = append(r.users, ev.UserName)
		}
	case broker.KindLogout:
		if i := slices.Index(r.users, ev.UserName); i >= 0 {
			r.users = slices.Delete(r.users, i, i+1)
		}
	}
}

// Users returns a copy of the current view, in the order users were
// first seen.
func (r *Roster) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.users)
}

// Contains reports whether the roster currently believes name is online.
func (r *Roster) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.users, name)
}
