package presence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FeiJiang1234/presencekit/modules/presence"
	"github.com/FeiJiang1234/presencekit/pkg/broker"
)

func event(kind broker.EventKind, user string) broker.Event {
	return broker.Event{ID: uuid.New(), Kind: kind, UserName: user, OccurredAt: time.Now()}
}

func TestRoster(t *testing.T) {
	t.Parallel()
	r := presence.NewRoster()

	r.Observe(event(broker.KindLogin, "alice"))
	r.Observe(event(broker.KindLogin, "bob"))
	r.Observe(event(broker.KindLogin, "alice")) // repeat login, no duplicate

	assert.Equal(t, []string{"alice", "bob"}, r.Users())
	assert.True(t, r.Contains("alice"))

	r.Observe(event(broker.KindLogout, "alice"))
	assert.Equal(t, []string{"bob"}, r.Users())
	assert.False(t, r.Contains("alice"))

	// Logout for someone never seen is a no-op.
	r.Observe(event(broker.KindLogout, "ghost"))
	assert.Equal(t, []string{"bob"}, r.Users())

	// Action events do not change the view.
	r.Observe(event(broker.KindAction, "carol"))
	assert.Equal(t, []string{"bob"}, r.Users())
}

func TestRosterUsers_IsACopy(t *testing.T) {
	t.Parallel()
	r := presence.NewRoster()
	r.Observe(event(broker.KindLogin, "alice"))

	users := r.Users()
	users[0] = "mallory"

	assert.Equal(t, []string{"alice"}, r.Users())
}
