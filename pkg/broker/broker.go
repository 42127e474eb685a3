package broker

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/FeiJiang1234/presencekit/pkg/async"
)

// Session represents one logically online user.
type Session struct {
	UserName string    `json:"user_name"`
	LoginAt  time.Time `json:"login_at"`
}

// Broker owns the table of online sessions and fans events out to
// observers. All methods are safe for concurrent use.
type Broker struct {
	// gate serializes the Login/Logout critical sections. Waiters park on
	// the context, not on an OS thread.
	gate *semaphore.Weighted

	mu       sync.RWMutex
	sessions map[string]Session

	obsMu     sync.RWMutex
	observers map[EventKind][]registration
	nextSubID uint64

	delay DelayFunc
	log   *slog.Logger
}

type registration struct {
	id uint64
	fn Observer
}

// New creates a broker with the given options.
func New(opts ...Option) *Broker {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.delay == nil {
		cfg.delay = randomDelay(cfg.mutation, cfg.action)
	}
	if cfg.log == nil {
		cfg.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Broker{
		gate:      semaphore.NewWeighted(1),
		sessions:  make(map[string]Session),
		observers: make(map[EventKind][]registration),
		delay:     cfg.delay,
		log:       cfg.log,
	}
}

// Login marks userName online, refreshing the login time if the user is
// already present. Returns ErrEmptyUserName for a blank name, checked
// before the gate is acquired. Concurrent logins are admitted one at a
// time; callers block on ctx until their turn.
func (b *Broker) Login(ctx context.Context, userName string) error {
	if strings.TrimSpace(userName) == "" {
		return ErrEmptyUserName
	}

	if err := b.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.gate.Release(1)

	if err := b.delay(ctx, KindLogin); err != nil {
		return err
	}

	now := time.Now()
	b.mu.Lock()
	b.sessions[userName] = Session{UserName: userName, LoginAt: now}
	b.mu.Unlock()

	b.log.DebugContext(ctx, "user logged in", slog.String("user", userName))
	b.emit(Event{ID: uuid.New(), Kind: KindLogin, UserName: userName, OccurredAt: now})
	return nil
}

// Logout removes userName from the table. Logging out an absent user is a
// no-op that still emits the event. Shares the mutation gate with Login.
func (b *Broker) Logout(ctx context.Context, userName string) error {
	if strings.TrimSpace(userName) == "" {
		return ErrEmptyUserName
	}

	if err := b.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.gate.Release(1)

	if err := b.delay(ctx, KindLogout); err != nil {
		return err
	}

	b.mu.Lock()
	delete(b.sessions, userName)
	b.mu.Unlock()

	b.log.DebugContext(ctx, "user logged out", slog.String("user", userName))
	b.emit(Event{ID: uuid.New(), Kind: KindLogout, UserName: userName, OccurredAt: time.Now()})
	return nil
}

// RecordAction emits an action event for userName. It does not take the
// mutation gate and does not check whether the user is online: actions for
// unknown users are delivered to observers unchanged.
func (b *Broker) RecordAction(ctx context.Context, userName, label string) error {
	if strings.TrimSpace(userName) == "" {
		return ErrEmptyUserName
	}

	if err := b.delay(ctx, KindAction); err != nil {
		return err
	}

	b.emit(Event{ID: uuid.New(), Kind: KindAction, UserName: userName, Label: label, OccurredAt: time.Now()})
	return nil
}

// LoginMany issues one Login per name concurrently and waits for all of
// them. On any failure it returns a *BatchError listing per-name outcomes;
// logins that succeeded stay in the table.
func (b *Broker) LoginMany(ctx context.Context, userNames []string) error {
	type outcome struct {
		name string
		err  error
	}

	tasks := make([]*async.Task[outcome], len(userNames))
	for i, name := range userNames {
		name := name
		tasks[i] = async.Run(ctx, func(ctx context.Context) (outcome, error) {
			return outcome{name: name, err: b.Login(ctx, name)}, nil
		})
	}

	// Tasks report login failures inside their outcome; All itself only
	// errors when the whole batch was abandoned before starting.
	outcomes, err := async.All(tasks...)
	if err != nil {
		return err
	}

	batch := &BatchError{Failed: make(map[string]error)}
	for _, out := range outcomes {
		if out.err != nil {
			batch.Failed[out.name] = out.err
			continue
		}
		batch.Succeeded = append(batch.Succeeded, out.name)
	}

	if len(batch.Failed) > 0 {
		b.log.WarnContext(ctx, "batch login partially failed",
			slog.Int("succeeded", len(batch.Succeeded)),
			slog.Int("failed", len(batch.Failed)))
		return batch
	}
	return nil
}

// Snapshot returns a point-in-time copy of the table as a mapping from
// user name to login time. It takes only the table's read lock, never the
// mutation gate.
func (b *Broker) Snapshot() map[string]time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]time.Time, len(b.sessions))
	for name, sess := range b.sessions {
		out[name] = sess.LoginAt
	}
	return out
}

// OnlineCount returns the number of online users.
func (b *Broker) OnlineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// Subscribe registers an observer for one event kind. Every matching event
// reaches every registered observer, in registration order.
func (b *Broker) Subscribe(kind EventKind, fn Observer) *Subscription {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()

	b.nextSubID++
	b.observers[kind] = append(b.observers[kind], registration{id: b.nextSubID, fn: fn})
	return &Subscription{broker: b, kind: kind, id: b.nextSubID}
}

// emit delivers ev synchronously to the observers registered for its kind.
// The registration snapshot is taken under the read lock so observers may
// subscribe or cancel without deadlocking the dispatch.
func (b *Broker) emit(ev Event) {
	b.obsMu.RLock()
	regs := b.observers[ev.Kind]
	snapshot := make([]Observer, len(regs))
	for i, reg := range regs {
		snapshot[i] = reg.fn
	}
	b.obsMu.RUnlock()

	for _, fn := range snapshot {
		fn(ev)
	}
}
