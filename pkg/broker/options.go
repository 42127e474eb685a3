package broker

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// DelayFunc simulates the latency of one operation. For KindLogin and
// KindLogout it runs inside the mutation critical section; for KindAction
// it runs without any lock held. It should return ctx.Err() if the caller
// abandons the operation.
type DelayFunc func(ctx context.Context, kind EventKind) error

type delayRange struct {
	min, max time.Duration
}

type config struct {
	log      *slog.Logger
	mutation delayRange
	action   delayRange
	delay    DelayFunc
}

func defaultConfig() *config {
	return &config{
		mutation: delayRange{min: 20 * time.Millisecond, max: 120 * time.Millisecond},
		action:   delayRange{min: 5 * time.Millisecond, max: 30 * time.Millisecond},
	}
}

// Option configures the broker.
type Option func(*config)

// WithLogger supplies an external slog.Logger. If nil, logging is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithMutationDelay sets the simulated latency range for Login and Logout.
func WithMutationDelay(min, max time.Duration) Option {
	if min < 0 || max < min {
		panic("WithMutationDelay: need 0 <= min <= max")
	}
	return func(c *config) { c.mutation = delayRange{min: min, max: max} }
}

// WithActionDelay sets the simulated latency range for RecordAction.
func WithActionDelay(min, max time.Duration) Option {
	if min < 0 || max < min {
		panic("WithActionDelay: need 0 <= min <= max")
	}
	return func(c *config) { c.action = delayRange{min: min, max: max} }
}

// WithDelayFunc replaces the simulated-latency step entirely. The delay
// ranges are ignored when set. Intended for instrumentation in tests.
func WithDelayFunc(fn DelayFunc) Option {
	if fn == nil {
		panic("WithDelayFunc: nil func")
	}
	return func(c *config) { c.delay = fn }
}

// randomDelay sleeps for a uniformly random duration within the range for
// the event kind, waking early on context cancellation.
func randomDelay(mutation, action delayRange) DelayFunc {
	return func(ctx context.Context, kind EventKind) error {
		r := mutation
		if kind == KindAction {
			r = action
		}
		d := r.min
		if span := r.max - r.min; span > 0 {
			d += time.Duration(rand.Int63n(int64(span)))
		}
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
