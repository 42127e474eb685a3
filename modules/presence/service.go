// Package presence exposes the session broker over HTTP: batch logins,
// action recording, snapshots, a stress runner, and a live event stream.
package presence

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/FeiJiang1234/presencekit/pkg/broker"
)

// Service owns the HTTP-facing view of one broker instance: the roster
// observer and the event feed are wired to it at construction.
type Service struct {
	broker *broker.Broker
	roster *Roster
	feed   *Feed
	log    *slog.Logger
}

// NewService wires a service to b. The roster tracks login and logout
// events; the feed relays every event kind to streaming clients.
func NewService(b *broker.Broker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Service{
		broker: b,
		roster: NewRoster(),
		feed:   NewFeed(16),
		log:    log,
	}

	b.Subscribe(broker.KindLogin, s.roster.Observe)
	b.Subscribe(broker.KindLogout, s.roster.Observe)

	b.Subscribe(broker.KindLogin, s.feed.Observe)
	b.Subscribe(broker.KindLogout, s.feed.Observe)
	b.Subscribe(broker.KindAction, s.feed.Observe)

	return s
}

// Router returns the presence routes, intended to be mounted by the host:
//
//	r.Mount("/presence", svc.Router())
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/logins", s.handleLoginBatch)
	r.Post("/actions", s.handleRecordAction)
	r.Get("/snapshot", s.handleSnapshot)
	r.Post("/stress", s.handleStress)
	r.Get("/events", s.handleEvents)

	return r
}
