package presence

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/FeiJiang1234/presencekit/pkg/broker"
	"github.com/FeiJiang1234/presencekit/pkg/logger"
)

type loginBatchRequest struct {
	Users []string `json:"users"`
}

type loginBatchResponse struct {
	OnlineCount int               `json:"online_count"`
	OnlineUsers []string          `json:"online_users"`
	RosterUsers []string          `json:"roster_users"`
	Failed      map[string]string `json:"failed,omitempty"`
}

// handleLoginBatch logs every listed user in concurrently. Partial
// failure answers 207 with per-name errors; completed logins stay.
func (s *Service) handleLoginBatch(w http.ResponseWriter, r *http.Request) {
	var req loginBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(req.Users) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "users must not be empty")
		return
	}

	status := http.StatusOK
	resp := loginBatchResponse{}

	if err := s.broker.LoginMany(r.Context(), req.Users); err != nil {
		var batch *broker.BatchError
		if !errors.As(err, &batch) {
			s.log.ErrorContext(r.Context(), "batch login failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		status = http.StatusMultiStatus
		resp.Failed = make(map[string]string, len(batch.Failed))
		for name, ferr := range batch.Failed {
			resp.Failed[name] = ferr.Error()
		}
	}

	snapshot := s.broker.Snapshot()
	resp.OnlineCount = len(snapshot)
	resp.OnlineUsers = make([]string, 0, len(snapshot))
	for name := range snapshot {
		resp.OnlineUsers = append(resp.OnlineUsers, name)
	}
	slices.Sort(resp.OnlineUsers)
	resp.RosterUsers = s.roster.Users()

	writeJSON(w, status, resp)
}

type recordActionRequest struct {
	User   string `json:"user"`
	Action string `json:"action"`
}

type recordActionResponse struct {
	Status string `json:"status"`
	User   string `json:"user"`
	Action string `json:"action"`
}

func (s *Service) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	var req recordActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	if err := s.broker.RecordAction(r.Context(), req.User, req.Action); err != nil {
		if errors.Is(err, broker.ErrEmptyUserName) {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "user must not be empty")
			return
		}
		s.log.ErrorContext(r.Context(), "record action failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recordActionResponse{Status: "recorded", User: req.User, Action: req.Action})
}

type snapshotResponse struct {
	OnlineCount int                  `json:"online_count"`
	Sessions    map[string]time.Time `json:"sessions"`
}

func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := s.broker.Snapshot()
	writeJSON(w, http.StatusOK, snapshotResponse{
		OnlineCount: len(snapshot),
		Sessions:    snapshot,
	})
}

type stressRequest struct {
	Users          int `json:"users"`
	ActionsPerUser int `json:"actions_per_user"`
}

func (s *Service) handleStress(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Users <= 0 || req.Users > maxStressUsers {
		writeError(w, http.StatusUnprocessableEntity, "validation_error",
			fmt.Sprintf("users must be between 1 and %d", maxStressUsers))
		return
	}
	if req.ActionsPerUser < 0 || req.ActionsPerUser > maxStressActionsPerUser {
		writeError(w, http.StatusUnprocessableEntity, "validation_error",
			fmt.Sprintf("actions_per_user must be between 0 and %d", maxStressActionsPerUser))
		return
	}

	report, err := s.runStress(r.Context(), req.Users, req.ActionsPerUser)
	if err != nil {
		s.log.ErrorContext(r.Context(), "stress run failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleEvents streams broker events to the client as Server-Sent Events
// until the client disconnects. Slow clients miss events rather than
// slowing the broker.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	// Subscribe before the headers go out so events emitted immediately
	// after the client sees the response are not missed.
	ch := s.feed.Subscribe()
	defer s.feed.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}
