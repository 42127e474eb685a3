package presence_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeiJiang1234/presencekit/modules/presence"
	"github.com/FeiJiang1234/presencekit/pkg/broker"
)

func newTestService(t *testing.T) (*presence.Service, *broker.Broker) {
	t.Helper()
	b := broker.New(broker.WithDelayFunc(func(ctx context.Context, kind broker.EventKind) error {
		return ctx.Err()
	}))
	return presence.NewService(b, slog.New(slog.NewTextHandler(io.Discard, nil))), b
}

func newTestServer(t *testing.T) (*httptest.Server, *broker.Broker) {
	t.Helper()
	svc, b := newTestService(t)
	r := chi.NewRouter()
	r.Mount("/presence", svc.Router())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, b
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type loginBatchBody struct {
	OnlineCount int               `json:"online_count"`
	OnlineUsers []string          `json:"online_users"`
	RosterUsers []string          `json:"roster_users"`
	Failed      map[string]string `json:"failed"`
}

func TestLoginBatch(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/presence/logins", `{"users":["alice","bob"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[loginBatchBody](t, resp)
	assert.Equal(t, 2, body.OnlineCount)
	assert.Equal(t, []string{"alice", "bob"}, body.OnlineUsers)
	assert.ElementsMatch(t, []string{"alice", "bob"}, body.RosterUsers)
	assert.Empty(t, body.Failed)
}

func TestLoginBatch_PartialFailure(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/presence/logins", `{"users":["alice","","bob"]}`)
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	body := decode[loginBatchBody](t, resp)
	assert.Equal(t, 2, body.OnlineCount)
	assert.Equal(t, []string{"alice", "bob"}, body.OnlineUsers)
	assert.Len(t, body.Failed, 1)
}

func TestLoginBatch_Validation(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	t.Run("empty user list", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/presence/logins", `{"users":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/presence/logins", `{"users":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRecordAction(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/presence/actions", `{"user":"alice","action":"typing"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "recorded", body["status"])
	assert.Equal(t, "alice", body["user"])
	assert.Equal(t, "typing", body["action"])
}

func TestRecordAction_EmptyUser(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/presence/actions", `{"user":"","action":"typing"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

type snapshotBody struct {
	OnlineCount int               `json:"online_count"`
	Sessions    map[string]string `json:"sessions"`
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	srv, b := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, b.Login(ctx, "alice"))
	require.NoError(t, b.Login(ctx, "bob"))
	require.NoError(t, b.Logout(ctx, "bob"))

	resp, err := http.Get(srv.URL + "/presence/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[snapshotBody](t, resp)
	assert.Equal(t, 1, body.OnlineCount)
	assert.Contains(t, body.Sessions, "alice")
	assert.NotContains(t, body.Sessions, "bob")
}

type stressBody struct {
	TotalOps       int     `json:"total_ops"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	OnlineCount    int     `json:"online_count"`
	OpsPerSecond   float64 `json:"ops_per_second"`
}

func TestStress(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/presence/stress", `{"users":3,"actions_per_user":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[stressBody](t, resp)
	assert.Equal(t, 9, body.TotalOps)
	assert.Equal(t, 3, body.OnlineCount)
	assert.Greater(t, body.OpsPerSecond, 0.0)
}

func TestStress_Validation(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	for name, body := range map[string]string{
		"zero users":       `{"users":0,"actions_per_user":1}`,
		"too many users":   `{"users":100000,"actions_per_user":1}`,
		"negative actions": `{"users":1,"actions_per_user":-1}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/presence/stress", body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestEvents_Stream(t *testing.T) {
	t.Parallel()
	srv, b := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/presence/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NoError(t, b.Login(context.Background(), "alice"))

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)

	chunk := string(buf[:n])
	assert.Contains(t, chunk, "event: login")
	assert.Contains(t, chunk, `"user_name":"alice"`)
}
