package status

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/synctrack/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	testlog.Start(t)
	store := NewStore()
	srv := New(store, Options{Name: "test"})

	w := get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(t, srv.Handler(), "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	store.Publish(Snapshot{Connected: true, SessionID: "abc"})
	w = get(t, srv.Handler(), "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["ready"])
	require.Equal(t, "abc", body["session"])
}

func TestStateReflectsPublishedSnapshot(t *testing.T) {
	testlog.Start(t)
	store := NewStore()
	srv := New(store, Options{})

	var initial Snapshot
	w := get(t, srv.Handler(), "/state")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &initial))
	require.True(t, initial.Paused)
	require.Equal(t, []string{}, initial.Tracks)

	tracks := []string{"camera:x", "fx:fade"}
	store.Publish(Snapshot{
		Address:   "localhost:1338",
		Connected: true,
		Row:       42,
		Paused:    false,
		Tracks:    tracks,
		Commands:  7,
	})
	tracks[0] = "mutated"

	var got Snapshot
	w = get(t, srv.Handler(), "/state")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, uint32(42), got.Row)
	require.False(t, got.Paused)
	require.Equal(t, []string{"camera:x", "fx:fade"}, got.Tracks)
	require.Equal(t, uint64(7), got.Commands)
	require.False(t, got.UpdatedAt.IsZero())
}

func TestMetricsEndpoint(t *testing.T) {
	testlog.Start(t)
	srv := New(NewStore(), Options{})
	get(t, srv.Handler(), "/health")

	w := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "synctrack_http_requests_total")
}

func TestServeStopsOnContextCancel(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := New(NewStore(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
