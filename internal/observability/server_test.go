package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawsim/rawsim/sim"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestSnapshotUnavailableBeforeFirstTick(t *testing.T) {
	srv := NewServer(nil)

	rr := serve(t, srv.Handler(), http.MethodGet, "/snapshot")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSnapshotServedAfterTick(t *testing.T) {
	// GIVEN a server that observed one tick
	srv := NewServer(nil)
	w := newWorld(t)
	w.Tick(0.5)
	srv.ObserveTick(w, time.Millisecond)

	// WHEN the snapshot is requested
	rr := serve(t, srv.Handler(), http.MethodGet, "/snapshot")

	// THEN it is the JSON encoding of the world at that tick
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var snap sim.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 0.5, snap.Clock)
	assert.Equal(t, int64(1), snap.Ticks)
	assert.Len(t, snap.Robots, 1)
	assert.Len(t, snap.Pods, 1)

	// AND later world changes do not leak into the published copy
	w.Tick(0.5)
	rr = serve(t, srv.Handler(), http.MethodGet, "/snapshot")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 0.5, snap.Clock)
}

func TestControlQueuesCommand(t *testing.T) {
	srv := NewServer(nil)

	rr := serve(t, srv.Handler(), http.MethodPost, "/control/pause")

	require.Equal(t, http.StatusAccepted, rr.Code)
	select {
	case cmd := <-srv.Commands():
		assert.Equal(t, sim.CommandTogglePause, cmd.Type)
	default:
		t.Fatal("command was not queued")
	}
}

func TestControlSetScale(t *testing.T) {
	srv := NewServer(nil)
	h := srv.Handler()

	rr := serve(t, h, http.MethodPost, "/control/set-scale?scale=2.5")
	require.Equal(t, http.StatusAccepted, rr.Code)
	cmd := <-srv.Commands()
	assert.Equal(t, sim.Command{Type: sim.CommandSetScale, Scale: 2.5}, cmd)

	for _, bad := range []string{"", "?scale=fast", "?scale=0", "?scale=-1"} {
		rr := serve(t, h, http.MethodPost, "/control/set-scale"+bad)
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestControlRejectsUnknownCommand(t *testing.T) {
	srv := NewServer(nil)

	rr := serve(t, srv.Handler(), http.MethodPost, "/control/self-destruct")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "self-destruct")
}

func TestControlRequiresPost(t *testing.T) {
	srv := NewServer(nil)

	rr := serve(t, srv.Handler(), http.MethodGet, "/control/pause")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestControlQueueFull(t *testing.T) {
	// GIVEN a queue filled to capacity
	srv := NewServer(nil)
	h := srv.Handler()
	for i := 0; i < commandBuffer; i++ {
		require.Equal(t, http.StatusAccepted, serve(t, h, http.MethodPost, "/control/faster").Code)
	}

	// WHEN one more command arrives
	rr := serve(t, h, http.MethodPost, "/control/faster")

	// THEN it is refused rather than blocking the handler
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMetricsRouteOnlyWithCollector(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, NewServer(nil).Handler(), http.MethodGet, "/metrics").Code)

	collector, err := NewWarehouseCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	srv := NewServer(collector)
	srv.ObserveTick(newWorld(t), time.Millisecond)

	rr := serve(t, srv.Handler(), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "warehouse_ticks"))
}

// TestServerDrivesExecutor verifies the control path end to end.
//
// Given: An executor reading commands from the server queue
// When: A slower command is posted before the run
// Then: The world's time scale is halved and the server holds a snapshot
func TestServerDrivesExecutor(t *testing.T) {
	srv := NewServer(nil)
	require.Equal(t, http.StatusAccepted, serve(t, srv.Handler(), http.MethodPost, "/control/slower").Code)

	w := newWorld(t)
	e := sim.NewExecutor(w)
	e.Step, e.Warmup, e.Duration = 0.5, 0, 1
	e.Commands = srv.Commands()
	e.Observers = []sim.TickObserver{srv}

	_, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0.5, w.TimeScale)
	assert.Equal(t, http.StatusOK, serve(t, srv.Handler(), http.MethodGet, "/snapshot").Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := NewServer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
