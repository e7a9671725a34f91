package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rawsim/rawsim/sim"
)

// commandBuffer bounds how many control requests may queue between ticks.
const commandBuffer = 16

// Server exposes /metrics, the latest world snapshot and the control
// endpoints over HTTP. It implements sim.TickObserver to receive snapshots
// and hands commands to the executor through Commands.
//
// Thread-safety: ObserveTick runs on the simulation goroutine; HTTP handlers
// run on server goroutines and only touch the mutex-guarded copy.
type Server struct {
	collector *WarehouseCollector
	commands  chan sim.Command

	mu       sync.RWMutex
	snapshot *sim.Snapshot
}

// NewServer returns a server backed by collector; nil disables /metrics.
func NewServer(collector *WarehouseCollector) *Server {
	return &Server{
		collector: collector,
		commands:  make(chan sim.Command, commandBuffer),
	}
}

// Commands is the queue the executor drains between ticks.
func (s *Server) Commands() <-chan sim.Command {
	return s.commands
}

// ObserveTick publishes a fresh snapshot and forwards metrics.
func (s *Server) ObserveTick(w *sim.World, elapsed time.Duration) {
	s.collector.ObserveTick(w, elapsed)
	snap := w.Snapshot()
	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /control/{command}", s.handleControl)
	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot published yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	kind, err := sim.ParseCommandType(r.PathValue("command"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	cmd := sim.Command{Type: kind}
	if kind == sim.CommandSetScale {
		scale, err := strconv.ParseFloat(r.URL.Query().Get("scale"), 64)
		if err != nil || scale <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scale must be a positive number"})
			return
		}
		cmd.Scale = scale
	}

	select {
	case s.commands <- cmd:
		writeJSON(w, http.StatusAccepted, cmd)
	default:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "command queue full"})
	}
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("observability server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Debugf("writing response: %v", err)
	}
}
