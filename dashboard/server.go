// Package dashboard serves a minimal progress feed for an in-flight
// optimization run: a single JSON endpoint over websocket, so a browser (or
// any other client) can watch generation/best-value progress live. It is
// the out-of-scope "graphical plot" and "settings UI" collaborators named in
// the core's scope boundary. The core never imports this package: genetics
// only reports progress through its OnProgress callback, and the caller
// (cmd/colonyopt) turns those reports into ProgressFrame values on a channel.
package dashboard

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

const (
	writeWait        = 1 * time.Second
	readDeadline     = 1 * time.Second
	writeDeadline    = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
)

// ProgressFrame is one update emitted as a run advances: the generation
// number, the current king's best value, and the cumulative evaluation
// count, mirroring genetics.Genetics' OnProgress callback payload.
type ProgressFrame struct {
	Generation       int     `json:"generation"`
	BestValue        float64 `json:"bestValue"`
	TotalEvaluations int     `json:"totalEvaluations"`
}

// Server serves a single progress page, to a single client, over a single
// websocket. Intentionally unscaled: this is a development-time view into
// one run, not a multi-tenant monitoring service.
type Server struct {
	addr    string
	updates <-chan ProgressFrame
	last    ProgressFrame
}

// NewServer wraps addr and a channel of progress frames from a running
// genetics loop.
func NewServer(addr string, updates <-chan ProgressFrame) *Server {
	return &Server{addr: addr, updates: updates}
}

// Serve blocks, routing "/" to a bare status page and "/ws" to the
// websocket progress feed, via gorilla/mux so additional routes (health
// checks, a REST snapshot of the latest frame) have somewhere natural to
// live.
func (s *Server) Serve() error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)

	if err := http.ListenAndServe(s.addr, r); err != nil {
		return fmt.Errorf("dashboard: serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"generation":%d,"bestValue":%g,"totalEvaluations":%d}`,
		s.last.Generation, s.last.BestValue, s.last.TotalEvaluations)
}

// serveWebsocket hands the upgraded connection to a client, which owns the
// read pump, ping/pong liveness check, and frame publication (client.go).
// Every frame the client publishes is cached as s.last so serveIndex can
// report a snapshot without a second subscriber on s.updates.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := newClient(s.updates, func(frame ProgressFrame) { s.last = frame }, w, r)
	if err != nil {
		log.Println("dashboard: upgrade:", err)
		return
	}
	defer cli.ws.close()

	if err := cli.Sync(); err != nil && err != ErrPongDeadlineExceeded {
		log.Println("dashboard: sync:", err)
	}
}
