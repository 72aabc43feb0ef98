// Package api is a thin status/progress HTTP+WebSocket service with
// /healthz, /metrics (Prometheus), and a WebSocket progress channel
// that relays the Progress values passed to Publish; it does not start
// or run batch jobs itself. Grounded on the teacher's
// internal/api/server.go + internal/api/websocket.go, scaled down to
// the job-status surface this engine needs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Progress is one update pushed to connected WebSocket clients.
type Progress struct {
	RunID      string  `json:"run_id"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	PercentAge float64 `json:"percent"`
	Done       bool    `json:"done"`
	Error      string  `json:"error,omitempty"`
}

// Server is the optional status/progress HTTP service.
type Server struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader

	latest Progress
}

// NewServer constructs a Server with its own Prometheus registry.
func NewServer(logger *zap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	return &Server{
		logger:   logger,
		registry: reg,
		clients:  make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Registry exposes the server's Prometheus registry so other packages
// (e.g. internal/batch) can register their own collectors into it.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Router builds the mux.Router with CORS applied, per the teacher's
// gorilla/mux + rs/cors wiring.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/progress/ws", s.handleProgressWS)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	latest := s.latest
	s.mu.Unlock()

	if err := conn.WriteJSON(latest); err != nil {
		s.closeClient(conn)
		return
	}

	go s.drainClient(conn)
}

// drainClient reads (and discards) client frames until the connection
// closes, which is what unregisters it; this server only pushes.
func (s *Server) drainClient(conn *websocket.Conn) {
	defer s.closeClient(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) closeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// Publish broadcasts a progress update to every connected client.
func (s *Server) Publish(p Progress) {
	s.mu.Lock()
	s.latest = p
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(p); err != nil {
			s.closeClient(c)
		}
	}
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
