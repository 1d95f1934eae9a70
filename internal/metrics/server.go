package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"runtime"
	"time"

	"vid2pdf/internal/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	Frames    int `json:"frames"`
	Keyframes int `json:"keyframes"`
	Strips    int `json:"strips"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// NewRouter builds the routes served next to a running conversion:
// /metrics, /health and /livez. provider may be nil.
func NewRouter(provider ProgressProvider, version string) *mux.Router {
	started := time.Now()
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:       "running",
			Version:      version,
			Uptime:       time.Since(started).Round(time.Second).String(),
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
		}
		if provider != nil {
			p := provider.Progress()
			resp.Frames, resp.Keyframes, resp.Strips = p.Frames, p.Keyframes, p.Strips
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.Error("failed to encode JSON response: %v", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(`{"status":"alive"}` + "\n"))
		}
	}).Methods(http.MethodGet, http.MethodHead)

	return r
}

// Server serves the metrics router in the background.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// StartServer listens on addr and serves handler until Shutdown.
func StartServer(addr string, handler http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &http.Server{
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ln: ln,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	logging.Info("Metrics server listening on http://%s/metrics", ln.Addr())
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting up to the context deadline for
// in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
