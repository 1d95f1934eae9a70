package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeProgress struct {
	mu sync.Mutex
	p  Progress
}

func (f *fakeProgress) Progress() Progress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.p
}

func (f *fakeProgress) set(p Progress) {
	f.mu.Lock()
	f.p = p
	f.mu.Unlock()
}

func TestRouterHealth(t *testing.T) {
	provider := &fakeProgress{p: Progress{Frames: 12, Keyframes: 3, Strips: 2}}
	router := NewRouter(provider, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "1.2.3" || resp.Frames != 12 || resp.Keyframes != 3 || resp.Strips != 2 {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestRouterHealthWithoutProvider(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(nil, "dev").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouterRoutes(t *testing.T) {
	router := NewRouter(nil, "dev")

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/livez", http.StatusOK},
		{http.MethodHead, "/livez", http.StatusOK},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStartServer(t *testing.T) {
	InitializeMetrics()

	srv, err := StartServer("127.0.0.1:0", NewRouter(nil, "dev"))
	if err != nil {
		t.Fatalf("StartServer() error: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "vid2pdf_runs_total") {
		t.Error("metrics output is missing vid2pdf_runs_total")
	}
}

func TestStartServerBadAddress(t *testing.T) {
	if _, err := StartServer("not-an-address", NewRouter(nil, "dev")); err == nil {
		t.Error("expected error for invalid address")
	}
}

func TestCollectorSamplesProgress(t *testing.T) {
	provider := &fakeProgress{}
	c := NewCollector(provider, time.Hour)
	c.Start()

	provider.set(Progress{Frames: 40, Keyframes: 5, Strips: 4})
	c.Stop()

	if got := testutil.ToFloat64(RunProgress.WithLabelValues("frames")); got != 40 {
		t.Errorf("frames gauge = %v, want 40", got)
	}
	if got := testutil.ToFloat64(RunProgress.WithLabelValues("strips")); got != 4 {
		t.Errorf("strips gauge = %v, want 4", got)
	}
	if testutil.ToFloat64(GoMemSysBytes) <= 0 {
		t.Error("GoMemSysBytes was not sampled")
	}
}

func TestCollectorWithoutProvider(t *testing.T) {
	c := NewCollector(nil, time.Millisecond)
	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Stop()
}
