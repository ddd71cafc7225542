package prerouter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/core"
)

func newTestApp(t *testing.T) *core.App {
	t.Helper()
	a := &core.App{}
	a.SetConfigProvider(config.NewProvider(config.NewDefaultConfig()))
	a.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return a
}

// mapCache is a minimal cache.Cache[string, bool] for tests.
type mapCache struct {
	mu sync.Mutex
	m  map[string]bool
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[string]bool)}
}

func (c *mapCache) Get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(key string, value bool, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return true
}

func (c *mapCache) SetWithTTL(key string, value bool, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func TestRecorderWrapsWriter(t *testing.T) {
	var sawRecorder bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawRecorder = w.(*core.ResponseRecorder)
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	NewRecorder().Execute(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if !sawRecorder {
		t.Error("next handler did not receive a ResponseRecorder")
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestRequestID(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = RequestIDFromContext(r.Context())
	})

	rr := httptest.NewRecorder()
	NewRequestID().Execute(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if gotID == "" {
		t.Fatal("no request id in context")
	}
	if rr.Header().Get(RequestIDHeader) != gotID {
		t.Errorf("header id %q != context id %q", rr.Header().Get(RequestIDHeader), gotID)
	}

	// A client-provided id is kept.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rr = httptest.NewRecorder()
	NewRequestID().Execute(next).ServeHTTP(rr, req)
	if gotID != "client-id" {
		t.Errorf("id = %q, want client-id", gotID)
	}
}

func TestBlockIpBlockedRequestShortCircuits(t *testing.T) {
	a := newTestApp(t)
	cfg := *a.Config()
	cfg.BlockIp.Activated = true
	a.ConfigProvider().Update(&cfg)

	blocks := newMapCache()
	b := NewBlockIp(a, blocks)

	if err := b.Block("192.0.2.1"); err != nil {
		t.Fatal(err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blocked request reached handler")
	})
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	rr := httptest.NewRecorder()

	b.Execute(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rr.Code)
	}

	// A different address passes through.
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.2:5000"
	rr = httptest.NewRecorder()
	passed := false
	b.Execute(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
	})).ServeHTTP(rr, req)
	if !passed {
		t.Error("unblocked request did not reach handler")
	}
}
