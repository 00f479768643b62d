package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"ordernorm/pkg/config"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/middleware"
)

type healthRoutes struct{}

func (healthRoutes) RegisterRoutes(r *httprouter.Router) {
	r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

type countingRoutes struct {
	calls int32
}

func (h *countingRoutes) RegisterRoutes(r *httprouter.Router) {
	r.POST("/api/v1/records/clean", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		n := atomic.AddInt32(&h.calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"n":%d}`, n)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(cfg *config.Config) (*Application, *countingRoutes) {
	routes := &countingRoutes{}
	a := NewApplication(cfg)
	a.SetApp(healthRoutes{}, routes)
	return a, routes
}

func post(h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/clean", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApplication_HealthSkipsAppMiddleware(t *testing.T) {
	a, _ := newTestApp(testConfig())

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("health responses should carry a request id")
	}
}

func TestApplication_MiddlewareStack(t *testing.T) {
	a, routes := newTestApp(testConfig())
	h := a.Handler()

	rec := post(h, `{}`, nil)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("missing content type: status = %d, want 415", rec.Code)
	}

	headers := map[string]string{
		"Content-Type":                      "application/json",
		middleware.RequestIDHeader:          "req-42",
		middleware.DefaultIdempotencyHeader: "key-1",
	}
	first := post(h, `{}`, headers)
	second := post(h, `{}`, headers)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d, %d", first.Code, second.Code)
	}
	if first.Header().Get(middleware.RequestIDHeader) != "req-42" {
		t.Errorf("request id = %q, want the caller's", first.Header().Get(middleware.RequestIDHeader))
	}
	if second.Body.String() != `{"n":1}` {
		t.Errorf("replayed body = %s", second.Body.String())
	}
	if n := atomic.LoadInt32(&routes.calls); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
}

func TestApplication_SignatureVerification(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	a, _ := newTestApp(cfg)
	h := a.Handler()

	body := `{"qty":"1"}`
	rec := post(h, body, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unsigned: status = %d, want 401", rec.Code)
	}

	rec = post(h, body, map[string]string{
		"Content-Type":             "application/json",
		middleware.SignatureHeader: middleware.Sign([]byte(body), cfg.WebhookSecret),
	})
	if rec.Code != http.StatusOK {
		t.Errorf("signed: status = %d, want 200", rec.Code)
	}
}

type blockingWorker struct {
	started chan struct{}
	closed  atomic.Bool
}

func (w *blockingWorker) Start(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return ctx.Err()
}

func (w *blockingWorker) Close() error {
	w.closed.Store(true)
	return nil
}

func TestApplication_GracefulShutdownStopsWorkersThenClosers(t *testing.T) {
	a, _ := newTestApp(testConfig())

	worker := &blockingWorker{started: make(chan struct{})}
	a.AddWorker("consumer", worker)

	var order []string
	a.AddCloser("producer", func() error {
		if !worker.closed.Load() {
			t.Error("closer ran before the worker was closed")
		}
		order = append(order, "producer")
		return nil
	})
	a.AddCloser("metrics", func() error {
		order = append(order, "metrics")
		return fmt.Errorf("already flushed")
	})

	a.startWorkers()
	<-worker.started

	done := make(chan struct{})
	go func() {
		a.gracefulShutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}

	if strings.Join(order, ",") != "producer,metrics" {
		t.Errorf("closer order = %v", order)
	}
}
