package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"ordernorm/pkg/config"
	"ordernorm/pkg/contracts"
	"ordernorm/pkg/middleware"
)

// Worker is a background loop that runs next to the HTTP server, such as
// a Kafka consumer.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
}

type namedWorker struct {
	name   string
	worker Worker
}

type namedCloser struct {
	name  string
	close func() error
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.CacheIdempotencyStore
	rateLimiter      *middleware.SourceRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler

	workers []namedWorker
	closers []namedCloser
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(healthHandler contracts.Handler, appHandlers ...contracts.Handler) {
	a.setHealthHandler(healthHandler)
	a.setAppHandler(appHandlers...)
	a.setAppServer()
}

// AddWorker registers a loop started with Run and closed on shutdown.
func (a *Application) AddWorker(name string, w Worker) {
	a.workers = append(a.workers, namedWorker{name: name, worker: w})
}

// AddCloser registers a resource released after the workers have stopped,
// in registration order.
func (a *Application) AddCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Handler exposes the assembled mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(healthHandler contracts.Handler) {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	a.healthHandler = middleware.Chain(healthRouter,
		middleware.Recovery(a.cfg.Log),
		middleware.RequestLogging(a.cfg.Log),
	)
	a.cfg.Log.Debug("health routes use recovery and logging only")
}

func (a *Application) setAppHandler(appHandlers ...contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewCacheIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewSourceRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.DefaultSourceExtractor,
		a.cfg.Log,
	)

	stack := []middleware.Middleware{
		middleware.Recovery(a.cfg.Log),
		middleware.RequestLogging(a.cfg.Log),
		middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize)),
		middleware.ContentTypeValidation(a.cfg.Log),
	}
	if a.cfg.WebhookSecret != "" {
		stack = append(stack, middleware.SignatureVerification(a.cfg.WebhookSecret, a.cfg.Log))
	}
	stack = append(stack,
		middleware.SourceRateLimit(a.rateLimiter),
		middleware.RequestTimeout(a.cfg.RequestTimeout, a.cfg.Log),
		middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader),
	)
	a.appHttpHandler = middleware.Chain(appRouter, stack...)
	a.cfg.Log.Info("API routes configured", "middleware", len(stack), "signed", a.cfg.WebhookSecret != "")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	for _, nw := range a.workers {
		a.wg.Add(1)
		go func(nw namedWorker) {
			defer a.wg.Done()
			a.cfg.Log.Info("Starting background worker", "worker", nw.name)
			if err := nw.worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped with error", "worker", nw.name, "error", err)
			}
		}(nw)
	}
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	a.startWorkers()
	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	if a.cancel != nil {
		a.cancel()
	}
	for _, nw := range a.workers {
		if err := nw.worker.Close(); err != nil {
			a.cfg.Log.Error("Failed to close background worker", "worker", nw.name, "error", err)
		}
	}
	a.wg.Wait()
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.cfg.Log.Error("Failed to release resource", "resource", c.name, "error", err)
		}
	}
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
