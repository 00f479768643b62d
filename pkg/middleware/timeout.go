package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
)

// bufferedResponse holds what the handler writes until it returns, so a
// timed-out request never sends half a body.
type bufferedResponse struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	status  int
	expired bool
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == 0 && !b.expired {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expired {
		return 0, http.ErrHandlerTimeout
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) flush(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}

func (b *bufferedResponse) started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status != 0
}

func (b *bufferedResponse) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

// RequestTimeout cancels the request context after timeout and answers 504.
// A panic in the handler is re-raised on the serving goroutine so Recovery
// still sees it.
func RequestTimeout(timeout time.Duration, log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			buf := &bufferedResponse{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(buf, r)
				close(done)
			}()

			select {
			case <-done:
				if ctx.Err() == context.DeadlineExceeded && !buf.started() {
					abort(w, r, log, apperrors.Timeout("Request timeout"), "timeout", timeout)
					return
				}
				buf.flush(w)
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				buf.expire()
				abort(w, r, log, apperrors.Timeout("Request timeout"), "timeout", timeout)
			}
		})
	}
}
