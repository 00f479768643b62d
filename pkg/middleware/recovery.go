package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "ordernorm/pkg/errors"
	httputil "ordernorm/pkg/http"
	"ordernorm/pkg/logger"
)

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("handler panicked",
					"request_id", RequestID(r),
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				_ = httputil.WriteError(w, apperrors.Internal("Internal server error", nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
