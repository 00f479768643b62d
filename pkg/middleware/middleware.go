package middleware

import (
	"net/http"

	apperrors "ordernorm/pkg/errors"
	httputil "ordernorm/pkg/http"
	"ordernorm/pkg/logger"
)

// Middleware wraps a handler with one cross-cutting concern.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that mws[0] is the first to see a request.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Codes for rejections that never reach a handler.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      = "RATE_LIMITED"
)

// abort logs why r was stopped and answers with err's status and body.
func abort(w http.ResponseWriter, r *http.Request, log *logger.Logger, err *apperrors.AppError, attrs ...any) {
	if log != nil {
		args := append([]any{
			"request_id", RequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"code", err.Code,
		}, attrs...)
		log.Warn(err.Message, args...)
	}
	_ = httputil.WriteError(w, err)
}
