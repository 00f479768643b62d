package middleware

import (
	"mime"
	"net/http"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
)

// ContentTypeValidation only lets JSON bodies through on methods that carry
// one.
func ContentTypeValidation(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					abort(w, r, log,
						apperrors.New(CodeUnsupportedMedia, "Content-Type must be application/json", http.StatusUnsupportedMediaType),
						"content_type", r.Header.Get("Content-Type"),
					)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxRequestSize rejects declared bodies over limit up front and caps reads
// for the rest, so a chunked body fails in the handler's decoder instead.
func MaxRequestSize(limit int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				abort(w, r, nil, apperrors.New(CodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
