package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
)

const (
	SignatureHeader = "X-Signature-256"
	signaturePrefix = "sha256="
)

// Sign returns the header value SignatureVerification expects for body.
func Sign(body []byte, secret string) string {
	return signaturePrefix + hex.EncodeToString(mac(body, secret))
}

func mac(body []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}

// SignatureVerification requires an HMAC-SHA256 of the raw body, sent as
// "sha256=<hex>" or bare hex. The body is restored for the next handler.
func SignatureVerification(secret string, log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deny := func(reason string) {
				abort(w, r, log, apperrors.New(CodeUnauthorized, "Unauthorized", http.StatusUnauthorized),
					"reason", reason, "remote_addr", r.RemoteAddr)
			}

			header := r.Header.Get(SignatureHeader)
			if header == "" {
				deny("missing " + SignatureHeader)
				return
			}
			got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
			if err != nil {
				deny("signature is not hex")
				return
			}

			body, err := io.ReadAll(r.Body)
			_ = r.Body.Close()
			if err != nil {
				deny("unreadable body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !hmac.Equal(got, mac(body, secret)) {
				deny("signature mismatch")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
