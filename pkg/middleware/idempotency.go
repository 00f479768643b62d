package middleware

import (
	"bytes"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

// IdempotencyStore keeps responses that may be replayed for a repeated key.
type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

// CacheIdempotencyStore is an in-process store; entries expire after the
// TTL given to NewCacheIdempotencyStore.
type CacheIdempotencyStore struct {
	cache *gocache.Cache
}

func NewCacheIdempotencyStore(ttl time.Duration) *CacheIdempotencyStore {
	return &CacheIdempotencyStore{cache: gocache.New(ttl, max(ttl/4, time.Minute))}
}

func (s *CacheIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	if v, ok := s.cache.Get(key); ok {
		return v.(*CachedResponse), true
	}
	return nil, false
}

func (s *CacheIdempotencyStore) Set(key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	s.cache.SetDefault(key, response)
}

func (s *CacheIdempotencyStore) Len() int { return s.cache.ItemCount() }

func (s *CacheIdempotencyStore) Stop() { s.cache.Flush() }

// teeWriter copies the body into buf on its way to the client.
type teeWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (t *teeWriter) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeWriter) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	t.buf.Write(p)
	return t.ResponseWriter.Write(p)
}

// Idempotency replays the first 2xx response sent for a key. Keys are scoped
// to method and path so one key cannot leak a response across routes; error
// responses are not kept, so the client may retry them.
func Idempotency(store IdempotencyStore, headerName string) Middleware {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			if cached, ok := store.Get(key); ok {
				h := w.Header()
				for name, values := range cached.Headers {
					if name == RequestIDHeader {
						continue
					}
					h[name] = append([]string(nil), values...)
				}
				h.Set("Idempotent-Replayed", "true")
				w.WriteHeader(cached.StatusCode)
				_, _ = w.Write(cached.Body)
				return
			}

			tee := &teeWriter{ResponseWriter: w}
			next.ServeHTTP(tee, r)

			if tee.status == 0 {
				tee.status = http.StatusOK
			}
			if tee.status < 200 || tee.status > 299 {
				return
			}
			store.Set(key, &CachedResponse{
				StatusCode: tee.status,
				Headers:    w.Header().Clone(),
				Body:       bytes.Clone(tee.buf.Bytes()),
			})
		})
	}
}
