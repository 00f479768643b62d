package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
)

const DefaultSourceHeader = "X-Source-ID"

// SourceExtractor names the caller a request is charged to.
type SourceExtractor func(r *http.Request) string

// SourceRateLimiter allows limit requests per window for each source. One
// token bucket is kept per source and dropped after a window of inactivity.
type SourceRateLimiter struct {
	mu        sync.Mutex
	limiters  *gocache.Cache
	rate      rate.Limit
	burst     int
	extractor SourceExtractor
	log       *logger.Logger
}

func NewSourceRateLimiter(limit int, window time.Duration, extractor SourceExtractor, log *logger.Logger) *SourceRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if extractor == nil {
		extractor = DefaultSourceExtractor
	}
	if log == nil {
		log = logger.Discard()
	}
	idle := 2 * window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &SourceRateLimiter{
		limiters:  gocache.New(idle, idle),
		rate:      rate.Every(window / time.Duration(limit)),
		burst:     limit,
		extractor: extractor,
		log:       log,
	}
}

func (rl *SourceRateLimiter) limiter(source string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, found := rl.limiters.Get(source); found {
		l := v.(*rate.Limiter)
		rl.limiters.SetDefault(source, l)
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.SetDefault(source, l)
	return l
}

func (rl *SourceRateLimiter) Allow(source string) bool {
	if source == "" {
		return true
	}
	return rl.limiter(source).Allow()
}

func (rl *SourceRateLimiter) Stop() {
	rl.limiters.Flush()
}

func SourceRateLimit(limiter *SourceRateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			source := limiter.extractor(r)

			if !limiter.Allow(source) {
				abort(w, r, limiter.log, apperrors.New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests), "source", source)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultSourceExtractor uses the X-Source-ID header and falls back to the
// client IP.
func DefaultSourceExtractor(r *http.Request) string {
	if source := r.Header.Get(DefaultSourceHeader); source != "" {
		return source
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
