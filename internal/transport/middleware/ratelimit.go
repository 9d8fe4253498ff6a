package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// idleTTL is how long an unused bucket is kept.
const idleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per scope and caller. A caller is the
// authenticated user when Auth ran first, otherwise the client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a limiter that evicts idle buckets every
// cleanupInterval. Call Stop on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.evictLoop(cleanupInterval)
	return rl
}

// Stop ends the eviction loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit allows perMinute requests per caller in scope, bursting up to the
// same amount. Rejected requests get 429 with Retry-After in seconds.
func (rl *RateLimiter) Limit(scope string, perMinute int) Middleware {
	every := rate.Limit(float64(perMinute) / 60)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := rl.now()
			res := rl.bucket(scope+"|"+callerKey(r), every, perMinute, now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 || !res.OK() {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(delay.Seconds())))))
				writeError(w, http.StatusTooManyRequests, reportapi.CodeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) bucket(key string, every rate.Limit, burst int, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(every, burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (rl *RateLimiter) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(rl.now().Add(-idleTTL))
		}
	}
}

func (rl *RateLimiter) evictIdle(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.lastSeen.Before(before) {
			delete(rl.buckets, key)
		}
	}
}

func callerKey(r *http.Request) string {
	if id, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
