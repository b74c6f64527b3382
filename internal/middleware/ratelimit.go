// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/angelamos/jobtrack/internal/core"
)

// ClientIP resolves the client address for rate-limit keying. With
// trustedHops > 0 the X-Forwarded-For header is honored, counting that
// many hops from the right (the rightmost entries are appended by our own
// proxies and cannot be spoofed). With trustedHops == 0 the header is
// ignored and the socket address wins.
func ClientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			entries := strings.Split(xff, ",")
			idx := len(entries) - trustedHops
			if idx < 0 {
				idx = 0
			}
			if ip := strings.TrimSpace(entries[idx]); ip != "" {
				return ip
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WindowConfig parameterizes one named fixed-window limiter.
type WindowConfig struct {
	Window time.Duration
	Limit  int
}

// FixedWindowLimiter counts requests per (client address, limiter name)
// in fixed windows: the first request of a window starts it, the
// (limit+1)-th request inside it is rejected, and the counter resets
// wholesale when the window elapses. Counters live in Redis so replicas
// share buckets; a process-local fallback takes over when Redis is
// unreachable or absent.
type FixedWindowLimiter struct {
	name        string
	cfg         WindowConfig
	rdb         *redis.Client
	local       *memoryWindows
	trustedHops int
}

func NewFixedWindowLimiter(
	name string,
	rdb *redis.Client,
	cfg WindowConfig,
	trustedHops int,
) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		name:        name,
		cfg:         cfg,
		rdb:         rdb,
		local:       newMemoryWindows(cfg),
		trustedHops: trustedHops,
	}
}

// fixedWindowScript increments the bucket and arms its expiry in one
// round trip; expiry is only set when the increment opened the window.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

func (l *FixedWindowLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf(
			"ratelimit:fw:%s:%s",
			l.name,
			ClientIP(r, l.trustedHops),
		)

		allowed, retryAfter := l.allow(r.Context(), key)
		if !allowed {
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			core.JSONError(w, core.RateLimitedError(fmt.Sprintf(
				"rate limit exceeded, retry after %d seconds",
				secs,
			)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *FixedWindowLimiter) allow(
	ctx context.Context,
	key string,
) (bool, time.Duration) {
	if l.rdb != nil {
		res, err := fixedWindowScript.Run(
			ctx,
			l.rdb,
			[]string{key},
			l.cfg.Window.Milliseconds(),
		).Int64Slice()
		if err == nil && len(res) == 2 {
			count, ttlMillis := res[0], res[1]
			if count <= int64(l.cfg.Limit) {
				return true, 0
			}
			return false, time.Duration(ttlMillis) * time.Millisecond
		}

		slog.Warn("redis rate limit failed, using local window",
			"limiter", l.name,
			"error", err,
		)
	}

	return l.local.allow(key, time.Now())
}

type windowBucket struct {
	count       int
	windowStart time.Time
}

type memoryWindows struct {
	mu      sync.Mutex
	cfg     WindowConfig
	buckets map[string]*windowBucket
}

func newMemoryWindows(cfg WindowConfig) *memoryWindows {
	return &memoryWindows{
		cfg:     cfg,
		buckets: make(map[string]*windowBucket),
	}
}

func (m *memoryWindows) allow(key string, now time.Time) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.buckets[key]
	if !ok || now.Sub(bucket.windowStart) >= m.cfg.Window {
		bucket = &windowBucket{windowStart: now}
		m.buckets[key] = bucket
	}

	bucket.count++
	if bucket.count <= m.cfg.Limit {
		return true, 0
	}

	return false, bucket.windowStart.Add(m.cfg.Window).Sub(now)
}

// GlobalRateLimitConfig drives the coarse GCRA limiter that fronts the
// whole router as general abuse protection; the named fixed-window
// limiters above carry the per-route contract.
type GlobalRateLimitConfig struct {
	Limit       redis_rate.Limit
	KeyFunc     func(*http.Request) string
	FailOpen    bool
	BypassFunc  func(*http.Request) bool
	TrustedHops int
}

type GlobalRateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   GlobalRateLimitConfig
}

func NewGlobalRateLimiter(
	rdb *redis.Client,
	cfg GlobalRateLimitConfig,
) *GlobalRateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *http.Request) string {
			return "ratelimit:ip:" + ClientIP(r, cfg.TrustedHops)
		}
	}

	return &GlobalRateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *GlobalRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			core.JSONError(w, core.RateLimitedError(fmt.Sprintf(
				"rate limit exceeded, retry after %d seconds",
				retryAfter,
			)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *GlobalRateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		return rl.fallback.allow(key, rl.config.Limit)
	}
	return res, nil
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
}

// HealthBypass exempts health probes from rate limiting so orchestrator
// checks never get throttled into flapping.
func HealthBypass(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/healthz", "/livez", "/readyz":
		return true
	default:
		return false
	}
}

func PerMinute(requests, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: time.Minute,
	}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess int64
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.limiters.Range(func(key, value any) bool {
			entry, ok := value.(*limiterEntry)
			if ok && entry.lastAccess < cutoff {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	ratePerSec := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now().Unix()

	entryI, loaded := l.limiters.Load(key)
	if !loaded {
		newEntry := &limiterEntry{
			limiter: rate.NewLimiter(
				rate.Limit(ratePerSec),
				limit.Burst,
			),
			lastAccess: now,
		}
		entryI, _ = l.limiters.LoadOrStore(key, newEntry)
	}

	entry, ok := entryI.(*limiterEntry)
	if !ok {
		return nil, fmt.Errorf("invalid limiter entry type")
	}
	entry.lastAccess = now

	allowed := entry.limiter.Allow()

	remaining := int(entry.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	var retryAfter time.Duration
	if !allowed {
		retryAfter = time.Duration(float64(time.Second) / ratePerSec)
	} else {
		retryAfter = -1
	}

	allowedInt := 0
	if allowed {
		allowedInt = 1
	}

	return &redis_rate.Result{
		Limit:      limit,
		Allowed:    allowedInt,
		Remaining:  remaining,
		RetryAfter: retryAfter,
		ResetAfter: time.Duration(float64(time.Second) / ratePerSec),
	}, nil
}
