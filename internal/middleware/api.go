// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/dhefar-go/internal/util"
)

// limiterIdle is how long a client may stay silent before Prune forgets it.
const limiterIdle = 30 * time.Minute

// APIError represents a JSON error response for the API.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIError{Error: message, Code: code})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterCache holds one token bucket per key.
type limiterCache[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*limiterEntry
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		entries: make(map[K]*limiterEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// reserve takes a token for key. When none is available it returns false
// and how long until one would be.
func (lc *limiterCache[K]) reserve(key K) (bool, time.Duration) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := lc.now()
	e, ok := lc.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(lc.rate, lc.burst)}
		lc.entries[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (lc *limiterCache[K]) allow(key K) bool {
	ok, _ := lc.reserve(key)
	return ok
}

// prune drops keys idle for longer than idle, then clears everything if
// more than maxSize remain. It returns the number of keys dropped.
func (lc *limiterCache[K]) prune(idle time.Duration, maxSize int) int {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	before := len(lc.entries)
	cutoff := lc.now().Add(-idle)
	for k, e := range lc.entries {
		if e.lastSeen.Before(cutoff) {
			delete(lc.entries, k)
		}
	}
	if len(lc.entries) > maxSize {
		lc.entries = make(map[K]*limiterEntry)
	}
	return before - len(lc.entries)
}

func (lc *limiterCache[K]) size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.entries)
}

// publicKey separates the budgets of the public forms for one client.
type publicKey struct {
	ip   string
	path string
}

// GlobalRateLimiter limits anonymous write endpoints (contact form,
// registration). Each client IP has its own budget per endpoint.
type GlobalRateLimiter struct {
	cache *limiterCache[publicKey]
}

// NewGlobalRateLimiter creates a limiter allowing rps requests per second
// with bursts of burst.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{cache: newLimiterCache[publicKey](rps, burst)}
}

// Middleware counts POST requests only. Rejected requests get a 429 JSON
// error with Retry-After.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := publicKey{ip: util.ClientIP(r), path: r.URL.Path}
			if ok, wait := rl.cache.reserve(key); !ok {
				if wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				}
				slog.Warn("public rate limit exceeded", "ip", key.ip, "path", key.path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please wait a moment and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Prune forgets idle clients and resets everything once more than maxSize
// clients are tracked.
func (rl *GlobalRateLimiter) Prune(maxSize int) {
	if n := rl.cache.prune(limiterIdle, maxSize); n > 0 {
		slog.Info("pruned public rate limiters", "dropped", n)
	}
}
