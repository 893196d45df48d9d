// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/util"
)

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per client IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each later one doubles.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns the limits used in production.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// failures is the failed login history of one account.
type failures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login POSTs per IP and locks accounts after
// repeated failures. State is in memory; stale entries are dropped by Prune.
type LoginProtection struct {
	cfg LoginProtectionConfig
	ips *limiterCache[string]
	now func() time.Time

	mu       sync.Mutex
	accounts map[string]*failures
}

// NewLoginProtection creates login protection. Zero config fields take
// their defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	return &LoginProtection{
		cfg:      cfg,
		ips:      newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		now:      time.Now,
		accounts: make(map[string]*failures),
	}
}

// accountKey folds an email into the key failures are tracked under.
func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AllowIP reports whether another login attempt from ip may proceed.
func (lp *LoginProtection) AllowIP(ip string) bool {
	return lp.ips.allow(ip)
}

// LockedFor returns how long the account stays locked, or zero.
func (lp *LoginProtection) LockedFor(email string) time.Duration {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[accountKey(email)]
	if !ok {
		return 0
	}
	if d := f.lockedUntil.Sub(lp.now()); d > 0 {
		return d
	}
	return 0
}

// Fail records a failed login. It returns the lockout it started, or zero
// when the account is still below the limit.
func (lp *LoginProtection) Fail(email string) time.Duration {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[key]
	if !ok {
		f = &failures{}
		lp.accounts[key] = f
	}
	if f.count == 0 || now.Sub(f.windowStart) > lp.cfg.AttemptWindow {
		f.count = 0
		f.windowStart = now
	}
	f.count++

	if f.count < lp.cfg.MaxFailedAttempts {
		return 0
	}

	lockout := lp.cfg.LockoutDuration << min(f.lockouts, 16)
	if lockout <= 0 || lockout > maxLockout {
		lockout = maxLockout
	}
	f.lockedUntil = now.Add(lockout)
	f.lockouts++
	f.count = 0

	slog.Warn("account locked after failed logins",
		"category", model.EventCategoryAuth,
		"email", key,
		"lockouts", f.lockouts,
		"duration", lockout,
	)
	return lockout
}

// Succeed forgets the failures of an account.
func (lp *LoginProtection) Succeed(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// RemainingAttempts returns how many failures the account may still have
// before it is locked.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[accountKey(email)]
	if !ok || lp.now().Sub(f.windowStart) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-f.count, 0)
}

// Prune drops accounts whose lockout and attempt window have both passed,
// and prunes the IP limiters like GlobalRateLimiter.Prune.
func (lp *LoginProtection) Prune(maxIPs int) {
	if n := lp.ips.prune(limiterIdle, maxIPs); n > 0 {
		slog.Info("pruned login rate limiters", "dropped", n)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, f := range lp.accounts {
		if now.After(f.lockedUntil) && now.Sub(f.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// Middleware rate limits login POSTs per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := util.ClientIP(r)
			if !lp.AllowIP(ip) {
				slog.Warn("login rate limit exceeded", "category", model.EventCategoryAuth, "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts. Please wait a moment and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
