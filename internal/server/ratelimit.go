// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// RateLimitConfig throttles query submission per client IP. Only requests
// that reach the SPARQL endpoint are counted.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained query rate per IP. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the maximum burst size per IP.
	Burst int
	// MaxVisitors caps the IPs tracked at once; the least recently seen are
	// evicted on each sweep. Default: 10000.
	MaxVisitors int
}

// DefaultMaxVisitors applies when MaxVisitors is zero.
const DefaultMaxVisitors = 10000

const (
	sweepInterval  = 5 * time.Minute
	staleThreshold = 10 * time.Minute
)

// Validate checks that the RateLimitConfig is valid and applies defaults.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond < 0 {
		return sberr.Errorf(sberr.CodeServerConfigInvalid,
			"rate limit requests per second must not be negative (got %g)", c.RequestsPerSecond)
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return sberr.Errorf(sberr.CodeServerConfigInvalid,
			"rate limit burst must be positive when rate is set (got burst=%d, rate=%g)",
			c.Burst, c.RequestsPerSecond)
	}
	if c.MaxVisitors < 0 {
		return sberr.Errorf(sberr.CodeServerConfigInvalid,
			"rate limit max visitors must not be negative (got %d)", c.MaxVisitors)
	}
	if c.MaxVisitors == 0 {
		c.MaxVisitors = DefaultMaxVisitors
	}
	return nil
}

type bucket struct {
	tokens     float64
	lastSeen   time.Time
	lastRefill time.Time
}

// limiter is a token bucket per IP.
type limiter struct {
	cfg RateLimitConfig

	mu       sync.Mutex
	visitors map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{cfg: cfg, visitors: make(map[string]*bucket)}
}

// allow takes one token from ip's bucket at now.
func (l *limiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.visitors[ip]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Burst), lastRefill: now}
		l.visitors[ip] = b
	}
	b.lastSeen = now

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.cfg.RequestsPerSecond
	b.tokens = min(b.tokens, float64(l.cfg.Burst))
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops idle buckets, then evicts the least recently seen until the
// map fits MaxVisitors. It returns how many were evicted by the cap.
func (l *limiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	type seen struct {
		ip   string
		last time.Time
	}
	live := make([]seen, 0, len(l.visitors))
	for ip, b := range l.visitors {
		if now.Sub(b.lastSeen) > staleThreshold {
			delete(l.visitors, ip)
			continue
		}
		live = append(live, seen{ip: ip, last: b.lastSeen})
	}

	excess := len(live) - l.cfg.MaxVisitors
	if l.cfg.MaxVisitors <= 0 || excess <= 0 {
		return 0
	}
	slices.SortFunc(live, func(a, b seen) int { return a.last.Compare(b.last) })
	for _, v := range live[:excess] {
		delete(l.visitors, v.ip)
	}
	return excess
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *limiter) sweepLoop(done <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := l.sweep(time.Now()); n > 0 {
				slog.Warn("rate limiter visitor cap enforced", "evicted", n, "max_visitors", l.cfg.MaxVisitors)
			}
		case <-done:
			return
		}
	}
}

// limited reports whether r submits a query.
func limited(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/api/v1/query"
}

func clientIP(r *http.Request) string {
	// Strip the port so parallel connections share one bucket.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware enforces per-IP limits on query submission. It passes
// everything through when cfg.RequestsPerSecond is zero. The done channel
// stops the sweep goroutine.
func rateLimitMiddleware(cfg RateLimitConfig, done <-chan struct{}) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg)
	go l.sweepLoop(done)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limited(r) {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r)
			if !l.allow(ip, time.Now()) {
				slog.Warn("query rate limit exceeded", "ip", ip)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"error":"rate limit exceeded"}`)); err != nil {
					slog.Warn("writing rate limit response", "error", err)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
