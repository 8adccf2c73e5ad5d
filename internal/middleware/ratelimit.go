// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window holds the request times of one client inside the current window.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// RateLimiter is a per-client sliding-window limiter for the public
// submission endpoints.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*window
	limit      int
	period     time.Duration
	trustProxy bool
	now        func() time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter allows limit requests per period for each client. When
// trustProxy is set the client address is read from X-Forwarded-For or
// X-Real-IP. A background goroutine drops idle clients until Stop.
func NewRateLimiter(limit int, period time.Duration, trustProxy bool) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*window),
		limit:      limit,
		period:     period,
		trustProxy: trustProxy,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// allow records a request for key and reports whether it is within the
// limit. When it is not, retry is how long until a slot frees up.
func (rl *RateLimiter) allow(key string) (ok bool, retry time.Duration) {
	rl.mu.Lock()
	win, exists := rl.clients[key]
	if !exists {
		win = &window{}
		rl.clients[key] = win
	}
	rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.period)

	win.mu.Lock()
	defer win.mu.Unlock()

	kept := win.times[:0]
	for _, ts := range win.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	win.times = kept

	if len(win.times) >= rl.limit {
		return false, win.times[0].Add(rl.period).Sub(now)
	}
	win.times = append(win.times, now)
	return true, 0
}

// sweep forgets clients without requests in the current window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.period)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, win := range rl.clients {
		win.mu.Lock()
		idle := len(win.times) == 0 || !win.times[len(win.times)-1].After(cutoff)
		win.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		ok, retry := rl.allow(ip)
		if !ok {
			secs := int(math.Ceil(retry.Seconds()))
			if secs < 1 {
				secs = 1
			}
			slog.Warn("rate limit exceeded", "remote", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address the limit is keyed on.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
