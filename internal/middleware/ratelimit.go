// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"brandguide/internal/models"
)

// maxPeekBytes bounds how much of a checkout body is read to find the
// brand profile. Larger bodies are rejected by the handler anyway.
const maxPeekBytes = 64 << 10

// slidingWindow counts events per key over the last window. Callers hold
// the CheckoutLimiter lock.
type slidingWindow struct {
	limit  int
	window time.Duration
	hits   map[string][]time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{limit: limit, window: window, hits: make(map[string][]time.Time)}
}

// prune drops timestamps of key older than the window and returns the rest.
func (sw *slidingWindow) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-sw.window)
	kept := sw.hits[key][:0]
	for _, ts := range sw.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(sw.hits, key)
		return nil
	}
	sw.hits[key] = kept
	return kept
}

// wait returns how long key must wait before another event fits, or 0.
func (sw *slidingWindow) wait(key string, now time.Time) time.Duration {
	kept := sw.prune(key, now)
	if len(kept) < sw.limit {
		return 0
	}
	return kept[len(kept)-sw.limit].Add(sw.window).Sub(now)
}

func (sw *slidingWindow) record(key string, now time.Time) {
	sw.hits[key] = append(sw.hits[key], now)
}

func (sw *slidingWindow) cleanup(now time.Time) {
	for key := range sw.hits {
		sw.prune(key, now)
	}
}

// CheckoutLimiter bounds checkout attempts with two sliding windows: one
// per client IP and one per brand profile. Every attempt creates a
// provider session, so a single visitor can only open a few per window.
type CheckoutLimiter struct {
	mu        sync.Mutex
	byIP      *slidingWindow
	byProfile *slidingWindow
	now       func() time.Time
	stopCh    chan struct{}
}

// NewCheckoutLimiter allows perIP attempts per client address and
// perProfile attempts per brand profile within window. A limit below 1
// disables that budget. A background goroutine drops idle keys.
func NewCheckoutLimiter(perIP, perProfile int, window time.Duration) *CheckoutLimiter {
	cl := &CheckoutLimiter{
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if perIP > 0 {
		cl.byIP = newSlidingWindow(perIP, window)
	}
	if perProfile > 0 {
		cl.byProfile = newSlidingWindow(perProfile, window)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cl.cleanup()
			case <-cl.stopCh:
				return
			}
		}
	}()

	return cl
}

// Stop terminates the background cleanup goroutine.
func (cl *CheckoutLimiter) Stop() {
	close(cl.stopCh)
}

// allow records an attempt for ip and profile (which may be empty) when
// both budgets have room. Otherwise it records nothing and returns how
// long the caller should wait.
func (cl *CheckoutLimiter) allow(ip, profile string) (bool, time.Duration) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	var wait time.Duration
	if cl.byIP != nil {
		wait = max(wait, cl.byIP.wait(ip, now))
	}
	if cl.byProfile != nil && profile != "" {
		wait = max(wait, cl.byProfile.wait(profile, now))
	}
	if wait > 0 {
		return false, wait
	}

	if cl.byIP != nil {
		cl.byIP.record(ip, now)
	}
	if cl.byProfile != nil && profile != "" {
		cl.byProfile.record(profile, now)
	}
	return true, 0
}

func (cl *CheckoutLimiter) cleanup() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	now := cl.now()
	for _, sw := range []*slidingWindow{cl.byIP, cl.byProfile} {
		if sw != nil {
			sw.cleanup(now)
		}
	}
}

// Middleware rejects checkout attempts over budget with 429 and a
// Retry-After header in whole seconds.
func (cl *CheckoutLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := cl.allow(clientIP(r), checkoutProfileKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "Too many checkout attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkoutProfileKey returns the hash of the profile a checkout request is
// for: the brandData in the body, else the session draft. The body is
// restored for the handler. It returns "" when neither is present.
func checkoutProfileKey(r *http.Request) string {
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
		var req struct {
			BrandData *models.BrandProfile `json:"brandData"`
		}
		if err == nil && json.Unmarshal(body, &req) == nil && req.BrandData != nil {
			return req.BrandData.Hash()
		}
	}
	if sess := SessionFromCtx(r.Context()); sess != nil && sess.Profile != nil {
		return sess.Profile.Hash()
	}
	return ""
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Leftmost X-Forwarded-For entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
