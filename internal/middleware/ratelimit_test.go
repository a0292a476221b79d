// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brandguide/internal/models"
	"brandguide/internal/session"
)

// newTestLimiter returns a limiter whose clock the test advances.
func newTestLimiter(t *testing.T, perIP, perProfile int) (*CheckoutLimiter, *time.Time) {
	t.Helper()
	cl := NewCheckoutLimiter(perIP, perProfile, time.Minute)
	t.Cleanup(cl.Stop)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return now }
	return cl, &now
}

func TestCheckoutLimiterPerIP(t *testing.T) {
	cl, _ := newTestLimiter(t, 3, 0)

	for i := 0; i < 3; i++ {
		if ok, _ := cl.allow("10.0.0.1", ""); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, wait := cl.allow("10.0.0.1", ""); ok || wait != time.Minute {
		t.Errorf("4th attempt: ok=%t wait=%s, want rejected for 1m", ok, wait)
	}
	if ok, _ := cl.allow("10.0.0.2", ""); !ok {
		t.Error("another address should be allowed")
	}
}

func TestCheckoutLimiterPerProfile(t *testing.T) {
	cl, _ := newTestLimiter(t, 10, 2)

	cl.allow("10.0.0.1", "hash-a")
	cl.allow("10.0.0.2", "hash-a")
	if ok, _ := cl.allow("10.0.0.3", "hash-a"); ok {
		t.Error("third attempt for one profile should be rejected across addresses")
	}
	if ok, _ := cl.allow("10.0.0.3", "hash-b"); !ok {
		t.Error("another profile should be allowed")
	}
}

func TestCheckoutLimiterRejectedAttemptsAreNotCounted(t *testing.T) {
	cl, _ := newTestLimiter(t, 10, 1)

	cl.allow("10.0.0.1", "hash-a")
	for i := 0; i < 5; i++ {
		cl.allow("10.0.0.1", "hash-a")
	}
	cl.mu.Lock()
	got := len(cl.byIP.hits["10.0.0.1"])
	cl.mu.Unlock()
	if got != 1 {
		t.Errorf("IP budget counted %d attempts, want 1", got)
	}
}

func TestCheckoutLimiterWindowSlides(t *testing.T) {
	cl, now := newTestLimiter(t, 2, 0)

	cl.allow("10.0.0.1", "")
	*now = now.Add(20 * time.Second)
	cl.allow("10.0.0.1", "")

	*now = now.Add(10 * time.Second)
	if ok, wait := cl.allow("10.0.0.1", ""); ok || wait != 30*time.Second {
		t.Errorf("ok=%t wait=%s, want rejected for 30s", ok, wait)
	}

	*now = now.Add(30 * time.Second)
	if ok, _ := cl.allow("10.0.0.1", ""); !ok {
		t.Error("attempt should fit once the oldest one left the window")
	}
}

func TestCheckoutLimiterMiddleware(t *testing.T) {
	cl, _ := newTestLimiter(t, 10, 2)

	var bodies []string
	handler := cl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusOK)
	}))

	profile := models.BrandProfile{Name: "Acme", Description: "Tools for makers"}
	raw, _ := json.Marshal(map[string]any{"tier": "core", "brandData": profile})
	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkout-session", strings.NewReader(string(raw)))
		req.RemoteAddr = addr + ":12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for _, addr := range []string{"192.168.1.1", "192.168.1.2"} {
		if rr := send(addr); rr.Code != http.StatusOK {
			t.Fatalf("%s: got status %d, want 200", addr, rr.Code)
		}
	}
	for i, b := range bodies {
		if b != string(raw) {
			t.Errorf("body %d reached the handler altered: %q", i, b)
		}
	}

	rr := send("192.168.1.3")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After: got %q, want %q", got, "60")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestCheckoutProfileKey(t *testing.T) {
	draft := models.BrandProfile{Name: "Draft Co", Description: "From the session"}
	posted := models.BrandProfile{Name: "Posted Co", Description: "From the body"}
	raw, _ := json.Marshal(map[string]any{"brandData": posted})

	tests := []struct {
		name string
		body string
		sess *session.Data
		want string
	}{
		{"body profile wins", string(raw), &session.Data{Profile: &draft}, posted.Hash()},
		{"session draft", `{"tier":"core"}`, &session.Data{Profile: &draft}, draft.Hash()},
		{"malformed body falls back", `{bad`, &session.Data{Profile: &draft}, draft.Hash()},
		{"nothing to key on", `{"tier":"core"}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/checkout-session", strings.NewReader(tt.body))
			if tt.sess != nil {
				req = req.WithContext(WithSession(context.Background(), tt.sess))
			}
			if got := checkoutProfileKey(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			rest, _ := io.ReadAll(req.Body)
			if string(rest) != tt.body {
				t.Errorf("body not restored: %q", rest)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			xff:        "10.0.0.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for multiple",
			xff:        "10.0.0.1, 172.16.0.1, 192.168.1.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip",
			xri:        "10.0.0.2",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.2",
		},
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "remote addr no port",
			remoteAddr: "192.168.1.1",
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			got := clientIP(req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckoutLimiterCleanup(t *testing.T) {
	cl, now := newTestLimiter(t, 5, 5)

	cl.allow("ip-old", "hash-old")
	*now = now.Add(45 * time.Second)
	cl.allow("ip-fresh", "")
	*now = now.Add(30 * time.Second)

	cl.cleanup()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if _, ok := cl.byIP.hits["ip-old"]; ok {
		t.Error("ip-old should have been cleaned up")
	}
	if _, ok := cl.byIP.hits["ip-fresh"]; !ok {
		t.Error("ip-fresh still has a recent attempt")
	}
	if len(cl.byProfile.hits) != 0 {
		t.Errorf("profile entries left: %d", len(cl.byProfile.hits))
	}
}
