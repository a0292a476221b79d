// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes of the stores, session and
// payment services so the handlers can be exercised with httptest alone.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brandguide/internal/guide"
	"brandguide/internal/middleware"
	"brandguide/internal/models"
	"brandguide/internal/payment"
	"brandguide/internal/session"
)

var errBoom = errors.New("boom")

// fakeDrafts records the last saved session.
type fakeDrafts struct {
	saved     *session.Data
	calls     int
	destroyed bool
	err       error
}

func (f *fakeDrafts) Save(_ context.Context, _ http.ResponseWriter, _ *http.Request, data *session.Data) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	copied := *data
	f.saved = &copied
	return nil
}

func (f *fakeDrafts) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	if f.err != nil {
		return f.err
	}
	f.saved = nil
	f.destroyed = true
	return nil
}

type fakeBrands struct {
	saved []models.BrandProfile
	err   error
}

func (f *fakeBrands) Save(_ context.Context, p models.BrandProfile) (*models.Brand, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, p)
	return &models.Brand{ID: uuid.New(), Profile: p, CreatedAt: time.Now()}, nil
}

// fakeGuides keeps guides in memory. Every guide belongs to testProfile.
type fakeGuides struct {
	mu     sync.Mutex
	guides map[uuid.UUID]*models.Guide
	saves  int
	err    error
}

func newFakeGuides() *fakeGuides {
	return &fakeGuides{guides: make(map[uuid.UUID]*models.Guide)}
}

func (f *fakeGuides) Save(_ context.Context, brandID uuid.UUID, basic models.BasicGuide) (*models.Guide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.saves++
	g := &models.Guide{
		ID:            uuid.New(),
		BrandID:       brandID,
		Basic:         basic,
		UnlockedTiers: []models.Tier{models.TierBasic},
		CreatedAt:     time.Now(),
	}
	f.guides[g.ID] = g
	return g, nil
}

func (f *fakeGuides) Get(_ context.Context, id uuid.UUID) (*models.Guide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.guides[id], nil
}

func (f *fakeGuides) GetWithStatus(_ context.Context, id uuid.UUID) (*models.GuideStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.guides[id]
	if !ok {
		return nil, nil
	}
	return &models.GuideStatus{Guide: *g, Brand: testProfile()}, nil
}

// put stores g as if it had been saved and updated by the webhook.
func (f *fakeGuides) put(g models.Guide) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guides[g.ID] = &g
}

type fakeSubs struct {
	emails []string
}

func (f *fakeSubs) Subscribe(_ context.Context, email string, guideID uuid.UUID) (*models.EmailSubscription, error) {
	f.emails = append(f.emails, email)
	return &models.EmailSubscription{ID: uuid.New(), Email: email, GuideID: guideID, CreatedAt: time.Now()}, nil
}

// pureGenerator runs the guide templates without latency.
type pureGenerator struct {
	calls int
}

func (g *pureGenerator) Basic(_ context.Context, p models.BrandProfile) (models.BasicGuide, error) {
	g.calls++
	return guide.Basic(p), nil
}

// fakeArtifacts serves objects from a map and signs keys predictably.
type fakeArtifacts struct {
	objects map[string][]byte
	err     error
}

func (f *fakeArtifacts) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/" + key + "?signed", nil
}

func (f *fakeArtifacts) Download(_ context.Context, key string) ([]byte, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return body, nil
}

type fakeCheckout struct {
	got *payment.CheckoutRequest
	res *payment.CheckoutResult
	err error
}

func (f *fakeCheckout) CreateSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutResult, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeWebhook struct {
	payload   []byte
	signature string
	out       *payment.Outcome
	err       error
}

func (f *fakeWebhook) HandleEvent(_ context.Context, payload []byte, signature string) (*payment.Outcome, error) {
	f.payload = payload
	f.signature = signature
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func testProfile() models.BrandProfile {
	return models.BrandProfile{
		Name:        "Acme",
		Domain:      "acme.com",
		Description: "Tools for makers",
		Audience:    "Hobbyists",
		VoiceTraits: []string{"Playful", "Bold"},
		Language:    "English",
	}
}

// testEnv bundles a router over the handlers with the fakes behind it.
type testEnv struct {
	drafts    *fakeDrafts
	brands    *fakeBrands
	guides    *fakeGuides
	subs      *fakeSubs
	gen       *pureGenerator
	checkout  *fakeCheckout
	webhook   *fakeWebhook
	artifacts ArtifactStore
	sess      *session.Data
}

func newTestEnv() *testEnv {
	return &testEnv{
		drafts:   &fakeDrafts{},
		brands:   &fakeBrands{},
		guides:   newFakeGuides(),
		subs:     &fakeSubs{},
		gen:      &pureGenerator{},
		checkout: &fakeCheckout{},
		webhook:  &fakeWebhook{},
	}
}

// router mirrors the production routes without CSRF or rate limiting. The
// session in env.sess is injected the way LoadSession would.
func (env *testEnv) router() http.Handler {
	brand := NewBrand(env.drafts)
	guides := NewGuides(env.brands, env.guides, env.subs, env.gen, env.drafts, env.artifacts)
	payments := NewPayments(env.checkout, env.webhook)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if env.sess != nil {
				req = req.WithContext(middleware.WithSession(req.Context(), env.sess))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/pricing", payments.Pricing)
	r.Post("/api/brand/detect", brand.Detect)
	r.Get("/api/brand", brand.Get)
	r.Put("/api/brand", brand.Put)
	r.Delete("/api/brand", brand.Delete)
	r.Post("/api/guides", guides.Create)
	r.Get("/api/guides/{id}", guides.Show)
	r.Get("/api/guides/{id}/download", guides.Download)
	r.Post("/api/guides/{id}/subscribe", guides.Subscribe)
	r.Post("/checkout-session", payments.Checkout)
	r.Post("/payment-webhook", payments.Webhook)
	return r
}

// do sends a request with an optional JSON body through the test router.
func (env *testEnv) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	env.router().ServeHTTP(rr, req)
	return rr
}

// decodeBody unmarshals a JSON response into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return m
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}
