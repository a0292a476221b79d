// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"brandguide/internal/models"
	"brandguide/internal/session"
)

func TestBrandDetect(t *testing.T) {
	t.Run("website input becomes a draft", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPost, "/api/brand/detect", map[string]string{"input": "acme.com", "email": "ceo@acme.com"})
		wantStatus(t, rr, http.StatusOK)

		body := decodeBody(t, rr)
		if body["kind"] != "url" {
			t.Errorf("kind: got %v, want url", body["kind"])
		}
		if env.drafts.saved == nil || env.drafts.saved.Profile == nil {
			t.Fatal("draft profile should be saved in the session")
		}
		p := env.drafts.saved.Profile
		if p.Name != "Acme" {
			t.Errorf("Name: got %q, want %q", p.Name, "Acme")
		}
		if p.Domain != "acme.com" {
			t.Errorf("Domain: got %q, want %q", p.Domain, "acme.com")
		}
		if p.UserEmail != "ceo@acme.com" {
			t.Errorf("UserEmail: got %q, want %q", p.UserEmail, "ceo@acme.com")
		}
	})

	t.Run("description input", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPost, "/api/brand/detect", map[string]string{"input": "bakery selling sourdough"})
		wantStatus(t, rr, http.StatusOK)
		if got := env.drafts.saved.Profile.Description; got != "bakery selling sourdough" {
			t.Errorf("Description: got %q", got)
		}
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPost, "/api/brand/detect", map[string]string{"input": "   "})
		wantStatus(t, rr, http.StatusBadRequest)
		if env.drafts.calls != 0 {
			t.Error("nothing should be saved for empty input")
		}
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPost, "/api/brand/detect", map[string]string{"input": strings.Repeat("a", maxDetectInputLen+1)})
		wantStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPost, "/api/brand/detect", "{not json")
		wantStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("session failure is a 500", func(t *testing.T) {
		env := newTestEnv()
		env.drafts.err = errBoom
		rr := env.do(t, http.MethodPost, "/api/brand/detect", map[string]string{"input": "acme.com"})
		wantStatus(t, rr, http.StatusInternalServerError)
	})
}

func TestBrandGet(t *testing.T) {
	env := newTestEnv()
	rr := env.do(t, http.MethodGet, "/api/brand", nil)
	wantStatus(t, rr, http.StatusNotFound)

	p := testProfile()
	env.sess = &session.Data{Profile: &p}
	rr = env.do(t, http.MethodGet, "/api/brand", nil)
	wantStatus(t, rr, http.StatusOK)
	if got := decodeBody(t, rr)["name"]; got != "Acme" {
		t.Errorf("name: got %v, want Acme", got)
	}
}

func TestBrandPut(t *testing.T) {
	t.Run("invalid profile", func(t *testing.T) {
		env := newTestEnv()
		rr := env.do(t, http.MethodPut, "/api/brand", models.BrandProfile{Name: "Acme"})
		wantStatus(t, rr, http.StatusBadRequest)
		if got := decodeBody(t, rr)["error"]; got != "Brand description is required." {
			t.Errorf("error: got %v", got)
		}
	})

	t.Run("changed profile drops the guide reference", func(t *testing.T) {
		env := newTestEnv()
		old := testProfile()
		id := uuid.New()
		env.sess = &session.Data{Profile: &old, GuideID: &id}

		changed := testProfile()
		changed.Audience = "Professional builders"
		rr := env.do(t, http.MethodPut, "/api/brand", changed)
		wantStatus(t, rr, http.StatusOK)

		if env.drafts.saved.GuideID != nil {
			t.Errorf("GuideID: got %v, want nil", env.drafts.saved.GuideID)
		}
		if env.drafts.saved.Profile.Audience != "Professional builders" {
			t.Errorf("Audience: got %q", env.drafts.saved.Profile.Audience)
		}
		if env.sess.Profile.Audience != old.Audience {
			t.Error("the loaded session must not be mutated in place")
		}
	})

	t.Run("unchanged profile keeps the guide reference", func(t *testing.T) {
		env := newTestEnv()
		p := testProfile()
		id := uuid.New()
		env.sess = &session.Data{Profile: &p, GuideID: &id}

		rr := env.do(t, http.MethodPut, "/api/brand", testProfile())
		wantStatus(t, rr, http.StatusOK)
		if env.drafts.saved.GuideID == nil || *env.drafts.saved.GuideID != id {
			t.Errorf("GuideID: got %v, want %s", env.drafts.saved.GuideID, id)
		}
	})
}

func TestBrandDelete(t *testing.T) {
	env := newTestEnv()
	p := testProfile()
	env.sess = &session.Data{Profile: &p}

	rr := env.do(t, http.MethodDelete, "/api/brand", nil)
	wantStatus(t, rr, http.StatusNoContent)
	if !env.drafts.destroyed {
		t.Error("session was not destroyed")
	}

	env = newTestEnv()
	env.drafts.err = errors.New("valkey down")
	rr = env.do(t, http.MethodDelete, "/api/brand", nil)
	wantStatus(t, rr, http.StatusInternalServerError)
	if got := decodeBody(t, rr)["error"]; got != "Failed to clear brand profile" {
		t.Errorf("error: got %v", got)
	}
}
