// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"brandguide/internal/detect"
	"brandguide/internal/middleware"
	"brandguide/internal/models"
	"brandguide/internal/session"
)

// DraftStore persists the visitor's draft between requests.
type DraftStore interface {
	Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Brand groups the draft brand profile endpoints. The draft lives in the
// visitor's session until a guide is generated from it.
type Brand struct {
	drafts DraftStore
}

// NewBrand creates the Brand handler group.
func NewBrand(drafts DraftStore) *Brand {
	return &Brand{drafts: drafts}
}

type detectRequest struct {
	Input string `json:"input"`
	Email string `json:"email"`
}

type detectResponse struct {
	Profile models.BrandProfile `json:"profile"`
	Kind    detect.InputKind    `json:"kind"`
}

// Detect turns the landing-page input into a draft profile and stores it
// in the session, replacing any earlier draft.
func (b *Brand) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeError(w, http.StatusBadRequest, "Enter a website or a short description.")
		return
	}
	if utf8.RuneCountInString(input) > maxDetectInputLen {
		writeError(w, http.StatusBadRequest, "Input is too long (max 2,000 characters).")
		return
	}

	profile, kind := detect.Detect(input, strings.TrimSpace(req.Email))
	if !b.saveDraft(w, r, &profile) {
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Profile: profile, Kind: kind})
}

// Get returns the draft profile held in the session.
func (b *Brand) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.Profile == nil {
		writeError(w, http.StatusNotFound, "No brand profile in session")
		return
	}
	writeJSON(w, http.StatusOK, sess.Profile)
}

// Put replaces the draft profile after the visitor reviewed it.
func (b *Brand) Put(w http.ResponseWriter, r *http.Request) {
	var p models.BrandProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p.UserEmail = strings.TrimSpace(p.UserEmail)
	if msg := validateProfile(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !b.saveDraft(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete discards the draft and the session holding it. Generated guides
// and their entitlements stay in the database.
func (b *Brand) Delete(w http.ResponseWriter, r *http.Request) {
	if err := b.drafts.Destroy(r.Context(), w, r); err != nil {
		slog.Error("destroy draft session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear brand profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveDraft stores p as the session's profile. A changed profile no longer
// matches any previously generated guide, so the guide reference is reset.
func (b *Brand) saveDraft(w http.ResponseWriter, r *http.Request, p *models.BrandProfile) bool {
	data := &session.Data{}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		copied := *sess
		data = &copied
	}
	if data.Profile == nil || data.Profile.Hash() != p.Hash() {
		data.GuideID = nil
	}
	data.Profile = p

	if err := b.drafts.Save(r.Context(), w, r, data); err != nil {
		slog.Error("save draft session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save brand profile")
		return false
	}
	return true
}
