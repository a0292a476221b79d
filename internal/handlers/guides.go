// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"brandguide/internal/entitlement"
	"brandguide/internal/export"
	"brandguide/internal/middleware"
	"brandguide/internal/models"
	"brandguide/internal/session"
	"brandguide/internal/slug"
	"brandguide/internal/storage"
)

// Interfaces over the stores the guide endpoints use.
type (
	BrandSaver interface {
		Save(ctx context.Context, p models.BrandProfile) (*models.Brand, error)
	}
	GuideRepository interface {
		Save(ctx context.Context, brandID uuid.UUID, basic models.BasicGuide) (*models.Guide, error)
		Get(ctx context.Context, id uuid.UUID) (*models.Guide, error)
		GetWithStatus(ctx context.Context, id uuid.UUID) (*models.GuideStatus, error)
	}
	Subscriber interface {
		Subscribe(ctx context.Context, email string, guideID uuid.UUID) (*models.EmailSubscription, error)
	}
	BasicGenerator interface {
		Basic(ctx context.Context, p models.BrandProfile) (models.BasicGuide, error)
	}
	// ArtifactStore serves the files delivered after a purchase.
	ArtifactStore interface {
		PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
		Download(ctx context.Context, key string) ([]byte, error)
	}
)

// Guides groups the guide endpoints.
type Guides struct {
	brands    BrandSaver
	guides    GuideRepository
	subs      Subscriber
	generator BasicGenerator
	drafts    DraftStore
	artifacts ArtifactStore
}

// NewGuides creates the Guides handler group. artifacts may be nil when
// object storage is not configured.
func NewGuides(brands BrandSaver, guides GuideRepository, subs Subscriber, generator BasicGenerator, drafts DraftStore, artifacts ArtifactStore) *Guides {
	return &Guides{
		brands:    brands,
		guides:    guides,
		subs:      subs,
		generator: generator,
		drafts:    drafts,
		artifacts: artifacts,
	}
}

type createGuideRequest struct {
	Profile *models.BrandProfile `json:"profile"`
}

type createGuideResponse struct {
	GuideID uuid.UUID         `json:"guide_id"`
	Basic   models.BasicGuide `json:"basic_guide"`
}

// Create generates the free basic guide for the posted profile, or for the
// session draft when the body carries none, and saves brand and guide.
// Generating again for an unchanged draft returns the saved guide.
func (g *Guides) Create(w http.ResponseWriter, r *http.Request) {
	var req createGuideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	profile := req.Profile
	if profile == nil && sess != nil {
		profile = sess.Profile
	}
	if profile == nil {
		writeError(w, http.StatusBadRequest, "Brand profile is required.")
		return
	}
	if msg := validateProfile(*profile); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	if sess != nil && sess.GuideID != nil && sess.Profile != nil && sess.Profile.Hash() == profile.Hash() {
		existing, err := g.guides.Get(ctx, *sess.GuideID)
		if err != nil {
			slog.Error("get guide", "error", err, "guide_id", sess.GuideID)
			writeError(w, http.StatusInternalServerError, "Failed to load guide")
			return
		}
		if existing != nil {
			writeJSON(w, http.StatusOK, createGuideResponse{GuideID: existing.ID, Basic: existing.Basic})
			return
		}
	}

	basic, err := g.generator.Basic(ctx, *profile)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("generate basic guide", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate guide")
		return
	}

	brand, err := g.brands.Save(ctx, *profile)
	if err != nil {
		slog.Error("save brand", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save guide")
		return
	}
	saved, err := g.guides.Save(ctx, brand.ID, basic)
	if err != nil {
		slog.Error("save guide", "error", err, "brand_id", brand.ID)
		writeError(w, http.StatusInternalServerError, "Failed to save guide")
		return
	}

	data := &session.Data{}
	if sess != nil {
		copied := *sess
		data = &copied
	}
	data.Profile = profile
	data.GuideID = &saved.ID
	if err := g.drafts.Save(ctx, w, r, data); err != nil {
		// The guide is saved and reachable by ID; the session only loses
		// the shortcut back to it.
		slog.Warn("save draft session", "error", err, "guide_id", saved.ID)
	}

	slog.Info("basic guide created", "guide_id", saved.ID, "brand_id", brand.ID)
	writeJSON(w, http.StatusCreated, createGuideResponse{GuideID: saved.ID, Basic: saved.Basic})
}

type guideResponse struct {
	entitlement.View
	BrandName     string       `json:"brand_name"`
	PaymentStatus *string      `json:"payment_status,omitempty"`
	PaidTier      *models.Tier `json:"paid_tier,omitempty"`
}

// Show returns the guide content its unlocked tiers grant, with download
// links for delivered artifacts.
func (g *Guides) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := guideIDParam(w, r)
	if !ok {
		return
	}

	st, err := g.guides.GetWithStatus(r.Context(), id)
	if err != nil {
		slog.Error("get guide with status", "error", err, "guide_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load guide")
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Guide not found")
		return
	}

	view := entitlement.ViewOf(st.Guide)
	view.FormatLinks = g.presignLinks(r.Context(), view.FormatLinks)

	writeJSON(w, http.StatusOK, guideResponse{
		View:          view,
		BrandName:     st.Brand.Name,
		PaymentStatus: st.PaymentStatus,
		PaidTier:      st.PaidTier,
	})
}

// presignLinks replaces stored object keys with short-lived URLs. Links
// that cannot be signed are dropped.
func (g *Guides) presignLinks(ctx context.Context, links models.FormatLinks) models.FormatLinks {
	if g.artifacts == nil {
		return models.FormatLinks{}
	}
	sign := func(key string) string {
		if key == "" {
			return ""
		}
		url, err := g.artifacts.PresignedURL(ctx, key, storage.DefaultLinkTTL)
		if err != nil {
			slog.Warn("presign artifact link", "error", err, "key", key)
			return ""
		}
		return url
	}
	return models.FormatLinks{
		PDF:      sign(links.PDF),
		Markdown: sign(links.Markdown),
		Text:     sign(links.Text),
	}
}

// Download renders the complete guide in the requested format, PDF when
// none is given. Only guides with the complete tier unlocked can be
// downloaded.
func (g *Guides) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := guideIDParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query().Get("format")
	format, err := export.ParseFormat(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown format %q", q))
		return
	}

	st, err := g.guides.GetWithStatus(r.Context(), id)
	if err != nil {
		slog.Error("get guide with status", "error", err, "guide_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load guide")
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Guide not found")
		return
	}
	guide := &st.Guide
	if !entitlement.New(guide.UnlockedTiers...).Grants(models.TierComplete) {
		writeError(w, http.StatusForbidden, "Downloads require the complete guide")
		return
	}
	if guide.Complete == nil {
		writeError(w, http.StatusConflict, "Guide is still being generated")
		return
	}

	artifact, err := export.Render(format, *guide.Complete)
	if err != nil {
		slog.Error("render guide", "error", err, "guide_id", id, "format", format)
		writeError(w, http.StatusInternalServerError, "Failed to render guide")
		return
	}
	if body, ok := g.delivered(r.Context(), guide.FormatLinks, format); ok {
		artifact.Body = body
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slug.Filename(st.Brand.Name, artifact.Filename)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Body)
}

// delivered returns the stored copy of the artifact uploaded at purchase
// time, so a download matches the file that was delivered.
func (g *Guides) delivered(ctx context.Context, links models.FormatLinks, format export.Format) ([]byte, bool) {
	if g.artifacts == nil {
		return nil, false
	}
	var key string
	switch format {
	case export.FormatPDF:
		key = links.PDF
	case export.FormatMarkdown:
		key = links.Markdown
	case export.FormatText:
		key = links.Text
	}
	if key == "" {
		return nil, false
	}
	body, err := g.artifacts.Download(ctx, key)
	if err != nil {
		slog.Warn("fetch delivered artifact", "error", err, "key", key)
		return nil, false
	}
	return body, true
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe records an email address for updates about a guide.
func (g *Guides) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := guideIDParam(w, r)
	if !ok {
		return
	}
	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if !models.ValidEmail(email) {
		writeError(w, http.StatusBadRequest, "Email address is not valid.")
		return
	}

	guide, err := g.guides.Get(r.Context(), id)
	if err != nil {
		slog.Error("get guide", "error", err, "guide_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
	if guide == nil {
		writeError(w, http.StatusNotFound, "Guide not found")
		return
	}

	sub, err := g.subs.Subscribe(r.Context(), email, id)
	if err != nil {
		slog.Error("subscribe", "error", err, "guide_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
