// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"brandguide/internal/middleware"
	"brandguide/internal/models"
	"brandguide/internal/payment"
	"brandguide/internal/pricing"
)

// maxWebhookBytes caps provider event payloads.
const maxWebhookBytes = 64 << 10

// SignatureHeader carries the provider's signature of the raw event body.
const SignatureHeader = "Stripe-Signature"

type (
	CheckoutCreator interface {
		CreateSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResult, error)
	}
	EventHandler interface {
		HandleEvent(ctx context.Context, payload []byte, signature string) (*payment.Outcome, error)
	}
)

// Payments groups the pricing, checkout and webhook endpoints.
type Payments struct {
	checkout CheckoutCreator
	webhook  EventHandler
}

// NewPayments creates the Payments handler group.
func NewPayments(checkout CheckoutCreator, webhook EventHandler) *Payments {
	return &Payments{checkout: checkout, webhook: webhook}
}

type pricingTier struct {
	pricing.Tier
	Price int64 `json:"price"`
	Free  bool  `json:"free"`
}

// Pricing lists every tier in display order.
func (p *Payments) Pricing(w http.ResponseWriter, r *http.Request) {
	tiers := pricing.All()
	out := make([]pricingTier, len(tiers))
	for i, t := range tiers {
		out[i] = pricingTier{Tier: t, Price: t.Price(), Free: t.Free()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": out})
}

type checkoutRequest struct {
	Tier      models.Tier          `json:"tier"`
	BrandData *models.BrandProfile `json:"brandData"`
	UserEmail string               `json:"userEmail"`
	PromoCode string               `json:"promoCode"`
	GuideID   string               `json:"guideId"`
}

// Checkout creates a hosted checkout session for a paid tier. The brand
// profile and guide ID fall back to the session draft when the body
// omits them.
func (p *Payments) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := payment.CheckoutRequest{
		Tier:      req.Tier,
		Email:     strings.TrimSpace(req.UserEmail),
		PromoCode: strings.TrimSpace(req.PromoCode),
		Origin:    r.Header.Get("Origin"),
	}

	sess := middleware.SessionFromCtx(r.Context())
	switch {
	case req.BrandData != nil:
		in.Profile = *req.BrandData
	case sess != nil && sess.Profile != nil:
		in.Profile = *sess.Profile
	}

	switch {
	case req.GuideID != "":
		id, err := uuid.Parse(req.GuideID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid guide ID")
			return
		}
		in.GuideID = &id
	case sess != nil && sess.GuideID != nil:
		id := *sess.GuideID
		in.GuideID = &id
	}

	res, err := p.checkout.CreateSession(r.Context(), in)
	if err != nil {
		var ce *payment.CheckoutError
		var pe *models.ProfileError
		switch {
		case errors.Is(err, payment.ErrInvalidTier):
			writeError(w, http.StatusBadRequest, "Invalid pricing tier")
		case errors.As(err, &pe):
			writeErrorDetails(w, http.StatusBadRequest, "Invalid brand data", pe.Message)
		case errors.Is(err, payment.ErrInvalidProfile):
			writeError(w, http.StatusBadRequest, "Invalid brand data")
		case errors.As(err, &ce):
			slog.Error("stripe checkout error", "error", err, "tier", req.Tier)
			writeErrorDetails(w, http.StatusInternalServerError, "Failed to create checkout session", ce.Details())
		default:
			slog.Error("checkout error", "error", err, "tier", req.Tier)
			writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Webhook verifies and applies a provider event. The raw body is passed
// through untouched since the signature covers its exact bytes.
func (p *Payments) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	out, err := p.webhook.HandleEvent(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			slog.Warn("webhook signature verification failed", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid signature")
			return
		}
		slog.Error("webhook error", "error", err)
		writeError(w, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	slog.Debug("webhook handled",
		"event_id", out.EventID,
		"event_type", out.Type,
		"duplicate", out.Duplicate,
		"ignored", out.Ignored,
	)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
