// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"brandguide/internal/models"
	"brandguide/internal/pricing"
)

// Metadata keys attached to every checkout session.
const (
	MetaTier      = "tier"
	MetaBrandName = "brandName"
	MetaUserEmail = "userEmail"
	MetaBrandData = "brandData"
	MetaPromoCode = "promoCode"
	MetaGuideID   = "guideId"
)

// The provider rejects metadata values longer than maxMetadataValue. The
// brand data is split across MetaBrandData, MetaBrandData_1, ... so that
// each value fits; maxBrandDataParts bounds the number of keys it uses.
const (
	maxMetadataValue  = 500
	maxBrandDataParts = 40
	maxPromoLen       = 64
)

// DefaultCheckoutTimeout bounds the provider call when no timeout is set.
const DefaultCheckoutTimeout = 15 * time.Second

var (
	// ErrInvalidTier is returned for a tier that cannot be bought.
	ErrInvalidTier = errors.New("invalid tier")
	// ErrInvalidProfile is returned when the brand profile is unusable.
	ErrInvalidProfile = errors.New("invalid brand profile")
	// ErrSessionCreationFailed is returned when the provider answers
	// without a redirect URL.
	ErrSessionCreationFailed = errors.New("failed to create checkout session")
	// ErrCheckout marks provider failures while creating a session.
	ErrCheckout = errors.New("checkout provider error")
	// ErrPriceMismatch is returned when a configured provider price does
	// not charge what the catalog shows.
	ErrPriceMismatch = errors.New("provider price does not match catalog")
)

// CheckoutError carries the provider's message for a failed session.
type CheckoutError struct {
	Err error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCheckout, e.Err)
}

// Unwrap exposes both ErrCheckout and the provider error.
func (e *CheckoutError) Unwrap() []error {
	return []error{ErrCheckout, e.Err}
}

// Details returns the provider's message.
func (e *CheckoutError) Details() string {
	return e.Err.Error()
}

// CheckoutRequest is a visitor's request to buy a tier.
type CheckoutRequest struct {
	Tier      models.Tier
	Profile   models.BrandProfile
	Email     string
	PromoCode string
	GuideID   *uuid.UUID
	// Origin overrides the configured base URL for redirect URLs.
	Origin string
}

// CheckoutResult is where the visitor should be redirected.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PendingRecorder stores a pending payment for a session.
type PendingRecorder interface {
	Save(ctx context.Context, p models.Payment) (*models.Payment, error)
}

// Checkout creates checkout sessions for purchasable tiers.
type Checkout struct {
	provider    Provider
	baseURL     string
	lookupTier  func(models.Tier) (pricing.Tier, bool)
	timeout     time.Duration
	promoLookup bool
	pending     PendingRecorder
}

// CheckoutOption configures a Checkout.
type CheckoutOption func(*Checkout)

// WithPriceRefs makes sessions reference provider price ids instead of
// inline amounts for the given tiers.
func WithPriceRefs(refs map[models.Tier]string) CheckoutOption {
	return func(c *Checkout) { c.lookupTier = pricing.WithPriceRefs(refs) }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) CheckoutOption {
	return func(c *Checkout) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPromoLookup resolves promo codes missing from the static table
// through the provider.
func WithPromoLookup(enabled bool) CheckoutOption {
	return func(c *Checkout) { c.promoLookup = enabled }
}

// WithPendingRecorder records a pending payment when a request names an
// existing guide.
func WithPendingRecorder(r PendingRecorder) CheckoutOption {
	return func(c *Checkout) { c.pending = r }
}

// NewCheckout returns a Checkout that builds redirect URLs from baseURL.
func NewCheckout(provider Provider, baseURL string, opts ...CheckoutOption) *Checkout {
	c := &Checkout{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		lookupTier: pricing.FindTier,
		timeout:    DefaultCheckoutTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession validates req and opens exactly one provider session.
// Invalid tiers and profiles are rejected before any outbound call.
func (c *Checkout) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if !pricing.IsPurchasable(req.Tier) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, req.Tier)
	}
	row, ok := c.lookupTier(req.Tier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, req.Tier)
	}
	if err := req.Profile.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	email := strings.TrimSpace(req.Email)
	if !models.ValidEmail(email) {
		email = ""
	}
	promo := strings.TrimSpace(req.PromoCode)
	if len(promo) > maxPromoLen {
		promo = ""
	}

	meta, err := BuildMetadata(req.Tier, req.Profile, email, promo, req.GuideID)
	if err != nil {
		return nil, err
	}

	base := c.baseURL
	if origin := strings.TrimRight(strings.TrimSpace(req.Origin), "/"); origin != "" {
		base = origin
	}

	params := SessionParams{
		ProductName:   row.Name,
		Description:   row.Description,
		AmountCents:   row.AmountCents,
		Currency:      row.Currency,
		PriceRef:      row.PriceRef,
		SuccessURL:    base + "/guide/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/guide/preview",
		CustomerEmail: email,
		Metadata:      meta,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if promo != "" {
		if p, ok := pricing.FindPromo(promo); ok {
			params.Coupon = p.Coupon
		} else if c.promoLookup {
			id, found, err := c.provider.LookupPromotionCode(ctx, promo)
			switch {
			case err != nil:
				slog.Warn("promotion code lookup failed", "code", promo, "error", err)
			case found:
				params.PromotionCode = id
			}
		}
	}

	sess, err := c.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, &CheckoutError{Err: err}
	}
	if sess == nil || sess.URL == "" {
		return nil, ErrSessionCreationFailed
	}

	slog.Info("checkout session created",
		"session_id", sess.ID,
		"tier", req.Tier,
		"amount", row.AmountCents,
		"promo", promo != "",
	)

	if c.pending != nil && req.GuideID != nil {
		p := models.Payment{
			GuideID:       *req.GuideID,
			StripeSession: sess.ID,
			Tier:          req.Tier,
			Amount:        row.AmountCents,
			Status:        models.PaymentStatusPending,
		}
		if promo != "" {
			p.PromoCode = &promo
		}
		if _, err := c.pending.Save(ctx, p); err != nil {
			slog.Warn("record pending payment failed", "session_id", sess.ID, "error", err)
		}
	}

	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// VerifyPrices checks every provider price reference against the catalog
// amount and currency, so the price shown is the price charged. Tiers
// without a reference are charged inline from the catalog and need no check.
func (c *Checkout) VerifyPrices(ctx context.Context) error {
	for _, t := range pricing.Purchasable() {
		row, ok := c.lookupTier(t.Type)
		if !ok || row.PriceRef == "" {
			continue
		}
		amount, currency, err := c.provider.LookupPrice(ctx, row.PriceRef)
		if err != nil {
			return err
		}
		if amount != row.AmountCents || !strings.EqualFold(currency, row.Currency) {
			return fmt.Errorf("%w: %s price %s charges %d %s, catalog shows %d %s",
				ErrPriceMismatch, t.Type, row.PriceRef, amount, currency, row.AmountCents, row.Currency)
		}
	}
	return nil
}

// BuildMetadata serializes the checkout facts the webhook needs later.
func BuildMetadata(tier models.Tier, p models.BrandProfile, email, promo string, guideID *uuid.UUID) (map[string]string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode brand data: %w", err)
	}
	parts := splitValue(strings.TrimSuffix(buf.String(), "\n"), maxMetadataValue)
	if len(parts) > maxBrandDataParts {
		return nil, fmt.Errorf("%w: brand data too large for checkout metadata", ErrInvalidProfile)
	}

	meta := map[string]string{
		MetaTier:      string(tier),
		MetaBrandName: splitValue(p.Name, maxMetadataValue)[0],
		MetaUserEmail: email,
	}
	for i, part := range parts {
		meta[brandDataKey(i)] = part
	}
	if promo != "" {
		meta[MetaPromoCode] = promo
	}
	if guideID != nil {
		meta[MetaGuideID] = guideID.String()
	}
	return meta, nil
}

func brandDataKey(i int) string {
	if i == 0 {
		return MetaBrandData
	}
	return MetaBrandData + "_" + strconv.Itoa(i)
}

// splitValue cuts s into pieces of at most limit bytes without splitting a
// UTF-8 sequence. It always returns at least one piece.
func splitValue(s string, limit int) []string {
	var parts []string
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	return append(parts, s)
}

// ParseProfileMetadata recovers the brand profile serialized by
// BuildMetadata.
func ParseProfileMetadata(meta map[string]string) (models.BrandProfile, error) {
	var p models.BrandProfile
	raw, ok := meta[MetaBrandData]
	if !ok || raw == "" {
		return p, fmt.Errorf("%w: missing %s metadata", ErrInvalidProfile, MetaBrandData)
	}
	for i := 1; i < maxBrandDataParts; i++ {
		part, ok := meta[brandDataKey(i)]
		if !ok {
			break
		}
		raw += part
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return p, nil
}
