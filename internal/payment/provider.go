// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package payment creates hosted checkout sessions for paid guide tiers and
// applies the provider's signed webhook events: recording payments,
// unlocking tiers and generating the purchased guide. The provider is
// reached through the Provider interface; StripeProvider is the production
// implementation.
package payment

import (
	"context"
	"errors"
)

// Event types the receiver acts on. Every other type is acknowledged and
// ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SessionParams is everything the provider needs to open a checkout.
type SessionParams struct {
	ProductName   string
	Description   string
	AmountCents   int64
	Currency      string
	PriceRef      string // provider price id; overrides inline amount when set
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
	Coupon        string
	PromotionCode string // provider promotion code id
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID            string
	URL           string
	AmountTotal   int64
	CustomerEmail string
	PaymentStatus string
	Metadata      map[string]string
}

// Event is a verified webhook event. Session is set for checkout events.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

// Provider is a hosted payment provider.
type Provider interface {
	// CreateCheckoutSession opens a one-time payment session.
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	// LookupPromotionCode resolves a customer-facing code to the provider's
	// promotion code id. ok is false for unknown or inactive codes.
	LookupPromotionCode(ctx context.Context, code string) (id string, ok bool, err error)
	// LookupPrice returns the unit amount and currency of a provider price.
	LookupPrice(ctx context.Context, ref string) (amountCents int64, currency string, err error)
	// ConstructEvent verifies signature over payload and decodes the event.
	// Verification failures wrap ErrInvalidSignature.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
