// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks a checkout session's terminal state as reported by
// the payment provider.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// Payment records one checkout session for a guide.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	GuideID       uuid.UUID     `json:"guide_id"`
	StripeSession string        `json:"stripe_session"`
	Tier          Tier          `json:"tier"`
	Amount        int64         `json:"amount"` // cents
	Status        PaymentStatus `json:"status"`
	PromoCode     *string       `json:"promo_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// EmailSubscription links an address to a guide for delivery updates.
type EmailSubscription struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	GuideID   uuid.UUID `json:"guide_id"`
	CreatedAt time.Time `json:"created_at"`
}
