// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"brandguide/internal/models"
)

// PaymentStore handles checkout payment records.
type PaymentStore struct {
	db *sql.DB
}

// NewPaymentStore creates a new PaymentStore with the given database connection.
func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

const paymentColumns = `id, guide_id, stripe_session, tier, amount, status, promo_code, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.GuideID, &p.StripeSession, &p.Tier, &p.Amount, &p.Status, &p.PromoCode, &p.CreatedAt)
	return p, err
}

// Save records a payment. A second save for the same provider session
// updates the status instead of inserting a duplicate, so a redelivered
// completion event leaves exactly one row.
func (s *PaymentStore) Save(ctx context.Context, p models.Payment) (*models.Payment, error) {
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO payments (guide_id, stripe_session, tier, amount, status, promo_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stripe_session) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING `+paymentColumns,
		p.GuideID, p.StripeSession, p.Tier, p.Amount, p.Status, p.PromoCode,
	)
	saved, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	return saved, nil
}

// FindBySession retrieves a payment by provider session id. Returns nil if
// not found.
func (s *PaymentStore) FindBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE stripe_session = $1`, sessionID)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by session: %w", err)
	}
	return p, nil
}

// UpdateStatus sets the status of the payment for a provider session.
// Returns nil if no payment is recorded for it.
func (s *PaymentStore) UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW()
		WHERE stripe_session = $2
		RETURNING `+paymentColumns,
		status, sessionID,
	)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return p, nil
}
