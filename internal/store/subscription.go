// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brandguide/internal/models"
)

// SubscriptionStore handles email subscriptions to guide updates.
type SubscriptionStore struct {
	db *sql.DB
}

// NewSubscriptionStore creates a new SubscriptionStore with the given database connection.
func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Subscribe links email to a guide. Subscribing the same address twice
// returns the existing subscription.
func (s *SubscriptionStore) Subscribe(ctx context.Context, email string, guideID uuid.UUID) (*models.EmailSubscription, error) {
	sub := &models.EmailSubscription{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO email_subscriptions (email, guide_id)
		VALUES ($1, $2)
		ON CONFLICT (email, guide_id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, guide_id, created_at
	`, strings.ToLower(strings.TrimSpace(email)), guideID,
	).Scan(&sub.ID, &sub.Email, &sub.GuideID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("subscribe email: %w", err)
	}
	return sub, nil
}

// ListByGuide returns all subscriptions for a guide, oldest first.
func (s *SubscriptionStore) ListByGuide(ctx context.Context, guideID uuid.UUID) ([]models.EmailSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, guide_id, created_at
		FROM email_subscriptions
		WHERE guide_id = $1
		ORDER BY created_at
	`, guideID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.EmailSubscription
	for rows.Next() {
		var sub models.EmailSubscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.GuideID, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
