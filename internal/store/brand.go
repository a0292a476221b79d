// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for brands, guides, payments,
// email subscriptions and processed webhook events. Each store wraps a
// *sql.DB and maps one operation to one SQL statement; errors are wrapped
// with the operation name and returned to the caller.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"brandguide/internal/models"
)

// BrandStore handles brand persistence.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore creates a new BrandStore with the given database connection.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

// Save inserts a brand profile and returns the stored record.
func (s *BrandStore) Save(ctx context.Context, p models.BrandProfile) (*models.Brand, error) {
	b, err := insertBrand(ctx, s.db, p)
	if err != nil {
		return nil, fmt.Errorf("save brand: %w", err)
	}
	return b, nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertBrand(ctx context.Context, q queryRower, p models.BrandProfile) (*models.Brand, error) {
	traits, err := encodeTraits(p.VoiceTraits)
	if err != nil {
		return nil, err
	}

	b := &models.Brand{Profile: p}
	err = q.QueryRowContext(ctx, `
		INSERT INTO brands (name, domain, description, audience, voice_traits, language, user_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.Name, p.Domain, p.Description, p.Audience, traits, p.Language, p.UserEmail,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindByID retrieves a brand by its UUID. Returns nil if not found.
func (s *BrandStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	b := &models.Brand{}
	var traits []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, domain, description, audience, voice_traits, language, user_email, created_at
		FROM brands WHERE id = $1
	`, id).Scan(
		&b.ID, &b.Profile.Name, &b.Profile.Domain, &b.Profile.Description,
		&b.Profile.Audience, &traits, &b.Profile.Language, &b.Profile.UserEmail, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find brand by id: %w", err)
	}
	if b.Profile.VoiceTraits, err = decodeTraits(traits); err != nil {
		return nil, fmt.Errorf("find brand by id: %w", err)
	}
	return b, nil
}

func encodeTraits(traits []string) ([]byte, error) {
	if traits == nil {
		traits = []string{}
	}
	return json.Marshal(traits)
}

func decodeTraits(raw []byte) ([]string, error) {
	var traits []string
	if len(raw) == 0 {
		return traits, nil
	}
	if err := json.Unmarshal(raw, &traits); err != nil {
		return nil, fmt.Errorf("decode voice traits: %w", err)
	}
	return traits, nil
}
