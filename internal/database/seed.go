// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"brandguide/internal/guide"
	"brandguide/internal/models"
)

// DemoDomain identifies the brand created by Seed.
const DemoDomain = "demo.brandguide.local"

// DemoProfile is the brand Seed stores so a fresh development database has
// a guide to look at.
var DemoProfile = models.BrandProfile{
	Name:        "Acme",
	Domain:      DemoDomain,
	Description: "Acme builds dependable tools for small workshops.",
	Audience:    "Independent makers and repair shops",
	VoiceTraits: []string{"Practical", "Warm", "Direct"},
	Language:    "English",
}

// Seed populates the database with a demo brand and its free guide.
// It does nothing when the demo brand already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM brands WHERE domain = $1", DemoDomain).Scan(&count); err != nil {
		return fmt.Errorf("seed check brands: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	traits, err := json.Marshal(DemoProfile.VoiceTraits)
	if err != nil {
		return fmt.Errorf("seed encode traits: %w", err)
	}
	basic, err := json.Marshal(guide.Basic(DemoProfile))
	if err != nil {
		return fmt.Errorf("seed encode guide: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var brandID string
	err = tx.QueryRow(`
		INSERT INTO brands (name, domain, description, audience, voice_traits, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, DemoProfile.Name, DemoProfile.Domain, DemoProfile.Description,
		DemoProfile.Audience, traits, DemoProfile.Language,
	).Scan(&brandID)
	if err != nil {
		return fmt.Errorf("seed insert brand: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO guides (brand_id, basic_guide) VALUES ($1, $2)`, brandID, basic); err != nil {
		return fmt.Errorf("seed insert guide: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo brand", "brand_id", brandID, "name", DemoProfile.Name)
	return nil
}
