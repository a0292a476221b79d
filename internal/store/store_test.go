// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"brandguide/internal/database"
	"brandguide/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "brandguide")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "brandguide")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testProfile returns a profile with a unique name so concurrent test
// packages never collide.
func testProfile() models.BrandProfile {
	return models.BrandProfile{
		Name:        "Store Test " + uuid.NewString()[:8],
		Description: "A brand used by store tests.",
		Audience:    "Testers",
		VoiceTraits: []string{"Precise", "Calm"},
		Language:    "English",
	}
}

// seedGuide stores a brand and a basic guide, removing both on cleanup.
func seedGuide(t *testing.T, db *sql.DB) (*models.Brand, *models.Guide) {
	t.Helper()
	ctx := context.Background()

	brand, err := NewBrandStore(db).Save(ctx, testProfile())
	if err != nil {
		t.Fatalf("save brand: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM brands WHERE id = $1", brand.ID) })

	g, err := NewGuideStore(db).Save(ctx, brand.ID, models.BasicGuide{
		ToneSummary: "calm",
		KeyTraits:   []string{"Precise", "Calm"},
	})
	if err != nil {
		t.Fatalf("save guide: %v", err)
	}
	return brand, g
}
