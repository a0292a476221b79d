// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"brandguide/internal/models"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("record not found")

// GuideStore handles guide records and their unlocked tiers.
type GuideStore struct {
	db *sql.DB
}

// NewGuideStore creates a new GuideStore with the given database connection.
func NewGuideStore(db *sql.DB) *GuideStore {
	return &GuideStore{db: db}
}

const guideColumns = `id, brand_id, basic_guide, core_guide, complete_guide,
		       ai_prompt, format_links, unlocked_tiers, created_at`

// guideRow holds the raw JSONB columns of a guide until they are decoded.
type guideRow struct {
	g                                           models.Guide
	basic, core, complete, links, unlockedTiers []byte
	aiPrompt                                    sql.NullString
}

func (r *guideRow) dest() []any {
	return []any{
		&r.g.ID, &r.g.BrandID, &r.basic, &r.core, &r.complete,
		&r.aiPrompt, &r.links, &r.unlockedTiers, &r.g.CreatedAt,
	}
}

func (r *guideRow) decode() (*models.Guide, error) {
	g := r.g
	if err := json.Unmarshal(r.basic, &g.Basic); err != nil {
		return nil, fmt.Errorf("decode basic guide: %w", err)
	}
	if len(r.core) > 0 {
		g.Core = &models.CoreGuide{}
		if err := json.Unmarshal(r.core, g.Core); err != nil {
			return nil, fmt.Errorf("decode core guide: %w", err)
		}
	}
	if len(r.complete) > 0 {
		g.Complete = &models.CompleteGuide{}
		if err := json.Unmarshal(r.complete, g.Complete); err != nil {
			return nil, fmt.Errorf("decode complete guide: %w", err)
		}
	}
	if r.aiPrompt.Valid {
		g.AIPrompt = &r.aiPrompt.String
	}
	if len(r.links) > 0 {
		if err := json.Unmarshal(r.links, &g.FormatLinks); err != nil {
			return nil, fmt.Errorf("decode format links: %w", err)
		}
	}
	tiers, err := decodeTiers(r.unlockedTiers)
	if err != nil {
		return nil, err
	}
	g.UnlockedTiers = tiers
	return &g, nil
}

func decodeTiers(raw []byte) ([]models.Tier, error) {
	var tiers []models.Tier
	if err := json.Unmarshal(raw, &tiers); err != nil {
		return nil, fmt.Errorf("decode unlocked tiers: %w", err)
	}
	return tiers, nil
}

// jsonOrNull encodes v, or returns nil (SQL NULL) when isNil is true.
func jsonOrNull(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Save inserts a guide for brandID with only the basic tier filled in and
// unlocked.
func (s *GuideStore) Save(ctx context.Context, brandID uuid.UUID, basic models.BasicGuide) (*models.Guide, error) {
	raw, err := json.Marshal(basic)
	if err != nil {
		return nil, fmt.Errorf("save guide: %w", err)
	}

	var r guideRow
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO guides (brand_id, basic_guide)
		VALUES ($1, $2)
		RETURNING `+guideColumns,
		brandID, raw,
	).Scan(r.dest()...)
	if err != nil {
		return nil, fmt.Errorf("save guide: %w", err)
	}
	return r.decode()
}

// SaveForCheckout stores the brand and basic guide for a checkout session
// in one transaction. The session id is unique on guides, so a repeated or
// concurrent call returns the guide the first call stored and leaves no
// extra brand behind.
func (s *GuideStore) SaveForCheckout(ctx context.Context, sessionID string, p models.BrandProfile, basic models.BasicGuide) (*models.Guide, error) {
	existing, err := s.findByCheckout(ctx, sessionID)
	if err != nil || existing != nil {
		return existing, err
	}

	raw, err := json.Marshal(basic)
	if err != nil {
		return nil, fmt.Errorf("save checkout guide: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save checkout guide: %w", err)
	}
	defer tx.Rollback()

	brand, err := insertBrand(ctx, tx, p)
	if err != nil {
		return nil, fmt.Errorf("save checkout guide: %w", err)
	}

	var r guideRow
	err = tx.QueryRowContext(ctx, `
		INSERT INTO guides (brand_id, basic_guide, checkout_session)
		VALUES ($1, $2, $3)
		ON CONFLICT (checkout_session) DO NOTHING
		RETURNING `+guideColumns,
		brand.ID, raw, sessionID,
	).Scan(r.dest()...)
	if err == sql.ErrNoRows {
		// Another delivery committed first. Rolling back drops our brand row.
		tx.Rollback()
		return s.findByCheckout(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("save checkout guide: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save checkout guide: %w", err)
	}
	return r.decode()
}

func (s *GuideStore) findByCheckout(ctx context.Context, sessionID string) (*models.Guide, error) {
	var r guideRow
	err := s.db.QueryRowContext(ctx, `SELECT `+guideColumns+` FROM guides WHERE checkout_session = $1`, sessionID).Scan(r.dest()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find guide by checkout session: %w", err)
	}
	return r.decode()
}

// Get retrieves a guide by its UUID. Returns nil if not found.
func (s *GuideStore) Get(ctx context.Context, id uuid.UUID) (*models.Guide, error) {
	var r guideRow
	err := s.db.QueryRowContext(ctx, `SELECT `+guideColumns+` FROM guides WHERE id = $1`, id).Scan(r.dest()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	return r.decode()
}

// SetGenerated stores paid-tier content on a guide. Nil arguments leave the
// existing column untouched, so storing core content never clears a
// previously generated complete guide.
func (s *GuideStore) SetGenerated(ctx context.Context, id uuid.UUID, core *models.CoreGuide, complete *models.CompleteGuide, aiPrompt *string) error {
	coreRaw, err := jsonOrNull(core, core == nil)
	if err != nil {
		return fmt.Errorf("set generated guide: %w", err)
	}
	completeRaw, err := jsonOrNull(complete, complete == nil)
	if err != nil {
		return fmt.Errorf("set generated guide: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE guides SET
			core_guide = COALESCE($1, core_guide),
			complete_guide = COALESCE($2, complete_guide),
			ai_prompt = COALESCE($3, ai_prompt),
			updated_at = NOW()
		WHERE id = $4
	`, coreRaw, completeRaw, aiPrompt, id)
	if err != nil {
		return fmt.Errorf("set generated guide: %w", err)
	}
	return requireRow(res, "set generated guide", id)
}

// SetFormatLinks records where the delivered artifacts of a guide live.
func (s *GuideStore) SetFormatLinks(ctx context.Context, id uuid.UUID, links models.FormatLinks) error {
	raw, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("set format links: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE guides SET format_links = $1, updated_at = NOW() WHERE id = $2
	`, raw, id)
	if err != nil {
		return fmt.Errorf("set format links: %w", err)
	}
	return requireRow(res, "set format links", id)
}

// UnlockTier adds tier to the guide's unlocked tiers through the
// unlock_guide_tier SQL function and returns the resulting set. Unlocking
// an already unlocked tier is a no-op.
func (s *GuideStore) UnlockTier(ctx context.Context, id uuid.UUID, tier models.Tier) ([]models.Tier, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT unlock_guide_tier($1, $2)`, id, string(tier)).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("unlock guide tier: %w", err)
	}
	return decodeTiers(raw)
}

// GetWithStatus returns a guide with its brand and latest payment through
// the get_guide_with_status SQL function. Returns nil if not found.
func (s *GuideStore) GetWithStatus(ctx context.Context, id uuid.UUID) (*models.GuideStatus, error) {
	var (
		r             guideRow
		traits        []byte
		paymentStatus sql.NullString
		paidTier      sql.NullString
		st            models.GuideStatus
	)
	dest := append(r.dest(),
		&st.Brand.Name, &st.Brand.Domain, &st.Brand.Description, &st.Brand.Audience,
		&traits, &st.Brand.Language, &st.Brand.UserEmail,
		&paymentStatus, &paidTier,
	)
	err := s.db.QueryRowContext(ctx, `SELECT * FROM get_guide_with_status($1)`, id).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get guide with status: %w", err)
	}

	g, err := r.decode()
	if err != nil {
		return nil, fmt.Errorf("get guide with status: %w", err)
	}
	st.Guide = *g
	if st.Brand.VoiceTraits, err = decodeTraits(traits); err != nil {
		return nil, fmt.Errorf("get guide with status: %w", err)
	}
	if paymentStatus.Valid {
		st.PaymentStatus = &paymentStatus.String
	}
	if paidTier.Valid {
		t := models.Tier(paidTier.String)
		st.PaidTier = &t
	}
	return &st, nil
}

func requireRow(res sql.Result, op string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}
