// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"brandguide/internal/export"
	"brandguide/internal/guide"
	"brandguide/internal/models"
	"brandguide/internal/pricing"
	"brandguide/internal/storage"
)

// Stores the receiver writes to. The store package types satisfy these.
type (
	GuideWriter interface {
		// SaveForCheckout stores the brand and basic guide for a session.
		// Repeated calls for one session return the same guide.
		SaveForCheckout(ctx context.Context, sessionID string, p models.BrandProfile, basic models.BasicGuide) (*models.Guide, error)
		Get(ctx context.Context, id uuid.UUID) (*models.Guide, error)
		SetGenerated(ctx context.Context, id uuid.UUID, core *models.CoreGuide, complete *models.CompleteGuide, aiPrompt *string) error
		SetFormatLinks(ctx context.Context, id uuid.UUID, links models.FormatLinks) error
		UnlockTier(ctx context.Context, id uuid.UUID, tier models.Tier) ([]models.Tier, error)
	}
	PaymentWriter interface {
		FindBySession(ctx context.Context, sessionID string) (*models.Payment, error)
		Save(ctx context.Context, p models.Payment) (*models.Payment, error)
		UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus) (*models.Payment, error)
	}
	Subscriber interface {
		Subscribe(ctx context.Context, email string, guideID uuid.UUID) (*models.EmailSubscription, error)
	}
	EventLog interface {
		Processed(ctx context.Context, eventID string) (bool, error)
		MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
	}
	// ArtifactUploader stores exported guide files.
	ArtifactUploader interface {
		Upload(ctx context.Context, key, contentType string, body []byte) error
	}
	// GuideGenerator produces paid-tier guides.
	GuideGenerator interface {
		Core(ctx context.Context, p models.BrandProfile) (models.CoreGuide, error)
		Complete(ctx context.Context, p models.BrandProfile) (models.CompleteGuide, error)
	}
)

// Stores bundles the persistence the receiver needs.
type Stores struct {
	Guides        GuideWriter
	Payments      PaymentWriter
	Subscriptions Subscriber
	Events        EventLog
}

// DefaultAttempts is how many times the database step runs before the
// event is reported as failed.
const DefaultAttempts = 3

// Outcome describes what HandleEvent did with a verified event.
type Outcome struct {
	EventID   string
	Type      string
	Duplicate bool
	Ignored   bool
	GuideID   *uuid.UUID
	Tier      models.Tier
}

// Webhook applies verified provider events.
type Webhook struct {
	provider  Provider
	stores    Stores
	generator GuideGenerator
	artifacts ArtifactUploader

	// Attempts and RetryDelay control the database retry.
	Attempts   int
	RetryDelay time.Duration
}

// NewWebhook returns a receiver. artifacts may be nil when object storage
// is not configured.
func NewWebhook(provider Provider, stores Stores, generator GuideGenerator, artifacts ArtifactUploader) *Webhook {
	return &Webhook{
		provider:   provider,
		stores:     stores,
		generator:  generator,
		artifacts:  artifacts,
		Attempts:   DefaultAttempts,
		RetryDelay: 200 * time.Millisecond,
	}
}

// HandleEvent verifies payload against signature and applies the event.
// Nothing is read or written before verification succeeds. Events already
// applied are acknowledged without being applied again.
func (w *Webhook) HandleEvent(ctx context.Context, payload []byte, signature string) (*Outcome, error) {
	event, err := w.provider.ConstructEvent(payload, signature)
	if err != nil {
		return nil, err
	}

	out := &Outcome{EventID: event.ID, Type: event.Type}
	log := slog.With("event_id", event.ID, "event_type", event.Type)

	if event.Type != EventCheckoutCompleted && event.Type != EventCheckoutExpired {
		log.Debug("ignoring webhook event")
		out.Ignored = true
		return out, nil
	}

	seen, err := w.stores.Events.Processed(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		log.Info("webhook event already processed")
		out.Duplicate = true
		return out, nil
	}

	if event.Session == nil {
		log.Warn("checkout event without session data")
		out.Ignored = true
		return out, w.markProcessed(ctx, event)
	}

	switch event.Type {
	case EventCheckoutCompleted:
		err = w.completed(ctx, log, event.Session, out)
	case EventCheckoutExpired:
		err = w.expired(ctx, log, event.Session)
	}
	if err != nil {
		return nil, err
	}
	return out, w.markProcessed(ctx, event)
}

func (w *Webhook) markProcessed(ctx context.Context, event *Event) error {
	_, err := w.stores.Events.MarkProcessed(ctx, event.ID, event.Type)
	return err
}

func (w *Webhook) completed(ctx context.Context, log *slog.Logger, sess *Session, out *Outcome) error {
	log = log.With("session_id", sess.ID)

	tier := models.Tier(sess.Metadata[MetaTier])
	if !pricing.IsPurchasable(tier) {
		log.Warn("completed checkout names no purchasable tier", "tier", tier)
		out.Ignored = true
		return nil
	}
	profile, err := ParseProfileMetadata(sess.Metadata)
	if err != nil {
		log.Warn("completed checkout has unusable brand data", "error", err)
		out.Ignored = true
		return nil
	}
	out.Tier = tier
	log = log.With("tier", tier)

	var guideID uuid.UUID
	err = w.retry(ctx, func() error {
		id, err := w.resolveGuide(ctx, sess, profile)
		if err != nil {
			return err
		}
		guideID = id
		return w.recordPayment(ctx, sess, id, tier)
	})
	if err != nil {
		return fmt.Errorf("apply checkout %s: %w", sess.ID, err)
	}
	out.GuideID = &guideID
	log = log.With("guide_id", guideID)
	log.Info("guide tier unlocked")

	complete, err := w.generate(ctx, guideID, tier, profile)
	if err != nil {
		return fmt.Errorf("generate %s guide: %w", tier, err)
	}

	if complete != nil && w.artifacts != nil {
		if err := w.deliver(ctx, guideID, *complete); err != nil {
			log.Warn("artifact delivery failed", "error", err)
		}
	}

	email := sess.Metadata[MetaUserEmail]
	if !models.ValidEmail(email) {
		email = sess.CustomerEmail
	}
	if models.ValidEmail(email) {
		if _, err := w.stores.Subscriptions.Subscribe(ctx, email, guideID); err != nil {
			log.Warn("email subscription failed", "error", err)
		}
	}
	return nil
}

// resolveGuide finds the guide a session pays for. A payment already
// recorded for the session wins, so every attempt and every redelivery
// lands on the same guide. Otherwise the guide named in metadata is used,
// and failing that a brand and basic guide are stored for the session.
func (w *Webhook) resolveGuide(ctx context.Context, sess *Session, p models.BrandProfile) (uuid.UUID, error) {
	paid, err := w.stores.Payments.FindBySession(ctx, sess.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if paid != nil {
		return paid.GuideID, nil
	}

	if raw := sess.Metadata[MetaGuideID]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			g, err := w.stores.Guides.Get(ctx, id)
			if err != nil {
				return uuid.Nil, err
			}
			if g != nil {
				return g.ID, nil
			}
		}
	}

	g, err := w.stores.Guides.SaveForCheckout(ctx, sess.ID, p, guide.Basic(p))
	if err != nil {
		return uuid.Nil, err
	}
	return g.ID, nil
}

func (w *Webhook) recordPayment(ctx context.Context, sess *Session, guideID uuid.UUID, tier models.Tier) error {
	p := models.Payment{
		GuideID:       guideID,
		StripeSession: sess.ID,
		Tier:          tier,
		Amount:        sess.AmountTotal,
		Status:        models.PaymentStatusCompleted,
	}
	if promo := sess.Metadata[MetaPromoCode]; promo != "" {
		p.PromoCode = &promo
	}
	if _, err := w.stores.Payments.Save(ctx, p); err != nil {
		return err
	}
	_, err := w.stores.Guides.UnlockTier(ctx, guideID, tier)
	return err
}

// generate builds and stores the purchased tier. The complete guide is
// returned for delivery.
func (w *Webhook) generate(ctx context.Context, guideID uuid.UUID, tier models.Tier, p models.BrandProfile) (*models.CompleteGuide, error) {
	switch tier {
	case models.TierCore:
		core, err := w.generator.Core(ctx, p)
		if err != nil {
			return nil, err
		}
		return nil, w.retry(ctx, func() error {
			return w.stores.Guides.SetGenerated(ctx, guideID, &core, nil, nil)
		})
	case models.TierComplete:
		complete, err := w.generator.Complete(ctx, p)
		if err != nil {
			return nil, err
		}
		err = w.retry(ctx, func() error {
			return w.stores.Guides.SetGenerated(ctx, guideID, &complete.CoreGuide, &complete, &complete.AIPrompt)
		})
		return &complete, err
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
}

// deliveredFormats are uploaded for every complete guide.
var deliveredFormats = []export.Format{export.FormatPDF, export.FormatMarkdown, export.FormatText}

// deliver renders and uploads the complete guide, then records the object
// keys on the guide.
func (w *Webhook) deliver(ctx context.Context, guideID uuid.UUID, g models.CompleteGuide) error {
	keys := make([]string, len(deliveredFormats))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, f := range deliveredFormats {
		eg.Go(func() error {
			a, err := export.Render(f, g)
			if err != nil {
				return err
			}
			key := storage.ArtifactKey(guideID, a.Filename)
			if err := w.artifacts.Upload(egCtx, key, a.ContentType, a.Body); err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	links := models.FormatLinks{PDF: keys[0], Markdown: keys[1], Text: keys[2]}
	return w.retry(ctx, func() error {
		return w.stores.Guides.SetFormatLinks(ctx, guideID, links)
	})
}

func (w *Webhook) expired(ctx context.Context, log *slog.Logger, sess *Session) error {
	log = log.With("session_id", sess.ID)
	var p *models.Payment
	err := w.retry(ctx, func() error {
		var err error
		p, err = w.stores.Payments.UpdateStatus(ctx, sess.ID, models.PaymentStatusExpired)
		return err
	})
	if err != nil {
		return fmt.Errorf("expire checkout %s: %w", sess.ID, err)
	}
	if p == nil {
		log.Info("checkout session expired with no recorded payment")
		return nil
	}
	log.Info("checkout session expired", "guide_id", p.GuideID, "tier", p.Tier)
	return nil
}

// retry runs op up to Attempts times with exponential backoff, stopping
// early when ctx ends.
func (w *Webhook) retry(ctx context.Context, op func() error) error {
	attempts := w.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.RetryDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Millisecond
	}

	n := 0
	return backoff.Retry(func() error {
		n++
		err := op()
		if err != nil && n < attempts {
			slog.Warn("webhook database step failed, retrying", "attempt", n, "error", err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}
