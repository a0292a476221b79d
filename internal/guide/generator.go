// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package guide

import (
	"context"
	"time"

	"brandguide/internal/models"
)

// DefaultDelay stands in for the latency of an external brand analysis call.
const DefaultDelay = 1500 * time.Millisecond

// Cache stores generated guides keyed by tier and profile. Implementations
// must treat any unreadable entry as a miss.
type Cache interface {
	Get(ctx context.Context, tier models.Tier, p models.BrandProfile, dst any) bool
	Set(ctx context.Context, tier models.Tier, p models.BrandProfile, v any)
}

// Generator produces guides with a simulated per-tier analysis delay. Each
// tier step waits once, so a complete guide waits three times. A zero Delay
// disables waiting. When Cache is set, a cached guide is returned without
// waiting.
type Generator struct {
	Delay time.Duration
	Cache Cache
}

// NewGenerator returns a Generator with the given per-step delay.
func NewGenerator(delay time.Duration) *Generator {
	return &Generator{Delay: delay}
}

// Basic generates the free guide.
func (g *Generator) Basic(ctx context.Context, p models.BrandProfile) (models.BasicGuide, error) {
	var out models.BasicGuide
	if g.cached(ctx, models.TierBasic, p, &out) {
		return out, nil
	}
	if err := g.wait(ctx); err != nil {
		return models.BasicGuide{}, err
	}
	out = Basic(p)
	g.store(ctx, models.TierBasic, p, out)
	return out, nil
}

// Core generates the core guide from a freshly generated basic guide.
func (g *Generator) Core(ctx context.Context, p models.BrandProfile) (models.CoreGuide, error) {
	var out models.CoreGuide
	if g.cached(ctx, models.TierCore, p, &out) {
		return out, nil
	}
	basic, err := g.Basic(ctx, p)
	if err != nil {
		return models.CoreGuide{}, err
	}
	if err := g.wait(ctx); err != nil {
		return models.CoreGuide{}, err
	}
	out = coreFrom(p, basic)
	g.store(ctx, models.TierCore, p, out)
	return out, nil
}

// Complete generates the complete guide from a freshly generated core guide.
func (g *Generator) Complete(ctx context.Context, p models.BrandProfile) (models.CompleteGuide, error) {
	var out models.CompleteGuide
	if g.cached(ctx, models.TierComplete, p, &out) {
		return out, nil
	}
	core, err := g.Core(ctx, p)
	if err != nil {
		return models.CompleteGuide{}, err
	}
	if err := g.wait(ctx); err != nil {
		return models.CompleteGuide{}, err
	}
	out = completeFrom(p, core)
	g.store(ctx, models.TierComplete, p, out)
	return out, nil
}

func (g *Generator) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Generator) cached(ctx context.Context, tier models.Tier, p models.BrandProfile, dst any) bool {
	return g.Cache != nil && g.Cache.Get(ctx, tier, p, dst)
}

func (g *Generator) store(ctx context.Context, tier models.Tier, p models.BrandProfile, v any) {
	if g.Cache != nil {
		g.Cache.Set(ctx, tier, p, v)
	}
}
