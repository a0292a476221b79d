// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pricing owns the purchasable tiers. Display prices, checkout
// amounts, currency, and provider price references all come from the one
// catalog below; nothing else in the program holds a price literal.
package pricing

import (
	"strings"

	"brandguide/internal/models"
)

// Currency is the ISO currency code every tier is charged in.
const Currency = "usd"

// Tier is one row of the catalog.
type Tier struct {
	Type        models.Tier `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Features    []string    `json:"features"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	// PriceRef is the provider-side price identifier. When empty the
	// checkout builds inline price data from AmountCents.
	PriceRef string `json:"-"`
}

// Price returns the price in whole dollars for display.
func (t Tier) Price() int64 {
	return t.AmountCents / 100
}

// Free returns true for the tier that needs no checkout.
func (t Tier) Free() bool {
	return t.AmountCents == 0
}

var catalog = []Tier{
	{
		Type:        models.TierBasic,
		Name:        "Basic Guide",
		Description: "Essential brand insights to get started",
		Features: []string{
			"Tone of voice summary",
			"Key brand traits",
			"Basic personality analysis",
			"Content direction notes",
			"Always free",
		},
		AmountCents: 0,
		Currency:    Currency,
	},
	{
		Type:        models.TierCore,
		Name:        "Core Guide",
		Description: "Detailed brand guidelines for consistent messaging",
		Features: []string{
			"Everything in Basic",
			"Detailed tone analysis",
			"Messaging pillars & themes",
			"Do/Don't use examples",
			"Brand positioning",
			"PDF download",
		},
		AmountCents: 2900,
		Currency:    Currency,
	},
	{
		Type:        models.TierComplete,
		Name:        "Complete Guide",
		Description: "Comprehensive brand system with AI prompts",
		Features: []string{
			"Everything in Core",
			"Visual guidelines & colors",
			"Content strategy framework",
			"AI prompt for ChatGPT/Claude",
			"PDF, Markdown & Text downloads",
			"Advanced recommendations",
		},
		AmountCents: 5900,
		Currency:    Currency,
	},
}

// All returns a copy of the catalog in display order.
func All() []Tier {
	out := make([]Tier, len(catalog))
	for i, t := range catalog {
		out[i] = clone(t)
	}
	return out
}

// FindTier looks up a catalog row by tier type.
func FindTier(t models.Tier) (Tier, bool) {
	for _, row := range catalog {
		if row.Type == t {
			return clone(row), true
		}
	}
	return Tier{}, false
}

// Purchasable returns the tiers offered at checkout. The free tier is never
// included.
func Purchasable() []Tier {
	var out []Tier
	for _, row := range catalog {
		if row.Free() {
			continue
		}
		out = append(out, clone(row))
	}
	return out
}

// IsPurchasable reports whether t can be bought.
func IsPurchasable(t models.Tier) bool {
	row, ok := FindTier(t)
	return ok && !row.Free()
}

// WithPriceRefs returns a catalog lookup that carries provider price IDs.
// Keys are tier types; unknown keys are ignored.
func WithPriceRefs(refs map[models.Tier]string) func(models.Tier) (Tier, bool) {
	return func(t models.Tier) (Tier, bool) {
		row, ok := FindTier(t)
		if !ok {
			return Tier{}, false
		}
		row.PriceRef = strings.TrimSpace(refs[t])
		return row, true
	}
}

func clone(t Tier) Tier {
	t.Features = append([]string(nil), t.Features...)
	return t
}

// Promo is a discount the checkout can attach to a session.
type Promo struct {
	Code   string
	Coupon string // provider coupon ID
}

var promos = map[string]Promo{
	"DESIGNBUFFS20": {Code: "DESIGNBUFFS20", Coupon: "designbuffs20"},
}

// FindPromo returns the promo for an exact code match.
func FindPromo(code string) (Promo, bool) {
	p, ok := promos[code]
	return p, ok
}
