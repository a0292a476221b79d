// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package entitlement holds the rules for which guide content a set of
// unlocked tiers grants. The basic tier is always unlocked; paid tiers are
// only ever added, never removed, and adding one twice changes nothing.
package entitlement

import (
	"sort"

	"brandguide/internal/models"
)

// Set is a sorted, duplicate-free list of unlocked tiers that always
// contains basic.
type Set []models.Tier

// New builds a Set from tiers, dropping unknown values and duplicates.
func New(tiers ...models.Tier) Set {
	seen := map[models.Tier]bool{models.TierBasic: true}
	s := Set{models.TierBasic}
	for _, t := range tiers {
		if !t.Valid() || seen[t] {
			continue
		}
		seen[t] = true
		s = append(s, t)
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Rank() < s[j].Rank() })
	return s
}

// Has reports whether t itself was unlocked.
func (s Set) Has(t models.Tier) bool {
	for _, u := range s {
		if u == t {
			return true
		}
	}
	return false
}

// Grants reports whether the set gives access to t's content. A higher
// tier grants every lower tier, since its guide is a superset.
func (s Set) Grants(t models.Tier) bool {
	if !t.Valid() {
		return false
	}
	return s.Highest().Rank() >= t.Rank()
}

// Highest returns the highest unlocked tier.
func (s Set) Highest() models.Tier {
	best := models.TierBasic
	for _, t := range s {
		if t.Rank() > best.Rank() {
			best = t
		}
	}
	return best
}

// Unlock returns the set with t added and whether anything changed.
// Unlocking an already unlocked tier is a no-op.
func (s Set) Unlock(t models.Tier) (Set, bool) {
	if !t.Valid() || s.Has(t) {
		return New(s...), false
	}
	return New(append(append(Set(nil), s...), t)...), true
}

// Tiers returns the set as a plain slice.
func (s Set) Tiers() []models.Tier {
	return append([]models.Tier(nil), s...)
}

// View is the part of a guide a visitor may see.
type View struct {
	GuideID       string        `json:"guide_id"`
	Tier          models.Tier   `json:"tier"`
	UnlockedTiers []models.Tier `json:"unlocked_tiers"`
	Locked        []models.Tier `json:"locked_tiers"`
	// Pending is set when a paid tier is unlocked but its content has not
	// been generated yet.
	Pending     bool               `json:"pending"`
	Content     any                `json:"content"`
	FormatLinks models.FormatLinks `json:"format_links,omitempty"`
}

// ViewOf returns the richest content g's unlocked tiers grant. Fields of
// tiers that are not granted are never included.
func ViewOf(g models.Guide) View {
	set := New(g.UnlockedTiers...)
	v := View{
		GuideID:       g.ID.String(),
		UnlockedTiers: set.Tiers(),
	}

	for _, t := range []models.Tier{models.TierCore, models.TierComplete} {
		if !set.Grants(t) {
			v.Locked = append(v.Locked, t)
		}
	}

	switch {
	case set.Grants(models.TierComplete) && g.Complete != nil:
		v.Tier = models.TierComplete
		v.Content = *g.Complete
		v.FormatLinks = g.FormatLinks
	case set.Grants(models.TierCore) && g.Core != nil:
		v.Tier = models.TierCore
		v.Content = *g.Core
		v.Pending = set.Grants(models.TierComplete)
	case set.Grants(models.TierCore) && g.Complete != nil:
		// Core unlocked and a complete guide exists: serve only its core part.
		v.Tier = models.TierCore
		v.Content = g.Complete.CoreGuide
	default:
		v.Tier = models.TierBasic
		v.Content = g.Basic
		v.Pending = set.Highest().Paid()
	}
	return v
}
