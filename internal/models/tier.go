// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Tier identifies a guide level. Higher tiers contain every field of the
// tiers below them.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierCore     Tier = "core"
	TierComplete Tier = "complete"
)

// Valid returns true for the three known tiers.
func (t Tier) Valid() bool {
	return t.Rank() > 0
}

// Rank orders tiers: basic=1, core=2, complete=3. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierCore:
		return 2
	case TierComplete:
		return 3
	}
	return 0
}

// Paid returns true for tiers that require a completed checkout.
func (t Tier) Paid() bool {
	return t == TierCore || t == TierComplete
}
