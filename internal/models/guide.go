// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BasicGuide is the free tier. Every field is a template fill of the
// BrandProfile.
type BasicGuide struct {
	ToneSummary      string   `json:"tone_summary"`
	KeyTraits        []string `json:"key_traits"`
	BrandPersonality string   `json:"brand_personality"`
	PrimaryAudience  string   `json:"primary_audience"`
	BasicVoiceNotes  string   `json:"basic_voice_notes"`
	ContentDirection string   `json:"content_direction"`
}

// ToneAnalysis describes communication style for the core tier.
type ToneAnalysis struct {
	CommunicationStyle   string   `json:"communication_style"`
	FormalityLevel       int      `json:"formality_level"` // 0-10
	EmotionalTone        string   `json:"emotional_tone"`
	VoiceCharacteristics []string `json:"voice_characteristics"`
}

// CoreGuide embeds the BasicGuide it was derived from.
type CoreGuide struct {
	BasicGuide
	DetailedToneAnalysis ToneAnalysis `json:"detailed_tone_analysis"`
	BrandPositioning     string       `json:"brand_positioning"`
	MessagingPillars     []string     `json:"messaging_pillars"`
	ContentThemes        []string     `json:"content_themes"`
	DoUseExamples        []string     `json:"do_use_examples"`
	DontUseExamples      []string     `json:"dont_use_examples"`
	BasicVisualDirection string       `json:"basic_visual_direction"`
}

// ColorPalette holds hex color values.
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Neutral   string `json:"neutral"`
}

// Typography describes type treatment.
type Typography struct {
	HeadingStyle   string `json:"heading_style"`
	BodyStyle      string `json:"body_style"`
	HierarchyNotes string `json:"hierarchy_notes"`
}

// VisualGuidelines is the complete-tier visual system.
type VisualGuidelines struct {
	ColorPalette     ColorPalette `json:"color_palette"`
	Typography       Typography   `json:"typography"`
	ImageryStyle     string       `json:"imagery_style"`
	DesignPrinciples []string     `json:"design_principles"`
}

// ContentStrategy is the complete-tier content framework.
type ContentStrategy struct {
	ContentPillars    []string `json:"content_pillars"`
	ContentTypes      []string `json:"content_types"`
	WritingGuidelines []string `json:"writing_guidelines"`
	FormattingRules   []string `json:"formatting_rules"`
}

// CompleteGuide embeds the CoreGuide it was derived from. AIPrompt is the
// only field exclusive to the complete tier that is sold separately.
type CompleteGuide struct {
	CoreGuide
	ComprehensiveVisualGuidelines VisualGuidelines `json:"comprehensive_visual_guidelines"`
	DetailedContentStrategy       ContentStrategy  `json:"detailed_content_strategy"`
	ReferenceBrands               []string         `json:"reference_brands"`
	AIPrompt                      string           `json:"ai_prompt"`
	AdvancedRecommendations       []string         `json:"advanced_recommendations"`
}

// FormatLinks points at delivered artifacts for a guide.
type FormatLinks struct {
	PDF      string `json:"pdf,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Guide is the persisted record for a brand's guide. Paid tiers are filled
// in once the matching checkout completes.
type Guide struct {
	ID            uuid.UUID      `json:"id"`
	BrandID       uuid.UUID      `json:"brand_id"`
	Basic         BasicGuide     `json:"basic_guide"`
	Core          *CoreGuide     `json:"core_guide,omitempty"`
	Complete      *CompleteGuide `json:"complete_guide,omitempty"`
	AIPrompt      *string        `json:"ai_prompt,omitempty"`
	FormatLinks   FormatLinks    `json:"format_links"`
	UnlockedTiers []Tier         `json:"unlocked_tiers"`
	CreatedAt     time.Time      `json:"created_at"`
}

// GuideStatus is a guide joined with its brand and the latest payment state.
type GuideStatus struct {
	Guide         Guide        `json:"guide"`
	Brand         BrandProfile `json:"brand"`
	PaymentStatus *string      `json:"payment_status,omitempty"`
	PaidTier      *Tier        `json:"paid_tier,omitempty"`
}
