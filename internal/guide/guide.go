// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package guide derives the three guide tiers from a BrandProfile. Each tier
// is built from the output of the tier below it, so shared fields can never
// disagree between tiers. The builders are pure; Generator adds the
// simulated analysis latency the web flow expects.
package guide

import (
	"fmt"
	"strings"

	"brandguide/internal/models"
)

// FallbackTraits fill voice trait positions the profile leaves empty.
var FallbackTraits = []string{"Professional", "Trustworthy", "Innovative"}

// trait returns the i-th voice trait, or fallback when it is missing or blank.
func trait(traits []string, i int, fallback string) string {
	if i < len(traits) && traits[i] != "" {
		return traits[i]
	}
	return fallback
}

// keyTraits returns the profile's traits as entered, or the fallbacks when
// none were given.
func keyTraits(p models.BrandProfile) []string {
	if len(p.VoiceTraits) == 0 {
		return append([]string(nil), FallbackTraits...)
	}
	return append([]string(nil), p.VoiceTraits...)
}

// Basic builds the free guide.
func Basic(p models.BrandProfile) models.BasicGuide {
	t := p.VoiceTraits

	return models.BasicGuide{
		ToneSummary: fmt.Sprintf(
			"%s communicates with a %s and %s tone. The brand focuses on serving %s with clear, valuable messaging.",
			p.Name,
			strings.ToLower(trait(t, 0, "professional")),
			strings.ToLower(trait(t, 1, "approachable")),
			p.Audience,
		),

		KeyTraits: keyTraits(p),

		BrandPersonality: fmt.Sprintf(
			"%s embodies %s while maintaining an %s demeanor. The brand is positioned as a reliable partner for %s.",
			p.Name,
			trait(t, 0, "professionalism"),
			strings.ToLower(trait(t, 1, "approachable")),
			p.Audience,
		),

		PrimaryAudience: p.Audience,

		BasicVoiceNotes: fmt.Sprintf(`Key voice characteristics:
• %s: Maintains expertise and authority
• %s: Builds confidence through reliability
• %s: Shows forward-thinking approach

Communication should be direct yet warm, focusing on value delivery.`,
			trait(t, 0, FallbackTraits[0]),
			trait(t, 1, FallbackTraits[1]),
			trait(t, 2, FallbackTraits[2]),
		),

		ContentDirection: fmt.Sprintf(
			"Content should emphasize %s's expertise while remaining accessible to %s. Focus on practical solutions, clear benefits, and building trust through demonstration of knowledge and results.",
			p.Name, p.Audience,
		),
	}
}

// Core builds the core guide on top of Basic.
func Core(p models.BrandProfile) models.CoreGuide {
	return coreFrom(p, Basic(p))
}

func coreFrom(p models.BrandProfile, basic models.BasicGuide) models.CoreGuide {
	return models.CoreGuide{
		BasicGuide: basic,

		DetailedToneAnalysis: models.ToneAnalysis{
			CommunicationStyle: "Direct and informative with a consultative approach",
			FormalityLevel:     7,
			EmotionalTone:      "Confident and empowering",
			VoiceCharacteristics: []string{
				"Expert without being condescending",
				"Helpful and solution-oriented",
				"Clear and concise communication",
				"Builds trust through transparency",
			},
		},

		BrandPositioning: fmt.Sprintf(
			"%s is positioned as the go-to expert for %s who need reliable, innovative solutions. We combine deep expertise with practical application to deliver results that matter.",
			p.Name, p.Audience,
		),

		MessagingPillars: []string{
			"Expertise You Can Trust",
			"Practical Solutions That Work",
			"Innovation With Purpose",
			"Partnership for Success",
		},

		ContentThemes: []string{
			"Industry insights and trends",
			"Best practices and how-to guides",
			"Success stories and case studies",
			"Innovation and future-forward thinking",
		},

		DoUseExamples: []string{
			fmt.Sprintf(`"%s helps you achieve..."`, p.Name),
			`"Our proven approach delivers..."`,
			`"Designed specifically for..."`,
			`"Based on our experience with..."`,
		},

		DontUseExamples: []string{
			`"Revolutionary breakthrough..."`,
			`"Disruptive game-changer..."`,
			`"One-size-fits-all solution..."`,
			`"Guaranteed instant results..."`,
		},

		BasicVisualDirection: "Clean, professional design with trustworthy color palette (blues, grays). Typography should be highly readable with clear hierarchy. Visual elements should support credibility and expertise.",
	}
}

// Complete builds the complete guide on top of Core.
func Complete(p models.BrandProfile) models.CompleteGuide {
	return completeFrom(p, Core(p))
}

func completeFrom(p models.BrandProfile, core models.CoreGuide) models.CompleteGuide {
	return models.CompleteGuide{
		CoreGuide: core,

		ComprehensiveVisualGuidelines: models.VisualGuidelines{
			ColorPalette: models.ColorPalette{
				Primary:   "#2563eb",
				Secondary: "#1e40af",
				Accent:    "#06b6d4",
				Neutral:   "#64748b",
			},
			Typography: models.Typography{
				HeadingStyle:   "Bold, modern sans-serif (Helvetica, Arial, or system font)",
				BodyStyle:      "Clean, readable sans-serif optimized for screen and print",
				HierarchyNotes: "Clear distinction between H1-H3, consistent line heights, adequate white space",
			},
			ImageryStyle: "Professional photography with real people, clean illustrations when needed, consistent lighting and composition",
			DesignPrinciples: []string{
				"Simplicity over complexity",
				"Consistency in all touchpoints",
				"Accessibility-first design",
				"Mobile-responsive layouts",
				"Generous white space usage",
			},
		},

		DetailedContentStrategy: models.ContentStrategy{
			ContentPillars: []string{
				"Educational content that demonstrates expertise",
				"Success stories and social proof",
				"Industry insights and thought leadership",
				"Practical tools and resources",
			},
			ContentTypes: []string{
				"How-to guides and tutorials",
				"Case studies and success stories",
				"Industry reports and insights",
				"Tool reviews and comparisons",
				"Best practice frameworks",
			},
			WritingGuidelines: []string{
				"Lead with benefits, follow with features",
				"Use active voice and strong verbs",
				"Keep sentences under 20 words when possible",
				"Include specific examples and data",
				"End with clear next steps",
			},
			FormattingRules: []string{
				"Use sentence case for headings",
				"Break up long text with subheadings",
				"Include bullet points for easy scanning",
				"Add relevant images or graphics",
				"Include clear calls-to-action",
			},
		},

		ReferenceBrands: []string{"Slack", "Notion", "Linear", "Stripe", "Figma"},

		AIPrompt: AIPrompt(p),

		AdvancedRecommendations: []string{
			"Develop a content calendar based on your messaging pillars",
			"Create brand voice training materials for your team",
			"Audit existing content against these guidelines",
			"Establish approval workflows for brand consistency",
			"Set up regular brand voice reviews and updates",
		},
	}
}

// AIPrompt builds the instruction block a user pastes into a chat model to
// write on-brand copy.
func AIPrompt(p models.BrandProfile) string {
	traits := keyTraits(p)

	return fmt.Sprintf(`You are a professional content creator writing on behalf of %[1]s. Follow these guidelines strictly:

Brand Name: %[1]s
Mission: %[2]s
Target Audience: %[3]s
Voice: %[4]s
Writing Style: Direct, informative, and consultative
Perspective: Third person
Tone: Confident yet approachable

Do Use:
• "%[1]s helps %[3]s..."
• "Our proven approach delivers..."
• "Based on our experience..."
• "Designed specifically for..."
• Clear, benefit-focused language

Don't Use:
• "Revolutionary breakthrough..."
• "Disruptive game-changer..."
• "One-size-fits-all solution..."
• Excessive buzzwords or hype language
• Generic promises without substance

Formatting:
• Headings: Sentence case
• Length: 50-150 words per section
• Structure: Problem → Solution → Benefit
• Call-to-action: Clear and specific
• Tone: Professional but accessible

Reference Brands: Slack, Notion, Linear (for voice inspiration)

Always focus on practical value and specific benefits for %[3]s. Use this voice consistently across all content unless instructed otherwise.`,
		p.Name, p.Description, p.Audience, strings.Join(traits, ", "),
	)
}
