// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package detect turns the single landing-page input (a website or a
// free-text description) into a draft BrandProfile the user then reviews.
// No site is fetched; the name comes from the domain or the first word.
package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"brandguide/internal/guide"
	"brandguide/internal/models"
)

// InputKind says how the input was interpreted.
type InputKind string

const (
	KindURL         InputKind = "url"
	KindDescription InputKind = "description"
)

const (
	defaultAudience = "Business professionals and decision makers"
	defaultLanguage = "English"
)

var urlPattern = regexp.MustCompile(`(?i)^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)

// Kind classifies the raw input.
func Kind(input string) InputKind {
	if urlPattern.MatchString(strings.TrimSpace(input)) {
		return KindURL
	}
	return KindDescription
}

// Detect builds a draft profile from input. email is copied through as
// entered; validation happens at checkout.
func Detect(input, email string) (models.BrandProfile, InputKind) {
	input = strings.TrimSpace(input)
	kind := Kind(input)
	name := BrandName(input, kind)

	p := models.BrandProfile{
		Name:        name,
		Audience:    defaultAudience,
		VoiceTraits: append([]string(nil), guide.FallbackTraits...),
		Language:    defaultLanguage,
		UserEmail:   email,
	}
	if kind == KindURL {
		p.Domain = input
		p.Description = fmt.Sprintf("%s provides innovative solutions for modern businesses.", name)
	} else {
		p.Description = input
	}
	return p, kind
}

// BrandName extracts a display name: the first domain label for URLs, the
// first word for descriptions, with the first letter upper-cased.
func BrandName(input string, kind InputKind) string {
	var word string
	if kind == KindURL {
		host := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(input), "https://"), "http://")
		host = strings.TrimPrefix(host, "www.")
		host, _, _ = strings.Cut(host, "/")
		word, _, _ = strings.Cut(host, ".")
		// Keep the original casing of the label.
		if i := strings.Index(strings.ToLower(input), word); i >= 0 {
			word = input[i : i+len(word)]
		}
	} else {
		word, _, _ = strings.Cut(input, " ")
	}
	return capitalize(word)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
