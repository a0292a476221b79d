// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ErrIncompleteProfile is returned when a profile lacks the fields every
// guide tier is derived from.
var ErrIncompleteProfile = errors.New("brand profile requires a name and a description")

// BrandProfile holds the user-submitted facts about a brand. It is the sole
// input to guide generation and is serialized verbatim into checkout metadata.
type BrandProfile struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain,omitempty"`
	Description string   `json:"description"`
	Audience    string   `json:"audience"`
	VoiceTraits []string `json:"voice_traits"`
	Language    string   `json:"language"`
	UserEmail   string   `json:"user_email,omitempty"`
}

// Validate reports whether the profile can be used for generation.
func (p BrandProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Description) == "" {
		return ErrIncompleteProfile
	}
	return nil
}

// Field limits accepted for a brand profile.
const (
	MaxNameLen        = 200
	MaxDomainLen      = 253
	MaxDescriptionLen = 2_000
	MaxAudienceLen    = 500
	MaxTraits         = 10
	MaxTraitLen       = 50
	MaxLanguageLen    = 50
	MaxEmailLen       = 254
)

// ProfileError names the first problem found in a profile. Its message is
// meant for the visitor.
type ProfileError struct {
	Message string
}

func (e *ProfileError) Error() string { return e.Message }

// Check applies the field limits of a stored profile on top of Validate.
// It returns a *ProfileError, or nil when the profile is acceptable.
func (p BrandProfile) Check() error {
	fail := func(msg string) error { return &ProfileError{Message: msg} }
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fail("Brand name is required.")
	case strings.TrimSpace(p.Description) == "":
		return fail("Brand description is required.")
	case utf8.RuneCountInString(p.Name) > MaxNameLen:
		return fail("Brand name is too long (max 200 characters).")
	case utf8.RuneCountInString(p.Domain) > MaxDomainLen:
		return fail("Domain is too long (max 253 characters).")
	case utf8.RuneCountInString(p.Description) > MaxDescriptionLen:
		return fail("Description is too long (max 2,000 characters).")
	case utf8.RuneCountInString(p.Audience) > MaxAudienceLen:
		return fail("Audience is too long (max 500 characters).")
	case len(p.VoiceTraits) > MaxTraits:
		return fail("Too many voice traits (max 10).")
	case utf8.RuneCountInString(p.Language) > MaxLanguageLen:
		return fail("Language is too long (max 50 characters).")
	case p.UserEmail != "" && !ValidEmail(p.UserEmail):
		return fail("Email address is not valid.")
	}
	for _, t := range p.VoiceTraits {
		if utf8.RuneCountInString(t) > MaxTraitLen {
			return fail("Voice trait is too long (max 50 characters).")
		}
	}
	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return len(s) <= MaxEmailLen && emailRe.MatchString(s)
}

// Hash returns a stable hex digest of the profile contents. Two profiles
// hash equal only if every field, including trait order, is equal.
func (p BrandProfile) Hash() string {
	// Marshal of a plain struct with string fields cannot fail.
	b, _ := json.Marshal(p)
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Brand is a persisted BrandProfile.
type Brand struct {
	ID        uuid.UUID    `json:"id"`
	Profile   BrandProfile `json:"profile"`
	CreatedAt time.Time    `json:"created_at"`
}
