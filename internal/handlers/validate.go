// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brandguide/internal/models"
)

// maxDetectInputLen bounds the landing-page input given to detection.
const maxDetectInputLen = 2_000

// validateProfile returns the visitor-facing problem with p, or "" when the
// profile is usable.
func validateProfile(p models.BrandProfile) string {
	if err := p.Check(); err != nil {
		return err.Error()
	}
	return ""
}

// guideIDParam parses the {id} URL parameter. It writes a 400 and returns
// false when the parameter is not a UUID.
func guideIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid guide ID")
		return uuid.Nil, false
	}
	return id, true
}
