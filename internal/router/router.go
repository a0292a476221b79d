// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// brand guide API. The payment webhook sits outside the session and CSRF
// stacks since it is called by the payment provider, not a browser.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"brandguide/internal/handlers"
	"brandguide/internal/middleware"
	"brandguide/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. checkoutLimiter may be nil to disable rate
// limiting of checkout.
func New(sessionStore *session.Store, checkoutLimiter *middleware.CheckoutLimiter, secureCookies bool, health http.HandlerFunc, brand *handlers.Brand, guides *handlers.Guides, payments *handlers.Payments) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", health)

	// Provider callbacks: raw body, no session, no CSRF.
	r.Post("/payment-webhook", payments.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))

		r.Route("/api", func(r chi.Router) {
			r.Get("/pricing", payments.Pricing)

			// Draft profile, kept in the session cookie.
			r.Route("/brand", func(r chi.Router) {
				r.Use(middleware.NewCSRF(secureCookies))
				r.Get("/", brand.Get)
				r.Put("/", brand.Put)
				r.Delete("/", brand.Delete)
				r.Post("/detect", brand.Detect)
			})

			r.Route("/guides", func(r chi.Router) {
				r.Post("/", guides.Create)
				r.Get("/{id}", guides.Show)
				r.Get("/{id}/download", guides.Download)
				r.Post("/{id}/subscribe", guides.Subscribe)
			})
		})

		r.Group(func(r chi.Router) {
			if checkoutLimiter != nil {
				r.Use(checkoutLimiter.Middleware)
			}
			r.Post("/checkout-session", payments.Checkout)
		})
	})

	return r
}
