// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes are
// split into the public API used by the site-builder frontend and the admin
// API used by the dashboard.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"barbersites/internal/handlers"
	"barbersites/internal/middleware"
)

// Options carries the route-level settings.
type Options struct {
	// AdminToken protects /api/admin and /metrics. Empty leaves them open.
	AdminToken string
	// Limiter throttles public POST endpoints. Nil disables throttling.
	Limiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, public *handlers.Public, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	// Metrics carry per-route traffic and payment counts; same guard as admin.
	r.With(middleware.RequireBearer(opts.AdminToken)).Handle("/metrics", promhttp.Handler())

	r.Get("/preview/{id}", public.Preview)

	r.Route("/api", func(r chi.Router) {
		// The webhook is retried by the payment provider and must not be
		// throttled alongside visitor traffic.
		r.Post("/stripe-webhook", public.StripeWebhook)

		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Post("/template-request", public.SubmitTemplate)
			r.Post("/create-template-payment", public.CreateTemplatePayment)
			r.Post("/personalized-request", public.SubmitPersonalized)
			r.Post("/create-consultation-payment", public.CreateConsultationPayment)
			r.Post("/create-final-payment", public.CreateFinalPayment)
			r.Post("/logo", public.UploadLogo)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireBearer(opts.AdminToken))
			r.Use(middleware.NoStore)

			r.Get("/personalized-requests", admin.ListPersonalized)
			r.Route("/personalized-request/{id}", func(r chi.Router) {
				r.Get("/", admin.GetPersonalized)
				r.Patch("/status", admin.UpdateStatus)
				r.Put("/quote", admin.SetFinalQuote)
				r.Post("/consultation-complete", admin.CompleteConsultation)
			})

			r.Route("/template-requests", func(r chi.Router) {
				r.Get("/", admin.ListTemplates)
				r.Delete("/orphans", admin.PurgeOrphans)
				r.Get("/{id}", admin.GetTemplate)
				r.Post("/{id}/publish", admin.PublishTemplate)
			})

			r.Get("/ai/provider", admin.AIProvider)
			r.Put("/ai/provider", admin.AISetProvider)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
