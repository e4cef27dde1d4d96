/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the console frontend

ROUTE GROUPS:
  /api/releases/*       Preview, commit and list payout releases
  /api/winners          Winner history
  /api/collections/*    Collection reports
  /api/payers/*         Eligible payer ranking
  /api/instant-win/*    Budget monitor and settings
  /api/transactions     Stake payment intake
  /api/payments/*       Aggregator settlement callback

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Release routes
		r.Route("/releases", func(r chi.Router) {
			r.Post("/preview", h.PreviewRelease)
			r.Post("/", h.CommitRelease)
			r.Get("/", h.ListReleases)
		})

		// Winner routes
		r.Get("/winners", h.ListWinners)

		// Collection routes
		r.Get("/collections/daily", h.Collections)
		r.Get("/payers/eligible", h.EligiblePayers)

		// Instant-win routes
		r.Route("/instant-win", func(r chi.Router) {
			r.Get("/status", h.InstantWinStatus)
			r.Post("/toggle", h.ToggleInstantWin)
			r.Put("/settings", h.UpdateInstantWinSettings)
		})

		// Payment intake routes
		r.Post("/transactions", h.CreateTransaction)
		r.Post("/payments/callback", h.PaymentCallback)
	})

	return r
}
