/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions.
  This is the wiring layer connecting URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the browser client

ROUTE GROUPS:
  /works/*     Partition reads/writes, lookup, dates, summary
  /auth/*      Register/login/change-password/me (only when auth wired)

AUTH GATING:
  When Handler.RequireAuth is set (and an auth service is present), the
  /works routes sit behind the bearer middleware. Off by default: the
  persistence contract does not depend on authentication.

SEE ALSO:
  - handlers.go: works handlers
  - auth.go: auth handlers and middleware
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
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

	r.Route("/works", func(r chi.Router) {
		if h.RequireAuth && h.Auth != nil {
			r.Use(h.RequireToken)
		}
		r.Get("/", h.GetWorks)
		r.Post("/", h.SaveWorks)
		r.Get("/dates", h.GetDates)
		r.Get("/lookup", h.LookupWork)
		r.Get("/summary", h.GetSummary)
		r.Delete("/{id}", h.DeleteWork)
	})

	if h.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireToken)
				r.Post("/change-password", h.ChangePassword)
				r.Get("/me", h.Me)
			})
		})
	}

	return r
}
