/**
 * @description
 * This file sets up the HTTP router for the griffin-service using the `chi`
 * routing library. It defines all the API routes and applies necessary middleware.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: Cross-origin handling for the web dashboard.
 */
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/transfa/griffin-service/internal/config"
	"github.com/transfa/griffin-service/pkg/middleware"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, service Service, limiter middleware.Limiter, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	h := NewHandler(service, logger)
	paymentLimit := middleware.RateLimitBySubject(limiter, "payments", cfg.PaymentRateLimitPerMinute, time.Minute, logger)

	// Group routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(middleware.AuthOptions{
			Secret:   []byte(cfg.APIJWTSecret),
			Issuer:   cfg.APIJWTIssuer,
			Audience: cfg.APIJWTAudience,
		}))

		r.Route("/bank-accounts", func(r chi.Router) {
			r.Get("/", h.ListBankAccounts)
			r.Get("/detail", h.GetBankAccount)
			r.Get("/transactions", h.ListTransactions)
			r.Post("/operational", h.OpenOperationalAccount)
		})

		r.Route("/legal-persons", func(r chi.Router) {
			r.Get("/", h.ListLegalPersons)
			r.Get("/detail", h.GetLegalPerson)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Get("/detail", h.GetPayment)
			r.With(paymentLimit).Post("/", h.CreatePayment)
			r.Get("/orphaned", h.ListOrphanedPayments)
			r.Post("/orphaned/{id}/resolve", h.ResolveOrphanedPayment)
		})

		r.Route("/payees", func(r chi.Router) {
			r.Get("/", h.ListPayees)
			r.Get("/detail", h.GetPayee)
		})
	})

	return r
}
