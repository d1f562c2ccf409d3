// Package http provides the HTTP delivery layer for the URL shortener service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options tune the router.
type Options struct {
	// BaseURL prefixes aliases in returned short URLs.
	BaseURL string
	// RateLimitRequests per RateLimitWindow and client IP on POST /api/shorten. Zero disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	SecureCookies     bool
	// LoginRedirectURL is where the browser lands after a successful login.
	LoginRedirectURL string
}

// UseCases groups the use cases the handlers delegate to.
type UseCases struct {
	URL       urlUseCase
	Analytics analyticsUseCase
	Account   accountUseCase
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, opts Options, uc UseCases, sessions sessionManager, provider identityProvider) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer)
	r.Use(instrument)
	r.Use(authenticate(sessions))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Handle("/metrics", promhttp.Handler())

	validate := newValidator()
	uh := newURLHandler(uc.URL, validate, opts.BaseURL)
	ah := newAnalyticsHandler(uc.Analytics, opts.BaseURL)
	auth := newAuthHandler(uc.Account, sessions, provider, opts.SecureCookies, opts.LoginRedirectURL)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.With(rateLimit(opts.RateLimitRequests, opts.RateLimitWindow)).
			Post("/shorten", uh.shortenURL)

		r.Route("/analytics", func(r chi.Router) {
			r.Use(requireAccount)

			r.Get("/overall", ah.overallAnalytics)
			r.Get("/topic/{topic}", ah.topicAnalytics)
			r.Get("/{alias}", ah.aliasAnalytics)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google", auth.login)
		r.Get("/google/callback", auth.callback)
		r.Get("/login-failed", auth.loginFailed)
		r.With(requireAccount).Get("/success", auth.success)
		r.Get("/logout", auth.logout)
	})

	r.Get("/{alias}", uh.redirect)

	return r
}
