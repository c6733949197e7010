package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tradebook/internal/http/auth"
	"github.com/MrJamesThe3rd/tradebook/internal/http/export"
	"github.com/MrJamesThe3rd/tradebook/internal/http/importfile"
	"github.com/MrJamesThe3rd/tradebook/internal/http/matching"
	"github.com/MrJamesThe3rd/tradebook/internal/http/trade"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// AuthSecret turns on bearer token checks for /api/v1 when set.
	AuthSecret string
}

func New(
	opts Options,
	transactionsV1 *trade.Handler,
	importV1 *importfile.Handler,
	matchingV1 *matching.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.AuthSecret != "" {
			r.Use(auth.Middleware(opts.AuthSecret))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/import", func(r chi.Router) {
			r.Use(middleware.AllowContentType("multipart/form-data"))
			importV1.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			matchingV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
	})

	return router
}
