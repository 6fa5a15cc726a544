package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/http/handlers"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/http/middleware"
)

type routeDeps struct {
	Imports        *handlers.ImportHandler
	Dispatch       *handlers.DispatchHandler
	Health         *handlers.HealthHandler
	AllowedOrigins []string
	Log            *zap.Logger
}

func newRouter(d routeDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	uploads := handlers.NewRateLimiter(20, time.Minute)
	dispatches := handlers.NewRateLimiter(5, time.Minute)

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/imports", func(r chi.Router) {
		r.Post("/preview", uploads.Limit(d.Imports.Preview))
		r.Post("/", d.Imports.Confirm)
		r.Post("/file", uploads.Limit(d.Imports.ImportFile))
		r.Get("/template", d.Imports.Template)
	})
	r.Get("/contact-lists", d.Imports.ListContactLists)

	r.Route("/dispatch", func(r chi.Router) {
		r.Post("/", dispatches.Limit(d.Dispatch.Dispatch))
		r.Post("/async", dispatches.Limit(d.Dispatch.Schedule))
	})

	return r
}
