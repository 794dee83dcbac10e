package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"library/internal/config"
	"library/internal/entity"
	apphttp "library/internal/http"
	"library/internal/httpx"
	"library/internal/library"
)

const maxRequestBytes = 1 << 20

// catalogStore is what the API needs from a storage backend.
type catalogStore interface {
	library.DatabaseService
	Loans(ctx context.Context, isbn string) ([]entity.Loan, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	cfg      config.Config
	store    catalogStore
	svc      *library.Service
	resolve  apphttp.ChannelResolver
	registry *prometheus.Registry
	logger   *log.Logger
}

func newRouter(ctx context.Context, d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := d.store.(pinger); ok {
			pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := p.Ping(pingCtx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry}))

	apphttp.NewLibraryHandler(d.svc, d.store, d.resolve, d.logger).Register(router)

	limiter := httpx.NewRateLimitMiddleware(ctx, d.cfg.RateLimitRPS, d.cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.logger),
		httpx.RecoveryMiddleware(d.logger),
		httpx.SecurityHeadersMiddleware(d.cfg.EnableHSTS),
		httpx.CORSMiddleware(d.cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
	)
}
