package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"library/internal/config"
	"library/internal/platform/reviews"
	"library/internal/platform/webhook"
	"library/internal/store"
)

const userAgent = "library-service/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	dialer := webhook.NewDialer(cfg.WebhookSigningKey, cfg.WebhookTimeout)

	var db catalogStore
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool := mustOpenDB(ctx, cfg.DatabaseDSN)
		defer pool.Close()
		db = store.NewLibraryPG(pool, dialer.Channel)
	default:
		log.Println("using in-memory store; data is lost on restart")
		db = store.NewMemory()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reviewClient := reviews.NewClient(cfg.ReviewsBaseURL, userAgent, cfg.ReviewsRPS, cfg.ReviewsTimeout)
	svc := newService(cfg, db, reviewClient, os.Stderr, registry)

	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: newRouter(ctx, routerDeps{
			cfg:      cfg,
			store:    db,
			svc:      svc,
			resolve:  dialer.Channel,
			registry: registry,
			logger:   logger,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on %s (store=%s)", cfg.Addr, cfg.StoreDriver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
