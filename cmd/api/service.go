package main

import (
	"io"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"library/internal/config"
	"library/internal/library"
	"library/internal/platform/metrics"
)

// newService builds the library service. Its notification diagnostics go to
// diag unprefixed and unstamped, one line per event.
func newService(cfg config.Config, db library.DatabaseService, reviews library.ReviewService, diag io.Writer, reg prometheus.Registerer) *library.Service {
	return library.NewService(db, reviews,
		library.WithLogger(log.New(diag, "", 0)),
		library.WithMetrics(metrics.New(reg)),
		library.WithDeliveryAttempts(cfg.NotifyMaxAttempts),
	)
}
