package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library/internal/config"
	"library/internal/entity"
	"library/internal/library"
	"library/internal/store"
	"library/internal/testutil"
)

type failingPingStore struct {
	*store.Memory
}

func (failingPingStore) Ping(context.Context) error { return errors.New("down") }

func newTestRouter(t *testing.T, db catalogStore) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	registry := prometheus.NewRegistry()
	logger := log.New(io.Discard, "", 0)
	svc := newService(config.Config{NotifyMaxAttempts: library.DefaultDeliveryAttempts}, db, new(testutil.MockReviewService), io.Discard, registry)
	return newRouter(ctx, routerDeps{
		cfg:      config.Config{RateLimitRPS: 100, RateLimitBurst: 100},
		store:    db,
		svc:      svc,
		resolve:  func(string) (entity.NotificationService, error) { return new(testutil.MockNotifier), nil },
		registry: registry,
		logger:   logger,
	})
}

func TestRouter_Probes(t *testing.T) {
	router := newTestRouter(t, store.NewMemory())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	failing := newTestRouter(t, failingPingStore{store.NewMemory()})
	w = httptest.NewRecorder()
	failing.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_MetricsReflectOperations(t *testing.T) {
	router := newTestRouter(t, store.NewMemory())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, testutil.NewRequest(http.MethodPost, "/books", map[string]string{
		"isbn": testutil.TestISBN, "title": "TITLE", "author": "AUTHOR",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `library_operations_total{op="add_book",result="ok"} 1`))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, store.NewMemory())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@localhost:5432/library", redactDSN("postgres://user:pw@localhost:5432/library"))
	assert.Equal(t, "no-scheme", redactDSN("no-scheme"))
}

func TestNewService_DiagnosticsAreExactLines(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	notifier := new(testutil.MockNotifier)
	notifier.On("SendNotification", mock.Anything, mock.Anything).Return(errors.New("refused"))
	require.NoError(t, db.AddBook(ctx, testutil.TestISBN, testutil.NewTestBook()))
	require.NoError(t, db.RegisterUser(ctx, testutil.TestUserID, testutil.NewTestUser(notifier)))

	reviews := new(testutil.MockReviewService)
	reviews.On("GetReviewsForBook", mock.Anything, testutil.TestISBN).Return([]string{"Great"}, nil)
	reviews.On("Close").Return(nil)

	var diag bytes.Buffer
	svc := newService(config.Config{NotifyMaxAttempts: 2}, db, reviews, &diag, prometheus.NewRegistry())

	err := svc.NotifyUserWithBookReviews(ctx, testutil.TestISBN, testutil.TestUserID)
	assert.EqualError(t, err, "Notification failed!")
	assert.Equal(t, "Notification failed! Retrying attempt 1/2\nNotification failed! Retrying attempt 2/2\n", diag.String())
}
