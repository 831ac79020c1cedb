package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

func TestMetricsSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/public/webinars", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/public/events", http.StatusOK, 30*time.Millisecond)
	m.ObserveStoreOperation("find", "webinars", time.Millisecond, nil)
	m.ObserveStoreOperation("insert", "reviews", time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.0001)
	assert.Equal(t, uint64(2), snap.StoreOperations)
	assert.Equal(t, uint64(1), snap.StoreErrors)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsHandlerExposesNamespace(t *testing.T) {
	m := NewMetricsService()
	m.RecordSubmission("review")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `mentor_site_public_submissions_total{kind="review"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordSubmission("contact")
	m.RecordNotification("sent")
	assert.Zero(t, m.Snapshot().CacheHits)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotificationServiceCountsSubmissionsWhenDisabled(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewNotificationService(&recordingDispatcher{}, "Owner", "", metrics, nil)

	svc.ReviewSubmitted(context.Background(), &models.Review{Name: "Budi"})
	svc.ContactReceived(context.Background(), &models.ContactMessage{Name: "Sari"})
	svc.ContactReceived(context.Background(), &models.ContactMessage{Name: "Rina"})

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.ReviewsSubmitted)
	assert.Equal(t, uint64(2), snap.MessagesReceived)
}
