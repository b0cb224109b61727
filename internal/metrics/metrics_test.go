package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

func TestObserveAgeRequest_Labels(t *testing.T) {
	m := New()

	m.ObserveAgeRequest(nil)
	m.ObserveAgeRequest(nil)
	m.ObserveAgeRequest(fmt.Errorf("%w: bad shape", engine.ErrMalformedInput))
	m.ObserveAgeRequest(fmt.Errorf("wrapped: %w", engine.ErrInvalidRange))
	m.ObserveAgeRequest(errors.New("disk on fire"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AgeRequests.WithLabelValues(config.MetricResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgeRequests.WithLabelValues(config.MetricResultMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgeRequests.WithLabelValues(config.MetricResultRange)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgeRequests.WithLabelValues(config.MetricResultError)))
}

func TestObserveSync_KeepsLastGoodGauges(t *testing.T) {
	m := New()

	m.ObserveSync(time.Second, 12, 2, nil)
	m.ObserveSync(time.Second, 0, 0, errors.New("network down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedSyncs.WithLabelValues(config.MetricResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedSyncs.WithLabelValues(config.MetricResultError)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.FeedContacts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BirthdaysToday))
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.ObserveAgeRequest(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AgeRequests.WithLabelValues(config.MetricResultOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AgeRequests.WithLabelValues(config.MetricResultOK)))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveEndpointLatency("/api/calculate-age", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.RouteMetrics, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goage_endpoint_latency_seconds_bucket")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
