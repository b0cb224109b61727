package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/config"
)

// -----------------------------------------------------------------------------
// Unit Tests (Handler Logic)
// -----------------------------------------------------------------------------

func TestCalendar_ServingContent(t *testing.T) {
	cache := NewCalendarCache()
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	cache.Update(expectedICS)

	w := httptest.NewRecorder()
	cache.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

func TestCalendar_ETagRevalidation(t *testing.T) {
	cache := NewCalendarCache()
	cache.Update([]byte("DATA_VERSION_1"))

	w1 := httptest.NewRecorder()
	cache.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
	req.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()
	cache.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusNotModified, w2.Code)
	assert.Empty(t, w2.Body.Bytes(), "Body must be empty on 304 Not Modified")

	// A new version invalidates the old tag.
	cache.Update([]byte("DATA_VERSION_2"))
	w3 := httptest.NewRecorder()
	cache.ServeHTTP(w3, req)
	assert.Equal(t, http.StatusOK, w3.Code)
}

func TestCalendar_IfModifiedSince(t *testing.T) {
	published := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCalendarCache()
	cache.now = func() time.Time { return published }
	cache.Update([]byte("DATA"))

	tests := []struct {
		name  string
		since string
		want  int
	}{
		{"Client copy is current", published.Format(http.TimeFormat), http.StatusNotModified},
		{"Client copy is newer", published.Add(time.Hour).Format(http.TimeFormat), http.StatusNotModified},
		{"Client copy is stale", published.Add(-time.Hour).Format(http.TimeFormat), http.StatusOK},
		{"Unparsable header is ignored", "yesterday", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
			req.Header.Set(config.HeaderIfModifiedSince, tt.since)
			w := httptest.NewRecorder()

			cache.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCalendar_Head(t *testing.T) {
	cache := NewCalendarCache()
	cache.Update([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR"))

	w := httptest.NewRecorder()
	cache.ServeHTTP(w, httptest.NewRequest(http.MethodHead, config.RouteCalendar, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(config.HeaderETag))
	assert.Empty(t, w.Body.Bytes())
}

func TestCalendar_Initializing(t *testing.T) {
	cache := NewCalendarCache()
	// Update is intentionally never called.

	w := httptest.NewRecorder()
	cache.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))

	assert.False(t, cache.Ready())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, config.RetryAfterSeconds, w.Header().Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestCalendar_RaceCondition runs writers and readers concurrently.
// Run this with `go test -race`.
func TestCalendar_RaceCondition(t *testing.T) {
	cache := NewCalendarCache()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				cache.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				cache.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}
