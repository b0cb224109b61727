package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

// calendarItem stores the rendered feed and its metadata for HTTP caching.
type calendarItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CalendarCache holds the latest birthday feed. It implements feed.Publisher.
type CalendarCache struct {
	// Reads happen on every client poll, writes only once per sync, so an
	// atomic pointer keeps the GET path free of locks.
	item atomic.Pointer[calendarItem]
	now  func() time.Time
}

// NewCalendarCache returns an empty cache. It answers 503 until the first Update.
func NewCalendarCache() *CalendarCache {
	return &CalendarCache{now: time.Now}
}

// Update atomically replaces the served content.
func (c *CalendarCache) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	c.item.Store(&calendarItem{
		data:         data,
		etag:         etag,
		lastModified: c.now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Ready reports whether a calendar has been published.
func (c *CalendarCache) Ready() bool {
	return c.item.Load() != nil
}

// ServeHTTP serves the iCalendar feed with conditional request support.
// Method filtering is left to the router.
func (c *CalendarCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	item := c.item.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if notModified(r, item) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		slog.ErrorContext(r.Context(), config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// notModified evaluates If-None-Match first, then If-Modified-Since.
func notModified(r *http.Request, item *calendarItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
