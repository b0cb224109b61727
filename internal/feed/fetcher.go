package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-age/internal/config"
)

// Fetcher retrieves a vCard export from a remote address.
type Fetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64 // Bytes read from a response at most; config.MaxHTTPResponseSize when zero
}

// NewHTTPFetcher returns an HTTPFetcher with the default timeout and size limit.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: config.HTTPTimeout},
		MaxSize: config.MaxHTTPResponseSize,
	}
}

// Fetch downloads the vCard export at rawURL. Only http and https are
// accepted. The returned body is truncated at MaxSize bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, user, pass string) (io.ReadCloser, error) {
	safeURL, err := loggableURL(rawURL)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.DebugContext(ctx, config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.WarnContext(ctx, config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	log.InfoContext(ctx, config.MsgFetchDone, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	limit := f.MaxSize
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, limit),
		Closer: resp.Body,
	}, nil
}

// loggableURL validates rawURL and strips its query and credentials so it can
// be logged without leaking tokens.
func loggableURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	return u.Scheme + "://" + u.Host + u.Path, nil
}

// limitedReadCloser reads through a limit while closing the underlying body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
