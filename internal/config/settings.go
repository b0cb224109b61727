package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds the runtime configuration of the server process.
// Fields are populated from environment variables.
type Settings struct {
	// Server
	Host string
	Port int

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// Timezone decides which calendar date "today" is when a request omits
	// the reference date.
	Timezone string

	// LeapDayPolicy is feb28 or mar1.
	LeapDayPolicy string

	// Contacts feed
	FeedMode       string // "", local or web
	FeedPath       string
	FeedURL        string
	FeedUser       string
	FeedPassword   string
	FeedRefreshMin int
	FeedReminder   string // ISO8601 duration, e.g. "-P1D"

	// parseErrs holds values Load could not convert; Validate reports them.
	parseErrs []error
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Settings, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	var env envReader
	s := &Settings{
		Host:           getEnv(EnvHost, DefaultHost),
		Port:           env.integer(EnvPort, DefaultPort),
		LogLevel:       strings.ToLower(getEnv(EnvLogLevel, DefaultLogLevel)),
		LogFormat:      strings.ToLower(getEnv(EnvLogFormat, DefaultLogFormat)),
		CORSOrigins:    splitList(getEnv(EnvCORSOrigins, DefaultCORSOrigins)),
		Timezone:       getEnv(EnvTimezone, DefaultTimezone),
		LeapDayPolicy:  strings.ToLower(getEnv(EnvLeapDayPolicy, DefaultLeapPolicy)),
		FeedMode:       strings.ToLower(getEnv(EnvFeedMode, SourceModeNone)),
		FeedPath:       getEnv(EnvFeedPath, ""),
		FeedURL:        getEnv(EnvFeedURL, ""),
		FeedUser:       getEnv(EnvFeedUser, ""),
		FeedPassword:   getEnv(EnvFeedPassword, ""),
		FeedRefreshMin: env.integer(EnvFeedRefresh, DefaultRefreshMin),
		FeedReminder:   getEnv(EnvFeedReminder, ""),
		parseErrs:      env.errs,
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// Validate checks every field and reports all problems at once.
func (s *Settings) Validate() error {
	errs := append([]error(nil), s.parseErrs...)

	if s.Port < MinPort || s.Port > MaxPort {
		errs = append(errs, fmt.Errorf("%s, got %d", ErrPortRange, s.Port))
	}

	switch s.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("%s; got %q", ErrLogLevel, s.LogLevel))
	}

	switch s.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		errs = append(errs, fmt.Errorf("%s; got %q", ErrLogFormat, s.LogFormat))
	}

	if _, err := time.LoadLocation(s.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("%s: %q", ErrTimezone, s.Timezone))
	}

	switch s.LeapDayPolicy {
	case LeapPolicyFeb28, LeapPolicyMar1:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrLeapPolicy, s.LeapDayPolicy))
	}

	switch s.FeedMode {
	case SourceModeNone:
	case SourceModeLocal:
		if s.FeedPath == "" {
			errs = append(errs, errors.New(ErrLocalPathEmpty))
		}
	case SourceModeWeb:
		if s.FeedURL == "" {
			errs = append(errs, errors.New(ErrWebURLEmpty))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.FeedMode))
	}

	if s.FeedMode != SourceModeNone && s.FeedRefreshMin <= 0 {
		errs = append(errs, errors.New(ErrRefreshInterval))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address of the HTTP server.
func (s *Settings) Addr() string {
	return s.Host + AddrSeparator + strconv.Itoa(s.Port)
}

// Location returns the configured time zone. Validate guarantees it loads.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RefreshInterval returns the feed refresh period.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.FeedRefreshMin) * time.Minute
}

// FeedEnabled reports whether a contacts source is configured.
func (s *Settings) FeedEnabled() bool {
	return s.FeedMode != SourceModeNone
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader converts integer variables and remembers the ones that do not parse.
type envReader struct {
	errs []error
}

func (r *envReader) integer(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s %s, got %q", key, ErrEnvNotInteger, value))
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ListSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
