package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/feed"
	"github.com/tartampluch/go-age/internal/metrics"
)

// Server exposes the age engine, the contacts decoder and the birthday feed
// over HTTP.
type Server struct {
	Addr     string
	Origins  []string // CORS allow-list
	Engine   *engine.Engine
	Clock    engine.Clock   // Source of "today" when a request omits the reference
	Location *time.Location // Zone "today" is taken in
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// Contacts decodes uploaded vCards. Calendar is nil when no feed is
	// configured, in which case /calendar.ics is not routed.
	Contacts *feed.Generator
	Calendar *CalendarCache
}

// New builds a Server from the runtime settings.
func New(s *config.Settings, eng *engine.Engine, m *metrics.Metrics) *Server {
	srv := &Server{
		Addr:     s.Addr(),
		Origins:  s.CORSOrigins,
		Engine:   eng,
		Clock:    engine.RealClock{},
		Location: s.Location(),
		Metrics:  m,
		Logger:   slog.Default(),
	}
	srv.Contacts = &feed.Generator{Clock: srv.Clock, Location: srv.Location, Engine: eng}
	if s.FeedEnabled() {
		srv.Calendar = NewCalendarCache()
	}
	return srv
}

// Handler returns the routed HTTP handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(s.logger()))
	r.Use(Recovery(s.logger()))
	r.Use(Latency(s.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{config.HeaderAccept, config.HeaderContentType, config.HeaderRequestID},
		ExposedHeaders:   []string{config.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           config.CORSMaxAge,
	}))
	r.Use(middleware.GetHead)

	r.Get(config.RouteHealth, s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, config.RouteMetrics, s.Metrics.Handler())
	}
	if s.Calendar != nil {
		r.Method(http.MethodGet, config.RouteCalendar, s.Calendar)
	}

	r.Route(config.RouteAPI, func(r chi.Router) {
		r.Use(BodyLimit(config.MaxRequestBodySize))
		r.Post(config.RouteCalculateAge, s.handleCalculateAge)
		r.Post(config.RouteContactAges, s.handleContactAges)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, config.HTTPMsgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, config.HTTPMsgMethodNotAll)
	})

	return r
}

// Start listens on Addr and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.logger().Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger().Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) ageEngine() *engine.Engine {
	if s.Engine == nil {
		return engine.New(engine.LeapDayFeb28)
	}
	return s.Engine
}

func (s *Server) today() engine.CalendarDate {
	clock := s.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	return engine.Today(clock, s.Location)
}
