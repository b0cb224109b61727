package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/feed"
)

// ageRequest is the body of POST /api/calculate-age.
// Reference is optional and defaults to today.
type ageRequest struct {
	DOB       string `json:"dob"`
	Reference string `json:"reference,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type contactsResponse struct {
	Contacts []feed.Entry `json:"contacts"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: config.StatusOK})
}

func (s *Server) handleCalculateAge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger().With(
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRequestID, RequestIDFrom(ctx),
	)

	var req ageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if status, msg := bodyError(err); status != http.StatusBadRequest {
			writeError(w, status, msg)
			return
		}
		s.reject(ctx, log, w, fmt.Errorf("%w: %s", engine.ErrMalformedInput, config.ErrBodyDecode))
		return
	}

	report, err := s.calculate(req)
	if err != nil {
		s.reject(ctx, log, w, err)
		return
	}

	s.observe(nil)
	log.DebugContext(ctx, config.MsgAgeComputed,
		config.LogKeyDOB, report.BirthDate.String(),
		config.LogKeyRef, report.ReferenceDate.String(),
		config.LogKeyYears, report.Years,
	)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) calculate(req ageRequest) (engine.Report, error) {
	if req.DOB == "" {
		return engine.Report{}, fmt.Errorf("%w: %s", engine.ErrMalformedInput, config.ErrDOBMissing)
	}
	birth, err := engine.ParseDate(req.DOB)
	if err != nil {
		return engine.Report{}, err
	}

	reference := s.today()
	if req.Reference != "" {
		if reference, err = engine.ParseDate(req.Reference); err != nil {
			return engine.Report{}, fmt.Errorf("%s: %w", config.ErrReference, err)
		}
	}

	return s.ageEngine().ComputeAge(birth, reference)
}

// reject answers 400 for input errors and 500 for anything else.
func (s *Server) reject(ctx context.Context, log *slog.Logger, w http.ResponseWriter, err error) {
	s.observe(err)
	if !engine.IsInputError(err) {
		log.ErrorContext(ctx, config.ErrCalculationLimit, config.LogKeyError, err)
		writeError(w, http.StatusInternalServerError, config.ErrInternal)
		return
	}
	log.InfoContext(ctx, config.MsgAgeRejected, config.LogKeyError, err.Error())
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) observe(err error) {
	if s.Metrics != nil {
		s.Metrics.ObserveAgeRequest(err)
	}
}

func (s *Server) handleContactAges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		status, msg := bodyError(err)
		writeError(w, status, msg)
		return
	}

	gen := s.Contacts
	if gen == nil {
		gen = &feed.Generator{Clock: s.Clock, Location: s.Location, Engine: s.Engine}
	}

	entries, err := gen.Decode(ctx, bytes.NewReader(body))
	if err != nil {
		s.logger().ErrorContext(ctx, config.ErrVCardParse,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, RequestIDFrom(ctx),
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.ErrInternal)
		return
	}

	writeJSON(w, http.StatusOK, contactsResponse{Contacts: entries})
}

// bodyError maps a body read failure to a status and client message.
func bodyError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, config.ErrBodyTooLarge
	}
	return http.StatusBadRequest, config.ErrBodyDecode
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
