// Package api exposes the alarm service over HTTP.
//
//	GET    /api/alarms      -> ["07:30", ...]
//	POST   /api/alarms      {"time":"07:30","message":"..."}
//	DELETE /api/alarms      {"time":"07:30"}
//	DELETE /api/alarms/all
//	GET    /healthz
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aatumaykin/cronalarm/internal/alarm"
	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/logger"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 64 << 10

// Alarms is the part of the alarm service the API uses.
type Alarms interface {
	Times(ctx context.Context) ([]string, error)
	Set(ctx context.Context, hour, minute int, message string) (alarm.Alarm, error)
	Cancel(ctx context.Context, hour, minute int) error
	CancelAll(ctx context.Context) (int, error)
}

// Options configures the handler.
type Options struct {
	// MetricsPath serves Prometheus metrics from Gatherer when set.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// Server routes API requests to the alarm service.
type Server struct {
	alarms Alarms
	logger *logger.Logger
	mux    *http.ServeMux
}

type alarmRequest struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// NewServer creates the HTTP handler.
func NewServer(alarms Alarms, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		alarms: alarms,
		logger: log.With(logger.Field{Key: "component", Value: "api"}),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/alarms", s.handleList)
	s.mux.HandleFunc("POST /api/alarms", s.handleSet)
	s.mux.HandleFunc("DELETE /api/alarms", s.handleCancel)
	s.mux.HandleFunc("DELETE /api/alarms/all", s.handleCancelAll)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	if opts.MetricsPath != "" {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		s.mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("request served",
		logger.Field{Key: "method", Value: r.Method},
		logger.Field{Key: "path", Value: r.URL.Path},
		logger.Field{Key: "duration", Value: time.Since(start)},
	)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	times, err := s.alarms.Times(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if times == nil {
		times = []string{}
	}
	s.writeJSON(w, http.StatusOK, times)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if err := readJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	hour, minute, err := alarm.ParseClock(req.Time)
	if err != nil {
		s.fail(w, err)
		return
	}

	if _, err := s.alarms.Set(r.Context(), hour, minute, req.Message); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if err := readJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	hour, minute, err := alarm.ParseClock(req.Time)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.alarms.Cancel(r.Context(), hour, minute); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) handleCancelAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.alarms.CancelAll(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "success", Count: &n})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, jobstore.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, jobstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobstore.ErrExternalRead), errors.Is(err, jobstore.ErrExternalWrite):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err)
	}
	s.writeJSON(w, status, statusResponse{Status: "error", Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", err)
	}
}
