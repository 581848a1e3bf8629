// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	service "github.com/okian/orientbot/internal/app"
	"github.com/okian/orientbot/pkg/logger"
)

const defaultMaxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Evaluator
	Classifier
	TrackLister
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	tracksHandler   *TracksHandler
	evaluateHandler *EvaluateHandler
	feedbackHandler *FeedbackHandler

	limiter      *rateLimiter
	maxBodyBytes int64
	logger       logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit limits each client address to rps requests per second with
// the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = newRateLimiter(rps, burst)
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.tracksHandler = NewTracksHandler(deps)
	s.evaluateHandler = NewEvaluateHandler(deps, s.maxBodyBytes)
	s.feedbackHandler = NewFeedbackHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	router.Handler(http.MethodGet, "/metrics", s.healthHandler.MetricsHandler())
	router.HandlerFunc(http.MethodGet, "/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	router.HandlerFunc(http.MethodGet, "/tracks", MetricsMiddleware(s.tracksHandler.HandleListTracks, "tracks"))
	router.HandlerFunc(http.MethodGet, "/tracks/:track/subjects", MetricsMiddleware(s.tracksHandler.HandleSubjects, "subjects"))
	router.HandlerFunc(http.MethodPost, "/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	router.HandlerFunc(http.MethodPost, "/feedback", MetricsMiddleware(s.feedbackHandler.HandleFeedback, "feedback"))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", ErrNotFound))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

// Handler wraps next with the request id and rate limiting middleware. The
// limiter's cleanup loop stops when ctx is done.
func (s *Server) Handler(ctx context.Context, next http.Handler) http.Handler {
	h := next
	if s.limiter != nil {
		go s.limiter.cleanupLoop(ctx)
		h = s.limiter.middleware(h)
	}
	return RequestIDMiddleware(s.logger, h)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody decodes a size limited JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// writeServiceError maps a dependency failure to a response.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, errors.New("internal error"), err))
}
