// Package api exposes the sport index read operations over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
	"github.com/JolanDUBOIS/sport-index/internal/endpoints"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Results(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Fixtures(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Events(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)

	EventPeriods(ctx context.Context, eventID string) (periods.Periods, bool, error)
	EventIncidents(ctx context.Context, eventID string) ([]incident.Incident, error)
	ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	listingHandler *ListingHandler
	eventHandler   *EventHandler

	corsOrigins []string
	logger      logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins allows browser calls from the given origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		listingHandler: NewListingHandler(deps),
		eventHandler:   NewEventHandler(deps),
		logger:         logger.NamedOrNop("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router serving every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(s.logger))
	r.Use(MetricsMiddleware)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.statsHandler.HandleStats)
		s.listingHandler.Register(r)
		s.eventHandler.Register(r)
	})
	return r
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

// writeServiceError maps a service error onto a status and error code.
// Upstream failures never reach here; the service degrades them.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, provider.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownSubject),
		errors.Is(err, endpoints.ErrMissingParam):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
