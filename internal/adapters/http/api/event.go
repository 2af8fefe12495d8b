package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
)

// EventDependencies defines the per-event and per-day operations.
type EventDependencies interface {
	EventPeriods(ctx context.Context, eventID string) (periods.Periods, bool, error)
	EventIncidents(ctx context.Context, eventID string) ([]incident.Incident, error)
	ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error)
}

// EventHandler serves event details and daily schedules.
type EventHandler struct {
	deps EventDependencies
}

// NewEventHandler creates a new event handler.
func NewEventHandler(deps EventDependencies) *EventHandler {
	return &EventHandler{deps: deps}
}

// Register mounts the event and schedule routes.
func (h *EventHandler) Register(r chi.Router) {
	r.Get("/events/{id}/periods", h.HandlePeriods)
	r.Get("/events/{id}/incidents", h.HandleIncidents)
	r.Get("/sports/{sport}/scheduled/{date}", h.HandleScheduled)
}

type incidentsResponse struct {
	Incidents []incident.Incident `json:"incidents"`
	Count     int                 `json:"count"`
}

// HandlePeriods handles GET /events/{id}/periods. Events without a period
// structure answer 404 not_applicable.
func (h *EventHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	p, ok, err := h.deps.EventPeriods(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_applicable", NewKind("api.event_periods", ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleIncidents handles GET /events/{id}/incidents.
func (h *EventHandler) HandleIncidents(w http.ResponseWriter, r *http.Request) {
	incs, err := h.deps.EventIncidents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incidentsResponse{Incidents: incs, Count: len(incs)})
}

// HandleScheduled handles GET /sports/{sport}/scheduled/{date}.
func (h *EventHandler) HandleScheduled(w http.ResponseWriter, r *http.Request) {
	evs, err := h.deps.ScheduledEvents(r.Context(), chi.URLParam(r, "sport"), chi.URLParam(r, "date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListingResponse(evs))
}
