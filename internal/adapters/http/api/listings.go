package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
)

// ListingDependencies defines the listing operations the handler needs.
type ListingDependencies interface {
	Results(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Fixtures(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Events(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
}

type listFunc func(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)

// subjectBuilders maps a path collection onto a subject constructor.
var subjectBuilders = map[string]func(id string, r *http.Request) provider.Subject{
	"teams":    func(id string, _ *http.Request) provider.Subject { return provider.Team(id) },
	"players":  func(id string, _ *http.Request) provider.Subject { return provider.Player(id) },
	"managers": func(id string, _ *http.Request) provider.Subject { return provider.Manager(id) },
	"referees": func(id string, _ *http.Request) provider.Subject { return provider.Referee(id) },
	"venues":   func(id string, _ *http.Request) provider.Subject { return provider.Venue(id) },
	"tournaments": func(id string, r *http.Request) provider.Subject {
		return provider.Tournament(id, r.URL.Query().Get("season"))
	},
}

// ListingHandler serves the paginated event listings of every subject kind.
type ListingHandler struct {
	deps ListingDependencies
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(deps ListingDependencies) *ListingHandler {
	return &ListingHandler{deps: deps}
}

// Register mounts /{collection}/{id}/results|fixtures|events.
func (h *ListingHandler) Register(r chi.Router) {
	for collection, build := range subjectBuilders {
		r.Route("/"+collection+"/{id}", func(r chi.Router) {
			r.Get("/results", h.handle("results", build, h.deps.Results))
			r.Get("/fixtures", h.handle("fixtures", build, h.deps.Fixtures))
			r.Get("/events", h.handle("events", build, h.deps.Events))
		})
	}
}

type listingResponse struct {
	Events []model.EventSummary `json:"events"`
	Count  int                  `json:"count"`
}

func newListingResponse(evs []model.RawEventRecord) listingResponse {
	return listingResponse{Events: model.Summarize(evs), Count: len(evs)}
}

func (h *ListingHandler) handle(name string, build func(string, *http.Request) provider.Subject, list listFunc) http.HandlerFunc {
	op := "api.list_" + name
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		evs, err := list(r.Context(), build(chi.URLParam(r, "id"), r), q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newListingResponse(evs))
	}
}

// parseQuery reads max, before and after. max=all or a negative value
// disables the cap; bounds accept RFC 3339 or YYYY-MM-DD (UTC midnight).
func parseQuery(r *http.Request) (service.Query, error) {
	var q service.Query
	v := r.URL.Query()

	if raw := strings.TrimSpace(v.Get("max")); raw != "" {
		if strings.EqualFold(raw, "all") {
			q.MaxItems = -1
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return q, fmt.Errorf("invalid max %q", raw)
			}
			q.MaxItems = n
		}
	}
	var err error
	if q.Before, err = parseBound(v.Get("before")); err != nil {
		return q, fmt.Errorf("invalid before: %w", err)
	}
	if q.After, err = parseBound(v.Get("after")); err != nil {
		return q, fmt.Errorf("invalid after: %w", err)
	}
	if q.Before != nil && q.After != nil && !q.After.Before(*q.Before) {
		return q, fmt.Errorf("after must be earlier than before")
	}
	return q, nil
}

func parseBound(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := provider.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
