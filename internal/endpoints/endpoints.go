// Package endpoints maps logical upstream operations to fully resolved URLs.
package endpoints

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the root every template is resolved against.
const DefaultBaseURL = "https://www.sofascore.com/api/v1"

// Configuration errors. They are never retried.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParam     = errors.New("missing parameter")
)

// Logical operation names.
const (
	OpEvent                    = "event"
	OpEventIncidents           = "event-incidents"
	OpTeamResults              = "team-results"
	OpTeamFixtures             = "team-fixtures"
	OpPlayerResults            = "player-results"
	OpManagerResults           = "manager-results"
	OpRefereeResults           = "referee-results"
	OpVenueResults             = "venue-results"
	OpVenueFixtures            = "venue-fixtures"
	OpUniqueTournamentResults  = "unique-tournament-results"
	OpUniqueTournamentFixtures = "unique-tournament-fixtures"
	OpScheduledEvents          = "scheduled-events"
)

var templates = map[string]string{
	OpEvent:                    "/event/{event_id}",
	OpEventIncidents:           "/event/{event_id}/incidents",
	OpTeamResults:              "/team/{team_id}/events/last/{page}",
	OpTeamFixtures:             "/team/{team_id}/events/next/{page}",
	OpPlayerResults:            "/player/{player_id}/events/last/{page}",
	OpManagerResults:           "/manager/{manager_id}/events/last/{page}",
	OpRefereeResults:           "/referee/{referee_id}/events/last/{page}",
	OpVenueResults:             "/venue/{venue_id}/events/all/last/{page}",
	OpVenueFixtures:            "/venue/{venue_id}/events/all/next/{page}",
	OpUniqueTournamentResults:  "/unique-tournament/{unique_tournament_id}/season/{season_id}/events/last/{page}",
	OpUniqueTournamentFixtures: "/unique-tournament/{unique_tournament_id}/season/{season_id}/events/next/{page}",
	OpScheduledEvents:          "/sport/{sport}/scheduled-events/{date}",
}

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Params holds placeholder values for a template.
type Params map[string]string

// Resolver substitutes parameters into operation templates.
type Resolver struct {
	base string
}

// NewResolver creates a resolver rooted at base. An empty base uses
// DefaultBaseURL.
func NewResolver(base string) *Resolver {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Resolver{base: base}
}

// Resolve returns the URL for op. Values are path-escaped. Extra params are
// ignored; a placeholder without a value is ErrMissingParam.
func (r *Resolver) Resolve(op string, params Params) (string, error) {
	tmpl, ok := templates[op]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	var missing []string
	path := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s requires %s", ErrMissingParam, op, strings.Join(missing, ", "))
	}
	return r.base + path, nil
}
