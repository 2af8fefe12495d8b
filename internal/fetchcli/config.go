// Package fetchcli runs one façade operation from the command line and
// prints its result as JSON.
package fetchcli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
)

// Operations understood by Run.
const (
	OpResults   = "results"
	OpFixtures  = "fixtures"
	OpEvents    = "events"
	OpPeriods   = "periods"
	OpIncidents = "incidents"
	OpScheduled = "scheduled"
)

// ErrUsage reports a bad flag combination.
var ErrUsage = errors.New("usage")

// Config holds one invocation.
type Config struct {
	Op     string
	Kind   string
	ID     string
	Season string
	Sport  string
	Date   string
	Max    int
	Before string
	After  string
	Indent bool
}

func (c *Config) validate() error {
	switch c.Op {
	case OpResults, OpFixtures, OpEvents:
		if c.ID == "" {
			return fmt.Errorf("%w: -id is required for %s", ErrUsage, c.Op)
		}
		if _, ok := subjectKinds[strings.ToLower(c.Kind)]; !ok {
			return fmt.Errorf("%w: unknown -kind %q", ErrUsage, c.Kind)
		}
	case OpPeriods, OpIncidents:
		if c.ID == "" {
			return fmt.Errorf("%w: -id is required for %s", ErrUsage, c.Op)
		}
	case OpScheduled:
		if c.Sport == "" || c.Date == "" {
			return fmt.Errorf("%w: -sport and -date are required for %s", ErrUsage, c.Op)
		}
	default:
		return fmt.Errorf("%w: unknown -op %q", ErrUsage, c.Op)
	}
	return nil
}

var subjectKinds = map[string]func(c *Config) provider.Subject{
	string(provider.KindTeam):    func(c *Config) provider.Subject { return provider.Team(c.ID) },
	string(provider.KindPlayer):  func(c *Config) provider.Subject { return provider.Player(c.ID) },
	string(provider.KindManager): func(c *Config) provider.Subject { return provider.Manager(c.ID) },
	string(provider.KindReferee): func(c *Config) provider.Subject { return provider.Referee(c.ID) },
	string(provider.KindVenue):   func(c *Config) provider.Subject { return provider.Venue(c.ID) },
	string(provider.KindTournament): func(c *Config) provider.Subject {
		return provider.Tournament(c.ID, c.Season)
	},
}

func (c *Config) subject() provider.Subject {
	return subjectKinds[strings.ToLower(c.Kind)](c)
}

func (c *Config) query() (service.Query, error) {
	q := service.Query{MaxItems: c.Max}
	var err error
	if q.Before, err = parseBound(c.Before); err != nil {
		return q, fmt.Errorf("%w: -before: %w", ErrUsage, err)
	}
	if q.After, err = parseBound(c.After); err != nil {
		return q, fmt.Errorf("%w: -after: %w", ErrUsage, err)
	}
	return q, nil
}

func parseBound(raw string) (*time.Time, error) {
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
