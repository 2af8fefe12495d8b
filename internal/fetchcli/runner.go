package fetchcli

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Facade is the subset of the service the tool drives.
type Facade interface {
	Results(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Fixtures(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	Events(ctx context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error)
	EventPeriods(ctx context.Context, eventID string) (periods.Periods, bool, error)
	EventIncidents(ctx context.Context, eventID string) ([]incident.Incident, error)
	ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error)
}

// Run executes cfg against f and writes the JSON result to w.
func Run(ctx context.Context, cfg *Config, f Facade, w io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	log := logger.NamedOrNop("fetch")

	out, err := execute(ctx, cfg, f)
	if err != nil {
		return err
	}
	log.Debug(ctx, "Operation finished", logger.String("op", cfg.Op), logger.String("id", cfg.ID))

	enc := json.NewEncoder(w)
	if cfg.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

type periodsOutput struct {
	Applicable bool             `json:"applicable"`
	Periods    *periods.Periods `json:"periods,omitempty"`
}

func execute(ctx context.Context, cfg *Config, f Facade) (any, error) {
	switch cfg.Op {
	case OpResults, OpFixtures, OpEvents:
		q, err := cfg.query()
		if err != nil {
			return nil, err
		}
		list := f.Events
		switch cfg.Op {
		case OpResults:
			list = f.Results
		case OpFixtures:
			list = f.Fixtures
		}
		evs, err := list(ctx, cfg.subject(), q)
		if err != nil {
			return nil, err
		}
		return model.Summarize(evs), nil
	case OpPeriods:
		p, ok, err := f.EventPeriods(ctx, cfg.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return periodsOutput{}, nil
		}
		return periodsOutput{Applicable: true, Periods: &p}, nil
	case OpIncidents:
		return f.EventIncidents(ctx, cfg.ID)
	default:
		evs, err := f.ScheduledEvents(ctx, cfg.Sport, cfg.Date)
		if err != nil {
			return nil, err
		}
		return model.Summarize(evs), nil
	}
}

// ShowHelp prints usage information for the fetch tool.
func ShowHelp() {
	os.Stdout.WriteString(`Sport Index Fetch Tool
======================

Runs one read operation against the upstream API and prints JSON.

Usage:
  go run ./cmd/fetch -op <operation> [options]

Operations:
  results | fixtures | events   listings of a subject (-kind, -id)
  periods | incidents           details of one event (-id)
  scheduled                     a sport's events on a day (-sport, -date)

Options:
  -kind string     team, player, manager, referee, venue or tournament (default "team")
  -id string       subject or event id
  -season string   season id, tournaments only
  -sport string    sport slug, e.g. football
  -date string     YYYY-MM-DD
  -max int         listing cap; 0 uses the configured default, -1 disables it
  -before string   exclusive upper bound, RFC 3339 or YYYY-MM-DD
  -after string    exclusive lower bound, RFC 3339 or YYYY-MM-DD
  -pretty          indent the output
  -help            show this help message

Configuration comes from the same SPORTINDEX_* variables as the server.

Examples:
  go run ./cmd/fetch -op events -kind team -id 2817 -max 10
  go run ./cmd/fetch -op incidents -id 11352376 -pretty
  go run ./cmd/fetch -op scheduled -sport football -date 2024-05-01
`)
}
