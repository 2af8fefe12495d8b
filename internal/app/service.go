// Package service provides the best-effort domain façade used by the HTTP API
// and the CLI. Upstream failures degrade to empty or partial results; bad
// arguments and cancellation are returned to the caller.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
	"github.com/JolanDUBOIS/sport-index/internal/domain/walker"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
	"github.com/JolanDUBOIS/sport-index/internal/transport"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxEvents = 50
)

// ErrUnknownSubject is returned for a subject kind with no listing.
var ErrUnknownSubject = errors.New("unknown subject")

// Upstream is what the service needs from the provider.
type Upstream interface {
	Event(ctx context.Context, eventID string) (model.RawEventRecord, error)
	EventIncidents(ctx context.Context, eventID string) ([]model.RawIncident, error)
	ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error)
	Pager(l provider.Listing) walker.PageFunc[model.RawEventRecord]
}

// Query bounds an event listing. MaxItems of zero uses the service default
// and a negative value disables the cap. Bounds are exclusive.
type Query struct {
	MaxItems int
	Before   *time.Time
	After    *time.Time
}

// Service implements the read operations exposed by the API.
type Service struct {
	mu sync.RWMutex

	// Core components
	upstream      Upstream
	reconstructor *periods.Reconstructor
	dispatcher    *incident.Dispatcher

	// Configuration
	defaultMax int
	now        func() time.Time

	// State
	started      bool
	degradations atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the upstream the service reads from.
func WithProvider(u Upstream) Option {
	return func(s *Service) {
		if u != nil {
			s.upstream = u
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultMaxEvents sets the cap used when a query gives none.
func WithDefaultMaxEvents(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultMax = n
		}
	}
}

// WithClock replaces the clock used for the default now bounds.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service. Without WithProvider it talks to the default
// upstream with default transport settings.
func New(opts ...Option) *Service {
	s := &Service{
		defaultMax: defaultMaxEvents,
		now:        time.Now,
		logger:     logger.NamedOrNop("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.upstream == nil {
		s.upstream = provider.New(transport.NewFetcher(), nil)
	}
	s.reconstructor = periods.NewReconstructor(periods.WithLogger(s.logger.Named("periods")))
	s.dispatcher = incident.NewDispatcher(incident.WithLogger(s.logger.Named("incident")))
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "sport index service started", logger.Int("defaultMaxEvents", s.defaultMax))
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "sport index service stopped")
}

// Results lists the subject's past events, newest first. Before defaults to now.
func (s *Service) Results(ctx context.Context, subj provider.Subject, q Query) ([]model.RawEventRecord, error) {
	l, ok := subj.Results()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, subj.Kind)
	}
	if q.Before == nil {
		now := s.now()
		q.Before = &now
	}
	return s.walk(ctx, string(subj.Kind)+"_results", l, q, s.limit(q))
}

// Fixtures lists the subject's upcoming events, oldest first. After defaults
// to now. Subjects without a fixtures listing yield nothing.
func (s *Service) Fixtures(ctx context.Context, subj provider.Subject, q Query) ([]model.RawEventRecord, error) {
	l, ok := subj.Fixtures()
	if !ok {
		if _, known := subj.Results(); !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, subj.Kind)
		}
		s.logger.Info(ctx, "No fixtures listing for subject, returning nothing", logger.String("kind", string(subj.Kind)))
		return []model.RawEventRecord{}, nil
	}
	if q.After == nil {
		now := s.now()
		q.After = &now
	}
	return s.walk(ctx, string(subj.Kind)+"_fixtures", l, q, s.limit(q))
}

// Events lists past and upcoming events together, sorted by start time and
// truncated to the cap. Both listings are walked concurrently and in full
// within the bounds; only the merged list is capped. Subjects with results
// only are walked once with the cap applied.
func (s *Service) Events(ctx context.Context, subj provider.Subject, q Query) ([]model.RawEventRecord, error) {
	past, ok := subj.Results()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, subj.Kind)
	}
	limit := s.limit(q)
	future, hasFixtures := subj.Fixtures()
	if !hasFixtures {
		return s.walk(ctx, string(subj.Kind)+"_events", past, q, limit)
	}

	var results, fixtures []model.RawEventRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = s.walk(gctx, string(subj.Kind)+"_results", past, q, 0)
		return err
	})
	g.Go(func() error {
		var err error
		fixtures, err = s.walk(gctx, string(subj.Kind)+"_fixtures", future, q, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]model.RawEventRecord, 0, len(results)+len(fixtures))
	all = append(all, results...)
	all = append(all, fixtures...)
	SortByStart(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// EventPeriods returns the reconstructed periods of an event. The boolean is
// false when the event has no period structure or could not be fetched.
func (s *Service) EventPeriods(ctx context.Context, eventID string) (periods.Periods, bool, error) {
	rec, err := s.upstream.Event(ctx, eventID)
	if err != nil {
		return periods.Periods{}, false, s.degrade(ctx, "event_periods", err)
	}
	p, ok := s.reconstructor.Reconstruct(ctx, rec)
	return p, ok, nil
}

// EventIncidents returns the classified incidents of an event in upstream
// order, without unknown ones.
func (s *Service) EventIncidents(ctx context.Context, eventID string) ([]incident.Incident, error) {
	raws, err := s.upstream.EventIncidents(ctx, eventID)
	if err != nil {
		return []incident.Incident{}, s.degrade(ctx, "event_incidents", err)
	}
	return s.dispatcher.ClassifyAll(ctx, raws, false), nil
}

// ScheduledEvents lists a sport's events on a YYYY-MM-DD date.
func (s *Service) ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error) {
	evs, err := s.upstream.ScheduledEvents(ctx, sport, date)
	if err != nil {
		return []model.RawEventRecord{}, s.degrade(ctx, "scheduled_events", err)
	}
	return evs, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":          s.started,
		"defaultMaxEvents": s.defaultMax,
		"degradations":     s.degradations.Load(),
	}
}

func (s *Service) limit(q Query) int {
	switch {
	case q.MaxItems < 0:
		return 0
	case q.MaxItems == 0:
		return s.defaultMax
	default:
		return q.MaxItems
	}
}

func (s *Service) walk(ctx context.Context, op string, l provider.Listing, q Query, limit int) ([]model.RawEventRecord, error) {
	opts := []walker.Option{
		walker.WithFirstPage(l.FirstPage),
		walker.WithAscending(l.Ascending),
		walker.WithMaxItems(limit),
		walker.WithLogger(s.logger.Named("walker")),
	}
	if q.Before != nil {
		opts = append(opts, walker.WithBefore(*q.Before))
	}
	if q.After != nil {
		opts = append(opts, walker.WithAfter(*q.After))
	}
	items, err := walker.Walk(ctx, s.upstream.Pager(l), model.EventStart, opts...)
	if err != nil {
		if derr := s.degrade(ctx, op, err); derr != nil {
			return nil, derr
		}
	}
	if items == nil {
		items = []model.RawEventRecord{}
	}
	return items, nil
}

// degrade swallows upstream failures with a log line and a metric and
// returns every other error unchanged.
func (s *Service) degrade(ctx context.Context, op string, err error) error {
	var kind string
	switch {
	case errors.Is(err, transport.ErrRateLimited):
		kind = "rate_limited"
	case errors.Is(err, transport.ErrFetch):
		kind = "fetch"
	case errors.Is(err, provider.ErrDecode):
		kind = "decode"
	default:
		return err
	}
	s.degradations.Add(1)
	metrics.RecordDegradation(op, kind)
	s.logger.Warn(ctx, "Upstream failure, returning best-effort result",
		logger.String("operation", op),
		logger.String("kind", kind),
		logger.Error(err))
	return nil
}

// SortByStart orders events by start time, oldest first. Events without a
// start sort first; ties keep their order.
func SortByStart(evs []model.RawEventRecord) {
	sort.SliceStable(evs, func(i, j int) bool {
		ti, _ := evs[i].StartTime()
		tj, _ := evs[j].StartTime()
		return ti.Before(tj)
	})
}
