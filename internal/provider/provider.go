// Package provider exposes typed upstream operations built on the transport
// and the endpoint resolver.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/walker"
	"github.com/JolanDUBOIS/sport-index/internal/endpoints"
	"github.com/JolanDUBOIS/sport-index/internal/transport"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

// DateLayout is the only accepted format for date-scoped queries.
const DateLayout = "2006-01-02"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher performs a single upstream GET.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (*transport.Response, error)
}

// Provider issues upstream requests. It holds no per-call state.
type Provider struct {
	fetcher  Fetcher
	resolver *endpoints.Resolver
	logger   logger.Logger
}

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithLogger sets a custom logger for the provider.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a provider. A nil resolver uses the default base URL.
func New(fetcher Fetcher, resolver *endpoints.Resolver, opts ...Option) *Provider {
	if resolver == nil {
		resolver = endpoints.NewResolver("")
	}
	p := &Provider{
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger.NamedOrNop("provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Event fetches one event record.
func (p *Provider) Event(ctx context.Context, eventID string) (model.RawEventRecord, error) {
	var resp model.EventResponse
	if err := p.get(ctx, endpoints.OpEvent, endpoints.Params{"event_id": eventID}, &resp); err != nil {
		return model.RawEventRecord{}, err
	}
	return resp.Event, nil
}

// EventIncidents fetches the raw incidents of one event.
func (p *Provider) EventIncidents(ctx context.Context, eventID string) ([]model.RawIncident, error) {
	var resp model.IncidentsResponse
	if err := p.get(ctx, endpoints.OpEventIncidents, endpoints.Params{"event_id": eventID}, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// Page fetches one page of a listing.
func (p *Provider) Page(ctx context.Context, l Listing, page int) (model.PageResult[model.RawEventRecord], error) {
	params := make(endpoints.Params, len(l.Params)+1)
	for k, v := range l.Params {
		params[k] = v
	}
	params["page"] = strconv.Itoa(page)

	var resp model.EventPage
	if err := p.get(ctx, l.Op, params, &resp); err != nil {
		return model.PageResult[model.RawEventRecord]{}, err
	}
	return resp.Result(), nil
}

// Pager adapts a listing to the walker's page function.
func (p *Provider) Pager(l Listing) walker.PageFunc[model.RawEventRecord] {
	return func(ctx context.Context, page int) (model.PageResult[model.RawEventRecord], error) {
		return p.Page(ctx, l, page)
	}
}

// ScheduledEvents lists a sport's events on one day. A malformed date fails
// before any request is made.
func (p *Provider) ScheduledEvents(ctx context.Context, sport, date string) ([]model.RawEventRecord, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	var resp model.EventPage
	if err := p.get(ctx, endpoints.OpScheduledEvents, endpoints.Params{"sport": sport, "date": date}, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	return t, nil
}

func (p *Provider) get(ctx context.Context, op string, params endpoints.Params, v any) error {
	u, err := p.resolver.Resolve(op, params)
	if err != nil {
		return err
	}
	resp, err := p.fetcher.Fetch(ctx, u, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		p.logger.Warn(ctx, "Upstream payload is not the expected JSON",
			logger.String("op", op),
			logger.String("url", u),
			logger.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrDecode, op, err)
	}
	return nil
}
