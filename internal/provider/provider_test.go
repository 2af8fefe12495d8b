package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/walker"
	"github.com/JolanDUBOIS/sport-index/internal/endpoints"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
	"github.com/JolanDUBOIS/sport-index/internal/transport"
	"github.com/smartystreets/goconvey/convey"
)

// upstream serves canned bodies by path and records requested paths.
type upstream struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	paths  []string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.paths = append(u.paths, r.URL.Path)
	body, ok := u.bodies[r.URL.Path]
	status := u.status[r.URL.Path]
	u.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func (u *upstream) requested() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.paths...)
}

func newProvider(u *upstream) (*provider.Provider, func()) {
	srv := httptest.NewServer(u)
	f := transport.NewFetcher(
		transport.WithInitialDelay(0),
		transport.WithBaseDelay(0),
		transport.WithMaxDelay(0),
		transport.WithJitter(func() time.Duration { return 0 }),
		transport.WithMaxRetries(2),
	)
	return provider.New(f, endpoints.NewResolver(srv.URL)), srv.Close
}

func TestProvider_Event(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an upstream event and its incidents", t, func() {
		u := &upstream{bodies: map[string]string{
			"/event/10":           `{"event":{"id":10,"defaultPeriodCount":2,"homeScore":{"period1":1},"awayScore":{"period1":0}}}`,
			"/event/10/incidents": `{"incidents":[{"incidentType":"period","time":999,"text":"HT"},{"incidentType":"goal","isHome":true}]}`,
		}}
		p, done := newProvider(u)
		defer done()

		convey.Convey("Then Event decodes the record", func() {
			ev, err := p.Event(ctx, "10")
			convey.So(err, convey.ShouldBeNil)
			convey.So(ev.ID, convey.ShouldEqual, 10)
			convey.So(*ev.DefaultPeriodCount, convey.ShouldEqual, 2)
		})

		convey.Convey("Then EventIncidents keeps upstream order", func() {
			incs, err := p.EventIncidents(ctx, "10")
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(incs), convey.ShouldEqual, 2)
			convey.So(incs[0].IncidentType, convey.ShouldEqual, "period")
			convey.So(*incs[1].IsHome, convey.ShouldBeTrue)
		})

		convey.Convey("Then a missing event is a FetchError", func() {
			_, err := p.Event(ctx, "11")
			convey.So(errors.Is(err, transport.ErrFetch), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an upstream answering with a bot challenge page", t, func() {
		u := &upstream{bodies: map[string]string{"/event/1": `<html>are you human?</html>`}}
		p, done := newProvider(u)
		defer done()

		_, err := p.Event(ctx, "1")

		convey.Convey("Then a decode error is returned", func() {
			convey.So(errors.Is(err, provider.ErrDecode), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an upstream that rate limits", t, func() {
		u := &upstream{status: map[string]int{"/event/1": http.StatusTooManyRequests}}
		p, done := newProvider(u)
		defer done()

		_, err := p.Event(ctx, "1")

		convey.Convey("Then the RateLimitError reaches the caller", func() {
			convey.So(errors.Is(err, transport.ErrRateLimited), convey.ShouldBeTrue)
			convey.So(len(u.requested()), convey.ShouldEqual, 2)
		})
	})
}

func TestProvider_Listings(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given paged team and tournament listings", t, func() {
		u := &upstream{bodies: map[string]string{
			"/team/42/events/last/0":                        `{"events":[{"id":3},{"id":2}],"hasNextPage":true}`,
			"/team/42/events/last/1":                        `{"events":[{"id":1}],"hasNextPage":false}`,
			"/team/42/events/next/0":                        `{"events":[{"id":4}],"hasNextPage":false}`,
			"/player/7/events/last/0":                       `{"events":[],"hasNextPage":false}`,
			"/unique-tournament/17/season/99/events/next/2": `{"events":[{"id":50}],"hasNextPage":true}`,
			"/unique-tournament/17/season/99/events/last/0": `{"events":[{"id":49}],"hasNextPage":false}`,
			"/venue/5/events/all/last/1":                    `{"events":[{"id":8}],"hasNextPage":false}`,
		}}
		p, done := newProvider(u)
		defer done()

		convey.Convey("Then each paged operation hits its endpoint", func() {
			page := func(subj provider.Subject, results bool, n int) (model.PageResult[model.RawEventRecord], error) {
				l, ok := subj.Fixtures()
				if results {
					l, ok = subj.Results()
				}
				convey.So(ok, convey.ShouldBeTrue)
				return p.Page(ctx, l, n)
			}

			res, err := page(provider.Team("42"), true, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.HasMore, convey.ShouldBeTrue)
			convey.So(len(res.Items), convey.ShouldEqual, 2)

			res, err = page(provider.Team("42"), false, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Items[0].ID, convey.ShouldEqual, 4)

			res, err = page(provider.Player("7"), true, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Items, convey.ShouldBeEmpty)

			res, err = page(provider.Tournament("17", "99"), false, 2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Items[0].ID, convey.ShouldEqual, 50)

			res, err = page(provider.Tournament("17", "99"), true, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Items[0].ID, convey.ShouldEqual, 49)
		})

		convey.Convey("Then the pager drives a walk page by page", func() {
			l, ok := provider.Team("42").Results()
			convey.So(ok, convey.ShouldBeTrue)

			items, err := walker.Walk(ctx, p.Pager(l), model.EventStart, walker.WithFirstPage(l.FirstPage))
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(items), convey.ShouldEqual, 3)
			convey.So(u.requested(), convey.ShouldResemble, []string{"/team/42/events/last/0", "/team/42/events/last/1"})
		})

		convey.Convey("Then venue listings start at page one", func() {
			l, ok := provider.Venue("5").Results()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(l.FirstPage, convey.ShouldEqual, 1)

			items, err := walker.Walk(ctx, p.Pager(l), model.EventStart, walker.WithFirstPage(l.FirstPage))
			convey.So(err, convey.ShouldBeNil)
			convey.So(items[0].ID, convey.ShouldEqual, 8)
		})
	})
}

func TestSubject(t *testing.T) {
	convey.Convey("Given subjects of every kind", t, func() {
		convey.Convey("Then results are newest first and fixtures oldest first", func() {
			r, ok := provider.Team("1").Results()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Ascending, convey.ShouldBeFalse)
			f, ok := provider.Team("1").Fixtures()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(f.Ascending, convey.ShouldBeTrue)
		})

		convey.Convey("Then people have results but no fixtures", func() {
			for _, s := range []provider.Subject{provider.Player("1"), provider.Manager("2"), provider.Referee("3")} {
				_, ok := s.Results()
				convey.So(ok, convey.ShouldBeTrue)
				_, ok = s.Fixtures()
				convey.So(ok, convey.ShouldBeFalse)
			}
		})

		convey.Convey("Then an unknown kind has no listing", func() {
			_, ok := provider.Subject{Kind: "stadium"}.Results()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestProvider_ScheduledEvents(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a scheduled events listing", t, func() {
		u := &upstream{bodies: map[string]string{
			"/sport/football/scheduled-events/2024-05-01": `{"events":[{"id":1},{"id":2}]}`,
		}}
		p, done := newProvider(u)
		defer done()

		convey.Convey("When the date is well formed", func() {
			evs, err := p.ScheduledEvents(ctx, "football", "2024-05-01")

			convey.Convey("Then the events are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(evs), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the date is malformed", func() {
			for _, bad := range []string{"2024-5-1", "01/05/2024", "2024-13-01", ""} {
				_, err := p.ScheduledEvents(ctx, "football", bad)
				convey.So(errors.Is(err, provider.ErrInvalidDate), convey.ShouldBeTrue)
			}

			convey.Convey("Then nothing is requested", func() {
				convey.So(u.requested(), convey.ShouldBeEmpty)
			})
		})
	})
}
