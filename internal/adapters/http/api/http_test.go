package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/JolanDUBOIS/sport-index/internal/adapters/http/api"
	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
)

type call struct {
	op    string
	subj  provider.Subject
	query service.Query
}

type mockService struct {
	mu    sync.Mutex
	calls []call

	events     []model.RawEventRecord
	periods    periods.Periods
	periodsOK  bool
	incidents  []incident.Incident
	listErr    error
	detailsErr error
}

func (m *mockService) record(op string, subj provider.Subject, q service.Query) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: op, subj: subj, query: q})
}

func (m *mockService) last() call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return call{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockService) Results(_ context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	m.record("results", subj, q)
	return m.events, m.listErr
}

func (m *mockService) Fixtures(_ context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	m.record("fixtures", subj, q)
	return m.events, m.listErr
}

func (m *mockService) Events(_ context.Context, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	m.record("events", subj, q)
	return m.events, m.listErr
}

func (m *mockService) EventPeriods(_ context.Context, id string) (periods.Periods, bool, error) {
	m.record("periods", provider.Subject{ID: id}, service.Query{})
	return m.periods, m.periodsOK, m.detailsErr
}

func (m *mockService) EventIncidents(_ context.Context, id string) ([]incident.Incident, error) {
	m.record("incidents", provider.Subject{ID: id}, service.Query{})
	return m.incidents, m.detailsErr
}

func (m *mockService) ScheduledEvents(_ context.Context, sport, date string) ([]model.RawEventRecord, error) {
	m.record("scheduled", provider.Subject{ID: sport + "/" + date}, service.Query{})
	if _, err := provider.ParseDate(date); err != nil {
		return []model.RawEventRecord{}, err
	}
	return m.events, nil
}

func (m *mockService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "degradations": 2}
}

func serve(h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func newEvents(ids ...int64) []model.RawEventRecord {
	evs := make([]model.RawEventRecord, len(ids))
	for i, id := range ids {
		evs[i] = model.RawEventRecord{ID: id, Slug: fmt.Sprintf("event-%d", id)}
	}
	return evs
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a router over a mock service", t, func() {
		h := api.NewServer(&mockService{}).Router()

		Convey("When calling /healthz", func() {
			rec := serve(h, http.MethodGet, "/healthz")

			Convey("Then it answers ok with a generated request id", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["status"], ShouldEqual, "ok")
				So(rec.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
			})
		})

		Convey("When the caller sends a request id", func() {
			rec := serve(h, http.MethodGet, "/healthz", api.RequestIDHeader, "req-42")

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
			})
		})

		Convey("When calling /metrics after a request", func() {
			serve(h, http.MethodGet, "/healthz")
			rec := serve(h, http.MethodGet, "/metrics")

			Convey("Then the HTTP collectors are exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "http_requests_total")
			})
		})

		Convey("When calling /api/v1/stats", func() {
			rec := serve(h, http.MethodGet, "/api/v1/stats")

			Convey("Then the service stats are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["started"], ShouldEqual, true)
				So(body["degradations"], ShouldEqual, float64(2))
			})
		})

		Convey("When calling an unknown route", func() {
			rec := serve(h, http.MethodGet, "/api/v1/nowhere")

			Convey("Then it answers 404 not_found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode(rec)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When posting to a read route", func() {
			rec := serve(h, http.MethodPost, "/healthz")

			Convey("Then it answers 405", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestListings(t *testing.T) {
	Convey("Given a router over a mock service with events", t, func() {
		svc := &mockService{events: newEvents(3, 2, 1)}
		h := api.NewServer(svc).Router()

		Convey("When listing a team's results", func() {
			rec := serve(h, http.MethodGet, "/api/v1/teams/2817/results?max=4")

			Convey("Then the service receives the team subject and cap", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				c := svc.last()
				So(c.op, ShouldEqual, "results")
				So(c.subj, ShouldResemble, provider.Team("2817"))
				So(c.query.MaxItems, ShouldEqual, 4)
				So(c.query.Before, ShouldBeNil)
			})

			Convey("And the events are returned with a count", func() {
				body := decode(rec)
				So(body["count"], ShouldEqual, float64(3))
				So(body["events"], ShouldHaveLength, 3)
			})
		})

		Convey("When a listed event is finished", func() {
			winner := 2
			svc.events[0].WinnerCode = &winner
			svc.events[0].HomeScore = model.ScoreMap{"display": 0}
			svc.events[0].AwayScore = model.ScoreMap{"display": 3}
			rec := serve(h, http.MethodGet, "/api/v1/teams/2817/events")

			Convey("Then its outcome and display score are served with the record", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				evs := decode(rec)["events"].([]any)
				first := evs[0].(map[string]any)
				So(first["id"], ShouldEqual, float64(3))
				So(first["winnerCode"], ShouldEqual, float64(2))
				So(first["outcome"], ShouldEqual, "away")
				So(first["displayScore"], ShouldResemble, map[string]any{"home": float64(0), "away": float64(3)})

				second := evs[1].(map[string]any)
				So(second, ShouldNotContainKey, "outcome")
				So(second, ShouldNotContainKey, "displayScore")
			})
		})

		Convey("When listing fixtures with bounds", func() {
			rec := serve(h, http.MethodGet, "/api/v1/venues/7/fixtures?after=2024-05-01&before=2024-05-02T12:00:00%2B02:00")

			Convey("Then both bounds are parsed to UTC", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				c := svc.last()
				So(c.op, ShouldEqual, "fixtures")
				So(c.subj, ShouldResemble, provider.Venue("7"))
				So(*c.query.After, ShouldEqual, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
				So(*c.query.Before, ShouldEqual, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))
			})
		})

		Convey("When listing every event of a tournament season", func() {
			rec := serve(h, http.MethodGet, "/api/v1/tournaments/17/events?season=52186&max=all")

			Convey("Then the season is carried and the cap disabled", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				c := svc.last()
				So(c.op, ShouldEqual, "events")
				So(c.subj, ShouldResemble, provider.Tournament("17", "52186"))
				So(c.query.MaxItems, ShouldEqual, -1)
			})
		})

		Convey("When every people collection is listed", func() {
			for path, want := range map[string]provider.Subject{
				"/api/v1/players/1/results":  provider.Player("1"),
				"/api/v1/managers/2/results": provider.Manager("2"),
				"/api/v1/referees/3/results": provider.Referee("3"),
			} {
				rec := serve(h, http.MethodGet, path)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(svc.last().subj, ShouldResemble, want)
			}
		})

		Convey("When the query is malformed", func() {
			for _, target := range []string{
				"/api/v1/teams/1/results?max=lots",
				"/api/v1/teams/1/results?before=yesterday",
				"/api/v1/teams/1/results?after=2024-13-01",
				"/api/v1/teams/1/events?after=2024-05-02&before=2024-05-01",
			} {
				rec := serve(h, http.MethodGet, target)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the service rejects the subject", func() {
			svc.listErr = fmt.Errorf("%w: %q", service.ErrUnknownSubject, "x")
			rec := serve(h, http.MethodGet, "/api/v1/teams/1/results")

			Convey("Then it answers 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the request is cancelled downstream", func() {
			svc.listErr = context.DeadlineExceeded
			rec := serve(h, http.MethodGet, "/api/v1/teams/1/results")

			Convey("Then it answers 504", func() {
				So(rec.Code, ShouldEqual, http.StatusGatewayTimeout)
				So(decode(rec)["code"], ShouldEqual, "timeout")
			})
		})
	})
}

func TestEventDetails(t *testing.T) {
	Convey("Given a router over a mock service", t, func() {
		label := "1st half"
		svc := &mockService{
			events: newEvents(10),
			periods: periods.Periods{DefaultCount: 2, Periods: []periods.Descriptor{
				{Key: "period1", Kind: periods.KindNormal, Label: &label, Score: &model.ScorePair{Home: 1, Away: 0}},
			}},
			periodsOK: true,
			incidents: []incident.Incident{
				incident.Goal{IncidentType: incident.TypeGoal, Side: model.SideHome, Scorer: model.PersonRef(`{"name":"A"}`)},
				incident.StoppageTime{IncidentType: incident.TypeInjuryTime},
			},
		}
		h := api.NewServer(svc).Router()

		Convey("When fetching periods", func() {
			rec := serve(h, http.MethodGet, "/api/v1/events/11352376/periods")

			Convey("Then the reconstruction is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(svc.last().subj.ID, ShouldEqual, "11352376")
				body := decode(rec)
				So(body["defaultCount"], ShouldEqual, float64(2))
				So(body["periods"], ShouldHaveLength, 1)
			})
		})

		Convey("When the event has no period structure", func() {
			svc.periodsOK = false
			rec := serve(h, http.MethodGet, "/api/v1/events/1/periods")

			Convey("Then it answers 404 not_applicable", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode(rec)["code"], ShouldEqual, "not_applicable")
			})
		})

		Convey("When fetching incidents", func() {
			rec := serve(h, http.MethodGet, "/api/v1/events/1/incidents")

			Convey("Then each variant carries its discriminator and opaque refs", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["count"], ShouldEqual, float64(2))
				incs := body["incidents"].([]any)
				goal := incs[0].(map[string]any)
				So(goal["incidentType"], ShouldEqual, "goal")
				So(goal["side"], ShouldEqual, "home")
				So(goal["scorer"], ShouldResemble, map[string]any{"name": "A"})
				So(incs[1].(map[string]any)["incidentType"], ShouldEqual, "injuryTime")
			})
		})

		Convey("When listing a day's schedule", func() {
			rec := serve(h, http.MethodGet, "/api/v1/sports/football/scheduled/2024-05-01")

			Convey("Then the sport and date reach the service", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(svc.last().subj.ID, ShouldEqual, "football/2024-05-01")
				So(decode(rec)["count"], ShouldEqual, float64(1))
			})
		})

		Convey("When the schedule date is malformed", func() {
			rec := serve(h, http.MethodGet, "/api/v1/sports/football/scheduled/01-05-2024")

			Convey("Then it answers 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the service fails unexpectedly", func() {
			svc.detailsErr = fmt.Errorf("boom")
			rec := serve(h, http.MethodGet, "/api/v1/events/1/incidents")

			Convey("Then it answers 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(rec)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a router allowing one origin", t, func() {
		h := api.NewServer(&mockService{}, api.WithCORSOrigins([]string{"http://app.test"})).Router()

		Convey("When a preflight arrives from that origin", func() {
			rec := serve(h, http.MethodOptions, "/api/v1/teams/1/results",
				"Origin", "http://app.test",
				"Access-Control-Request-Method", http.MethodGet)

			Convey("Then the origin is allowed", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://app.test")
			})
		})

		Convey("When a request arrives from another origin", func() {
			rec := serve(h, http.MethodGet, "/healthz", "Origin", "http://evil.test")

			Convey("Then no allow header is set", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})
}
