package fetchcli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/domain/incident"
	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/internal/domain/periods"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
)

type fakeFacade struct {
	op    string
	subj  provider.Subject
	query service.Query
	id    string

	periodsOK bool
}

func (f *fakeFacade) list(op string, subj provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	f.op, f.subj, f.query = op, subj, q
	draw := 3
	return []model.RawEventRecord{
		{ID: 1, WinnerCode: &draw, HomeScore: model.ScoreMap{"display": 1}, AwayScore: model.ScoreMap{"display": 1}},
		{ID: 2},
	}, nil
}

func (f *fakeFacade) Results(_ context.Context, s provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	return f.list(OpResults, s, q)
}

func (f *fakeFacade) Fixtures(_ context.Context, s provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	return f.list(OpFixtures, s, q)
}

func (f *fakeFacade) Events(_ context.Context, s provider.Subject, q service.Query) ([]model.RawEventRecord, error) {
	return f.list(OpEvents, s, q)
}

func (f *fakeFacade) EventPeriods(_ context.Context, id string) (periods.Periods, bool, error) {
	f.op, f.id = OpPeriods, id
	return periods.Periods{DefaultCount: 2}, f.periodsOK, nil
}

func (f *fakeFacade) EventIncidents(_ context.Context, id string) ([]incident.Incident, error) {
	f.op, f.id = OpIncidents, id
	return []incident.Incident{incident.StoppageTime{IncidentType: incident.TypeInjuryTime}}, nil
}

func (f *fakeFacade) ScheduledEvents(_ context.Context, sport, date string) ([]model.RawEventRecord, error) {
	f.op, f.id = OpScheduled, sport+"/"+date
	return []model.RawEventRecord{}, nil
}

func TestRun(t *testing.T) {
	Convey("Given a fake façade", t, func() {
		f := &fakeFacade{}
		var out bytes.Buffer
		ctx := context.Background()

		Convey("When listing a tournament's results with bounds", func() {
			err := Run(ctx, &Config{
				Op: OpResults, Kind: "Tournament", ID: "17", Season: "52186",
				Max: 5, Before: "2024-05-01",
			}, f, &out)

			Convey("Then the subject and query reach the façade", func() {
				So(err, ShouldBeNil)
				So(f.op, ShouldEqual, OpResults)
				So(f.subj, ShouldResemble, provider.Tournament("17", "52186"))
				So(f.query.MaxItems, ShouldEqual, 5)
				So(*f.query.Before, ShouldEqual, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
				So(f.query.After, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, `"id":2`)
			})
		})

		Convey("When listing a team's events", func() {
			So(Run(ctx, &Config{Op: OpEvents, Kind: "team", ID: "42"}, f, &out), ShouldBeNil)

			Convey("Then finished events carry their outcome and display score", func() {
				So(out.String(), ShouldContainSubstring, `"outcome":"draw"`)
				So(out.String(), ShouldContainSubstring, `"displayScore":{"home":1,"away":1}`)
				So(bytes.Count(out.Bytes(), []byte(`"outcome"`)), ShouldEqual, 1)
			})
		})

		Convey("When a day has no scheduled events", func() {
			So(Run(ctx, &Config{Op: OpScheduled, Sport: "tennis", Date: "2024-05-01"}, f, &out), ShouldBeNil)

			Convey("Then an empty list is printed", func() {
				So(out.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When fetching periods of an event without structure", func() {
			So(Run(ctx, &Config{Op: OpPeriods, ID: "9"}, f, &out), ShouldBeNil)

			Convey("Then the output says not applicable", func() {
				So(f.id, ShouldEqual, "9")
				So(out.String(), ShouldEqual, "{\"applicable\":false}\n")
			})
		})

		Convey("When fetching periods with indentation", func() {
			f.periodsOK = true
			So(Run(ctx, &Config{Op: OpPeriods, ID: "9", Indent: true}, f, &out), ShouldBeNil)

			Convey("Then the reconstruction is printed", func() {
				So(out.String(), ShouldContainSubstring, "\"applicable\": true")
				So(out.String(), ShouldContainSubstring, "\"defaultCount\": 2")
			})
		})

		Convey("When fetching incidents and schedules", func() {
			So(Run(ctx, &Config{Op: OpIncidents, ID: "3"}, f, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, `"incidentType":"injuryTime"`)

			So(Run(ctx, &Config{Op: OpScheduled, Sport: "tennis", Date: "2024-05-01"}, f, &out), ShouldBeNil)
			So(f.id, ShouldEqual, "tennis/2024-05-01")
		})

		Convey("When the flags are incomplete or wrong", func() {
			for _, cfg := range []*Config{
				{Op: ""},
				{Op: "standings"},
				{Op: OpEvents, Kind: "team"},
				{Op: OpEvents, Kind: "club", ID: "1"},
				{Op: OpIncidents},
				{Op: OpScheduled, Sport: "football"},
				{Op: OpResults, Kind: "team", ID: "1", After: "soon"},
			} {
				err := Run(ctx, cfg, f, &out)
				So(errors.Is(err, ErrUsage), ShouldBeTrue)
			}
			So(out.Len(), ShouldEqual, 0)
		})
	})
}
