package model_test

import (
	"testing"

	model "github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRawIncident(t *testing.T) {
	convey.Convey("Given raw incidents", t, func() {
		convey.Convey("When isHome is absent", func() {
			var inc model.RawIncident
			convey.So(json.Unmarshal([]byte(`{"incidentType":"goal"}`), &inc), convey.ShouldBeNil)

			convey.Convey("Then the side is unknown and there is no score", func() {
				convey.So(inc.Side(), convey.ShouldEqual, model.SideUnknown)
				convey.So(inc.Score(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When isHome is false", func() {
			var inc model.RawIncident
			convey.So(json.Unmarshal([]byte(`{"incidentType":"goal","isHome":false,"homeScore":0,"awayScore":1}`), &inc), convey.ShouldBeNil)

			convey.Convey("Then the side is away and the zero score is kept", func() {
				convey.So(inc.Side(), convey.ShouldEqual, model.SideAway)
				convey.So(inc.Score(), convey.ShouldResemble, &model.ScorePair{Home: 0, Away: 1})
			})
		})

		convey.Convey("When only one score count is present", func() {
			var inc model.RawIncident
			convey.So(json.Unmarshal([]byte(`{"incidentType":"goal","homeScore":2}`), &inc), convey.ShouldBeNil)

			convey.Convey("Then no score is reported", func() {
				convey.So(inc.Score(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When person references are decoded", func() {
			var inc model.RawIncident
			convey.So(json.Unmarshal([]byte(`{"incidentType":"card","player":{"id":7,"name":"A"},"manager":null}`), &inc), convey.ShouldBeNil)

			convey.Convey("Then they are kept opaque", func() {
				convey.So(model.Populated(inc.Player), convey.ShouldBeTrue)
				convey.So(string(inc.Player), convey.ShouldContainSubstring, `"id":7`)
				convey.So(model.Populated(inc.Manager), convey.ShouldBeFalse)
				convey.So(model.Populated(inc.PlayerIn), convey.ShouldBeFalse)
			})
		})
	})
}
