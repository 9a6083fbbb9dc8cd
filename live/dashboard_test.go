package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"highwaysim/roadsim"
)

func blockedRoad(t *testing.T) *roadsim.Road {
	road, err := roadsim.NewRoad(roadsim.RoadConfig{
		Lanes:       1,
		Length:      4,
		DillyDallyP: 0,
		StayInLaneP: 0,
		RNG:         roadsim.NewRNG(1),
	})
	if err != nil {
		t.Fatalf("NewRoad: %v", err)
	}
	road.Cell(0, 2).Block()
	return road
}

func TestViewLanes(t *testing.T) {
	Convey("Given a one-lane road with a blockage", t, func() {
		road := blockedRoad(t)

		Convey("viewLanes reports the blockage and no cars", func() {
			views := viewLanes(road)
			So(len(views), ShouldEqual, 1)
			So(len(views[0]), ShouldEqual, 4)
			So(views[0][2].Blocked, ShouldBeTrue)
			So(views[0][0].Blocked, ShouldBeFalse)
			So(views[0][0].Car, ShouldBeFalse)
		})
	})
}

func TestDashboardAddSnapshot(t *testing.T) {
	Convey("Given a fresh Dashboard", t, func() {
		d := NewDashboard("127.0.0.1:0")

		Convey("AddSnapshot queues an update without blocking", func() {
			road := blockedRoad(t)
			err := d.AddSnapshot(road)
			So(err, ShouldBeNil)

			select {
			case update := <-d.updates:
				So(update.Round, ShouldEqual, road.RoundIndex())
				So(update.Lanes[0][2].Blocked, ShouldBeTrue)
			default:
				t.Fatal("expected a queued update")
			}
		})

		Convey("a second AddSnapshot replaces a still-queued update", func() {
			road := blockedRoad(t)
			So(d.AddSnapshot(road), ShouldBeNil)
			road.Round()
			So(d.AddSnapshot(road), ShouldBeNil)

			update := <-d.updates
			So(update.Round, ShouldEqual, uint64(1))

			select {
			case <-d.updates:
				t.Fatal("expected only one queued update")
			default:
			}
		})
	})
}

func TestDashboardServeMetrics(t *testing.T) {
	Convey("Given a Dashboard that has observed a snapshot", t, func() {
		d := NewDashboard("127.0.0.1:0")
		road := blockedRoad(t)
		So(d.AddSnapshot(road), ShouldBeNil)

		Convey("GET /metrics reports the average speed in km/h", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			d.router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)

			var body map[string]float64
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["average_speed_kilometers_per_hour"], ShouldEqual, 0.0)
		})
	})
}
