package roadsim

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// probRNG reproduces real Bernoulli semantics at the boundary values tests
// care about: p=1 always succeeds, p=0 never does.
type probRNG struct{}

func (probRNG) Bernoulli(p float32) bool { return p >= 1 }

func TestNewRoadValidation(t *testing.T) {
	Convey("Given construction parameters with a density sum over 1", t, func() {
		_, err := NewRoad(RoadConfig{
			Lanes:  1,
			Length: 10,
			Vehicles: []VehicleBlueprint{
				{MaxSpeed: 4, AccelerationTime: 6, TrafficDensity: 0.3},
				{MaxSpeed: 5, AccelerationTime: 1, TrafficDensity: 0.8},
			},
			RNG: NewRNG(1),
		})

		Convey("Construction fails with ErrInvalidDensitySum", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given zero lanes", t, func() {
		_, err := NewRoad(RoadConfig{Lanes: 0, Length: 10, RNG: NewRNG(1)})
		Convey("Construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a nil RNG", t, func() {
		_, err := NewRoad(RoadConfig{Lanes: 1, Length: 10})
		Convey("Construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

// singleCarRoad builds a one-lane, N-cell Road with exactly one
// hand-placed car, bypassing the probabilistic placement walk so the
// run is fully deterministic.
func singleCarRoad(t *testing.T, n int, vb VehicleBlueprint) (*Road, *Car) {
	t.Helper()
	r, err := NewRoad(RoadConfig{
		Lanes:       1,
		Length:      n,
		DillyDallyP: 0,
		StayInLaneP: 1,
		RNG:         probRNG{},
	})
	if err != nil {
		t.Fatalf("NewRoad: %v", err)
	}
	car := vb.newCar()
	if err := r.lanes[0][0].PutCar(car); err != nil {
		t.Fatalf("PutCar: %v", err)
	}
	r.nCars = 1
	return r, car
}

func TestSingleLaneAcceleration(t *testing.T) {
	Convey("Given one car alone on a single 10-cell lane, max_speed 5, acceleration_time 1, no dilly-dally", t, func() {
		vb := VehicleBlueprint{MaxSpeed: 5, AccelerationTime: 1, TrafficDensity: 0}
		r, car := singleCarRoad(t, 10, vb)

		Convey("Speed ramps 1,2,3,4,5 then holds at max_speed for the remaining rounds", func() {
			want := []uint8{1, 2, 3, 4, 5, 5, 5, 5, 5, 5}
			var got []uint8
			var distance uint64
			for i := 0; i < 10; i++ {
				r.Round()
				got = append(got, car.Speed())
				distance += uint64(car.Speed())
			}
			So(got, ShouldResemble, want)
			So(car.Distance(), ShouldEqual, distance)
			So(car.Speed(), ShouldBeLessThanOrEqualTo, car.MaxSpeed())
		})

		Convey("A fully-blocked adjacent lane does not alter single-lane dynamics (S2)", func() {
			r2, err := NewRoad(RoadConfig{
				Lanes:       2,
				Length:      10,
				DillyDallyP: 0,
				StayInLaneP: 1,
				Blockages:   []Blockage{{Lane: 0, Start: 0, End: 10}},
				RNG:         probRNG{},
			})
			So(err, ShouldBeNil)
			car2 := vb.newCar()
			So(r2.lanes[1][0].PutCar(car2), ShouldBeNil)
			r2.nCars = 1

			for i := 0; i < 10; i++ {
				r.Round()
				r2.Round()
				So(car2.Speed(), ShouldEqual, car.Speed())
			}
		})
	})
}

func TestOccupancyConservation(t *testing.T) {
	Convey("Given a busy multi-lane road with real randomness", t, func() {
		r, err := NewRoad(RoadConfig{
			Lanes:  3,
			Length: 20,
			Vehicles: []VehicleBlueprint{
				{MaxSpeed: 3, AccelerationTime: 2, TrafficDensity: 0.3},
			},
			DillyDallyP: 0.2,
			StayInLaneP: 0.3,
			RNG:         NewRNG(42),
		})
		So(err, ShouldBeNil)
		nCars := r.NCars()
		So(nCars, ShouldBeGreaterThan, 0)

		Convey("Occupancy, speed bounds and parity hold after every round", func() {
			for round := 0; round < 50; round++ {
				r.Round()

				var occupied uint64
				for l := 0; l < r.Lanes(); l++ {
					for c := 0; c < r.Length(); c++ {
						cell := r.Cell(l, c)
						if car := cell.Car(); car != nil {
							occupied++
							So(car.Speed(), ShouldBeLessThanOrEqualTo, car.MaxSpeed())
							So(car.parity, ShouldNotEqual, r.worldParity)
						}
						if cell.Car() != nil && cell.Blocked() {
							t.Fatalf("car on a blocked cell at (%d,%d)", l, c)
						}
					}
				}
				So(occupied, ShouldEqual, nCars)
			}
		})
	})
}

func TestConservationOfFlow(t *testing.T) {
	Convey("Given a single-lane road run for many rounds", t, func() {
		// Single lane: no lane switches are possible, so every passage
		// counted on a cell corresponds to exactly one cell of forward
		// distance. With more than one lane, a speed>1 lane switch passes
		// through both the source-lane diagonal cell and the target-lane
		// cells it lands on, so cars_passed legitimately exceeds distance
		// by the number of such switches; that accounting belongs to a
		// multi-lane-aware check, not this one.
		r, err := NewRoad(RoadConfig{
			Lanes:  1,
			Length: 15,
			Vehicles: []VehicleBlueprint{
				{MaxSpeed: 4, AccelerationTime: 1, TrafficDensity: 0.4},
			},
			DillyDallyP: 0.1,
			RNG:         NewRNG(7),
		})
		So(err, ShouldBeNil)

		for i := 0; i < 30; i++ {
			r.Round()
		}

		Convey("Total cell passages equal total car distance", func() {
			var totalPassed, totalDistance uint64
			for l := 0; l < r.Lanes(); l++ {
				for c := 0; c < r.Length(); c++ {
					totalPassed += r.Cell(l, c).CarsPassed()
				}
			}
			r.forEachCar(func(car *Car) { totalDistance += car.Distance() })
			So(totalPassed, ShouldEqual, totalDistance)
		})
	})
}

func TestMetricsDegeneracy(t *testing.T) {
	Convey("Given a road with no cars", t, func() {
		r, err := NewRoad(RoadConfig{Lanes: 1, Length: 5, RNG: NewRNG(1)})
		So(err, ShouldBeNil)
		r.Round()

		Convey("AverageSpeed is NaN, not an error", func() {
			So(math.IsNaN(r.AverageSpeed()), ShouldBeTrue)
		})
	})
}
