package roadsim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCar(t *testing.T) {
	Convey("Given a fresh car from a blueprint", t, func() {
		vb := VehicleBlueprint{MaxSpeed: 5, AccelerationTime: 2, TrafficDensity: 0.1}
		car := vb.newCar()

		Convey("Speed starts at zero", func() {
			So(car.Speed(), ShouldEqual, uint8(0))
		})

		Convey("IncreaseSpeed only raises speed once the accumulator reaches acceleration_time", func() {
			car.IncreaseSpeed()
			So(car.Speed(), ShouldEqual, uint8(0))
			car.IncreaseSpeed()
			So(car.Speed(), ShouldEqual, uint8(1))
		})

		Convey("IncreaseSpeed never exceeds max_speed", func() {
			for i := 0; i < 100; i++ {
				car.IncreaseSpeed()
			}
			So(car.Speed(), ShouldEqual, car.MaxSpeed())
		})

		Convey("BrakeTo clamps speed and the accumulator to the gap", func() {
			car.IncreaseSpeed()
			car.IncreaseSpeed() // speed = 1, accum = 0
			car.IncreaseSpeed()
			car.IncreaseSpeed() // speed = 2, accum = 0
			car.accelAccum = 2
			car.BrakeTo(1)
			So(car.Speed(), ShouldEqual, uint8(1))
			So(car.accelAccum, ShouldEqual, uint8(1))
		})

		Convey("BrakeTo leaves a car already within the gap untouched", func() {
			car.BrakeTo(10)
			So(car.Speed(), ShouldEqual, uint8(0))
		})

		Convey("Decrease saturates at zero and resets the accumulator", func() {
			car.Decrease()
			So(car.Speed(), ShouldEqual, uint8(0))
			So(car.accelAccum, ShouldEqual, uint8(0))
		})

		Convey("Finish records distance and acceleration/deceleration counters", func() {
			car.IncreaseSpeed()
			car.IncreaseSpeed() // speed = 1
			car.Finish(10, false)
			So(car.Distance(), ShouldEqual, uint64(1))
			So(car.Accelerations(), ShouldEqual, uint64(1))
			So(car.Decelerations(), ShouldEqual, uint64(0))

			car.Finish(0, false)
			So(car.Speed(), ShouldEqual, uint8(0))
			So(car.Decelerations(), ShouldEqual, uint64(1))
		})
	})
}
