package roadsim

// Car is the per-vehicle mutable state. It is owned exclusively by the
// Cell holding it; the kernel never keeps two live references to the
// same Car (moving a car is always take-then-put, never aliased).
//
// Acceleration and deceleration are tracked as two separate counters
// rather than one signed delta, since the per-car metrics report both
// independently.
type Car struct {
	maxSpeed         uint8
	accelerationTime uint8
	accelAccum       uint8

	lastSpeed uint8
	speed     uint8

	distance      uint64
	accelerations uint64
	decelerations uint64

	parity ParityFlag
}

// Speed returns the car's current speed in cells per round.
func (c *Car) Speed() uint8 { return c.speed }

// Distance returns the cumulative number of cells driven.
func (c *Car) Distance() uint64 { return c.distance }

// Accelerations returns the number of rounds in which speed strictly
// increased relative to the prior round.
func (c *Car) Accelerations() uint64 { return c.accelerations }

// Decelerations returns the number of rounds in which speed strictly
// decreased relative to the prior round.
func (c *Car) Decelerations() uint64 { return c.decelerations }

// MaxSpeed returns the car's blueprint top speed.
func (c *Car) MaxSpeed() uint8 { return c.maxSpeed }

// IncreaseSpeed models acceleration limited to one +1 step every
// acceleration_time rounds: the accumulator counts rounds since the last
// bump, and only once it reaches acceleration_time does speed actually
// rise (unless already at max_speed). This is the only place speed rises.
func (c *Car) IncreaseSpeed() {
	c.accelAccum++
	if c.accelAccum != c.accelerationTime {
		return
	}
	c.accelAccum = 0
	if c.speed == c.maxSpeed {
		return
	}
	c.speed++
}

// BrakeTo enforces the gap to the next obstacle: if the car is going
// faster than the gap allows, it slows to exactly the gap, and its
// acceleration accumulator is clamped so a car that was nearly ready to
// accelerate cannot retain that progress after being forced to crawl.
// A car already at or below the gap is left untouched.
func (c *Car) BrakeTo(gap uint8) {
	if c.speed > gap {
		c.speed = gap
		if c.accelAccum > gap {
			c.accelAccum = gap
		}
	}
}

// Decrease is the dilly-dally rule: speed drops by one, saturating at
// zero, and the acceleration accumulator resets — a driver who eased off
// the gas starts building toward the next acceleration step from zero.
func (c *Car) Decrease() {
	if c.speed > 0 {
		c.speed--
	}
	c.accelAccum = 0
}

// Finish commits one round's movement: brakes to the available gap,
// applies dilly-dally if requested, then records distance and the
// acceleration/deceleration counters by comparing against last round's
// speed.
func (c *Car) Finish(gap uint8, dillyDally bool) {
	c.BrakeTo(gap)
	if dillyDally {
		c.Decrease()
	}
	c.distance += uint64(c.speed)
	switch {
	case c.speed > c.lastSpeed:
		c.accelerations++
	case c.speed < c.lastSpeed:
		c.decelerations++
	}
	c.lastSpeed = c.speed
}
