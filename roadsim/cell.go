package roadsim

// Cell is one lattice site. A blocked cell never holds a car; a
// traffic-light cell may hold a car only while the light is green, which
// is a fact of the Road (traffic_lights_red), not the Cell itself — the
// cell only remembers that it *is* a traffic-light cell.
type Cell struct {
	car          *Car
	blocked      bool
	trafficLight bool
	carsPassed   uint64
}

// Car returns the occupant, or nil if the cell is empty.
func (c *Cell) Car() *Car { return c.car }

// Block marks the cell permanently unusable by cars. Set once at
// scenario construction; never cleared.
func (c *Cell) Block() { c.blocked = true }

// Blocked reports whether the cell was marked as a construction
// blockage.
func (c *Cell) Blocked() bool { return c.blocked }

// SetTrafficLight marks the cell as carrying a traffic light. Static for
// the lifetime of the Road; whether it currently blocks motion depends
// on the Road's traffic_lights_red state, via IsRedLight.
func (c *Cell) SetTrafficLight() { c.trafficLight = true }

// IsTrafficLight reports whether this cell carries a traffic light.
func (c *Cell) IsTrafficLight() bool { return c.trafficLight }

// IsRedLight reports whether this cell is a traffic light currently
// showing red, given the Road's global red/green state.
func (c *Cell) IsRedLight(red bool) bool {
	return c.trafficLight && red
}

// Free reports whether a car could occupy this cell right now: not
// blocked, not a currently-red light, and not already occupied.
func (c *Cell) Free(red bool) bool {
	return !c.blocked && !c.IsRedLight(red) && c.car == nil
}

// TakeCar removes and returns any occupant, leaving the cell empty.
func (c *Cell) TakeCar() *Car {
	car := c.car
	c.car = nil
	return car
}

// PutCar places a car into the cell. It fails with ErrCellBlocked if the
// cell is blocked, or ErrCellOccupied if it already holds a car;
// red-light occupancy is not checked here since it is the caller's
// (Road's) responsibility to never attempt a move onto one.
func (c *Cell) PutCar(car *Car) error {
	if c.blocked {
		return ErrCellBlocked
	}
	if c.car != nil {
		return ErrCellOccupied
	}
	c.car = car
	return nil
}

// Pass increments the passage counter used for flow metrics. Called once
// per cell a car sweeps through or past in a round, including cells it
// only crosses, not just its final resting cell.
func (c *Cell) Pass() {
	c.carsPassed++
}

// CarsPassed returns the raw passage counter backing Flow.
func (c *Cell) CarsPassed() uint64 { return c.carsPassed }

// Flow returns cars passed per round, given the number of rounds elapsed
// so far. Division by zero rounds yields +Inf/NaN by design, surfaced
// to the caller rather than hidden.
func (c *Cell) Flow(rounds uint32) float64 {
	return float64(c.carsPassed) / float64(rounds)
}
