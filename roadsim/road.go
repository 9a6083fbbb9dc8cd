package roadsim

import (
	"fmt"
	"math"
)

// maxCounter caps the obstacle-distance counters at the same width a u8
// would give them: 255 (or any value >= N) means "no car/obstacle found
// within sweep range".
const maxCounter = 255

// Blockage marks cells [Start,End) of Lane as permanently undrivable.
type Blockage struct {
	Lane       int
	Start, End int
}

// TrafficLightSpec places a traffic light on one cell.
type TrafficLightSpec struct {
	Lane  int
	Index int
}

// RoadConfig is the construction-time configuration accepted by NewRoad.
// The scenario package is responsible for producing one of these from
// parsed/validated input; roadsim itself only re-validates the
// invariants it depends on.
type RoadConfig struct {
	Lanes  int
	Length int

	Vehicles []VehicleBlueprint

	DillyDallyP float32
	StayInLaneP float32

	Blockages     []Blockage
	TrafficLights []TrafficLightSpec

	RNG RNG
}

// Road is the cellular-automaton grid and its update kernel. It is the
// core of the simulation: see round() for the per-tick sweep.
type Road struct {
	lanes [][]Cell
	L, N  int

	roundIndex uint64
	nCars      uint64

	cellsToNextCar      []uint8
	cellsToNextObstacle []uint8

	trafficLightsRed bool
	worldParity      ParityFlag

	dillyDallyP float32
	stayInLaneP float32

	maxSpeed uint8

	rng RNG
}

// NewRoad allocates and populates a Road: grid allocation, blockages,
// traffic lights, then blueprint-driven car placement by a cyclic
// Bernoulli walk of each lane.
func NewRoad(cfg RoadConfig) (*Road, error) {
	if cfg.Lanes < 1 {
		return nil, fmt.Errorf("roadsim: lanes must be >= 1, got %d", cfg.Lanes)
	}
	if cfg.Length < 1 {
		return nil, fmt.Errorf("roadsim: length must be >= 1, got %d", cfg.Length)
	}
	if cfg.DillyDallyP < 0 || cfg.DillyDallyP > 1 {
		return nil, fmt.Errorf("%w: dilly_dally_p %f", ErrInvalidProbability, cfg.DillyDallyP)
	}
	if cfg.StayInLaneP < 0 || cfg.StayInLaneP > 1 {
		return nil, fmt.Errorf("%w: stay_in_lane_p %f", ErrInvalidProbability, cfg.StayInLaneP)
	}
	if cfg.RNG == nil {
		return nil, fmt.Errorf("roadsim: RNG is required")
	}

	var densitySum float32
	var maxSpeed uint8
	for _, vb := range cfg.Vehicles {
		if err := vb.Validate(); err != nil {
			return nil, err
		}
		densitySum += vb.TrafficDensity
		if vb.MaxSpeed > maxSpeed {
			maxSpeed = vb.MaxSpeed
		}
	}
	if densitySum < 0 || densitySum > 1 {
		return nil, fmt.Errorf("%w: got %f", ErrInvalidDensitySum, densitySum)
	}

	r := &Road{
		lanes:               make([][]Cell, cfg.Lanes),
		L:                   cfg.Lanes,
		N:                   cfg.Length,
		worldParity:         parityA,
		dillyDallyP:         cfg.DillyDallyP,
		stayInLaneP:         cfg.StayInLaneP,
		cellsToNextCar:      make([]uint8, cfg.Lanes),
		cellsToNextObstacle: make([]uint8, cfg.Lanes),
		maxSpeed:            maxSpeed,
		rng:                 cfg.RNG,
	}
	for l := range r.lanes {
		r.lanes[l] = make([]Cell, cfg.Length)
	}

	for _, b := range cfg.Blockages {
		if b.Lane < 0 || b.Lane >= cfg.Lanes {
			return nil, fmt.Errorf("roadsim: blockage lane %d out of range", b.Lane)
		}
		if b.Start < 0 || b.End > cfg.Length || b.Start > b.End {
			return nil, fmt.Errorf("roadsim: blockage range [%d,%d) out of range for length %d", b.Start, b.End, cfg.Length)
		}
		for i := b.Start; i < b.End; i++ {
			r.lanes[b.Lane][i].Block()
		}
	}

	for _, tl := range cfg.TrafficLights {
		if tl.Lane < 0 || tl.Lane >= cfg.Lanes || tl.Index < 0 || tl.Index >= cfg.Length {
			return nil, fmt.Errorf("roadsim: traffic light (%d,%d) out of range", tl.Lane, tl.Index)
		}
		r.lanes[tl.Lane][tl.Index].SetTrafficLight()
	}

	unblockedLen := make([]int, cfg.Lanes)
	for l := 0; l < cfg.Lanes; l++ {
		n := 0
		for c := 0; c < cfg.Length; c++ {
			if !r.lanes[l][c].Blocked() {
				n++
			}
		}
		unblockedLen[l] = n
	}

	for _, vb := range cfg.Vehicles {
		for l := 0; l < cfg.Lanes; l++ {
			target := int(math.Round(float64(vb.TrafficDensity) * float64(unblockedLen[l])))
			if target <= 0 {
				continue
			}
			placed := 0
			for i := 0; placed < target; i++ {
				c := i % cfg.Length
				cell := &r.lanes[l][c]
				if cell.Blocked() || cell.Car() != nil {
					continue
				}
				if r.rng.Bernoulli(vb.TrafficDensity) {
					if err := cell.PutCar(vb.newCar()); err != nil {
						return nil, fmt.Errorf("roadsim: placing car at (%d,%d): %w", l, c, err)
					}
					r.nCars++
					placed++
				}
			}
		}
	}

	for l := range r.cellsToNextCar {
		r.cellsToNextCar[l] = maxCounter
		r.cellsToNextObstacle[l] = maxCounter
	}

	return r, nil
}

// Lanes returns the lane count L.
func (r *Road) Lanes() int { return r.L }

// Length returns the per-lane cell count N.
func (r *Road) Length() int { return r.N }

// NCars returns the total number of cars placed at construction. Cars are
// never created or destroyed after NewRoad returns.
func (r *Road) NCars() uint64 { return r.nCars }

// RoundIndex returns the number of completed rounds.
func (r *Road) RoundIndex() uint64 { return r.roundIndex }

// TrafficLightsRed reports the current global traffic-light phase.
func (r *Road) TrafficLightsRed() bool { return r.trafficLightsRed }

// MaxSpeed returns the highest max_speed among all configured vehicle
// blueprints, used by snapshot sinks to normalize speed-to-color ramps.
func (r *Road) MaxSpeed() uint8 { return r.maxSpeed }

// DillyDallyP returns the configured dilly-dally probability.
func (r *Road) DillyDallyP() float32 { return r.dillyDallyP }

// StayInLaneP returns the configured stay-in-lane probability.
func (r *Road) StayInLaneP() float32 { return r.stayInLaneP }

// Cell returns a pointer to the cell at lane l, index c, so snapshot
// sinks can inspect it. The pointer is not a copy: changes made through
// it change the Road.
func (r *Road) Cell(l, c int) *Cell { return &r.lanes[l][c] }

func satInc(x uint8) uint8 {
	if x == maxCounter {
		return maxCounter
	}
	return x + 1
}

// primeCounters seeds cells_to_next_car/obstacle so that the last cars
// visited in a right-to-left sweep correctly "see" the first cars of the
// lane across the torus boundary.
func (r *Road) primeCounters() {
	capN := r.N
	if capN > maxCounter {
		capN = maxCounter
	}
	for l := 0; l < r.L; l++ {
		obstacleDist, carDist := uint8(capN), uint8(capN)
		obstacleFound, carFound := false, false
		for c := 0; c < r.N && !(obstacleFound && carFound); c++ {
			cell := &r.lanes[l][c]
			isObstacle := cell.Blocked() || cell.IsRedLight(r.trafficLightsRed) || cell.Car() != nil
			if !obstacleFound && isObstacle {
				obstacleDist = uint8(minInt(c, maxCounter))
				obstacleFound = true
			}
			if !carFound && cell.Car() != nil {
				carDist = uint8(minInt(c, maxCounter))
				carFound = true
			}
		}
		r.cellsToNextObstacle[l] = obstacleDist
		r.cellsToNextCar[l] = carDist
	}
}

func (r *Road) noteObstacle(l int, d uint8) {
	r.cellsToNextCar[l] = d
	r.cellsToNextObstacle[l] = d
}

func (r *Road) noteFree(l int, otherObstacle bool) {
	r.cellsToNextCar[l] = satInc(r.cellsToNextCar[l])
	if otherObstacle {
		r.cellsToNextObstacle[l] = 0
	} else {
		r.cellsToNextObstacle[l] = satInc(r.cellsToNextObstacle[l])
	}
}

// drivable computes the number of cells a car may advance if it takes
// offset delta, including the anti-right-passing guard term and the -1
// bias applied when delta = -1 to compensate for the left-to-right lane
// iteration order within a column.
func (r *Road) drivable(l, delta int) int {
	target := l + delta
	dTarget := int(r.cellsToNextObstacle[target])

	leftOfTarget := target - 1
	var dGuard int
	if leftOfTarget < 0 {
		dGuard = math.MaxInt32
	} else {
		g := int(r.cellsToNextCar[leftOfTarget])
		if g > 254 {
			g = 254
		}
		dGuard = g + 1
	}

	result := dTarget
	if dGuard < result {
		result = dGuard
	}
	if delta == -1 && result > 0 {
		result--
	}
	return result
}

// determineBestLane implements the symmetry-broken lane-change decision:
// right ties beat the current best, left must strictly exceed it, and a
// "stay" draw short-circuits everything.
func (r *Road) determineBestLane(l, avail int, leftClear, rightClear, stay bool) LaneChoice {
	staySpace := minInt(r.drivable(l, 0), avail)
	best := LaneChoice{Offset: LaneStay, Drivable: uint8(staySpace)}

	if stay {
		return best
	}

	if staySpace >= 1 || avail <= 1 {
		if leftClear {
			leftSpace := minInt(r.drivable(l, -1), avail)
			if leftSpace > 0 && leftSpace > staySpace {
				best = LaneChoice{Offset: LaneLeft, Drivable: uint8(leftSpace)}
			}
		}
		if rightClear {
			rightSpaceRaw := r.drivable(l, 1)
			if rightSpaceRaw > 0 && rightSpaceRaw >= int(best.Drivable) {
				rightSpace := minInt(rightSpaceRaw, avail)
				best = LaneChoice{Offset: LaneRight, Drivable: uint8(rightSpace)}
			}
		}
	}
	return best
}

// round advances the whole grid by one tick: a single right-to-left sweep
// across columns, left-to-right across lanes within each column. See
// step() for the per-cell update rule.
func (r *Road) round() {
	r.roundIndex++
	r.trafficLightsRed = (r.roundIndex%100 != r.roundIndex%200)
	r.primeCounters()

	for c := r.N - 1; c >= 0; c-- {
		for l := 0; l < r.L; l++ {
			r.step(l, c)
		}
	}

	r.worldParity = r.worldParity.flipped()
}

// Round is the exported form of round(), advancing the simulation by one
// tick.
func (r *Road) Round() { r.round() }

func (r *Road) step(l, c int) {
	cell := &r.lanes[l][c]

	if cell.Blocked() || cell.IsRedLight(r.trafficLightsRed) {
		r.noteFree(l, true)
		return
	}
	if cell.Car() == nil {
		r.noteFree(l, false)
		return
	}

	car := cell.TakeCar()
	if !car.parity.Sync(r.worldParity) {
		if err := cell.PutCar(car); err != nil {
			panic(fmt.Sprintf("roadsim: kernel invariant violated restoring already-moved car at (%d,%d): %v", l, c, err))
		}
		r.cellsToNextCar[l] = 0
		r.cellsToNextObstacle[l] = 0
		return
	}

	leftClear := l > 0 && r.lanes[l-1][c].Free(r.trafficLightsRed)
	rightClear := l < r.L-1 && r.lanes[l+1][c].Free(r.trafficLightsRed)

	car.IncreaseSpeed()

	stay := r.rng.Bernoulli(r.stayInLaneP)
	choice := r.determineBestLane(l, int(car.Speed()), leftClear, rightClear, stay)

	dillyDally := !choice.IsSwitch() && r.rng.Bernoulli(r.dillyDallyP)
	car.Finish(choice.Drivable, dillyDally)

	r.noteObstacle(l, 0)

	speed := int(car.Speed())
	targetL := l + int(choice.Offset)
	targetC := c + speed

	if choice.IsSwitch() && speed > 1 {
		r.lanes[l][(c+1)%r.N].Pass()
	}
	for k := c + 1; k <= targetC; k++ {
		r.lanes[targetL][k%r.N].Pass()
	}

	if choice.IsSwitch() && speed > 0 {
		r.cellsToNextObstacle[targetL] = uint8(minInt(speed-1, maxCounter))
	}

	dest := &r.lanes[targetL][targetC%r.N]
	if err := dest.PutCar(car); err != nil {
		panic(fmt.Sprintf(
			"roadsim: kernel invariant violated at round %d moving car from (%d,%d) to (%d,%d) speed=%d choice=%+v cellsToNextCar=%v cellsToNextObstacle=%v: %v",
			r.roundIndex, l, c, targetL, targetC%r.N, speed, choice, r.cellsToNextCar, r.cellsToNextObstacle, err))
	}
}

// AverageSpeed returns mean cells/round across all cars over all rounds so
// far. NaN when n_cars or round_index is zero, by design.
func (r *Road) AverageSpeed() float64 {
	var sum uint64
	r.forEachCar(func(car *Car) { sum += car.Distance() })
	return float64(sum) / (float64(r.nCars) * float64(r.roundIndex))
}

// AverageAccelerations returns mean accelerations per car per round.
func (r *Road) AverageAccelerations() float64 {
	var sum uint64
	r.forEachCar(func(car *Car) { sum += car.Accelerations() })
	return float64(sum) / (float64(r.nCars) * float64(r.roundIndex))
}

// AverageDecelerations returns mean decelerations per car per round.
func (r *Road) AverageDecelerations() float64 {
	var sum uint64
	r.forEachCar(func(car *Car) { sum += car.Decelerations() })
	return float64(sum) / (float64(r.nCars) * float64(r.roundIndex))
}

func (r *Road) forEachCar(f func(*Car)) {
	for l := range r.lanes {
		for c := range r.lanes[l] {
			if car := r.lanes[l][c].Car(); car != nil {
				f(car)
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
