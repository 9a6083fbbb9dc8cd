// Package result builds the JSON-shaped record emitted once a batch of
// rounds has run.
package result

import (
	"encoding/json"
	"time"

	"highwaysim/roadsim"
)

// Physical unit conversions: one cell is 7.5 meters, one round is one
// second.
const (
	cellMeters  = 7.5
	roundSecond = 1.0
)

// MonitorCell names a single cell whose flow is reported separately in
// the result record.
type MonitorCell struct {
	Lane  int
	Index int
}

// Result is the JSON-shaped record of one finished run, including
// per-lane monitor flow and both configured probabilities alongside the
// aggregate speed/acceleration metrics.
type Result struct {
	Rounds  uint64 `json:"rounds"`
	Lanes   int    `json:"lanes"`
	Length  int    `json:"length"`
	Cars    uint64 `json:"cars"`

	DillyDallyProbability float32 `json:"dilly_dally_probability"`
	StayInLaneProbability float32 `json:"stay_in_lane_probability"`

	RuntimeS float64 `json:"runtime_s"`

	AverageSpeedKilometersPerHour float64 `json:"average_speed_kilometers_per_hour"`

	MonitorCellsFlowCarsPerMinute []float64 `json:"monitor_cells_flow_cars_per_minute"`

	AverageAccelerationsNPerCarPerRound   float64 `json:"average_accelerations_n_per_car_per_round"`
	AverageDeaccelerationsNPerCarPerRound float64 `json:"average_deaccelerations_n_per_car_per_round"`
}

// FromRoad assembles a Result from a Road that has already been run for
// its full round count, the wall-clock runtime of that run, and the set
// of cells to report flow for.
func FromRoad(road *roadsim.Road, runtime time.Duration, monitors []MonitorCell) Result {
	flows := make([]float64, 0, len(monitors))
	for _, m := range monitors {
		if m.Lane < 0 || m.Lane >= road.Lanes() || m.Index < 0 || m.Index >= road.Length() {
			continue
		}
		cell := road.Cell(m.Lane, m.Index)
		flows = append(flows, cell.Flow(uint32(road.RoundIndex()))/roundSecond*60.0)
	}

	return Result{
		Rounds:                                road.RoundIndex(),
		Lanes:                                 road.Lanes(),
		Length:                                road.Length(),
		Cars:                                  road.NCars(),
		DillyDallyProbability:                 road.DillyDallyP(),
		StayInLaneProbability:                 road.StayInLaneP(),
		RuntimeS:                              runtime.Seconds(),
		AverageSpeedKilometersPerHour:         road.AverageSpeed() * (cellMeters / roundSecond) * 3.6,
		MonitorCellsFlowCarsPerMinute:         flows,
		AverageAccelerationsNPerCarPerRound:   road.AverageAccelerations(),
		AverageDeaccelerationsNPerCarPerRound: road.AverageDecelerations(),
	}
}

// JSON renders the result as a JSON string.
func (r Result) JSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
