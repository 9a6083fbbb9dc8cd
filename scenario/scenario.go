package scenario

import (
	"fmt"

	"highwaysim/roadsim"
)

// Scenario is the textual, host-facing configuration surface: every field
// accepts the literal syntaxes parsed by
// ParseBlueprint/ParseCellLocation/ParseCellLocationRange, so a Scenario
// loaded from YAML looks the same as one built by hand in code or tests.
type Scenario struct {
	Lanes  int `mapstructure:"lanes" yaml:"lanes"`
	Length int `mapstructure:"length" yaml:"length"`

	Vehicles []string `mapstructure:"vehicles" yaml:"vehicles"`

	DillyDallyP float32 `mapstructure:"dilly_dally_p" yaml:"dilly_dally_p"`
	StayInLaneP float32 `mapstructure:"stay_in_lane_p" yaml:"stay_in_lane_p"`

	Blockages     []string `mapstructure:"blockages" yaml:"blockages"`
	TrafficLights []string `mapstructure:"traffic_lights" yaml:"traffic_lights"`

	// Monitors names cells whose per-round flow is reported separately in
	// the result record.
	Monitors []string `mapstructure:"monitors" yaml:"monitors"`
}

// RoadConfig parses every textual field and assembles a roadsim.RoadConfig,
// wiring in rng as the kernel's randomness source. Parse failures from any
// sub-field are returned immediately rather than partially applied.
func (sc *Scenario) RoadConfig(rng roadsim.RNG) (roadsim.RoadConfig, error) {
	cfg := roadsim.RoadConfig{
		Lanes:       sc.Lanes,
		Length:      sc.Length,
		DillyDallyP: sc.DillyDallyP,
		StayInLaneP: sc.StayInLaneP,
		RNG:         rng,
	}

	for _, v := range sc.Vehicles {
		vb, err := ParseBlueprint(v)
		if err != nil {
			return roadsim.RoadConfig{}, err
		}
		cfg.Vehicles = append(cfg.Vehicles, vb)
	}

	for _, b := range sc.Blockages {
		cr, err := ParseCellLocationRange(b)
		if err != nil {
			return roadsim.RoadConfig{}, err
		}
		cfg.Blockages = append(cfg.Blockages, roadsim.Blockage{
			Lane: cr.Lane, Start: cr.Start, End: cr.End,
		})
	}

	for _, tl := range sc.TrafficLights {
		loc, err := ParseCellLocation(tl)
		if err != nil {
			return roadsim.RoadConfig{}, err
		}
		cfg.TrafficLights = append(cfg.TrafficLights, roadsim.TrafficLightSpec{
			Lane: loc.Lane, Index: loc.Index,
		})
	}

	return cfg, nil
}

// MonitorCells parses the Monitors field into concrete cell locations.
func (sc *Scenario) MonitorCells() ([]CellLocation, error) {
	locs := make([]CellLocation, 0, len(sc.Monitors))
	for _, m := range sc.Monitors {
		loc, err := ParseCellLocation(m)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Validate checks the scenario-level invariants that belong to the host
// layer rather than to a single blueprint: the sum of vehicle densities
// must lie in [0,1]. Per-blueprint and per-probability checks are left to
// roadsim.NewRoad, which owns them.
func (sc *Scenario) Validate() error {
	if sc.Lanes < 1 {
		return fmt.Errorf("scenario: lanes must be >= 1, got %d", sc.Lanes)
	}
	if sc.Length < 1 {
		return fmt.Errorf("scenario: length must be >= 1, got %d", sc.Length)
	}

	var sum float32
	for _, v := range sc.Vehicles {
		vb, err := ParseBlueprint(v)
		if err != nil {
			return err
		}
		sum += vb.TrafficDensity
	}
	if sum < 0 || sum > 1 {
		return fmt.Errorf("%w: got %f", roadsim.ErrInvalidDensitySum, sum)
	}
	return nil
}
