package roadsim

// LaneOffset is the lane delta a LaneChoice represents.
type LaneOffset int8

const (
	LaneStay  LaneOffset = 0
	LaneLeft  LaneOffset = -1
	LaneRight LaneOffset = 1
)

// LaneChoice is a tagged decision carrying the number of cells the car
// may drive if it takes this choice. Go has no sum types, so a small
// struct with a named-constant tag plays that role without an interface
// and its associated allocation/dispatch overhead for a per-cell hot path.
type LaneChoice struct {
	Offset   LaneOffset
	Drivable uint8
}

// IsSwitch reports whether this choice changes lanes.
func (lc LaneChoice) IsSwitch() bool {
	return lc.Offset != LaneStay
}
