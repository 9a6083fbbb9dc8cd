package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"highwaysim/roadsim"
)

// CellLocation names a single cell: lane and index.
type CellLocation struct {
	Lane  int
	Index int
}

// CellLocationRange names a lane and a half-open cell index range [Start,End).
type CellLocationRange struct {
	Lane       int
	Start, End int
}

// ParseBlueprint parses the literal syntax `(max_speed, acceleration_time,
// traffic_density)` into a roadsim.VehicleBlueprint: strip whitespace,
// strip the surrounding parens, split on comma, parse exactly three
// fields.
func ParseBlueprint(s string) (roadsim.VehicleBlueprint, error) {
	inner, err := stripParens(s)
	if err != nil {
		return roadsim.VehicleBlueprint{}, fmt.Errorf("%w: %q", ErrParseBlueprint, s)
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return roadsim.VehicleBlueprint{}, fmt.Errorf("%w: %q", ErrParseBlueprint, s)
	}

	maxSpeed, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return roadsim.VehicleBlueprint{}, fmt.Errorf("%w: %q", ErrParseBlueprint, s)
	}
	accelTime, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return roadsim.VehicleBlueprint{}, fmt.Errorf("%w: %q", ErrParseBlueprint, s)
	}
	density, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return roadsim.VehicleBlueprint{}, fmt.Errorf("%w: %q", ErrParseBlueprint, s)
	}

	return roadsim.VehicleBlueprint{
		MaxSpeed:         uint8(maxSpeed),
		AccelerationTime: uint8(accelTime),
		TrafficDensity:   float32(density),
	}, nil
}

// ParseCellLocation parses `(lane, index)`.
func ParseCellLocation(s string) (CellLocation, error) {
	inner, err := stripParens(s)
	if err != nil {
		return CellLocation{}, fmt.Errorf("%w: %q", ErrParseCellLocation, s)
	}
	lane, index, ok := cut(inner, ",")
	if !ok {
		return CellLocation{}, fmt.Errorf("%w: %q", ErrParseCellLocation, s)
	}
	laneN, err := strconv.Atoi(strings.TrimSpace(lane))
	if err != nil {
		return CellLocation{}, fmt.Errorf("%w: %q", ErrParseCellLocation, s)
	}
	indexN, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil {
		return CellLocation{}, fmt.Errorf("%w: %q", ErrParseCellLocation, s)
	}
	return CellLocation{Lane: laneN, Index: indexN}, nil
}

// ParseCellLocationRange parses `(lane, start-end)` or `(lane, index)`, the
// latter shorthand for the single-cell range `[index, index+1)`.
func ParseCellLocationRange(s string) (CellLocationRange, error) {
	stripped := strings.ReplaceAll(s, " ", "")
	inner, err := stripParens(stripped)
	if err != nil {
		return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
	}
	laneStr, indexes, ok := cut(inner, ",")
	if !ok {
		return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
	}
	lane, err := strconv.Atoi(laneStr)
	if err != nil {
		return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
	}

	var start, end int
	if startStr, endStr, ok := cut(indexes, "-"); ok {
		if start, err = strconv.Atoi(startStr); err != nil {
			return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
		}
		if end, err = strconv.Atoi(endStr); err != nil {
			return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
		}
	} else {
		single, err := strconv.Atoi(indexes)
		if err != nil {
			return CellLocationRange{}, fmt.Errorf("%w: %q", ErrParseCellLocationRange, s)
		}
		start, end = single, single+1
	}

	return CellLocationRange{Lane: lane, Start: start, End: end}, nil
}

func stripParens(s string) (string, error) {
	s = strings.ReplaceAll(s, " ", "")
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("missing surrounding parens")
	}
	return s[1 : len(s)-1], nil
}

func cut(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}
