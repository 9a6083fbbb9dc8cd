package roadsim

import "errors"

// Recoverable at cell-placement time; the kernel treats these as ordinary
// results when populating the grid, but a round() encountering either one
// on a move it expects to succeed is a kernel invariant violation.
var (
	ErrCellBlocked  = errors.New("roadsim: cell is blocked")
	ErrCellOccupied = errors.New("roadsim: cell already holds a car")
)

// Fatal configuration errors, raised by NewRoad.
var (
	ErrInvalidProbability = errors.New("roadsim: probability must be in [0,1]")
	ErrInvalidDensitySum  = errors.New("roadsim: sum of vehicle densities must be in [0,1]")
)
