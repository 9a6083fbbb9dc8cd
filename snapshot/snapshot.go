// Package snapshot provides pluggable consumers of per-round Road state.
package snapshot

import "highwaysim/roadsim"

// SnapshotSink consumes one Road snapshot per round. Implementations
// range from doing nothing, to a textual trace, to an accumulated raster
// image flushed once at Close.
type SnapshotSink interface {
	AddSnapshot(road *roadsim.Road) error
	Close() error
}

// Noop discards every snapshot. The zero value is ready to use.
type Noop struct{}

func (Noop) AddSnapshot(*roadsim.Road) error { return nil }
func (Noop) Close() error                    { return nil }
