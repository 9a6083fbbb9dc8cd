package live

import (
	"math"
	"sync/atomic"
)

// metricsCache holds the latest average-speed reading behind a lock-free
// atomic, so the HTTP metrics handler and the simulation's round loop
// never contend on a mutex. The float64 is stored as its bit pattern
// since sync/atomic has no native float64 primitive; set() is an
// unconditional overwrite, not a read-modify-write, so no
// compare-and-swap loop is needed.
type metricsCache struct {
	bits uint64
}

func newMetricsCache() *metricsCache {
	return &metricsCache{}
}

func (m *metricsCache) set(v float64) {
	atomic.StoreUint64(&m.bits, math.Float64bits(v))
}

func (m *metricsCache) get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.bits))
}
