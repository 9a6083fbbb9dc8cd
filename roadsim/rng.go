package roadsim

import "math/rand"

// RNG is the port through which the kernel draws randomness. No
// component owns global random state; a Road is handed an RNG at
// construction and never reaches for math/rand directly, so tests can
// substitute a deterministic or scripted source.
type RNG interface {
	// Bernoulli returns true with probability p, for p in [0,1]. Callers
	// never depend on the underlying generator.
	Bernoulli(p float32) bool
}

// mathRandRNG is the default RNG, a thin wrapper over math/rand.
type mathRandRNG struct {
	r *rand.Rand
}

// NewRNG returns the default RNG port backed by math/rand, seeded with
// seed. Use a fixed seed for reproducible test scenarios.
func NewRNG(seed int64) RNG {
	return &mathRandRNG{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRandRNG) Bernoulli(p float32) bool {
	return m.r.Float32() <= p
}
