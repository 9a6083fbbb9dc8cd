package roadsim

// alwaysRNG is a scripted RNG for deterministic kernel tests: every
// Bernoulli draw returns the fixed value, regardless of p.
type alwaysRNG bool

func (a alwaysRNG) Bernoulli(p float32) bool { return bool(a) }

// seqRNG replays a fixed sequence of Bernoulli outcomes, cycling once
// exhausted, for tests that need a specific pattern of draws.
type seqRNG struct {
	outcomes []bool
	i        int
}

func (s *seqRNG) Bernoulli(p float32) bool {
	v := s.outcomes[s.i%len(s.outcomes)]
	s.i++
	return v
}
