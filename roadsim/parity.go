package roadsim

// ParityFlag is a two-state marker that lets the round() sweep detect a
// car that has already moved this round, without buffering a second
// grid. The world's flag flips exactly once, at the end of a full
// sweep; a car's flag flips only when it is found to equal the world's
// flag at the moment it is visited. Both start equal (parityA), so the
// first visit of a fresh car in a round always reports "not yet moved".
type ParityFlag bool

const (
	parityA ParityFlag = false
	parityB ParityFlag = true
)

func (p ParityFlag) flipped() ParityFlag {
	return !p
}

// Sync reports whether the car carrying this flag has not yet moved this
// round (the world's flag still matches the car's). If so, it flips the
// car's own flag out of sync with the world and returns true; otherwise
// it leaves the flag untouched and returns false, meaning the car was
// already processed earlier in this same sweep (a wrap-around re-visit).
func (p *ParityFlag) Sync(world ParityFlag) bool {
	if *p == world {
		*p = p.flipped()
		return true
	}
	return false
}
