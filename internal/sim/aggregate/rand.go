package aggregate

import "math/rand/v2"

// Source supplies the uniform draws in [0, 1) that drive every
// stochastic decision in the engine: spawn placement, move selection and
// the stickiness roll. Replaying an identical draw sequence reproduces
// an identical aggregate and identical statistics.
type Source interface {
	Float64() float64
}

func newSource(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// pick maps one uniform draw onto an index in [0, n).
func pick(r Source, n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
