package encounter

import "math/rand/v2"

// RandomSource is the randomness the zone and manager rolls draw from.
// Tests swap in scripted sources; the game uses DefaultRNG.
type RandomSource interface {
	IntN(n int) int   // uniform in [0, n)
	Float64() float64 // uniform in [0, 1)
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int   { return rand.IntN(n) }
func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG returns a source backed by the runtime-seeded global generator.
func DefaultRNG() RandomSource { return globalRNG{} }

// Replicable source for simulations and tools.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int   { return s.r.IntN(n) }
func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// rollPercent draws a uniform integer in [1, 100].
func rollPercent(rng RandomSource) int {
	return rng.IntN(100) + 1
}

// rollRange draws a uniform integer in [lo, hi].
func rollRange(rng RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
