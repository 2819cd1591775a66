package game

import "math/rand"

// RandomSource is the injected randomness used for probability-gated effects
// and the Flush Five bonus roll. Injecting it keeps combat outcomes
// reproducible: tests script the draws, production seeds math/rand.
type RandomSource interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSeededSource returns a deterministic RandomSource for the given seed.
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// scriptedSource replays a fixed sequence of float draws, cycling when
// exhausted. Intn maps the same sequence onto the integer range. Used by
// tests to force probability gates open or closed.
type scriptedSource struct {
	draws []float64
	next  int
}

// NewScriptedSource builds a RandomSource that replays the given draws.
func NewScriptedSource(draws ...float64) RandomSource {
	if len(draws) == 0 {
		draws = []float64{0}
	}
	return &scriptedSource{draws: draws}
}

func (s *scriptedSource) Float64() float64 {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	return int(s.Float64() * float64(n))
}
