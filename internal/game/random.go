package game

import (
	"math/rand"
	"time"
)

// RandomSource supplies values in [0,1)
type RandomSource interface {
	Next() float64
}

// DefaultSource is the non-reproducible source used for solo play
type DefaultSource struct {
	rnd *rand.Rand
}

func NewDefaultSource() *DefaultSource {
	return &DefaultSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *DefaultSource) Next() float64 {
	return s.rnd.Float64()
}

const (
	SeedModulus    int64 = 1<<35 - 31
	SeedMultiplier int64 = 185852

	// substituted for a seed or state that reduces to zero
	seedFallback int64 = 2147483647
)

// SeededSource is a Lehmer-style linear congruential generator.
// Every participant of a multiplayer session builds one from the shared
// seed so the mine layout is reproduced cell-for-cell.
type SeededSource struct {
	state int64
}

func NewSeededSource(seed int64) *SeededSource {
	s := seed % SeedModulus
	if s < 0 {
		s += SeedModulus
	}
	if s == 0 {
		s = seedFallback
	}
	return &SeededSource{state: s}
}

// Next advances the state. state < 2^35 and a < 2^18, so the product fits in int64.
func (s *SeededSource) Next() float64 {
	s.state = s.state * SeedMultiplier % SeedModulus
	if s.state == 0 {
		s.state = seedFallback
	}
	return float64(s.state) / float64(SeedModulus)
}
