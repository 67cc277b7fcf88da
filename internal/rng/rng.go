// Package rng provides the deterministic pseudo-random stream every part of
// the harness draws from. A Stream is a pure function of its seed: two
// streams built from the same seed produce identical output forever, which is
// what makes whole tournament runs bit-for-bit reproducible.
//
// There is deliberately no ambient or global source here. Code that needs
// randomness takes a *Stream parameter, and each simulated match owns a
// stream seeded from its match seed, so concurrent matches cannot observe
// each other's draws.
package rng

// Stream generates floats in [0,1) from a 32-bit state. The state advances
// by a fixed odd constant per draw and is mixed through two multiply-xorshift
// rounds with odd multipliers derived from the state itself.
type Stream struct {
	state uint32
}

// New returns a stream seeded with seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Uint32 advances the stream and returns the next 32 mixed bits.
func (s *Stream) Uint32() uint32 {
	s.state += 0x6d2b79f5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return z ^ (z >> 14)
}

// Float64 returns the next value in [0,1), built from the high 24 bits of
// the mixed state.
func (s *Stream) Float64() float64 {
	return float64(s.Uint32()>>8) / (1 << 24)
}

// Intn returns a value in [0,n). n must be positive.
func (s *Stream) Intn(n int) int {
	return int(s.Float64() * float64(n))
}

// Range returns a value uniform in [lo, hi).
func (s *Stream) Range(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Shuffle runs an in-place Fisher-Yates shuffle over n elements.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}

// Scoped builds an isolated stream from seed and hands it to fn. The stream
// never escapes the call, so no other caller can contaminate or observe its
// state; errors from fn propagate unchanged.
func Scoped(seed uint32, fn func(*Stream) error) error {
	return fn(New(seed))
}

// DeriveSeed folds a sequence of values into one child seed. Scheduling code
// uses it to give every (round, group, map, rotation) tuple a stable seed of
// its own.
func DeriveSeed(root uint32, parts ...uint32) uint32 {
	h := root
	for _, p := range parts {
		h ^= p + 0x9e3779b9 + (h << 6) + (h >> 2)
		h = (h ^ (h >> 16)) * 0x45d9f3b
	}
	return h
}
