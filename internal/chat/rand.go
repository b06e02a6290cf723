package chat

import (
	"math/rand"
	"sync"
)

// Rand is the randomness source behind every probabilistic decision in
// this package. All randomized control flow goes through this
// interface so tests can substitute a deterministic source.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// lockedRand adapts math/rand for concurrent use; response timers fire
// on timer goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a seeded concurrent-safe Rand.
func NewRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}
