// internal/dispatch/rand.go
package dispatch

import (
	"math/rand"
	"sync"
	"time"
)

// Rand supplies the uniform draws that decide strategy success. Injected so
// tests can force deterministic outcomes.
type Rand interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
}

// lockedRand guards a math/rand source for concurrent reporters.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newLockedRand() *lockedRand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}
