// internal/dispatch/storm.go
package dispatch

import (
	"sync"

	"github.com/FairForge/wardkeeper/internal/fault"
	"golang.org/x/time/rate"
)

// stormDetector watches per-category report rates. A category exceeding its
// sustained rate is a fault storm: an upstream system failing repeatedly or
// a feedback loop in the world simulation. Detection is observational only;
// storms are counted and logged, never throttled, since every fault must
// still be resolved.
type stormDetector struct {
	mu       sync.Mutex
	limiters map[fault.Category]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newStormDetector(perSecond float64, burst int) *stormDetector {
	return &stormDetector{
		limiters: make(map[fault.Category]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Within reports whether this report stays inside the category's sustained
// rate. A false return marks a storm event.
func (s *stormDetector) Within(category fault.Category) bool {
	s.mu.Lock()
	limiter, ok := s.limiters[category]
	if !ok {
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.limiters[category] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}
