package reservations

import (
	"sync"
	"time"

	"parkwise/internal/shared/config"
	"parkwise/internal/spots"
	"parkwise/pkg/logger"
)

// EvictedFunc is invoked after the supervisor successfully returns a timed-out
// reservation to free, with the spot's committed state. It runs outside any
// spot lock, so it may publish commands and snapshots.
type EvictedFunc func(spot spots.Spot)

// Supervisor owns the time-bounded life of every reservation. Each reserved
// spot gets one single-shot eviction timer; re-arming a spot supersedes its
// previous timer so a stale timer can never evict a newer reservation.
type Supervisor struct {
	registry  *spots.Registry
	ttl       time.Duration
	scaleTTL  bool
	onEvicted EvictedFunc
	log       *logger.Logger

	mu      sync.Mutex
	timers  map[string]*armedTimer
	stopped bool
}

type armedTimer struct {
	timer *time.Timer
	gen   uint64
	since time.Time
}

func NewSupervisor(registry *spots.Registry, cfg config.ParkingConfig, onEvicted EvictedFunc, log *logger.Logger) *Supervisor {
	return &Supervisor{
		registry:  registry,
		ttl:       cfg.EvictionTTL,
		scaleTTL:  cfg.EvictionScaleWithEstimate,
		onEvicted: onEvicted,
		log:       log,
		timers:    make(map[string]*armedTimer),
	}
}

var generation uint64

// OnReserved arms the eviction timer for a freshly reserved spot. The
// duration is the flat configured TTL unless the deployment opted into
// scaling with the travel estimate. Any previous timer for the spot is
// cancelled first.
func (s *Supervisor) OnReserved(spotID string, estimate time.Duration) {
	duration := s.ttl
	if s.scaleTTL && estimate > 0 {
		duration = estimate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if prev, ok := s.timers[spotID]; ok {
		prev.timer.Stop()
	}

	generation++
	gen := generation
	armed := &armedTimer{
		gen:   gen,
		since: time.Now(),
	}
	armed.timer = time.AfterFunc(duration, func() {
		s.fire(spotID, gen)
	})
	s.timers[spotID] = armed
}

// OnResolved cancels the eviction timer for a spot that left the reserved
// state for any reason other than the timer itself. Unknown ids are fine:
// resolution events race timers by design.
func (s *Supervisor) OnResolved(spotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if armed, ok := s.timers[spotID]; ok {
		armed.timer.Stop()
		delete(s.timers, spotID)
	}
}

// Pending reports how many eviction timers are currently armed.
func (s *Supervisor) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every outstanding timer. Used on shutdown.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, armed := range s.timers {
		armed.timer.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}

// fire runs when an eviction timer expires. The generation check discards
// timers that were superseded or cancelled after the callback was already
// scheduled. The transition's expected-status guard then handles the
// remaining race: if the spot left reserved in the meantime the transition
// fails with a conflict, which is the expected outcome and not an error.
func (s *Supervisor) fire(spotID string, gen uint64) {
	s.mu.Lock()
	armed, ok := s.timers[spotID]
	if !ok || armed.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, spotID)
	waited := time.Since(armed.since)
	s.mu.Unlock()

	spot, err := s.registry.Transition(spotID, []spots.Status{spots.StatusReserved}, spots.StatusFree, "", "")
	if err != nil {
		// Already occupied, reset or freed; nothing to evict.
		s.log.WithSpot(spotID).Debug("eviction timer fired on resolved spot")
		return
	}

	s.log.LogEviction(spotID, waited)
	if s.onEvicted != nil {
		s.onEvicted(spot)
	}
}
