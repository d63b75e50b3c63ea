package spots

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is the in-memory authoritative state of every spot. Mutual
// exclusion is per spot: concurrent events for different spots never contend,
// and the compare-and-swap guard in Transition is the single synchronization
// point that makes the allocator's read-then-reserve sequence safe.
type Registry struct {
	mu    sync.RWMutex // guards the map itself, not spot state
	spots map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	spot Spot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		spots: make(map[string]*entry),
	}
}

// Seed creates the facility grid: floors -1..-floors, each rows x cols, with
// ids of the form F{floor}-R{row}-C{col}. All spots start free. Seeding an
// existing id is a no-op so Seed is safe to call on restart before restoring
// persisted state.
func (r *Registry) Seed(floors, rows, cols int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for f := 1; f <= floors; f++ {
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				id := fmt.Sprintf("F%d-R%d-C%d", f, row, col)
				if _, exists := r.spots[id]; exists {
					continue
				}
				r.spots[id] = &entry{
					spot: Spot{
						ID:            id,
						Location:      Location{Floor: -f, Row: row, Col: col},
						Status:        StatusFree,
						LocationKnown: true,
						UpdatedAt:     time.Now().UTC(),
					},
				}
			}
		}
	}
}

// Restore overwrites a spot's full state, creating it if needed. Used at boot
// to replay the persistence mirror; not part of the event path.
func (r *Registry) Restore(spot Spot) {
	e := r.ensure(spot.ID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spot = spot
}

// Get returns a copy of the spot with the given id.
func (r *Registry) Get(id string) (Spot, error) {
	r.mu.RLock()
	e, ok := r.spots[id]
	r.mu.RUnlock()
	if !ok {
		return Spot{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spot, nil
}

// ListFree returns all currently free spots, sorted by id. The ordering is
// stable within one call so cost ties always break the same way.
func (r *Registry) ListFree() []Spot {
	return r.list(func(s Spot) bool { return s.Status == StatusFree })
}

// Snapshot returns a copy of every spot, sorted by id.
func (r *Registry) Snapshot() []Spot {
	return r.list(func(Spot) bool { return true })
}

func (r *Registry) list(keep func(Spot) bool) []Spot {
	r.mu.RLock()
	ids := make([]string, 0, len(r.spots))
	for id := range r.spots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)

	result := make([]Spot, 0, len(ids))
	for _, id := range ids {
		r.mu.RLock()
		e, ok := r.spots[id]
		r.mu.RUnlock()
		if !ok {
			continue
		}
		e.mu.Lock()
		s := e.spot
		e.mu.Unlock()
		if keep(s) {
			result = append(result, s)
		}
	}
	return result
}

// FindReservedByPlate returns the spot currently reserved for the given
// plate, if any. Used to resolve "vehicle parked somewhere else" overrides.
func (r *Registry) FindReservedByPlate(plate string) (Spot, bool) {
	if plate == "" {
		return Spot{}, false
	}
	for _, s := range r.Snapshot() {
		if s.Status == StatusReserved && s.LicensePlate == plate {
			return s, true
		}
	}
	return Spot{}, false
}

// Transition atomically moves a spot from one of the expected statuses to the
// target status, updating the assigned plate and driver name in the same
// indivisible step. It returns ErrConflict when the current status is not in
// the expected set, which is how concurrent allocations, timeouts and status
// reports lose races without corrupting state.
func (r *Registry) Transition(id string, from []Status, to Status, plate, driver string) (Spot, error) {
	if !to.IsValid() {
		return Spot{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if to != StatusFree && plate == "" {
		return Spot{}, fmt.Errorf("%w: %s requires a license plate", ErrInvalidTransition, to)
	}

	r.mu.RLock()
	e, ok := r.spots[id]
	r.mu.RUnlock()
	if !ok {
		return Spot{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	matched := false
	for _, s := range from {
		if e.spot.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return Spot{}, fmt.Errorf("%w: %s is %s", ErrConflict, id, e.spot.Status)
	}

	e.spot.Status = to
	if to == StatusFree {
		e.spot.LicensePlate = ""
		e.spot.DriverName = ""
	} else {
		e.spot.LicensePlate = plate
		e.spot.DriverName = driver
	}
	e.spot.UpdatedAt = time.Now().UTC()

	return e.spot, nil
}

// Reset forces a spot back to free regardless of its current state, creating
// it if the id is new. A nil location leaves any known location in place; a
// location is only adopted when valid, so a garbled reset cannot corrupt the
// grid. Reset is idempotent.
func (r *Registry) Reset(id string, loc *Location) Spot {
	e := r.ensure(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if loc != nil && loc.IsValid() {
		e.spot.Location = *loc
		e.spot.LocationKnown = true
	}
	e.spot.Status = StatusFree
	e.spot.LicensePlate = ""
	e.spot.DriverName = ""
	e.spot.UpdatedAt = time.Now().UTC()

	return e.spot
}

func (r *Registry) ensure(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.spots[id]
	if !ok {
		e = &entry{spot: Spot{ID: id, Status: StatusFree}}
		r.spots[id] = e
	}
	return e
}
