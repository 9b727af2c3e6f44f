// Package engine contains the scheduler: the polling tick loop, the
// per-schedule run executor, and the in-flight registry that suppresses
// overlapping executions.
package engine

import "sync"

// Registry tracks schedules with an execution in flight. It suppresses
// overlap within this process only; it is not a distributed lock, and it is
// volatile by design: a restart begins empty and the startup orphan sweep
// clears any stale state left in the database.
type Registry struct {
	mu            sync.Mutex
	inFlight      map[string]struct{}
	maxConcurrent int
}

// NewRegistry creates a Registry. maxConcurrent <= 0 means unbounded.
func NewRegistry(maxConcurrent int) *Registry {
	return &Registry{
		inFlight:      make(map[string]struct{}),
		maxConcurrent: maxConcurrent,
	}
}

// TryAdmit atomically reserves the schedule ID. It returns false when the
// schedule is already in flight or the concurrency cap is reached.
func (r *Registry) TryAdmit(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[id]; ok {
		return false
	}
	if r.maxConcurrent > 0 && len(r.inFlight) >= r.maxConcurrent {
		return false
	}
	r.inFlight[id] = struct{}{}
	return true
}

// Release removes the schedule ID. No-op if absent.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, id)
}

// Len returns the number of schedules currently in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}
