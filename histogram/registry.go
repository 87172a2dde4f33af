package histogram

import (
	"sync"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// Registry maps predicate names to their histogram, one per datastore.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Histogram
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Histogram)}
}

// Register installs a histogram for name, replacing any prior registration.
func (r *Registry) Register(name string, strategy Strategy, trainingSize int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = New(strategy, trainingSize)
}

// Observe routes x to name's histogram if one is registered; it is a no-op
// otherwise, since not every predicate is tracked.
func (r *Registry) Observe(name string, x float64) {
	r.mu.RLock()
	h, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		h.Observe(x)
	}
}

// Snapshot looks up name and clones its current buckets.
func (r *Registry) Snapshot(name string) ([]Bucket, error) {
	r.mu.RLock()
	h, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, hxerr.New(hxerr.NotFound, "no histogram registered for "+name)
	}
	return h.Snapshot(), nil
}
