// Package bindings implements the call-binding registry (spec §4.8) and
// resolver (spec §4.9): the process-wide map from a CALL site to the
// ordered list of caller register IDs providing its actuals, consumed at
// runtime to populate formal-parameter registers.
package bindings

import (
	"sync"

	"github.com/gridasm/spatialasm/internal/layout"
)

// Registry holds two parallel maps: call site keyed by linear address,
// and by absolute grid coordinate (for FORK-style code duplication
// robustness, spec §4.6). Guarded the way wazero's compilationcache
// guards its own shared, concurrently-read/written content map: a
// RWMutex plus defensive copies on every insert and read, so readers
// never observe a partially-written slice and no caller can corrupt the
// registry's state by mutating a slice they handed in or got back.
type Registry struct {
	mu            sync.RWMutex
	byLinearAddr  map[int][]int
	byAbsoluteKey map[layout.CoordKey][]int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byLinearAddr:  make(map[int][]int),
		byAbsoluteKey: make(map[layout.CoordKey][]int),
	}
}

// RegisterForLinearAddress stores a defensive copy of regIDs keyed by the
// call site's linear address.
func (r *Registry) RegisterForLinearAddress(addr int, regIDs []int) {
	cp := copyInts(regIDs)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLinearAddr[addr] = cp
}

// RegisterForAbsoluteCoord stores a defensive copy of regIDs keyed by the
// call site's absolute grid coordinate.
func (r *Registry) RegisterForAbsoluteCoord(coord []int32, regIDs []int) {
	key := layout.NewCoordKey(coord)
	cp := copyInts(regIDs)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAbsoluteKey[key] = cp
}

// GetForLinearAddress returns a defensive copy of the bindings registered
// for addr, and whether any were found.
func (r *Registry) GetForLinearAddress(addr int) ([]int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byLinearAddr[addr]
	if !ok {
		return nil, false
	}
	return copyInts(v), true
}

// GetForAbsoluteCoord returns a defensive copy of the bindings registered
// for coord, and whether any were found.
func (r *Registry) GetForAbsoluteCoord(coord []int32) ([]int, bool) {
	key := layout.NewCoordKey(coord)
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byAbsoluteKey[key]
	if !ok {
		return nil, false
	}
	return copyInts(v), true
}

// ClearAll resets both maps. It is intended for test setup/teardown
// only. It holds the write lock while it runs, so a concurrent reader sees
// either the old bindings or none.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLinearAddr = make(map[int][]int)
	r.byAbsoluteKey = make(map[layout.CoordKey][]int)
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
