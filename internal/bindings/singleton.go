package bindings

import "sync"

// This thin singleton façade exists for API compatibility with callers
// that cannot thread a *Registry value through (spec §9's "global
// singleton registry" re-architecture note says to keep a façade but
// require explicit teardown for tests). Prefer constructing and passing
// an owned *Registry via LinkingContext; use Default only at the few call
// sites that genuinely have no context to carry one.
var (
	defaultMu  sync.RWMutex
	defaultReg = New()
)

// Default returns the process-wide default Registry.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}

// SetDefault replaces the process-wide default Registry, for test
// isolation between independent compilations that rely on Default().
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = r
}

// ResetDefault replaces the process-wide default Registry with a fresh,
// empty one. Equivalent to SetDefault(New()), provided for readability at
// test teardown call sites.
func ResetDefault() {
	SetDefault(New())
}
