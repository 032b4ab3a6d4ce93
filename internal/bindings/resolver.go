package bindings

// Resolver looks up the bindings for the CALL currently being executed
// (spec §4.9). It never parses source at runtime: the runtime's
// correctness is independent of the artifact's source map, closing the
// design hole spec §4.9 calls out where source re-parsing at runtime let
// code evolution undermine correctness.
type Resolver struct {
	registry *Registry
}

// NewResolver builds a Resolver reading from registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the bound register IDs for the CALL opcode cell at
// absoluteCoord, and whether a binding was found.
func (r *Resolver) Resolve(absoluteCoord []int32) ([]int, bool) {
	return r.registry.GetForAbsoluteCoord(absoluteCoord)
}
