// Package layout holds the contract this module consumes from the
// external coordinate-layout pass (spec §3/§6): the mapping between
// linear instruction-stream addresses and grid coordinates, the label
// table, and the source map. It also defines CoordKey, the comparable,
// structurally-ordered coordinate key spec §9 calls for in place of
// identity-hashed array keys.
package layout

import (
	"encoding/binary"
	"sort"

	"github.com/gridasm/spatialasm/internal/ir"
	"github.com/gridasm/spatialasm/internal/molecule"
)

// CoordKey is an immutable, comparable encoding of an N-dimensional
// coordinate, safe to use as a Go map key with structural (not identity)
// equality, and orderable for the lexicographic-coordinate-order contract
// required throughout L8/L10.
type CoordKey string

const coordComponentWidth = 4

// NewCoordKey encodes coords into a CoordKey. Each component is written
// big-endian with its sign bit flipped, the standard order-preserving
// encoding for signed integers: flipping the sign bit maps the two's
// complement range onto an unsigned range with the same ordering, so a
// plain byte-string comparison of the concatenated components reproduces
// lexicographic coordinate order exactly, including across sign changes.
func NewCoordKey(coords []int32) CoordKey {
	buf := make([]byte, len(coords)*coordComponentWidth)
	for i, c := range coords {
		binary.BigEndian.PutUint32(buf[i*coordComponentWidth:], uint32(c)^0x80000000)
	}
	return CoordKey(buf)
}

// Components decodes the CoordKey back into its coordinate components.
func (k CoordKey) Components() []int32 {
	data := []byte(k)
	out := make([]int32, 0, len(data)/coordComponentWidth)
	for len(data) > 0 {
		u := binary.BigEndian.Uint32(data[:coordComponentWidth]) ^ 0x80000000
		out = append(out, int32(u))
		data = data[coordComponentWidth:]
	}
	return out
}

// Less reports whether k sorts before other in lexicographic coordinate
// order.
func (k CoordKey) Less(other CoordKey) bool { return k < other }

// SortCoordKeys sorts keys in ascending lexicographic coordinate order,
// the publicly observable iteration contract of ProgramArtifact.
func SortCoordKeys(keys []CoordKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

// PlacedMolecule is a molecule placed at a world coordinate ahead of
// execution (spec §3's initialWorldObjects entries).
type PlacedMolecule struct {
	Molecule molecule.Molecule
}

// Result is the output of the external layout pass, consumed by the
// Emitter. Every field mirrors spec §3's LayoutResult verbatim.
type Result struct {
	LinearAddressToCoord         map[int][]int32
	RelativeCoordToLinearAddress map[string]int
	LabelToAddress               map[string]int
	SourceMap                    map[int]ir.SourceInfo
	InitialWorldObjects          map[CoordKey]PlacedMolecule
}

// New returns an empty Result ready to be populated by the layout pass.
func New() *Result {
	return &Result{
		LinearAddressToCoord:         make(map[int][]int32),
		RelativeCoordToLinearAddress: make(map[string]int),
		LabelToAddress:               make(map[string]int),
		SourceMap:                    make(map[int]ir.SourceInfo),
		InitialWorldObjects:          make(map[CoordKey]PlacedMolecule),
	}
}

// CoordFor returns the coordinate for a linear address, and whether it was
// present. Emitter invariant (spec §3): every address it visits must
// resolve here, or compilation fails.
func (r *Result) CoordFor(addr int) ([]int32, bool) {
	c, ok := r.LinearAddressToCoord[addr]
	return c, ok
}
