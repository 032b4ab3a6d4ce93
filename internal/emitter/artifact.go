package emitter

import "github.com/gridasm/spatialasm/internal/layout"

// LineInstruction is one opcode emitted at the address reached while
// walking a particular source line, kept for UI tooling that wants to
// map source text to emitted cells (spec.md §3's optional per-source-
// line instruction lists).
type LineInstruction struct {
	Address int
	Opcode  string
}

// Artifact is the immutable, deterministic output bundle produced by
// Emitter.Emit (spec §3 ProgramArtifact, L10). The two coordinate-keyed
// cell maps (machine code layout and initial objects) are unexported and
// iterate in lexicographic coordinate order through their Ordered*
// accessors, the contract spec §8 requires. The exported maps are plain
// Go maps with no defined iteration order.
type Artifact struct {
	ProgramID string

	Sources map[string][]string

	machineCodeLayout map[layout.CoordKey]int32
	orderedCoords     []layout.CoordKey

	initialObjects      map[layout.CoordKey]int32
	orderedObjectCoords []layout.CoordKey

	SourceMap map[int]SourceRef

	CallSiteBindings map[layout.CoordKey][]int

	CoordToLinear map[layout.CoordKey]int
	LinearToCoord map[int][]int32

	LabelAddressToName map[int]string

	RegisterAliasMap map[int]string

	ProcNameToParamNames map[string][]string

	TokenMap    map[string]int
	TokenLookup map[int]string

	SourceLineInstructions map[string][]LineInstruction
}

// SourceRef is the per-address source-location record carried into the
// artifact, mirroring spec §3's sourceMap entries.
type SourceRef struct {
	FileName    string
	LineNumber  int
	LineContent string
}

// MachineCodeLayout returns the encoded cell value at coord and whether
// one was written there.
func (a *Artifact) MachineCodeLayout(coord layout.CoordKey) (int32, bool) {
	v, ok := a.machineCodeLayout[coord]
	return v, ok
}

// OrderedMachineCodeLayout returns (coord, value) pairs in ascending
// lexicographic coordinate order, the publicly observable iteration
// contract spec §5/§8 requires.
func (a *Artifact) OrderedMachineCodeLayout() []CoordValue {
	out := make([]CoordValue, len(a.orderedCoords))
	for i, c := range a.orderedCoords {
		out[i] = CoordValue{Coord: c, Value: a.machineCodeLayout[c]}
	}
	return out
}

// InitialObjects returns the initial-world-object cell value at coord, if
// any.
func (a *Artifact) InitialObjects(coord layout.CoordKey) (int32, bool) {
	v, ok := a.initialObjects[coord]
	return v, ok
}

// OrderedInitialObjects returns initial-world-object (coord, value) pairs
// in ascending lexicographic coordinate order.
func (a *Artifact) OrderedInitialObjects() []CoordValue {
	out := make([]CoordValue, len(a.orderedObjectCoords))
	for i, c := range a.orderedObjectCoords {
		out[i] = CoordValue{Coord: c, Value: a.initialObjects[c]}
	}
	return out
}

// CoordValue pairs a coordinate key with its encoded cell value.
type CoordValue struct {
	Coord layout.CoordKey
	Value int32
}

// VerifyDeterminism reports whether a and other are the observably
// identical artifacts: same ProgramID and same iteration order of both
// coordinate-keyed maps (spec §8's first testable property).
func (a *Artifact) VerifyDeterminism(other *Artifact) bool {
	if a.ProgramID != other.ProgramID {
		return false
	}
	if len(a.orderedCoords) != len(other.orderedCoords) {
		return false
	}
	for i := range a.orderedCoords {
		if a.orderedCoords[i] != other.orderedCoords[i] {
			return false
		}
		if a.machineCodeLayout[a.orderedCoords[i]] != other.machineCodeLayout[other.orderedCoords[i]] {
			return false
		}
	}
	if len(a.orderedObjectCoords) != len(other.orderedObjectCoords) {
		return false
	}
	for i := range a.orderedObjectCoords {
		if a.orderedObjectCoords[i] != other.orderedObjectCoords[i] {
			return false
		}
	}
	return true
}
