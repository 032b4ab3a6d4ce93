// Package emitter implements the walk from rewritten IR to typed grid
// cells (spec §4.7, L8) and the immutable ProgramArtifact bundle it
// produces (spec §3, L10). This mirrors the teacher's backend.Compiler
// encode loop: a running address counter, a per-instruction encode
// switch, and a final sort-and-hash step for a stable content identity.
package emitter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gridasm/spatialasm/internal/emit"
	"github.com/gridasm/spatialasm/internal/ir"
	"github.com/gridasm/spatialasm/internal/isa"
	"github.com/gridasm/spatialasm/internal/layout"
	"github.com/gridasm/spatialasm/internal/molecule"
	"github.com/gridasm/spatialasm/internal/xlog"
)

// Emitter walks a rewritten IrProgram and produces an Artifact.
type Emitter struct {
	ISA isa.ISA
}

// New builds an Emitter targeting target.
func New(target isa.ISA) *Emitter {
	return &Emitter{ISA: target}
}

type builderState struct {
	addr int

	machineCodeLayout map[layout.CoordKey]int32
	coordToLinear     map[layout.CoordKey]int
	linearToCoord     map[int][]int32

	registerAliasMap map[int]string
	tokenMap         map[string]int
	tokenLookup      map[int]string

	sourceMap      map[int]SourceRef
	sources        map[string][]string
	seenSourceLine map[[2]any]bool

	sourceLineInstructions map[string][]LineInstruction

	callSiteBindings map[layout.CoordKey][]int

	procNameToParamNames map[string][]string
	pendingProcParams    []string
	havePendingParams    bool
}

// Emit walks items in order, maintaining a running linear address counter
// starting at 0 (spec §4.7). lay supplies the address→coordinate and
// label→address maps produced externally by the coordinate-layout pass.
// ctx, if non-nil, supplies the call-binding registry and the pending
// bindings recorded by internal/emit's binding-capture rules; each
// classified CALL's opcode-cell address/coordinate finalizes its entry
// there as soon as it is known.
func (e *Emitter) Emit(items []ir.Item, lay *layout.Result, ctx *emit.LinkingContext) (*Artifact, error) {
	st := &builderState{
		machineCodeLayout:      make(map[layout.CoordKey]int32),
		coordToLinear:          make(map[layout.CoordKey]int),
		linearToCoord:          make(map[int][]int32),
		registerAliasMap:       make(map[int]string),
		tokenMap:               make(map[string]int),
		tokenLookup:            make(map[int]string),
		sourceMap:              make(map[int]SourceRef),
		sources:                make(map[string][]string),
		seenSourceLine:         make(map[[2]any]bool),
		sourceLineInstructions: make(map[string][]LineInstruction),
		callSiteBindings:       make(map[layout.CoordKey][]int),
		procNameToParamNames:   make(map[string][]string),
	}

	for _, item := range items {
		switch v := item.(type) {
		case ir.Directive:
			if v.Namespace == ir.NamespaceCore && v.Name == ir.DirectiveProcEnter {
				if pv, ok := v.Args["params"]; ok {
					if sv, ok := pv.(ir.StringListValue); ok {
						st.pendingProcParams = sv.Values
						st.havePendingParams = true
					}
				}
			}
			continue
		case ir.LabelDef:
			if st.havePendingParams {
				st.procNameToParamNames[v.Name] = st.pendingProcParams
				st.havePendingParams = false
				st.pendingProcParams = nil
			}
			continue
		case ir.Instruction:
			if err := e.emitInstruction(v, lay, ctx, st); err != nil {
				return nil, err
			}
		}
	}

	a := st.toArtifact()
	for coord, placed := range lay.InitialWorldObjects {
		a.initialObjects[coord] = placed.Molecule.ToInt()
	}
	objCoords := make([]layout.CoordKey, 0, len(a.initialObjects))
	for c := range a.initialObjects {
		objCoords = append(objCoords, c)
	}
	layout.SortCoordKeys(objCoords)
	a.orderedObjectCoords = objCoords

	PopulateLabelAddressToName(a, lay)
	if ctx != nil && ctx.Logger != nil {
		ctx.Logger.Info("artifact emitted", xlog.String("programId", a.ProgramID), xlog.Int("cells", len(a.orderedCoords)))
	}
	return a, nil
}

func (e *Emitter) emitInstruction(instr ir.Instruction, lay *layout.Result, ctx *emit.LinkingContext, st *builderState) error {
	opcodeID, ok := e.ISA.GetInstructionIDByName(instr.Opcode)
	if !ok {
		return ir.Errorf(instr.Source, "unknown opcode %q", instr.Opcode)
	}
	st.tokenMap[instr.Opcode] = opcodeID
	st.tokenLookup[opcodeID] = instr.Opcode

	opcodeAddr := st.addr
	opcodeCoord, err := st.writeCell(lay, instr.Source, molecule.Molecule{Type: molecule.CODE, Value: int32(opcodeID)})
	if err != nil {
		return err
	}
	st.recordSource(opcodeAddr, instr.Source)
	st.recordLineInstruction(instr.Source, opcodeAddr, instr.Opcode)

	if instr.Opcode == "CALL" && instr.CallSiteID != 0 && ctx != nil {
		if pending, ok := ctx.Pending(instr.CallSiteID); ok {
			ctx.Bindings.RegisterForLinearAddress(opcodeAddr, pending.RegIDs)
			ctx.Bindings.RegisterForAbsoluteCoord(opcodeCoord, pending.RegIDs)
			st.callSiteBindings[layout.NewCoordKey(opcodeCoord)] = pending.RegIDs
		}
	}

	for _, op := range instr.Operands {
		if err := e.emitOperand(op, opcodeCoord, lay, instr.Source, st); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitOperand(op ir.Operand, opcodeCoord []int32, lay *layout.Result, src ir.SourceInfo, st *builderState) error {
	switch v := op.(type) {
	case ir.Vec:
		for _, c := range v.Components {
			if _, err := st.writeCell(lay, src, molecule.Molecule{Type: molecule.DATA, Value: c}); err != nil {
				return err
			}
		}
		return nil

	case ir.LabelRef:
		targetAddr, ok := lay.LabelToAddress[v.Name]
		if !ok {
			return ir.Errorf(src, "unresolvable label reference %q", v.Name)
		}
		targetCoord, ok := lay.CoordFor(targetAddr)
		if !ok {
			return ir.Errorf(src, "no coordinate for label %q at address %d", v.Name, targetAddr)
		}
		delta := deltaVector(opcodeCoord, targetCoord)
		for _, c := range delta {
			if _, err := st.writeCell(lay, src, molecule.Molecule{Type: molecule.DATA, Value: c}); err != nil {
				return err
			}
		}
		return nil

	case ir.Reg:
		id, ok := e.ISA.ResolveRegisterToken(v.Name)
		if !ok {
			return ir.Errorf(src, "unresolvable register token %q", v.Name)
		}
		if _, exists := st.registerAliasMap[id]; !exists {
			st.registerAliasMap[id] = v.Name
		}
		st.tokenMap[v.Name] = id
		st.tokenLookup[id] = v.Name
		_, err := st.writeCell(lay, src, molecule.Molecule{Type: molecule.DATA, Value: int32(id)})
		return err

	case ir.Imm:
		_, err := st.writeCell(lay, src, molecule.Molecule{Type: molecule.DATA, Value: int32(v.Value)})
		return err

	case ir.TypedImm:
		t, ok := molecule.TypeByName(v.TypeName)
		if !ok {
			return ir.Errorf(src, "unknown molecule type %q", v.TypeName)
		}
		_, err := st.writeCell(lay, src, molecule.Molecule{Type: t, Value: int32(v.Value)})
		return err

	default:
		return ir.Errorf(src, "unrecognized operand kind %T", op)
	}
}

// deltaVector computes target-opcodeCoord elementwise, padded with zeros
// on the shorter side to max(len(opcodeCoord), len(targetCoord)) (spec
// §9's mixed-dimension guidance).
func deltaVector(opcodeCoord, targetCoord []int32) []int32 {
	n := len(opcodeCoord)
	if len(targetCoord) > n {
		n = len(targetCoord)
	}
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		var a, b int32
		if i < len(opcodeCoord) {
			a = opcodeCoord[i]
		}
		if i < len(targetCoord) {
			b = targetCoord[i]
		}
		out[i] = b - a
	}
	return out
}

// writeCell looks up the coordinate for the current address, writes m's
// encoded value there, advances the address counter, and returns the
// coordinate written to.
func (st *builderState) writeCell(lay *layout.Result, src ir.SourceInfo, m molecule.Molecule) ([]int32, error) {
	coord, ok := lay.CoordFor(st.addr)
	if !ok {
		return nil, ir.Errorf(src, "no coordinate for linear address %d", st.addr)
	}
	key := layout.NewCoordKey(coord)
	st.machineCodeLayout[key] = m.ToInt()
	st.coordToLinear[key] = st.addr
	st.linearToCoord[st.addr] = coord
	st.addr++
	return coord, nil
}

func (st *builderState) recordSource(addr int, src ir.SourceInfo) {
	st.sourceMap[addr] = SourceRef{FileName: src.FileName, LineNumber: src.LineNumber, LineContent: src.LineContent}
	key := [2]any{src.FileName, src.LineNumber}
	if src.LineContent == "" || st.seenSourceLine[key] {
		return
	}
	st.seenSourceLine[key] = true
	st.sources[src.FileName] = append(st.sources[src.FileName], src.LineContent)
}

func (st *builderState) recordLineInstruction(src ir.SourceInfo, addr int, opcode string) {
	key := fmt.Sprintf("%s:%d", src.FileName, src.LineNumber)
	st.sourceLineInstructions[key] = append(st.sourceLineInstructions[key], LineInstruction{Address: addr, Opcode: opcode})
}

func (st *builderState) toArtifact() *Artifact {
	coords := make([]layout.CoordKey, 0, len(st.machineCodeLayout))
	for k := range st.machineCodeLayout {
		coords = append(coords, k)
	}
	layout.SortCoordKeys(coords)

	a := &Artifact{
		Sources:                st.sources,
		machineCodeLayout:      st.machineCodeLayout,
		orderedCoords:          coords,
		initialObjects:         make(map[layout.CoordKey]int32),
		SourceMap:              st.sourceMap,
		CallSiteBindings:       st.callSiteBindings,
		CoordToLinear:          st.coordToLinear,
		LinearToCoord:          st.linearToCoord,
		LabelAddressToName:     make(map[int]string),
		RegisterAliasMap:       st.registerAliasMap,
		ProcNameToParamNames:   st.procNameToParamNames,
		TokenMap:               st.tokenMap,
		TokenLookup:            st.tokenLookup,
		SourceLineInstructions: st.sourceLineInstructions,
	}
	a.ProgramID = hashCodeMap(coords, st.machineCodeLayout)
	return a
}

// hashCodeMap computes a stable hex hash over the sorted code map: the
// canonical, order-independent identity for a ProgramArtifact (spec
// §4.7's "programId = stable hex hash derived from the sorted code
// map"), grounded on the teacher's own content-hashed cache keys.
func hashCodeMap(coords []layout.CoordKey, m map[layout.CoordKey]int32) string {
	h := sha256.New()
	var buf [4]byte
	for _, c := range coords {
		h.Write([]byte(c))
		binary.BigEndian.PutUint32(buf[:], uint32(m[c]))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// PopulateLabelAddressToName reverses lay's labelToAddress table into the
// artifact's LabelAddressToName (spec §4.7: "reverse labelToAddress into
// labelAddressToName"). Emit calls it once after the walk, so every label
// in lay's table is included, whether or not a LabelDef for it was seen.
func PopulateLabelAddressToName(a *Artifact, lay *layout.Result) {
	for name, addr := range lay.LabelToAddress {
		a.LabelAddressToName[addr] = name
	}
}
