package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridasm/spatialasm/internal/bindings"
	"github.com/gridasm/spatialasm/internal/config"
	"github.com/gridasm/spatialasm/internal/emit"
	"github.com/gridasm/spatialasm/internal/ir"
	"github.com/gridasm/spatialasm/internal/isa/testisa"
	"github.com/gridasm/spatialasm/internal/layout"
	"github.com/gridasm/spatialasm/internal/molecule"
)

func oneDimLayout(addrToCoord map[int]int32, labelToAddr map[string]int) *layout.Result {
	r := layout.New()
	for addr, c := range addrToCoord {
		r.LinearAddressToCoord[addr] = []int32{c}
	}
	for name, addr := range labelToAddr {
		r.LabelToAddress[name] = addr
	}
	return r
}

// Scenario 1 (emitter half): a single RET instruction at address 0 writes
// exactly one opcode cell.
func TestEmitScenario1SingleRetCell(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	lay := oneDimLayout(map[int]int32{0: 5}, map[string]int{"P": 0})

	items := []ir.Item{
		ir.LabelDef{Name: "P"},
		ir.Instruction{Opcode: "RET", Source: ir.SourceInfo{FileName: "t.asm", LineNumber: 1}},
	}

	em := New(target)
	art, err := em.Emit(items, lay, nil)
	require.NoError(t, err)
	ordered := art.OrderedMachineCodeLayout()
	require.Len(t, ordered, 1)
	retID, _ := target.GetInstructionIDByName("RET")
	got := molecule.FromInt(ordered[0].Value)
	require.Equal(t, molecule.CODE, got.Type)
	require.EqualValues(t, retID, got.Value)
}

// Label resolution: a CALL's LabelRef operand resolves to the correct
// delta vector (spec §8's label-resolution-correctness property).
func TestEmitLabelRefDeltaResolution(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	lay := oneDimLayout(map[int]int32{0: 0, 1: 1, 2: 2}, map[string]int{"P": 2})

	items := []ir.Item{
		ir.Instruction{
			Opcode:   "CALL",
			Operands: []ir.Operand{ir.LabelRef{Name: "P"}},
			Source:   ir.SourceInfo{FileName: "t.asm", LineNumber: 1},
		},
		ir.LabelDef{Name: "P"},
		ir.Instruction{Opcode: "RET", Source: ir.SourceInfo{FileName: "t.asm", LineNumber: 2}},
	}

	em := New(target)
	art, err := em.Emit(items, lay, nil)
	require.NoError(t, err)
	deltaCoord := layout.NewCoordKey([]int32{1})
	raw, ok := art.MachineCodeLayout(deltaCoord)
	require.True(t, ok, "expected a delta cell at coordinate [1]")
	delta := molecule.FromInt(raw)
	require.EqualValues(t, 2, delta.Value, "expected delta value 2 (target coord 2 - opcode coord 0)")
}

// ProgramID is a stable function of the sorted code map: rebuilding an
// identical artifact from identical inputs yields an identical ProgramID
// (spec §8's determinism property).
func TestProgramIDDeterminism(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	build := func() *Artifact {
		lay := oneDimLayout(map[int]int32{0: 0}, nil)
		items := []ir.Item{ir.Instruction{Opcode: "RET", Source: ir.SourceInfo{FileName: "t.asm", LineNumber: 1}}}
		art, err := New(target).Emit(items, lay, nil)
		require.NoError(t, err)
		return art
	}
	a := build()
	b := build()
	require.True(t, a.VerifyDeterminism(b), "expected identical artifacts to verify as deterministic: %s vs %s", a.ProgramID, b.ProgramID)
}

// Classified CALL binding finalization: once the Emitter knows a
// classified CALL's address and coordinate, it finalizes the pending
// binding captured during the emission pipeline into the bindings
// registry.
func TestCallBindingFinalization(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	reg := bindings.New()
	ctx := emit.NewLinkingContext(target, reg, cfg, nil)

	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		RefOperands: []ir.Operand{ir.Reg{Name: "%DR3"}},
		Source:      ir.SourceInfo{FileName: "t.asm", LineNumber: 1},
	}
	captured, err := (&emit.CallBindingCaptureRule{}).Apply([]ir.Item{call}, ctx)
	require.NoError(t, err)
	stampedCall := captured[0].(ir.Instruction)
	require.NotZero(t, stampedCall.CallSiteID)

	lay := oneDimLayout(map[int]int32{0: 10, 1: 11, 2: 12}, map[string]int{"P": 2})
	items := []ir.Item{stampedCall, ir.LabelDef{Name: "P"}, ir.Instruction{Opcode: "RET", Source: call.Source}}

	_, err = New(target).Emit(items, lay, ctx)
	require.NoError(t, err)

	got, ok := reg.GetForAbsoluteCoord([]int32{10})
	require.True(t, ok, "expected a finalized binding at the CALL's absolute coordinate")
	dr3ID, _ := target.ResolveRegisterToken("%DR3")
	require.Equal(t, []int{dr3ID}, got)
}

func TestUnknownOpcodeFails(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	lay := oneDimLayout(map[int]int32{0: 0}, nil)
	items := []ir.Item{ir.Instruction{Opcode: "NOPE", Source: ir.SourceInfo{FileName: "t.asm", LineNumber: 1}}}
	_, err := New(target).Emit(items, lay, nil)
	require.Error(t, err)
}

func TestMissingCoordinateFails(t *testing.T) {
	cfg := config.New()
	target := testisa.New(cfg)
	lay := layout.New() // no addresses registered
	items := []ir.Item{ir.Instruction{Opcode: "RET", Source: ir.SourceInfo{FileName: "t.asm", LineNumber: 1}}}
	_, err := New(target).Emit(items, lay, nil)
	require.Error(t, err)
}
