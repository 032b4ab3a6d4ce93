package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridasm/spatialasm/internal/bindings"
	"github.com/gridasm/spatialasm/internal/config"
	"github.com/gridasm/spatialasm/internal/ir"
	"github.com/gridasm/spatialasm/internal/isa/testisa"
)

func newTestContext() *LinkingContext {
	cfg := config.New()
	return NewLinkingContext(testisa.New(cfg), bindings.New(), cfg, nil)
}

func src(line int) ir.SourceInfo {
	return ir.SourceInfo{FileName: "t.asm", LineNumber: line}
}

func instrOpcodes(items []ir.Item) []string {
	var ops []string
	for _, item := range items {
		switch v := item.(type) {
		case ir.Instruction:
			ops = append(ops, v.Opcode)
		case ir.LabelDef:
			ops = append(ops, "LABEL:"+v.Name)
		case ir.Directive:
			ops = append(ops, "DIR:"+v.FullName())
		}
	}
	return ops
}

// Scenario 1: empty procedure with arity 0.
func TestScenario1EmptyProcedureArity0(t *testing.T) {
	items := []ir.Item{
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcEnter, Args: map[string]ir.IrValue{"arity": ir.IntValue{Value: 0}}, Source: src(1)},
		ir.LabelDef{Name: "P", Source: src(2)},
		ir.Instruction{Opcode: "RET", Source: src(3)},
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcExit, Source: src(4)},
	}
	rule := &ProcedureMarshallingRule{}
	out, err := rule.Apply(items, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"DIR:core.proc_enter", "LABEL:P", "RET", "DIR:core.proc_exit"}, instrOpcodes(out))
}

// Scenario 2: arity-2 procedure.
func TestScenario2Arity2Procedure(t *testing.T) {
	items := []ir.Item{
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcEnter, Args: map[string]ir.IrValue{"arity": ir.IntValue{Value: 2}}, Source: src(1)},
		ir.LabelDef{Name: "P", Source: src(2)},
		ir.Instruction{Opcode: "ADDR", Operands: []ir.Operand{ir.Reg{Name: "%FPR0"}, ir.Reg{Name: "%FPR1"}}, Source: src(3)},
		ir.Instruction{Opcode: "RET", Source: src(4)},
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcExit, Source: src(5)},
	}
	rule := &ProcedureMarshallingRule{}
	out, err := rule.Apply(items, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{
		"DIR:core.proc_enter", "POP", "POP", "LABEL:P", "ADDR",
		"PUSH", "PUSH", "RET", "DIR:core.proc_exit",
	}, instrOpcodes(out))

	pop1 := out[1].(ir.Instruction)
	pop0 := out[2].(ir.Instruction)
	require.Equal(t, "%FPR1", pop1.Operands[0].(ir.Reg).Name)
	require.Equal(t, "%FPR0", pop0.Operands[0].(ir.Reg).Name)

	push0 := out[5].(ir.Instruction)
	push1 := out[6].(ir.Instruction)
	require.Equal(t, "%FPR0", push0.Operands[0].(ir.Reg).Name)
	require.Equal(t, "%FPR1", push1.Operands[0].(ir.Reg).Name)
}

func TestNestedProcEnterFails(t *testing.T) {
	items := []ir.Item{
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcEnter, Args: map[string]ir.IrValue{"arity": ir.IntValue{Value: 0}}, Source: src(1)},
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcEnter, Args: map[string]ir.IrValue{"arity": ir.IntValue{Value: 0}}, Source: src(2)},
	}
	rule := &ProcedureMarshallingRule{}
	_, err := rule.Apply(items, newTestContext())
	require.Error(t, err)
}

func TestArityClamp(t *testing.T) {
	require.Equal(t, 0, clampArity(-5))
	require.Equal(t, maxFormalParamArity, clampArity(100))
}

func TestNoRetAppendsCopyOutAtEnd(t *testing.T) {
	items := []ir.Item{
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcEnter, Args: map[string]ir.IrValue{"arity": ir.IntValue{Value: 1}}, Source: src(1)},
		ir.Instruction{Opcode: "ADDR", Source: src(2)},
		ir.Directive{Namespace: ir.NamespaceCore, Name: ir.DirectiveProcExit, Source: src(3)},
	}
	rule := &ProcedureMarshallingRule{}
	out, err := rule.Apply(items, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"DIR:core.proc_enter", "POP", "ADDR", "PUSH", "DIR:core.proc_exit"}, instrOpcodes(out))
}

// Scenario 3: unconditional call with one REF.
func TestScenario3UnconditionalCallOneRef(t *testing.T) {
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		RefOperands: []ir.Operand{ir.Reg{Name: "%DR3"}},
		Source:      src(1),
	}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{call}, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"PUSH", "CALL", "POP"}, instrOpcodes(out))
	require.Equal(t, "%DR3", out[0].(ir.Instruction).Operands[0].(ir.Reg).Name)
	require.Equal(t, "%DR3", out[2].(ir.Instruction).Operands[0].(ir.Reg).Name)
}

// Scenario 4: unconditional call with one VAL immediate.
func TestScenario4UnconditionalCallOneValImmediate(t *testing.T) {
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		ValOperands: []ir.Operand{ir.Imm{Value: 7}},
		Source:      src(1),
	}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{call}, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"PUSI", "CALL"}, instrOpcodes(out))
	require.EqualValues(t, 7, out[0].(ir.Instruction).Operands[0].(ir.Imm).Value)
}

// Scenario 5: conditional call.
func TestScenario5ConditionalCall(t *testing.T) {
	cond := ir.Instruction{
		Opcode:   "IFR",
		Operands: []ir.Operand{ir.Reg{Name: "%DR0"}, ir.Reg{Name: "%DR1"}},
		Source:   src(1),
	}
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		RefOperands: []ir.Operand{ir.Reg{Name: "%DR2"}},
		Source:      src(2),
	}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{cond, call}, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"INR", "JMPI", "PUSH", "CALL", "POP", "LABEL:_safe_call_0"}, instrOpcodes(out))

	label := out[len(out)-1].(ir.LabelDef)
	require.Equal(t, "_safe_call_0", label.Name)
	jmpi := out[1].(ir.Instruction)
	require.Equal(t, "_safe_call_0", jmpi.Operands[0].(ir.LabelRef).Name)
}

func TestLegacyCallWithLowering(t *testing.T) {
	directive := ir.Directive{
		Namespace: ir.NamespaceCore,
		Name:      ir.DirectiveCallWith,
		Args:      map[string]ir.IrValue{"actuals": ir.StringListValue{Values: []string{"%DR0", "%DR1"}}},
		Source:    src(1),
	}
	call := ir.Instruction{Opcode: "CALL", Operands: []ir.Operand{ir.LabelRef{Name: "P"}}, Source: src(2)}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{directive, call}, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"PUSH", "PUSH", "CALL", "POP", "POP"}, instrOpcodes(out))
	require.Equal(t, "%DR0", out[0].(ir.Instruction).Operands[0].(ir.Reg).Name)
	require.Equal(t, "%DR1", out[1].(ir.Instruction).Operands[0].(ir.Reg).Name)
	require.Equal(t, "%DR1", out[3].(ir.Instruction).Operands[0].(ir.Reg).Name)
	require.Equal(t, "%DR0", out[4].(ir.Instruction).Operands[0].(ir.Reg).Name)
}

func TestCallWithDroppedWhenNotFollowedByCall(t *testing.T) {
	directive := ir.Directive{
		Namespace: ir.NamespaceCore,
		Name:      ir.DirectiveCallWith,
		Args:      map[string]ir.IrValue{"actuals": ir.StringListValue{Values: []string{"%DR0"}}},
		Source:    src(1),
	}
	other := ir.Instruction{Opcode: "ADDR", Source: src(2)}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{directive, other}, newTestContext())
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestPlainCallPassesThroughUnchanged(t *testing.T) {
	call := ir.Instruction{Opcode: "CALL", Operands: []ir.Operand{ir.LabelRef{Name: "P"}}, Source: src(1)}
	rule := &CallerMarshallingRule{}
	out, err := rule.Apply([]ir.Item{call}, newTestContext())
	require.NoError(t, err)
	require.Len(t, out, 1)
}

// Binding capture: classified CALL with register REF/VAL actuals records
// a pending binding with the REF-then-VAL ordering.
func TestBindingCaptureRecordsRegisterOrder(t *testing.T) {
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		RefOperands: []ir.Operand{ir.Reg{Name: "%DR2"}},
		ValOperands: []ir.Operand{ir.Reg{Name: "%DR5"}},
		Source:      src(1),
	}
	ctx := newTestContext()
	r1 := &CallBindingCaptureRule{}
	out, err := r1.Apply([]ir.Item{call}, ctx)
	require.NoError(t, err)
	stamped := out[0].(ir.Instruction)
	require.NotZero(t, stamped.CallSiteID)

	pending, ok := ctx.Pending(stamped.CallSiteID)
	require.True(t, ok)
	require.Equal(t, 1, pending.RefCount)
	require.Len(t, pending.RegIDs, 2)

	r2 := &RefValBindingCaptureRule{}
	_, err = r2.Apply(out, ctx)
	require.NoError(t, err)
}

func TestBindingCaptureSkipsNonRegisterVal(t *testing.T) {
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		ValOperands: []ir.Operand{ir.Imm{Value: 7}},
		Source:      src(1),
	}
	ctx := newTestContext()
	r1 := &CallBindingCaptureRule{}
	out, err := r1.Apply([]ir.Item{call}, ctx)
	require.NoError(t, err)
	stamped := out[0].(ir.Instruction)
	require.Zero(t, stamped.CallSiteID)
}

// Full default pipeline, scenario 3, exercised end-to-end.
func TestDefaultRegistryScenario3(t *testing.T) {
	call := ir.Instruction{
		Opcode:      "CALL",
		Operands:    []ir.Operand{ir.LabelRef{Name: "P"}},
		RefOperands: []ir.Operand{ir.Reg{Name: "%DR3"}},
		Source:      src(1),
	}
	reg := Default()
	out, err := reg.Run([]ir.Item{call}, newTestContext())
	require.NoError(t, err)
	require.Equal(t, []string{"PUSH", "CALL", "POP"}, instrOpcodes(out))
}
