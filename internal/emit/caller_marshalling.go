package emit

import "github.com/gridasm/spatialasm/internal/ir"

// CallerMarshallingRule inserts the caller half of the calling convention
// around CALL instructions: classified-operand marshalling, conditional-
// CALL branch rewriting, and legacy core.call_with lowering (spec §4.5,
// L5).
type CallerMarshallingRule struct{}

func (r *CallerMarshallingRule) Name() string { return "caller-marshalling" }

func (r *CallerMarshallingRule) Apply(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error) {
	out := make([]ir.Item, 0, len(items))
	i := 0
	for i < len(items) {
		item := items[i]

		if directive, ok := ir.IsDirective(item, ir.NamespaceCore, ir.DirectiveCallWith); ok {
			if i+1 < len(items) {
				if call, isCall := items[i+1].(ir.Instruction); isCall && call.Opcode == "CALL" {
					lowered, err := lowerCallWith(directive, call)
					if err != nil {
						return nil, err
					}
					out = append(out, lowered...)
					i += 2
					continue
				}
			}
			// Directive not followed by CALL: drop silently (spec §4.5(c)).
			i++
			continue
		}

		if instr, ok := item.(ir.Instruction); ok && ir.IsConditional(instr.Opcode) {
			if i+1 < len(items) {
				if call, isCall := items[i+1].(ir.Instruction); isCall && call.Opcode == "CALL" {
					negated, ok := ir.Negate(instr.Opcode)
					if !ok {
						return nil, ir.Errorf(instr.Source, "conditional opcode %q has no registered negation", instr.Opcode)
					}
					label := ctx.FreshLabel("_safe_call")
					out = append(out, ir.Instruction{
						Opcode:   negated,
						Operands: instr.Operands,
						Source:   instr.Source,
					})
					out = append(out, ir.Instruction{
						Opcode:   "JMPI",
						Operands: []ir.Operand{ir.LabelRef{Name: label}},
						Source:   instr.Source,
					})
					out = append(out, marshalCall(call)...)
					out = append(out, ir.LabelDef{Name: label, Source: call.Source})
					i += 2
					continue
				}
			}
			out = append(out, item)
			i++
			continue
		}

		if call, ok := item.(ir.Instruction); ok && call.Opcode == "CALL" {
			out = append(out, marshalCall(call)...)
			i++
			continue
		}

		out = append(out, item)
		i++
	}
	return out, nil
}

// marshalCall implements shape (a): pre-call pushes, the CALL unchanged,
// post-call pops. A plain (unclassified) CALL passes through unchanged.
func marshalCall(call ir.Instruction) []ir.Item {
	if len(call.RefOperands) == 0 && len(call.ValOperands) == 0 {
		return []ir.Item{call}
	}

	out := make([]ir.Item, 0, 1+len(call.RefOperands)*2+len(call.ValOperands))

	for idx := len(call.ValOperands) - 1; idx >= 0; idx-- {
		out = append(out, valPush(call.ValOperands[idx], call.Source))
	}
	for idx := len(call.RefOperands) - 1; idx >= 0; idx-- {
		out = append(out, ir.Instruction{
			Opcode:   "PUSH",
			Operands: []ir.Operand{call.RefOperands[idx]},
			Source:   call.Source,
		})
	}

	out = append(out, call)

	for _, refOp := range call.RefOperands {
		out = append(out, ir.Instruction{
			Opcode:   "POP",
			Operands: []ir.Operand{refOp},
			Source:   call.Source,
		})
	}

	return out
}

// valPush renders one VAL actual's pre-call push per its operand kind
// (spec §4.5(a)).
func valPush(op ir.Operand, src ir.SourceInfo) ir.Instruction {
	switch op.(type) {
	case ir.Imm:
		return ir.Instruction{Opcode: "PUSI", Operands: []ir.Operand{op}, Source: src}
	case ir.LabelRef:
		return ir.Instruction{Opcode: "PUSV", Operands: []ir.Operand{op}, Source: src}
	case ir.TypedImm:
		return ir.Instruction{Opcode: "PUSI", Operands: []ir.Operand{op}, Source: src}
	default:
		return ir.Instruction{Opcode: "PUSH", Operands: []ir.Operand{op}, Source: src}
	}
}

// lowerCallWith implements shape (c): legacy core.call_with lowering.
func lowerCallWith(directive ir.Directive, call ir.Instruction) ([]ir.Item, error) {
	actuals, ok := directive.Actuals()
	if !ok {
		return nil, ir.Errorf(directive.Source, "core.call_with missing actuals argument")
	}

	out := make([]ir.Item, 0, len(actuals)*2+1)
	for _, name := range actuals {
		out = append(out, ir.Instruction{
			Opcode:   "PUSH",
			Operands: []ir.Operand{ir.Reg{Name: name}},
			Source:   directive.Source,
		})
	}
	out = append(out, call)
	for idx := len(actuals) - 1; idx >= 0; idx-- {
		out = append(out, ir.Instruction{
			Opcode:   "POP",
			Operands: []ir.Operand{ir.Reg{Name: actuals[idx]}},
			Source:   call.Source,
		})
	}
	return out, nil
}
