package emit

import (
	"fmt"

	"github.com/gridasm/spatialasm/internal/ir"
)

const maxFormalParamArity = 8

// clampArity bounds k to [0, maxFormalParamArity], matching the fixed
// number of formal-parameter registers (spec §4.4).
func clampArity(k int) int {
	if k < 0 {
		return 0
	}
	if k > maxFormalParamArity {
		return maxFormalParamArity
	}
	return k
}

func fprToken(i int) string {
	return fmt.Sprintf("%%FPR%d", i)
}

// ProcedureMarshallingRule synthesises procedure prolog/epilog register
// traffic around core.proc_enter/core.proc_exit brackets (spec §4.4, L4).
type ProcedureMarshallingRule struct{}

func (r *ProcedureMarshallingRule) Name() string { return "procedure-marshalling" }

func (r *ProcedureMarshallingRule) Apply(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error) {
	out := make([]ir.Item, 0, len(items))
	i := 0
	for i < len(items) {
		item := items[i]
		enter, ok := ir.IsDirective(item, ir.NamespaceCore, ir.DirectiveProcEnter)
		if !ok {
			out = append(out, item)
			i++
			continue
		}

		arityRaw, _ := enter.Arity()
		k := clampArity(arityRaw)

		out = append(out, enter)

		// Copy-in prolog: POP %FPR{k-1} ... %FPR0.
		for n := k - 1; n >= 0; n-- {
			out = append(out, ir.Instruction{
				Opcode:   "POP",
				Operands: []ir.Operand{ir.Reg{Name: fprToken(n)}},
				Source:   enter.Source,
			})
		}

		// Collect body up to the matching proc_exit.
		bodyStart := i + 1
		j := bodyStart
		body := make([]ir.Item, 0)
		var exit ir.Directive
		found := false
		for j < len(items) {
			if _, isNested := ir.IsDirective(items[j], ir.NamespaceCore, ir.DirectiveProcEnter); isNested {
				return nil, ir.Errorf(items[j].Src(), "nested proc_enter without intervening proc_exit")
			}
			if d, isExit := ir.IsDirective(items[j], ir.NamespaceCore, ir.DirectiveProcExit); isExit {
				exit = d
				found = true
				j++
				break
			}
			body = append(body, items[j])
			j++
		}
		if !found {
			return nil, ir.Errorf(enter.Source, "proc_enter without matching proc_exit")
		}

		// Copy-out epilog: PUSH %FPR0 ... %FPR{k-1}, inserted immediately
		// before every RET in the body.
		hasRet := false
		for _, bodyItem := range body {
			if instr, isInstr := bodyItem.(ir.Instruction); isInstr && instr.Opcode == "RET" {
				hasRet = true
				out = append(out, epilogPushes(k, instr.Source)...)
			}
			out = append(out, bodyItem)
		}
		if !hasRet {
			out = append(out, epilogPushes(k, exit.Source)...)
		}

		out = append(out, exit)
		i = j
	}
	return out, nil
}

func epilogPushes(k int, src ir.SourceInfo) []ir.Item {
	pushes := make([]ir.Item, 0, k)
	for n := 0; n < k; n++ {
		pushes = append(pushes, ir.Instruction{
			Opcode:   "PUSH",
			Operands: []ir.Operand{ir.Reg{Name: fprToken(n)}},
			Source:   src,
		})
	}
	return pushes
}
