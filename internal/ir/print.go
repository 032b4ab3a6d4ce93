package ir

import (
	"fmt"
	"strings"
)

// Format renders a single Item as one assembly-like line, grounded on
// wazevo/ssa's Instruction.Format: mnemonic (or directive/label head)
// followed by a comma-joined operand suffix.
func Format(item Item) string {
	switch v := item.(type) {
	case Instruction:
		return formatInstruction(v)
	case Directive:
		return formatDirective(v)
	case LabelDef:
		return v.Name + ":"
	default:
		return fmt.Sprintf("<unknown item %T>", item)
	}
}

func formatInstruction(instr Instruction) string {
	var parts []string
	for _, op := range instr.Operands {
		parts = append(parts, op.String())
	}
	for _, op := range instr.RefOperands {
		parts = append(parts, "&"+op.String())
	}
	for _, op := range instr.ValOperands {
		parts = append(parts, op.String())
	}
	if len(parts) == 0 {
		return instr.Opcode
	}
	return instr.Opcode + " " + strings.Join(parts, ", ")
}

func formatDirective(d Directive) string {
	if len(d.Args) == 0 {
		return "." + d.FullName()
	}
	var parts []string
	if arity, ok := d.Arity(); ok {
		parts = append(parts, fmt.Sprintf("arity=%d", arity))
	}
	if actuals, ok := d.Actuals(); ok {
		parts = append(parts, fmt.Sprintf("actuals=[%s]", strings.Join(actuals, ", ")))
	}
	if len(parts) == 0 {
		return "." + d.FullName()
	}
	return "." + d.FullName() + " " + strings.Join(parts, ", ")
}

// String implements fmt.Stringer for every Item variant via Format.
func (i Instruction) String() string { return Format(i) }
func (d Directive) String() string   { return Format(d) }
func (l LabelDef) String() string    { return Format(l) }

// FormatProgram renders a full item sequence, one Format'd line per item,
// indenting instructions and directives one tab past label definitions so
// labels read as section headers.
func FormatProgram(items []Item) string {
	var b strings.Builder
	for _, item := range items {
		if _, ok := item.(LabelDef); ok {
			b.WriteString(Format(item))
			b.WriteByte('\n')
			continue
		}
		b.WriteByte('\t')
		b.WriteString(Format(item))
		b.WriteByte('\n')
	}
	return b.String()
}
