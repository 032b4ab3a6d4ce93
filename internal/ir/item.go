package ir

// Item is a tagged sum of the three IR item kinds: instructions,
// directives, and label definitions. Order of Items in an IrProgram is
// significant: directives bracket procedure bodies and CALL items carry
// no implicit push/pop until a Rule inserts them.
type Item interface {
	isItem()
	Src() SourceInfo
}

// Instruction is a single opcode with its operands. RefOperands and
// ValOperands are populated only on CALL items, classifying actuals by
// pass-style (REF vs VAL) ahead of marshalling.
type Instruction struct {
	Opcode      string
	Operands    []Operand
	RefOperands []Operand
	ValOperands []Operand
	Source      SourceInfo

	// CallSiteID, when non-zero, is a token stamped by the binding-capture
	// rules onto a classified CALL so the Emitter can finalize its
	// CallBindingRegistry entries once the linear address and absolute
	// coordinate of this instruction are known (see internal/emit's
	// LinkingContext.Pending).
	CallSiteID int
}

func (Instruction) isItem() {}
func (i Instruction) Src() SourceInfo { return i.Source }

// IsClassifiedCall reports whether this is a CALL carrying non-empty
// Ref/Val operand classification (spec §4.5(a)).
func (i Instruction) IsClassifiedCall() bool {
	return i.Opcode == "CALL" && (len(i.RefOperands) > 0 || len(i.ValOperands) > 0)
}

// IrValue is the value type directives carry in their args map: an
// integer (IntValue) or a list of strings (StringListValue).
type IrValue interface {
	isIrValue()
}

// IntValue is an integer-valued directive argument (e.g. core.proc_enter's
// arity).
type IntValue struct{ Value int64 }

func (IntValue) isIrValue() {}

// StringListValue is a list-of-strings directive argument (e.g.
// core.call_with's actuals).
type StringListValue struct{ Values []string }

func (StringListValue) isIrValue() {}

// Directive is a namespaced annotation in the IR stream, e.g.
// core.proc_enter{arity: 2}.
type Directive struct {
	Namespace string
	Name      string
	Args      map[string]IrValue
	Source    SourceInfo
}

func (Directive) isItem() {}
func (d Directive) Src() SourceInfo { return d.Source }

// FullName returns "namespace.name", e.g. "core.proc_enter".
func (d Directive) FullName() string {
	return d.Namespace + "." + d.Name
}

// Arity returns the directive's "arity" int argument and whether it was
// present. Callers of core.proc_enter use this.
func (d Directive) Arity() (int, bool) {
	v, ok := d.Args["arity"]
	if !ok {
		return 0, false
	}
	iv, ok := v.(IntValue)
	if !ok {
		return 0, false
	}
	return int(iv.Value), true
}

// Actuals returns core.call_with's "actuals" string-list argument.
func (d Directive) Actuals() ([]string, bool) {
	v, ok := d.Args["actuals"]
	if !ok {
		return nil, false
	}
	sv, ok := v.(StringListValue)
	if !ok {
		return nil, false
	}
	return sv.Values, true
}

// LabelDef marks a named position in the IR stream.
type LabelDef struct {
	Name   string
	Source SourceInfo
}

func (LabelDef) isItem() {}
func (l LabelDef) Src() SourceInfo { return l.Source }

// Program is an ordered sequence of IR items.
type Program struct {
	Items []Item
}

// Namespaced directive name constants used by the emission rules.
const (
	NamespaceCore = "core"

	DirectiveProcEnter = "proc_enter"
	DirectiveProcExit  = "proc_exit"
	DirectiveCallWith  = "call_with"
)

// IsDirective reports whether item is a Directive matching ns.name.
func IsDirective(item Item, ns, name string) (Directive, bool) {
	d, ok := item.(Directive)
	if !ok || d.Namespace != ns || d.Name != name {
		return Directive{}, false
	}
	return d, true
}
