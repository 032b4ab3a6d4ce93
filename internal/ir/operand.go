package ir

import "fmt"

// Operand is a tagged sum of the five operand kinds an instruction can
// carry. Exhaustive dispatch over operands is always a type switch over
// this interface; adding a variant is a compile-time fan-out, per the
// re-architecture note in spec §9.
type Operand interface {
	isOperand()
	String() string
}

// Reg is a textual register token, e.g. "%DR0", "%PR1", "%FPR0".
type Reg struct {
	Name string
}

func (Reg) isOperand() {}
func (r Reg) String() string { return r.Name }

// Imm is an untyped integer immediate.
type Imm struct {
	Value int64
}

func (Imm) isOperand() {}
func (i Imm) String() string { return fmt.Sprintf("%d", i.Value) }

// TypedImm is an immediate carrying a molecule type tag.
type TypedImm struct {
	TypeName string
	Value    int64
}

func (TypedImm) isOperand() {}
func (t TypedImm) String() string { return fmt.Sprintf("%s(%d)", t.TypeName, t.Value) }

// Vec is a literal vector whose length equals world dimensionality.
type Vec struct {
	Components []int32
}

func (Vec) isOperand() {}
func (v Vec) String() string {
	return fmt.Sprintf("%v", v.Components)
}

// LabelRef is an unresolved label reference; the Emitter turns it into a
// delta vector once the target address is known.
type LabelRef struct {
	Name string
}

func (LabelRef) isOperand() {}
func (l LabelRef) String() string { return l.Name }
