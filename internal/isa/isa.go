// Package isa defines the external ISA contract this module consumes
// (spec §6): opcode name/ID resolution, operand-signature lookup, and
// register-token resolution. The concrete ISA (front end's instruction
// set, symbol tables) is an external collaborator, out of scope per
// spec §1; this package only defines the seam, mirroring the small
// consumer-owned interfaces wazero's backend.Machine/FunctionABIRegInfo
// use to decouple the compiler core from a concrete architecture.
package isa

// ArgumentType classifies one operand slot in an instruction's signature.
type ArgumentType int

const (
	ArgRegister ArgumentType = iota
	ArgLiteral
	ArgVector
	ArgLabel
)

// Signature describes the operand shape of one opcode.
type Signature struct {
	ArgumentTypes []ArgumentType
}

// ISA resolves opcode and register identifiers for one target instruction
// set. Implementations must be safe for concurrent read access; this
// module never mutates an ISA.
type ISA interface {
	// GetInstructionIDByName returns the numeric opcode ID for name, and
	// true if name is recognized.
	GetInstructionIDByName(name string) (int, bool)

	// GetInstructionNameByID is the inverse of GetInstructionIDByName.
	GetInstructionNameByID(id int) (string, bool)

	// GetSignatureByID returns the operand signature for opcode id.
	GetSignatureByID(id int) (Signature, bool)

	// ResolveRegisterToken resolves a textual register token (e.g. "%DR0")
	// to its numeric register ID under the DR/PR/FPR contiguous-range
	// scheme (spec §6).
	ResolveRegisterToken(text string) (int, bool)
}
