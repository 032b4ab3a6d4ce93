// Package testisa provides a minimal fixed instruction set implementing
// isa.ISA, used by this module's own tests and by the end-to-end scenario
// tests in the emit/emitter/runtime packages. A real front end's ISA is
// an external collaborator (spec §1 non-goal); this is a test double, not
// a production ISA.
package testisa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridasm/spatialasm/internal/config"
	"github.com/gridasm/spatialasm/internal/isa"
)

// opcodes lists every opcode this test double recognizes, in ID order.
var opcodes = []string{
	"ADDR", "SUBR", "POP", "PUSH", "PUSI", "PUSV", "CALL", "RET", "JMPI",
	"IFR", "INR", "IFG", "ING", "IFE", "INE", "IFN", "INN",
	"LTR", "GETR", "LTG", "GETG", "LTE", "GETE", "LTN", "GETN",
	"IFTR", "INTR", "IFTG", "INTG", "IFTE", "INTE", "IFTN", "INTN",
	"LTTR", "GETTR", "LTTG", "GETTG", "LTTE", "GETTE", "LTTN", "GETTN",
}

// TestISA is the fixed, in-memory ISA test double.
type TestISA struct {
	cfg      *config.Config
	idByName map[string]int
}

// New builds a TestISA sized by cfg's register file sizes.
func New(cfg *config.Config) *TestISA {
	idByName := make(map[string]int, len(opcodes))
	for i, name := range opcodes {
		idByName[name] = i
	}
	return &TestISA{cfg: cfg, idByName: idByName}
}

var _ isa.ISA = (*TestISA)(nil)

func (t *TestISA) GetInstructionIDByName(name string) (int, bool) {
	id, ok := t.idByName[name]
	return id, ok
}

func (t *TestISA) GetInstructionNameByID(id int) (string, bool) {
	if id < 0 || id >= len(opcodes) {
		return "", false
	}
	return opcodes[id], true
}

func (t *TestISA) GetSignatureByID(id int) (isa.Signature, bool) {
	name, ok := t.GetInstructionNameByID(id)
	if !ok {
		return isa.Signature{}, false
	}
	switch name {
	case "JMPI":
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgLabel}}, true
	case "PUSI":
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgLiteral}}, true
	case "PUSV":
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgLabel}}, true
	case "PUSH", "POP":
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgRegister}}, true
	case "CALL":
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgLabel}}, true
	case "RET":
		return isa.Signature{}, true
	default:
		return isa.Signature{ArgumentTypes: []isa.ArgumentType{isa.ArgRegister, isa.ArgRegister}}, true
	}
}

// ResolveRegisterToken resolves "%DR<n>", "%PR<n>", "%FPR<n>" to a
// numeric ID under the DR/PR/FPR contiguous-range scheme in cfg.
func (t *TestISA) ResolveRegisterToken(text string) (int, bool) {
	if !strings.HasPrefix(text, "%") {
		return 0, false
	}
	body := text[1:]
	for _, family := range []struct {
		prefix string
		base   int
		count  int
	}{
		{"FPR", t.cfg.FPRBase(), t.cfg.NumFormalParamRegisters()},
		{"PR", t.cfg.PRBase(), t.cfg.NumProcRegisters()},
		{"DR", t.cfg.DRBase(), t.cfg.NumDataRegisters()},
	} {
		if !strings.HasPrefix(body, family.prefix) {
			continue
		}
		n, err := strconv.Atoi(body[len(family.prefix):])
		if err != nil || n < 0 || n >= family.count {
			return 0, false
		}
		return family.base + n, true
	}
	return 0, false
}

// RegisterToken renders the register ID back into its textual form, for
// tests and debugging.
func (t *TestISA) RegisterToken(id int) string {
	switch {
	case id >= t.cfg.FPRBase():
		return fmt.Sprintf("%%FPR%d", id-t.cfg.FPRBase())
	case id >= t.cfg.PRBase():
		return fmt.Sprintf("%%PR%d", id-t.cfg.PRBase())
	default:
		return fmt.Sprintf("%%DR%d", id-t.cfg.DRBase())
	}
}
