// Package emit implements the ordered IR-rewriting pipeline (spec
// §4.2–§4.6): the Rule interface, the default EmissionRegistry, binding
// capture, procedure marshalling, and caller marshalling. This mirrors
// the ordered-pass idiom of the teacher's ssa.RunPasses (a fixed list of
// named steps run in sequence, each a pure function of the previous
// step's output) adapted to a rewrite pipeline over ir.Item instead of an
// SSA builder.
package emit

import (
	"fmt"

	"github.com/gridasm/spatialasm/internal/bindings"
	"github.com/gridasm/spatialasm/internal/config"
	"github.com/gridasm/spatialasm/internal/isa"
	"github.com/gridasm/spatialasm/internal/xlog"
)

// PendingCallBinding is the register-ID list a binding-capture rule
// resolves ahead of marshalling, stashed under a CallSiteID token until
// the Emitter knows the linear address and absolute coordinate needed to
// finalize it into the bindings.Registry.
type PendingCallBinding struct {
	// RegIDs is the ordered list of register IDs representing actuals:
	// REF operands (original order) followed by VAL operands (original
	// order). See resolveRegIDs for how this ordering relates to the
	// stack-based prolog.
	RegIDs []int
	// RefCount is the number of leading entries in RegIDs contributed by
	// REF operands, recorded by CallBindingCaptureRule and checked by the
	// ref/val binding-capture rule, so downstream consumers can tell the
	// REF/VAL boundary without re-deriving it from the (by then rewritten)
	// CALL operands.
	RefCount int
}

// LinkingContext is threaded through every Rule in a single emission
// pipeline run. It owns the resources rules legitimately need: ISA
// register resolution, the call-binding registry, a fresh-label counter
// scoped to this one run (spec §9: reset at the start of each
// compilation, not a process-global atomic), and the pending call-binding
// table later read by the Emitter.
type LinkingContext struct {
	ISA      isa.ISA
	Bindings *bindings.Registry
	Config   *config.Config
	Logger   *xlog.Logger

	labelSeq       int
	nextCallSiteID int
	pending        map[int]*PendingCallBinding
}

// NewLinkingContext builds a fresh LinkingContext for one pipeline run.
func NewLinkingContext(i isa.ISA, reg *bindings.Registry, cfg *config.Config, logger *xlog.Logger) *LinkingContext {
	if logger == nil {
		logger = xlog.Nop()
	}
	return &LinkingContext{
		ISA:      i,
		Bindings: reg,
		Config:   cfg,
		Logger:   logger,
		pending:  make(map[int]*PendingCallBinding),
	}
}

// FreshLabel mints a process-unique-within-this-run label for rewrites
// like the conditional-CALL branch target (spec §4.5(b)), e.g.
// "_safe_call_0", "_safe_call_1", ...
func (c *LinkingContext) FreshLabel(prefix string) string {
	n := c.labelSeq
	c.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, n)
}

// NextCallSiteID returns a fresh, run-scoped token to stamp onto a
// classified CALL instruction.
func (c *LinkingContext) NextCallSiteID() int {
	c.nextCallSiteID++
	return c.nextCallSiteID
}

// SetPending records (or updates) the pending binding for callSiteID.
func (c *LinkingContext) SetPending(callSiteID int, p *PendingCallBinding) {
	c.pending[callSiteID] = p
}

// Pending returns the pending binding for callSiteID, if any.
func (c *LinkingContext) Pending(callSiteID int) (*PendingCallBinding, bool) {
	p, ok := c.pending[callSiteID]
	return p, ok
}
