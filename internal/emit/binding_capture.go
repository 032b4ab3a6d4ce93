package emit

import "github.com/gridasm/spatialasm/internal/ir"

// eligibleForBindingCapture reports whether every classified operand of a
// CALL is a plain register token. Only register-sourced actuals have a
// register ID the runtime can copy from directly (spec §4.6: "the
// resolved register IDs come from the ISA's resolveRegisterToken"); a
// CALL with an immediate or label-literal VAL actual (scenario 4) still
// gets its data via the ordinary PUSI/PUSH marshalling sequence, so no
// fast-path binding is recorded for it.
func eligibleForBindingCapture(instr ir.Instruction) bool {
	for _, op := range instr.RefOperands {
		if _, ok := op.(ir.Reg); !ok {
			return false
		}
	}
	for _, op := range instr.ValOperands {
		if _, ok := op.(ir.Reg); !ok {
			return false
		}
	}
	return true
}

// resolveRegIDs resolves REF operands (original order) followed by VAL
// operands (original order) to numeric register IDs via the ISA. At
// copy-in the runtime writes entry i into %FPR<i>, so REF actuals bind to
// the lowest-indexed formal-parameter registers. This is not the mapping
// the stack-based prolog produces: the caller pushes the REFs last, and
// the prolog's first POP moves the top of the stack (the first REF) into
// %FPR<k-1>.
func resolveRegIDs(instr ir.Instruction, ctx *LinkingContext) ([]int, bool) {
	ids := make([]int, 0, len(instr.RefOperands)+len(instr.ValOperands))
	for _, op := range instr.RefOperands {
		reg := op.(ir.Reg)
		id, ok := ctx.ISA.ResolveRegisterToken(reg.Name)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	for _, op := range instr.ValOperands {
		reg := op.(ir.Reg)
		id, ok := ctx.ISA.ResolveRegisterToken(reg.Name)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// CallBindingCaptureRule is the first of the two binding-capture rules
// (spec §4.3 step 1, §4.6): it resolves the caller-visible register
// bindings for every classified CALL and stashes them in ctx's pending
// table under a freshly minted CallSiteID, stamped onto the instruction
// before marshalling can rewrite or drop its operand classification.
type CallBindingCaptureRule struct{}

func (r *CallBindingCaptureRule) Name() string { return "call-binding-capture" }

func (r *CallBindingCaptureRule) Apply(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error) {
	out := make([]ir.Item, len(items))
	for i, item := range items {
		instr, ok := item.(ir.Instruction)
		if !ok || !instr.IsClassifiedCall() || !eligibleForBindingCapture(instr) {
			out[i] = item
			continue
		}
		regIDs, ok := resolveRegIDs(instr, ctx)
		if !ok {
			// Unresolvable register token: leave uncaptured rather than
			// fail the whole pipeline here; the Emitter will surface a
			// proper source-located error once it reaches this operand.
			out[i] = item
			continue
		}
		id := ctx.NextCallSiteID()
		instr.CallSiteID = id
		ctx.SetPending(id, &PendingCallBinding{
			RegIDs:   regIDs,
			RefCount: len(instr.RefOperands),
		})
		out[i] = instr
	}
	return out, nil
}

// RefValBindingCaptureRule is the second binding-capture rule (spec §4.3
// step 2): it validates the REF/VAL split the first rule recorded, so a
// malformed or partially-classified CALL is caught before marshalling
// destroys the evidence needed to diagnose it.
type RefValBindingCaptureRule struct{}

func (r *RefValBindingCaptureRule) Name() string { return "ref-val-binding-capture" }

func (r *RefValBindingCaptureRule) Apply(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error) {
	for _, item := range items {
		instr, ok := item.(ir.Instruction)
		if !ok || instr.CallSiteID == 0 {
			continue
		}
		pending, ok := ctx.Pending(instr.CallSiteID)
		if !ok {
			continue
		}
		if pending.RefCount != len(instr.RefOperands) {
			return nil, ir.Errorf(instr.Source,
				"call-binding capture: ref count mismatch for call site %d (have %d, recorded %d)",
				instr.CallSiteID, len(instr.RefOperands), pending.RefCount)
		}
		if pending.RefCount > len(pending.RegIDs) {
			return nil, ir.Errorf(instr.Source,
				"call-binding capture: ref count %d exceeds bound register count %d for call site %d",
				pending.RefCount, len(pending.RegIDs), instr.CallSiteID)
		}
	}
	return items, nil
}
