package runtime

import (
	"github.com/gridasm/spatialasm/internal/bindings"
	"github.com/gridasm/spatialasm/internal/config"
	"github.com/gridasm/spatialasm/internal/emitter"
	"github.com/gridasm/spatialasm/internal/layout"
	"github.com/gridasm/spatialasm/internal/xlog"
)

// Handler (ProcedureCallHandler) implements the CALL/RET state machine
// (spec §4.10, L12).
type Handler struct {
	Config   *config.Config
	Resolver *bindings.Resolver
	Logger   *xlog.Logger
}

// New builds a Handler. logger may be nil, in which case a no-op logger
// is used.
func New(cfg *config.Config, resolver *bindings.Resolver, logger *xlog.Logger) *Handler {
	if logger == nil {
		logger = xlog.Nop()
	}
	return &Handler{Config: cfg, Resolver: resolver, Logger: logger}
}

// ExecuteCall implements spec §4.10 steps 1-8. artifact may be nil; it is
// consulted only for best-effort label-name debugging.
func (h *Handler) ExecuteCall(ctx ExecutionContext, targetDelta []int32, artifact *emitter.Artifact) error {
	org := ctx.Organism()

	if org.CallStackDepth() >= h.Config.CallStackMaxDepth() {
		org.InstructionFailed("Call stack overflow")
		h.Logger.Warn("call stack overflow", xlog.Int("depth", org.CallStackDepth()))
		return &OverflowError{Depth: org.CallStackDepth()}
	}

	preFetchCoord := org.PreFetchCoord()
	fprBindings := map[int]int{}
	regIDs, found := h.Resolver.Resolve(preFetchCoord)
	if found {
		n := len(regIDs)
		if max := h.Config.NumFormalParamRegisters(); n > max {
			n = max
		}
		for i := 0; i < n; i++ {
			fprBindings[h.Config.FPRBase()+i] = regIDs[i]
		}
	}

	returnIP := ctx.NextInstructionPosition(preFetchCoord, org.PreFetchDirection())

	savedPRs := make([]int32, h.Config.NumProcRegisters())
	for i := range savedPRs {
		savedPRs[i] = org.ReadRegister(h.Config.PRBase() + i)
	}
	savedFPRs := make([]int32, h.Config.NumFormalParamRegisters())
	for i := range savedFPRs {
		savedFPRs[i] = org.ReadRegister(h.Config.FPRBase() + i)
	}

	targetIP := ctx.TargetCoordinate(org.Origin(), targetDelta)
	procName := lookupLabelName(artifact, targetIP)

	org.PushFrame(Frame{
		ProcName:         procName,
		AbsoluteReturnIP: returnIP,
		SavedPRs:         savedPRs,
		SavedFPRs:        savedFPRs,
		FPRBindings:      fprBindings,
	})

	if found {
		n := len(regIDs)
		if max := h.Config.NumFormalParamRegisters(); n > max {
			n = max
		}
		for i := 0; i < n; i++ {
			org.WriteRegister(h.Config.FPRBase()+i, org.ReadRegister(regIDs[i]))
		}
	}

	org.SetIP(targetIP)
	org.SetSkipAutomaticAdvance(true)
	h.Logger.Debug("executed call", xlog.String("proc", procName), xlog.Any("target", targetIP))
	return nil
}

// ExecuteReturn implements spec §4.10's return steps 1-4.
func (h *Handler) ExecuteReturn(ctx ExecutionContext) error {
	org := ctx.Organism()

	if org.CallStackDepth() == 0 {
		org.InstructionFailed("Call stack underflow (RET without CALL)")
		h.Logger.Warn("call stack underflow")
		return &UnderflowError{}
	}

	frame, ok := org.PopFrame()
	if !ok {
		org.InstructionFailed("Call stack underflow (RET without CALL)")
		return &UnderflowError{}
	}

	for i, v := range frame.SavedPRs {
		org.WriteRegister(h.Config.PRBase()+i, v)
	}

	org.SetIP(frame.AbsoluteReturnIP)
	org.SetSkipAutomaticAdvance(true)
	h.Logger.Debug("executed return", xlog.String("proc", frame.ProcName))
	return nil
}

// lookupLabelName is a best-effort debug aid: it has no effect on
// execution semantics and never fails the call if the label can't be
// found (e.g. no artifact supplied, or the coordinate carries no label).
func lookupLabelName(artifact *emitter.Artifact, coord []int32) string {
	if artifact == nil {
		return ""
	}
	key := layout.NewCoordKey(coord)
	addr, ok := artifact.CoordToLinear[key]
	if !ok {
		return ""
	}
	return artifact.LabelAddressToName[addr]
}
