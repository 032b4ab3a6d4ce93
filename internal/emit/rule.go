package emit

import (
	"github.com/gridasm/spatialasm/internal/ir"
	"github.com/gridasm/spatialasm/internal/xlog"
)

// Rule is one pure IR-to-IR rewrite step (spec §4.2). Implementations must
// not mutate items in place (return a new slice instead) and must not
// reach for any shared state beyond ctx.
type Rule interface {
	Name() string
	Apply(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error)
}

// Registry is an ordered pipeline of Rules (spec §4.3/L7), modeled on the
// teacher's ssa.RunPasses: a fixed list run strictly in sequence, each
// stage's output feeding the next.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a Registry running rules in the given order.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// Default returns the EmissionRegistry with the spec's fixed default
// order (§4.3): call-binding capture, ref/val binding capture, procedure
// marshalling, caller marshalling.
func Default() *Registry {
	return NewRegistry(
		&CallBindingCaptureRule{},
		&RefValBindingCaptureRule{},
		&ProcedureMarshallingRule{},
		&CallerMarshallingRule{},
	)
}

// Run applies every rule in order, threading ctx and the rewritten item
// slice through the pipeline, and logs one Debug record per applied rule
// (rule name, item count delta) through ctx.Logger.
func (reg *Registry) Run(items []ir.Item, ctx *LinkingContext) ([]ir.Item, error) {
	cur := items
	for _, r := range reg.rules {
		next, err := r.Apply(cur, ctx)
		if err != nil {
			return nil, err
		}
		if ctx != nil && ctx.Logger != nil {
			ctx.Logger.Debug("applied rule", xlog.String("rule", r.Name()), xlog.Int("delta", len(next)-len(cur)))
		}
		cur = next
	}
	return cur, nil
}
