package engine

import (
	"fmt"

	"bugscan/internal/action"
	"bugscan/internal/config"
	"bugscan/internal/target"
)

// TargetPlan is one visited target and the work attached to it.
type TargetPlan struct {
	Target *target.Target

	// InScope is false when the rule kind is not allow-listed. Out-of-scope
	// targets get no invocations and no declared outputs.
	InScope bool

	// Files is what gets analyzed. Empty for an in-scope target means the
	// no-op path: placeholder outputs, no process.
	Files []string

	// Pair is the human/machine invocation pair. Nil on the no-op path and
	// for out-of-scope targets.
	Pair *action.Pair
}

// Noop reports whether this target takes the no-op path.
func (tp *TargetPlan) Noop() bool {
	return tp.InScope && len(tp.Files) == 0
}

// Plan is the full set of per-target work for one run. Building the plan is
// where configuration errors surface; execution assumes a valid plan.
type Plan struct {
	Targets []*TargetPlan
}

// Analyzable counts in-scope targets with at least one file.
func (p *Plan) Analyzable() int {
	n := 0
	for _, tp := range p.Targets {
		if tp.InScope && len(tp.Files) > 0 {
			n++
		}
	}
	return n
}

// BuildPlan walks the manifest graph from the configured roots and attaches
// invocation pairs to every in-scope target.
func BuildPlan(m *target.Manifest, sel *target.Selector, b *action.Builder, cfg *config.Config) (*Plan, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	if sel == nil {
		return nil, fmt.Errorf("selector is nil")
	}
	if b == nil {
		return nil, fmt.Errorf("action builder is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	visited, err := m.Walk(cfg.Targeting.Targets)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	analyzed := 0
	for _, t := range visited {
		tp := &TargetPlan{Target: t}

		if !sel.InScope(t.Kind) {
			plan.Targets = append(plan.Targets, tp)
			continue
		}
		tp.InScope = true

		if cfg.Targeting.MaxTargets > 0 && analyzed >= cfg.Targeting.MaxTargets {
			// Over budget: treat as out of scope rather than silently dropping
			// the target from the plan.
			tp.InScope = false
			plan.Targets = append(plan.Targets, tp)
			continue
		}

		tp.Files = sel.FilesFor(t)
		if len(tp.Files) > 0 {
			pair, err := b.BuildPair(t.Label, tp.Files)
			if err != nil {
				return nil, fmt.Errorf("plan target %s: %w", t.Label, err)
			}
			tp.Pair = pair
			analyzed++
		}
		plan.Targets = append(plan.Targets, tp)
	}
	return plan, nil
}
