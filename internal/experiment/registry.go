package experiment

import (
	"fmt"

	"github.com/cellgrid/autotune/internal/autotune"
)

// Registry resolves the YAML-friendly strategy/reduce names config.Config
// carries into the concrete autotune types.
type Registry struct{}

// NewRegistry returns the (stateless) strategy/reduce resolver.
func NewRegistry() *Registry { return &Registry{} }

// ParseReduce resolves a tuner.reduce config string to autotune.ReduceStrategy.
func ParseReduce(name string) (autotune.ReduceStrategy, error) {
	switch name {
	case "", "min":
		return autotune.ReduceMin, nil
	case "mean":
		return autotune.ReduceMean, nil
	case "median":
		return autotune.ReduceMedian, nil
	default:
		return 0, fmt.Errorf("experiment: unknown reduce strategy %q", name)
	}
}

// Strategy resolves a tuner.strategy config string to an autotune.Strategy,
// wiring in the already-resolved reduce strategy where a strategy needs one
// for its own history lookups.
func (r *Registry) Strategy(name string, reduce autotune.ReduceStrategy) (autotune.Strategy, error) {
	switch name {
	case "", "full-search":
		return autotune.FullSearch{}, nil
	case "predictive":
		return autotune.Predictive{Reduce: reduce}, nil
	case "bayesian":
		return &autotune.Bayesian{Reduce: reduce}, nil
	case "rule-based":
		return autotune.RuleBased{Rules: DefaultRules()}, nil
	default:
		return nil, fmt.Errorf("experiment: unknown tuning strategy %q", name)
	}
}

// DefaultRules is a small starter rule set for the rule-based strategy:
// systems of fewer than 200 particles favour direct-sum; distributions with
// homogeneity above 0.7 favour linked-cells with the c08 traversal.
func DefaultRules() []autotune.Rule {
	return []autotune.Rule{
		{
			When:   func(li autotune.LiveInfo) bool { return li.ParticleCount < 200 },
			Prefer: func(cfg autotune.Config) bool { return cfg.Container == "direct-sum" },
		},
		{
			When:   func(li autotune.LiveInfo) bool { return li.Homogeneity > 0.7 },
			Prefer: func(cfg autotune.Config) bool { return cfg.Container == "linked-cells" && cfg.Traversal == "c08" },
		},
	}
}
