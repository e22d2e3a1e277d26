// Package optim implements a continuous-parameter grid search over engine
// configuration fields (skin, cutoff, cell-size factor) — distinct from
// internal/autotune's categorical container/traversal/layout/Newton3
// search, which runs inside a single committed configuration's lifetime.
// Uses the same recursive cross-product enumeration as the categorical
// search, applied to continuous float ranges instead.
package optim

import (
	"context"
	"math"
	"time"

	"github.com/cellgrid/autotune/internal/config"
	"github.com/cellgrid/autotune/internal/experiment"
)

// GridSearch enumerates the cross product of named float parameters' value
// ranges, applies each combination to a base config via apply, runs the
// resulting experiment, and scores it with a caller-supplied function.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	apply      func(cfg *config.Config, paramName string, v float64)
}

// NewGridSearch builds a search over params, each varied across the values
// in the matching entry of ranges, using apply to write one value into a
// config.Config field.
func NewGridSearch(params []string, ranges [][]float64, apply func(cfg *config.Config, paramName string, v float64)) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, apply: apply}
}

// Result is one grid point's parameter assignment and its score.
type Result struct {
	Params map[string]float64
	Score  float64
}

// Search runs every grid point for steps engine iterations each, handing
// score the finished experiment and the wall time the run took, and returns
// the point with the lowest score alongside every point evaluated, in
// enumeration order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, steps int, score func(*experiment.Experiment, time.Duration) float64) (Result, []Result, error) {
	best := Result{Score: math.Inf(1)}
	var all []Result
	var searchErr error

	g.searchRecursive(ctx, base, steps, score, 0, make(map[string]float64), &best, &all, &searchErr)

	return best, all, searchErr
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	base *config.Config,
	steps int,
	score func(*experiment.Experiment, time.Duration) float64,
	depth int,
	current map[string]float64,
	best *Result,
	all *[]Result,
	searchErr *error,
) {
	if *searchErr != nil {
		return
	}
	if depth == len(g.paramNames) {
		cfg := *base
		for name, v := range current {
			g.apply(&cfg, name, v)
		}

		exp, err := experiment.New(&cfg, false)
		if err != nil {
			*searchErr = err
			return
		}
		if err := exp.SeedUniformRandom(); err != nil {
			*searchErr = err
			return
		}
		start := time.Now()
		if _, err := exp.Run(ctx, steps); err != nil {
			*searchErr = err
			return
		}
		elapsed := time.Since(start)

		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		point := Result{Params: params, Score: score(exp, elapsed)}
		*all = append(*all, point)
		if point.Score < best.Score {
			*best = point
		}
		return
	}

	name := g.paramNames[depth]
	for _, v := range g.ranges[depth] {
		current[name] = v
		g.searchRecursive(ctx, base, steps, score, depth+1, current, best, all, searchErr)
	}
	delete(current, name)
}
