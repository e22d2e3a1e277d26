// Package autotune implements the configuration search: enumerate
// applicable (container, traversal, layout, Newton3, cellSizeFactor,
// loadEstimator) tuples, sample their runtime, reduce samples to one
// number, and commit the fastest as current for the next tuning interval.
//
// The predictive/rule-based search shape generalizes a recursive
// parameter-space enumeration (floats there, categorical tuples here) to a
// traversal-selector-style tuning strategy family.
package autotune

import (
	"fmt"

	"github.com/cellgrid/autotune/internal/traversal"
)

// Config is the tuner's state tuple: container, cell-size factor,
// traversal, data layout, Newton3 mode, and load estimator.
type Config struct {
	Container      string
	CellSizeFactor float64
	Traversal      string
	Layout         traversal.DataLayout
	Newton3        bool
	Estimator      traversal.LoadEstimator
}

func (c Config) String() string {
	return fmt.Sprintf("%s(csf=%.2f)/%s/%s/n3=%t", c.Container, c.CellSizeFactor, c.Traversal, c.Layout, c.Newton3)
}

// ReduceStrategy names how a configuration's sample buffer collapses to one
// number.
type ReduceStrategy int

const (
	ReduceMin ReduceStrategy = iota
	ReduceMean
	ReduceMedian
)
