package compute

import (
	"runtime"
	"sync"

	"github.com/cellgrid/autotune/internal/particle"
)

// CPUAccelerator converts cells to SoA form on ordinary goroutines, chunking
// the cell slice across GOMAXPROCS workers.
type CPUAccelerator struct{}

// NewCPUAccelerator returns the default, always-available accelerator.
func NewCPUAccelerator() *CPUAccelerator { return &CPUAccelerator{} }

func (c *CPUAccelerator) Name() string    { return "cpu" }
func (c *CPUAccelerator) Available() bool { return true }

func (c *CPUAccelerator) ConvertAoSToSoA(cells []*particle.FullCell) []*particle.SoA {
	out := make([]*particle.SoA, len(cells))
	parallelForCells(len(cells), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = cells[i].SyncToSoA()
		}
	})
	return out
}

func (c *CPUAccelerator) WriteBackSoAToAoS(cells []*particle.FullCell) {
	parallelForCells(len(cells), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			cells[i].SyncFromSoA()
		}
	})
}

// parallelForCells splits [0,n) into at most GOMAXPROCS contiguous chunks
// and runs each on its own goroutine.
func parallelForCells(n int, work func(lo, hi int)) {
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		work(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			work(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
