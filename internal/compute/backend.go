package compute

import "github.com/cellgrid/autotune/internal/particle"

// Accelerator batch-converts cells between AoS and SoA. The default
// CPUAccelerator performs the conversion structurally, one cell at a time;
// a real attach point (not shipped here) could instead stage every cell's
// columns into device memory in one transfer.
type Accelerator interface {
	Name() string
	Available() bool
	ConvertAoSToSoA(cells []*particle.FullCell) []*particle.SoA
	WriteBackSoAToAoS(cells []*particle.FullCell)
}

var activeAccelerator Accelerator = NewCPUAccelerator()

// SetAccelerator overrides the active accelerator.
func SetAccelerator(a Accelerator) { activeAccelerator = a }

// GetAccelerator returns the active accelerator.
func GetAccelerator() Accelerator { return activeAccelerator }
