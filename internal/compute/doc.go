// Package compute provides the layout-conversion acceleration hook: an
// attach point where a batch or GPU backend could materialise many cells'
// SoA mirrors at once instead of one cell at a time.
//
// Only a CPU accelerator ships:
//
//	acc := compute.GetAccelerator()
//	soas := acc.ConvertAoSToSoA(cells)
//	... run a functor over soas ...
//	acc.WriteBackSoAToAoS(cells)
//
// The package holds the Accelerator interface, SetAccelerator and
// GetAccelerator, and CPUAccelerator with its chunked sync.WaitGroup
// fan-out (parallelForCells); there are no CUDA or OpenGL backends — see
// DESIGN.md.
package compute
