package traversal

import "sync"

// parallelFor runs work(i) for i in [0,n) across at most numWorkers
// goroutines, waiting for every call to finish before returning — a bulk
// parallel-region-then-barrier shape, using the same chunked
// sync.WaitGroup fan-out as a ParallelFor/Ensemble helper.
func parallelFor(n, numWorkers int, work func(i int)) {
	if n == 0 {
		return
	}
	if numWorkers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			work(i)
		}
		return
	}
	if numWorkers > n {
		numWorkers = n
	}

	var wg sync.WaitGroup
	chunk := (n + numWorkers - 1) / numWorkers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				work(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
