package bench

import (
	"context"
	"runtime"
	"sync"

	goutils "go.viam.com/utils"
)

// parallelFactor controls the max level of parallelization across trial
// workers.
var parallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if parallelFactor <= 0 {
		parallelFactor = 1
	}
}

// trialWorkParallel fans total work items out over a fixed set of
// workers, handing each worker a contiguous index range; the last worker
// absorbs the remainder. work must be safe to call concurrently for
// distinct indices.
func trialWorkParallel(ctx context.Context, total int, work func(trial int)) error {
	if total <= 0 {
		return nil
	}
	workers := parallelFactor
	if workers > total {
		workers = total
	}
	groupSize := total / workers
	extra := total % workers

	var wait sync.WaitGroup
	wait.Add(workers)
	for workerNum := 0; workerNum < workers; workerNum++ {
		from := groupSize * workerNum
		to := from + groupSize
		if workerNum == workers-1 {
			to += extra
		}
		goutils.PanicCapturingGo(func() {
			defer wait.Done()
			for trial := from; trial < to; trial++ {
				work(trial)
			}
		})
	}
	wait.Wait()
	return ctx.Err()
}
