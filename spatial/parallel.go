package spatial

import (
	"sync"

	"github.com/wme7/FVENS/utils"
)

// parallelRange runs fn over each partition's index range on its own
// goroutine and records the first error. The call is a barrier: it returns
// after every worker has finished.
func (e *Engine) parallelRange(pm *utils.PartitionMap, fn func(min, max int) error, firstErr *error) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			min, max := pm.GetBucketRange(np)
			if err := fn(min, max); err != nil {
				mu.Lock()
				if *firstErr == nil {
					*firstErr = err
				}
				mu.Unlock()
			}
		}(np)
	}
	wg.Wait()
}
