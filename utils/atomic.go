package utils

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AtomicAddFloat64 adds val to *addr with a compare-and-swap loop.
// Face loops run concurrently over partitions and both cells incident on a
// face receive contributions, so the accumulation must be atomic.
func AtomicAddFloat64(addr *float64, val float64) {
	ptr := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(ptr)
		new := math.Float64bits(math.Float64frombits(old) + val)
		if atomic.CompareAndSwapUint64(ptr, old, new) {
			return
		}
	}
}
