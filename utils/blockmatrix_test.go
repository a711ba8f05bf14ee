package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSparseAddAndMulVec(t *testing.T) {
	// 3 block rows, 2x2 blocks, chain adjacency 0-1-2
	adj := [][]int{{1}, {0, 2}, {1}}
	A := NewBlockSparse(3, 2, adj)

	ident := []float64{1, 0, 0, 1}
	two := []float64{2, 0, 0, 2}
	A.AddBlock(0, 0, ident)
	A.AddBlock(0, 0, ident) // accumulate
	A.AddBlock(1, 1, two)
	A.AddBlock(2, 2, ident)
	A.AddBlock(0, 1, ident)
	A.AddBlock(1, 0, ident)

	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, 6)
	A.MulVec(x, y)
	// row block 0: 2*x0 + x1
	assert.Equal(t, []float64{2*1 + 3, 2*2 + 4, 1 + 2*3, 2 + 2*4, 5, 6}, y)
}

func TestBlockSparseUnallocatedPanics(t *testing.T) {
	A := NewBlockSparse(2, 2, [][]int{{}, {}})
	assert.Panics(t, func() { A.AddBlock(0, 1, []float64{1, 0, 0, 1}) })
}

func TestBlockSparseConcurrentAdd(t *testing.T) {
	A := NewBlockSparse(1, 4, [][]int{{}})
	blk := make([]float64, 16)
	for i := range blk {
		blk[i] = 1
	}
	var wg sync.WaitGroup
	const writers = 64
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			A.AddBlock(0, 0, blk)
		}()
	}
	wg.Wait()
	got := A.Block(0, 0)
	for i := range got {
		assert.Equal(t, float64(writers), got[i])
	}
}

func TestBlockSparseToCSR(t *testing.T) {
	A := NewBlockSparse(2, 2, [][]int{{1}, {0}})
	A.AddBlock(0, 0, []float64{1, 2, 3, 4})
	A.AddBlock(0, 1, []float64{5, 0, 0, 6})
	csr := A.ToCSR()
	r, c := csr.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)
	assert.Equal(t, 1.0, csr.At(0, 0))
	assert.Equal(t, 2.0, csr.At(0, 1))
	assert.Equal(t, 3.0, csr.At(1, 0))
	assert.Equal(t, 4.0, csr.At(1, 1))
	assert.Equal(t, 5.0, csr.At(0, 2))
	assert.Equal(t, 6.0, csr.At(1, 3))
	assert.Equal(t, 0.0, csr.At(2, 0))
}

func TestAtomicAddFloat64(t *testing.T) {
	var x float64
	var wg sync.WaitGroup
	const n = 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AtomicAddFloat64(&x, 0.5)
		}()
	}
	wg.Wait()
	assert.Equal(t, float64(n)*0.5, x)
}

func TestPartitionMapCoversRange(t *testing.T) {
	for _, np := range []int{1, 3, 7} {
		for _, n := range []int{1, 10, 23} {
			pm := NewPartitionMap(np, n)
			covered := 0
			prevEnd := 0
			for b := 0; b < pm.ParallelDegree; b++ {
				lo, hi := pm.GetBucketRange(b)
				assert.Equal(t, prevEnd, lo)
				assert.GreaterOrEqual(t, hi, lo)
				covered += hi - lo
				prevEnd = hi
			}
			assert.Equal(t, n, covered)
		}
	}
}
