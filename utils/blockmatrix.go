package utils

import (
	"fmt"
	"sort"
	"sync"

	"github.com/james-bowman/sparse"
)

// BlockSparse is a square sparse block matrix with dense square blocks.
// The sparsity pattern is fixed at construction from a block adjacency list;
// only listed blocks are allocated, all others are implicitly zero.
//
// AddBlock serializes concurrent writers per block row, which is the
// block-atomic add the spatial engine requires of its matrix backend.
type BlockSparse struct {
	NrBlocks  int // matrix is NrBlocks x NrBlocks blocks
	BlockSize int // each block is BlockSize x BlockSize

	cols  [][]int     // sorted column block indices per block row
	data  [][]float64 // per block row, len(cols[i])*BlockSize^2
	locks []sync.Mutex
}

// NewBlockSparse allocates a block matrix with the given pattern. adjacency[i]
// lists the column block indices of row i; the diagonal is added if absent.
func NewBlockSparse(nrBlocks, blockSize int, adjacency [][]int) *BlockSparse {
	bs := &BlockSparse{
		NrBlocks:  nrBlocks,
		BlockSize: blockSize,
		cols:      make([][]int, nrBlocks),
		data:      make([][]float64, nrBlocks),
		locks:     make([]sync.Mutex, nrBlocks),
	}
	for i := 0; i < nrBlocks; i++ {
		seen := map[int]bool{i: true}
		row := []int{i}
		if i < len(adjacency) {
			for _, j := range adjacency[i] {
				if !seen[j] {
					seen[j] = true
					row = append(row, j)
				}
			}
		}
		sort.Ints(row)
		bs.cols[i] = row
		bs.data[i] = make([]float64, len(row)*blockSize*blockSize)
	}
	return bs
}

func (bs *BlockSparse) find(i, j int) int {
	row := bs.cols[i]
	lo, hi := 0, len(row)
	for lo < hi {
		mid := (lo + hi) / 2
		if row[mid] < j {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(row) || row[lo] != j {
		panic(fmt.Sprintf("BlockSparse: block (%d,%d) not allocated", i, j))
	}
	return lo
}

// Block returns the storage of block (i,j) in row-major order. The view is
// not synchronized; use it only outside concurrent assembly.
func (bs *BlockSparse) Block(i, j int) []float64 {
	n2 := bs.BlockSize * bs.BlockSize
	off := bs.find(i, j) * n2
	return bs.data[i][off : off+n2]
}

// AddBlock accumulates the row-major block blk into block (i,j), serializing
// against other writers to block row i.
func (bs *BlockSparse) AddBlock(i, j int, blk []float64) {
	n2 := bs.BlockSize * bs.BlockSize
	off := bs.find(i, j) * n2
	bs.locks[i].Lock()
	dst := bs.data[i][off : off+n2]
	for k := range dst {
		dst[k] += blk[k]
	}
	bs.locks[i].Unlock()
}

// AddToDiagonal adds v times the identity to diagonal block i.
func (bs *BlockSparse) AddToDiagonal(i int, v float64) {
	n := bs.BlockSize
	off := bs.find(i, i) * n * n
	bs.locks[i].Lock()
	for k := 0; k < n; k++ {
		bs.data[i][off+k*n+k] += v
	}
	bs.locks[i].Unlock()
}

// Zero resets all allocated blocks, keeping the pattern.
func (bs *BlockSparse) Zero() {
	for i := range bs.data {
		row := bs.data[i]
		for k := range row {
			row[k] = 0
		}
	}
}

// Dims returns the scalar dimensions of the matrix.
func (bs *BlockSparse) Dims() (r, c int) {
	return bs.NrBlocks * bs.BlockSize, bs.NrBlocks * bs.BlockSize
}

// MulVec computes y = A*x on the scalar expansion of the block matrix.
func (bs *BlockSparse) MulVec(x, y []float64) {
	n := bs.BlockSize
	for i := 0; i < bs.NrBlocks; i++ {
		for ii := 0; ii < n; ii++ {
			y[i*n+ii] = 0
		}
		for c, j := range bs.cols[i] {
			blk := bs.data[i][c*n*n : (c+1)*n*n]
			for ii := 0; ii < n; ii++ {
				var sum float64
				for jj := 0; jj < n; jj++ {
					sum += blk[ii*n+jj] * x[j*n+jj]
				}
				y[i*n+ii] += sum
			}
		}
	}
}

// ToCSR exports the scalar expansion as a compressed sparse row matrix for
// use by iterative linear solvers.
func (bs *BlockSparse) ToCSR() *sparse.CSR {
	n := bs.BlockSize
	nr := bs.NrBlocks * n
	dok := sparse.NewDOK(nr, nr)
	for i := 0; i < bs.NrBlocks; i++ {
		for c, j := range bs.cols[i] {
			blk := bs.data[i][c*n*n : (c+1)*n*n]
			for ii := 0; ii < n; ii++ {
				for jj := 0; jj < n; jj++ {
					if blk[ii*n+jj] != 0 {
						dok.Set(i*n+ii, j*n+jj, blk[ii*n+jj])
					}
				}
			}
		}
	}
	return dok.ToCSR()
}
