package gradient

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/wme7/FVENS/mesh"
	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

const nvars = physics.NVars

/*
	A Scheme computes cell-centred spatial gradients of a state field from
	cell values and ghost-face values.

	Layouts: u is nelem x nvars row-major, ug is nbface x nvars, grads is
	nelem x 2 x nvars with the direction index in the middle.
*/
type Scheme interface {
	ComputeGradients(u, ug, grads []float64)
}

// New constructs the named gradient scheme. rc holds the real and ghost cell
// centroids, indexed the way the spatial engine stores them: ghost centroid
// of boundary face f at nelem+f.
func New(name string, msh *mesh.Mesh, rc [][2]float64) (Scheme, error) {
	switch strings.ToUpper(name) {
	case "", "NONE", "ZERO":
		return &ZeroGradients{msh: msh}, nil
	case "GREENGAUSS":
		return &GreenGaussGradients{msh: msh, rc: rc}, nil
	case "LEASTSQUARES":
		return NewWeightedLeastSquares(msh, rc), nil
	}
	return nil, fmt.Errorf("unknown gradient scheme %q: %w", name, utils.ErrConfigInvalid)
}

// parallelCells runs fn over cell ranges on one goroutine per partition.
func parallelCells(nelem int, fn func(cmin, cmax int)) {
	pm := utils.NewPartitionMap(utils.DefaultParallelism(), nelem)
	var wg sync.WaitGroup
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cmin, cmax := pm.GetBucketRange(np)
			fn(cmin, cmax)
		}(np)
	}
	wg.Wait()
}

// ZeroGradients sets every gradient to zero, which drops the scheme to
// first order.
type ZeroGradients struct {
	msh *mesh.Mesh
}

func (z *ZeroGradients) ComputeGradients(u, ug, grads []float64) {
	for i := range grads[:z.msh.NElem()*2*nvars] {
		grads[i] = 0
	}
}

// GreenGaussGradients integrates inverse-distance weighted face values of
// the field over each cell boundary.
type GreenGaussGradients struct {
	msh *mesh.Mesh
	rc  [][2]float64
}

func (gg *GreenGaussGradients) ComputeGradients(u, ug, grads []float64) {
	m := gg.msh
	parallelCells(m.NElem(), func(cmin, cmax int) {
		for c := cmin; c < cmax; c++ {
			gc := grads[c*2*nvars : (c+1)*2*nvars]
			for i := range gc {
				gc[i] = 0
			}
			for _, f := range m.CellFaces(c) {
				l, r := m.FaceCells(f)
				nx, ny, length := m.FaceMetric(f)
				sign := 1.0
				if c != l {
					sign = -1.0
				}
				n1, n2 := m.FaceNodes(f)
				x1, y1 := m.NodeCoord(n1)
				x2, y2 := m.NodeCoord(n2)
				fx, fy := 0.5*(x1+x2), 0.5*(y1+y2)

				other := r
				var uo []float64
				if f < m.NBFace() {
					uo = ug[f*nvars : (f+1)*nvars]
				} else {
					if c != l {
						other = l
					}
					uo = u[other*nvars : (other+1)*nvars]
				}
				uc := u[c*nvars : (c+1)*nvars]

				wc := 1.0 / math.Hypot(fx-gg.rc[c][0], fy-gg.rc[c][1])
				wo := 1.0 / math.Hypot(fx-gg.rc[other][0], fy-gg.rc[other][1])
				for k := 0; k < nvars; k++ {
					phif := (wc*uc[k] + wo*uo[k]) / (wc + wo)
					gc[0*nvars+k] += sign * phif * nx * length
					gc[1*nvars+k] += sign * phif * ny * length
				}
			}
			area := m.CellArea(c)
			for i := range gc {
				gc[i] /= area
			}
		}
	})
}

// WeightedLeastSquaresGradients solves, per cell, the inverse-distance
// weighted least-squares fit over the face neighbours, ghost cells
// included. The 2x2 normal-equation matrices are factorized once at
// construction.
type WeightedLeastSquaresGradients struct {
	msh *mesh.Mesh
	rc  [][2]float64
	// inverted normal-equation matrices, one 2x2 per cell
	vinv [][4]float64
}

func NewWeightedLeastSquares(msh *mesh.Mesh, rc [][2]float64) *WeightedLeastSquaresGradients {
	ls := &WeightedLeastSquaresGradients{
		msh:  msh,
		rc:   rc,
		vinv: make([][4]float64, msh.NElem()),
	}
	for c := 0; c < msh.NElem(); c++ {
		var a [4]float64
		ls.forNeighbours(c, func(other int) {
			dx := rc[other][0] - rc[c][0]
			dy := rc[other][1] - rc[c][1]
			w2 := 1.0 / (dx*dx + dy*dy)
			a[0] += w2 * dx * dx
			a[1] += w2 * dx * dy
			a[2] += w2 * dx * dy
			a[3] += w2 * dy * dy
		})
		var inv mat.Dense
		if err := inv.Inverse(mat.NewDense(2, 2, a[:])); err != nil {
			panic(fmt.Sprintf("least-squares matrix of cell %d is singular: %v", c, err))
		}
		ls.vinv[c] = [4]float64{inv.At(0, 0), inv.At(0, 1), inv.At(1, 0), inv.At(1, 1)}
	}
	return ls
}

// forNeighbours visits the cell or ghost index across each face of cell c.
func (ls *WeightedLeastSquaresGradients) forNeighbours(c int, visit func(other int)) {
	m := ls.msh
	for _, f := range m.CellFaces(c) {
		l, r := m.FaceCells(f)
		other := r
		if c != l {
			other = l
		}
		visit(other)
	}
}

func (ls *WeightedLeastSquaresGradients) ComputeGradients(u, ug, grads []float64) {
	m := ls.msh
	nelem := m.NElem()
	parallelCells(nelem, func(cmin, cmax int) {
		for c := cmin; c < cmax; c++ {
			var bx, by [nvars]float64
			uc := u[c*nvars : (c+1)*nvars]
			ls.forNeighbours(c, func(other int) {
				dx := ls.rc[other][0] - ls.rc[c][0]
				dy := ls.rc[other][1] - ls.rc[c][1]
				w2 := 1.0 / (dx*dx + dy*dy)
				var uo []float64
				if other >= nelem {
					f := other - nelem
					uo = ug[f*nvars : (f+1)*nvars]
				} else {
					uo = u[other*nvars : (other+1)*nvars]
				}
				for k := 0; k < nvars; k++ {
					d := uo[k] - uc[k]
					bx[k] += w2 * dx * d
					by[k] += w2 * dy * d
				}
			})
			inv := &ls.vinv[c]
			gc := grads[c*2*nvars : (c+1)*2*nvars]
			for k := 0; k < nvars; k++ {
				gc[0*nvars+k] = inv[0]*bx[k] + inv[1]*by[k]
				gc[1*nvars+k] = inv[2]*bx[k] + inv[3]*by[k]
			}
		}
	})
}
