package spatial

import (
	"github.com/wme7/FVENS/utils"
)

/*
	ComputeJacobian adds the Jacobian d(r)/d(u) of the flux integral into the
	block matrix A, which must carry the mesh's face-neighbour pattern (see
	NewJacobianMatrix). A is not zeroed here, so drivers can add a
	pseudo-time diagonal shift before or after.

	The Jacobian flux may differ from the residual flux. Viscous
	contributions use the full thin-layer-gradient Jacobian unless the
	engine is configured for the approximate diagonal one.
*/
func (e *Engine) ComputeJacobian(u []float64, A *utils.BlockSparse) error {
	m := e.msh
	var firstErr error

	// boundary faces: the ghost state is a function of the interior state,
	// so the whole contribution lands on the diagonal block
	e.parallelRange(e.pmBFace, func(fmin, fmax int) error {
		var (
			uface       [4]float64
			drdl        [16]float64
			left, right [16]float64
		)
		for f := fmin; f < fmax; f++ {
			l, _ := m.FaceCells(f)
			nx, ny, length := m.FaceMetric(f)
			n := [2]float64{nx, ny}
			ul := u[l*nvars : (l+1)*nvars]

			marker := m.FaceMarker(f)
			if marker == e.bcs.PeriodicMarker() {
				// the paired interior state is constant in this row's
				// linearization; treat the face like a far coupling omitted
				// from the pattern, keeping only the left dependence
				pl, _ := m.FaceCells(m.PeriodicMap(f))
				copy(uface[:], u[pl*nvars:(pl+1)*nvars])
				for k := range drdl {
					drdl[k] = 0
				}
			} else {
				bc, err := e.bcs.At(marker)
				if err != nil {
					return err
				}
				bc.GhostJacobian(ul, n[:], uface[:], &drdl)
			}

			e.jflux.GetJacobian(ul, uface[:], n[:], &left, &right)
			if e.cfg.Viscous {
				if e.cfg.ThinLayerJacobian {
					e.computeViscousFluxApproxJacobian(f, ul, uface[:], &left, &right)
				} else {
					e.computeViscousFluxJacobian(f, ul, uface[:], &left, &right)
				}
			}

			/* The actual derivative is dF/dl + dF/dr * dr/dl. left holds
			 * the negative of dF/dl but right holds positive dF/dr, so the
			 * product is subtracted; integrate over the face and negate, as
			 * the negative of L is added to the diagonal. */
			var rd [16]float64
			mul4(&right, &drdl, &rd)
			for k := 0; k < 16; k++ {
				left[k] = -length * (left[k] - rd[k])
			}
			A.AddBlock(l, l, left[:])
		}
		return nil
	}, &firstErr)
	if firstErr != nil {
		return firstErr
	}

	e.parallelRange(e.pmFace, func(fmin, fmax int) error {
		var L, U [16]float64
		for f := fmin; f < fmax; f++ {
			if f < m.NBFace() {
				continue
			}
			l, r := m.FaceCells(f)
			nx, ny, length := m.FaceMetric(f)
			n := [2]float64{nx, ny}
			ul := u[l*nvars : (l+1)*nvars]
			ur := u[r*nvars : (r+1)*nvars]

			// L and U get replaced here, not added to
			e.jflux.GetJacobian(ul, ur, n[:], &L, &U)
			if e.cfg.Viscous {
				if e.cfg.ThinLayerJacobian {
					e.computeViscousFluxApproxJacobian(f, ul, ur, &L, &U)
				} else {
					e.computeViscousFluxJacobian(f, ul, ur, &L, &U)
				}
			}

			for k := 0; k < 16; k++ {
				L[k] *= length
				U[k] *= length
			}
			A.AddBlock(r, l, L[:])
			A.AddBlock(l, r, U[:])

			// negated L and U contribute to the diagonal blocks
			for k := 0; k < 16; k++ {
				L[k] = -L[k]
				U[k] = -U[k]
			}
			A.AddBlock(l, l, L[:])
			A.AddBlock(r, r, U[:])
		}
		return nil
	}, &firstErr)
	return firstErr
}

// mul4 computes the row-major product c = a*b of 4x4 matrices.
func mul4(a, b, c *[16]float64) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a[i*4+k] * b[k*4+j]
			}
			c[i*4+j] = s
		}
	}
}
