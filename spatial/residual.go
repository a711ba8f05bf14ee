package spatial

import (
	"fmt"
	"math"

	"github.com/wme7/FVENS/utils"
)

/*
	ComputeResidual assembles the flux integral of every cell into res and,
	when wantDT is set, the admissible local pseudo-time step of every cell
	into dtm. res and dtm are overwritten. The evaluation either completes
	with both outputs defined or fails without defined outputs; input states
	are validated before anything is written.

	Phases, separated by barriers:
	boundary uleft initialization, ghost states, gradients, reconstruction,
	flux accumulation, time-step reduction.
*/
func (e *Engine) ComputeResidual(u []float64, res []float64, wantDT bool, dtm []float64) error {
	m := e.msh
	nelem := m.NElem()
	ws := &e.ws

	var firstErr error

	// validate the input field before touching any output
	e.parallelRange(e.pmCell, func(cmin, cmax int) error {
		for c := cmin; c < cmax; c++ {
			if err := e.gas.CheckPhysical(u[c*nvars : (c+1)*nvars]); err != nil {
				return fmt.Errorf("cell %d: %w", c, err)
			}
		}
		return nil
	}, &firstErr)
	if firstErr != nil {
		return firstErr
	}

	e.parallelRange(e.pmCell, func(cmin, cmax int) error {
		for c := cmin; c < cmax; c++ {
			ws.integ[c] = 0
			for k := 0; k < nvars; k++ {
				res[c*nvars+k] = 0
			}
		}
		return nil
	}, &firstErr)

	// cell-centred values of boundary cells seed the left side of boundary
	// faces
	e.parallelRange(e.pmBFace, func(fmin, fmax int) error {
		for f := fmin; f < fmax; f++ {
			l, _ := m.FaceCells(f)
			copy(ws.uleft[f*nvars:(f+1)*nvars], u[l*nvars:(l+1)*nvars])
		}
		return nil
	}, &firstErr)

	if e.cfg.SecondOrder {
		// ghost cell averages from the BCs, then primitives everywhere
		if err := e.computeBoundaryStates(ws.uleft, ws.ug); err != nil {
			return err
		}
		e.parallelRange(e.pmBFace, func(fmin, fmax int) error {
			for f := fmin; f < fmax; f++ {
				e.gas.PrimFromCons(ws.ug[f*nvars:(f+1)*nvars], ws.ug[f*nvars:(f+1)*nvars])
			}
			return nil
		}, &firstErr)
		e.parallelRange(e.pmCell, func(cmin, cmax int) error {
			for c := cmin; c < cmax; c++ {
				e.gas.PrimFromCons(u[c*nvars:(c+1)*nvars], ws.up[c*nvars:(c+1)*nvars])
			}
			return nil
		}, &firstErr)

		e.grad.ComputeGradients(ws.up, ws.ug, ws.grads)
		e.recon.ComputeFaceValues(ws.up, ws.ug, ws.grads, ws.uleft, ws.uright)

		// face values go back to conserved variables; gradients stay
		// primitive
		e.parallelRange(e.pmFace, func(fmin, fmax int) error {
			for f := fmin; f < fmax; f++ {
				ul := ws.uleft[f*nvars : (f+1)*nvars]
				if ul[0] <= 0 || ul[3] <= 0 {
					return fmt.Errorf("reconstructed left state at face %d: %w",
						f, utils.ErrUnphysicalState)
				}
				e.gas.ConsFromPrim(ul, ul)
				if f >= m.NBFace() {
					ur := ws.uright[f*nvars : (f+1)*nvars]
					if ur[0] <= 0 || ur[3] <= 0 {
						return fmt.Errorf("reconstructed right state at face %d: %w",
							f, utils.ErrUnphysicalState)
					}
					e.gas.ConsFromPrim(ur, ur)
				}
			}
			return nil
		}, &firstErr)
		if firstErr != nil {
			return firstErr
		}
	} else {
		// first order: face data is the cell-centred data
		e.parallelRange(e.pmFace, func(fmin, fmax int) error {
			for f := fmin; f < fmax; f++ {
				if f < m.NBFace() {
					continue
				}
				l, r := m.FaceCells(f)
				copy(ws.uleft[f*nvars:(f+1)*nvars], u[l*nvars:(l+1)*nvars])
				copy(ws.uright[f*nvars:(f+1)*nvars], u[r*nvars:(r+1)*nvars])
			}
			return nil
		}, &firstErr)
	}

	// ghost state on the right of boundary faces
	if err := e.computeBoundaryStates(ws.uleft, ws.uright); err != nil {
		return err
	}

	e.parallelRange(e.pmFace, func(fmin, fmax int) error {
		var flux, vflux [4]float64
		for f := fmin; f < fmax; f++ {
			nx, ny, length := m.FaceMetric(f)
			n := [2]float64{nx, ny}
			l, r := m.FaceCells(f)
			ul := ws.uleft[f*nvars : (f+1)*nvars]
			ur := ws.uright[f*nvars : (f+1)*nvars]

			e.iflux.GetFlux(ul, ur, n[:], flux[:])
			for k := 0; k < nvars; k++ {
				flux[k] *= length
			}

			if e.cfg.Viscous {
				var ucr []float64
				if f >= m.NBFace() {
					ucr = u[r*nvars : (r+1)*nvars]
				}
				e.computeViscousFlux(f, u[l*nvars:(l+1)*nvars], ucr, &vflux)
				for k := 0; k < nvars; k++ {
					flux[k] += vflux[k] * length
				}
			}

			// the output receives -r: subtract from the left cell, add to
			// the right
			for k := 0; k < nvars; k++ {
				utils.AtomicAddFloat64(&res[l*nvars+k], -flux[k])
			}
			if r < nelem {
				for k := 0; k < nvars; k++ {
					utils.AtomicAddFloat64(&res[r*nvars+k], flux[k])
				}
			}

			if wantDT {
				ci := e.gas.SoundSpeed(ul)
				cj := e.gas.SoundSpeed(ur)
				vni := (ul[1]*nx + ul[2]*ny) / ul[0]
				vnj := (ur[1]*nx + ur[2]*ny) / ur[0]
				specradi := (math.Abs(vni) + ci) * length
				specradj := (math.Abs(vnj) + cj) * length

				if e.cfg.Viscous {
					var mui, muj float64
					if e.cfg.ConstVisc {
						mui = e.gas.ConstantViscosity()
						muj = mui
					} else {
						mui = e.gas.Viscosity(ul)
						muj = e.gas.Viscosity(ur)
					}
					coi := math.Max(4.0/(3.0*ul[0]), e.gas.Gamma/ul[0])
					coj := math.Max(4.0/(3.0*ur[0]), e.gas.Gamma/ur[0])
					specradi += coi * mui / e.gas.Pr * length * length / m.CellArea(l)
					if r < nelem {
						specradj += coj * muj / e.gas.Pr * length * length / m.CellArea(r)
					}
				}

				utils.AtomicAddFloat64(&ws.integ[l], specradi)
				if r < nelem {
					utils.AtomicAddFloat64(&ws.integ[r], specradj)
				}
			}
		}
		return nil
	}, &firstErr)
	if firstErr != nil {
		return firstErr
	}

	if wantDT {
		e.parallelRange(e.pmCell, func(cmin, cmax int) error {
			for c := cmin; c < cmax; c++ {
				dtm[c] = m.CellArea(c) / ws.integ[c]
			}
			return nil
		}, &firstErr)
	}

	return checkFinite(res[:nelem*nvars])
}

// Gradients computes the conservative-variable cell gradients of a state, for
// post-processing.
func (e *Engine) Gradients(u []float64, grads []float64) error {
	m := e.msh
	ws := &e.ws
	var firstErr error
	e.parallelRange(e.pmBFace, func(fmin, fmax int) error {
		for f := fmin; f < fmax; f++ {
			l, _ := m.FaceCells(f)
			if err := e.computeBoundaryState(f, u[l*nvars:(l+1)*nvars],
				ws.ug[f*nvars:(f+1)*nvars]); err != nil {
				return err
			}
		}
		return nil
	}, &firstErr)
	if firstErr != nil {
		return firstErr
	}
	pmk := e.bcs.PeriodicMarker()
	if pmk >= 0 {
		for f := 0; f < m.NBFace(); f++ {
			if m.FaceMarker(f) == pmk {
				pl, _ := m.FaceCells(m.PeriodicMap(f))
				copy(ws.ug[f*nvars:(f+1)*nvars], u[pl*nvars:(pl+1)*nvars])
			}
		}
	}
	e.grad.ComputeGradients(u, ws.ug, grads)
	return nil
}
