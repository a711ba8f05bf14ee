package spatial

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

const ndim = physics.NDim

// faceDirection returns the unit vector from the left centroid to the right
// (possibly ghost) centroid of a face and the centroid distance.
func (e *Engine) faceDirection(f int) (dr [2]float64, dist float64) {
	l, r := e.msh.FaceCells(f)
	dr[0] = e.rc[r][0] - e.rc[l][0]
	dr[1] = e.rc[r][1] - e.rc[l][1]
	dist = math.Hypot(dr[0], dr[1])
	dr[0] /= dist
	dr[1] /= dist
	return
}

/*
	faceGradientModifiedAverage computes the face gradient as the average of
	the two one-sided gradients with the component along the
	centroid-to-centroid direction replaced by the compact difference:

		g = avg - (avg.e)e + ((phiR-phiL)/d)e

	which suppresses odd-even decoupling while keeping off-axis accuracy.
*/
func (e *Engine) faceGradientModifiedAverage(f int, ucl, ucr []float64,
	gradl, gradr, grad *[ndim][nvars]float64) {
	dr, dist := e.faceDirection(f)
	for i := 0; i < nvars; i++ {
		var davg [ndim]float64
		for j := 0; j < ndim; j++ {
			davg[j] = 0.5 * (gradl[j][i] + gradr[j][i])
		}
		corr := (ucr[i] - ucl[i]) / dist
		ddr := davg[0]*dr[0] + davg[1]*dr[1]
		for j := 0; j < ndim; j++ {
			grad[j][i] = davg[j] - ddr*dr[j] + corr*dr[j]
		}
	}
}

// faceGradientThinLayer computes the compact-stencil-only face gradient and
// its Jacobians w.r.t. the left and right primitive-2 states, given the
// primitive-2 Jacobians dul, dur of each side.
func (e *Engine) faceGradientThinLayer(f int, ucl, ucr []float64, dul, dur *[16]float64,
	grad *[ndim][nvars]float64, dgradl, dgradr *[ndim][nvars][nvars]float64) {
	dr, dist := e.faceDirection(f)
	for i := 0; i < nvars; i++ {
		corr := (ucr[i] - ucl[i]) / dist
		for j := 0; j < ndim; j++ {
			grad[j][i] = corr * dr[j]
			for k := 0; k < nvars; k++ {
				dgradl[j][i][k] = -dul[i*nvars+k] / dist * dr[j]
				dgradr[j][i][k] = dur[i*nvars+k] / dist * dr[j]
			}
		}
	}
}

/*
	computeViscousFlux computes the viscous flux across a face from the
	cell-centred states and, at second order, the cell gradients in the
	workspace. For boundary faces ucellR is nil; the ghost data comes from
	the workspace (primitive ghost averages at second order, conservative
	ghost face states at first order). The result is assigned all negative
	quantities, consistent with the residual being kept on the left of
	du/dt + r(u) = 0.
*/
func (e *Engine) computeViscousFlux(f int, ucellL, ucellR []float64, vflux *[4]float64) {
	m := e.msh
	ws := &e.ws
	l, r := m.FaceCells(f)

	var ucl, ucr [nvars]float64
	var gradl, gradr [ndim][nvars]float64
	copy(ucl[:], ucellL)

	if f < m.NBFace() {
		if e.cfg.SecondOrder {
			copy(ucr[:], ws.ug[f*nvars:(f+1)*nvars]) // already primitive
			for j := 0; j < ndim; j++ {
				for i := 0; i < nvars; i++ {
					gradl[j][i] = ws.grads[(l*2+j)*nvars+i]
				}
			}
			e.gas.PrimFromCons(ucl[:], ucl[:])
			for j := 0; j < ndim; j++ {
				gradl[j][nvars-1] = e.gas.GradTemperature(ucl[0], gradl[j][0],
					ucl[nvars-1], gradl[j][nvars-1])
			}
			// one-sided gradient on both sides of a boundary face
			gradr = gradl
		} else {
			copy(ucr[:], ws.uright[f*nvars:(f+1)*nvars])
		}
	} else {
		copy(ucr[:], ucellR)
		if e.cfg.SecondOrder {
			for j := 0; j < ndim; j++ {
				for i := 0; i < nvars; i++ {
					gradl[j][i] = ws.grads[(l*2+j)*nvars+i]
					gradr[j][i] = ws.grads[(r*2+j)*nvars+i]
				}
			}
			e.gas.PrimFromCons(ucl[:], ucl[:])
			e.gas.PrimFromCons(ucr[:], ucr[:])
			for j := 0; j < ndim; j++ {
				gradl[j][nvars-1] = e.gas.GradTemperature(ucl[0], gradl[j][0],
					ucl[nvars-1], gradl[j][nvars-1])
				gradr[j][nvars-1] = e.gas.GradTemperature(ucr[0], gradr[j][0],
					ucr[nvars-1], gradr[j][nvars-1])
			}
		}
	}

	// to primitive-2
	if e.cfg.SecondOrder {
		ucl[nvars-1] = e.gas.Temperature(ucl[0], ucl[nvars-1])
		ucr[nvars-1] = e.gas.Temperature(ucr[0], ucr[nvars-1])
	} else {
		e.gas.Prim2FromCons(ucl[:], ucl[:])
		e.gas.Prim2FromCons(ucr[:], ucr[:])
	}

	var grad [ndim][nvars]float64
	e.faceGradientModifiedAverage(f, ucl[:], ucr[:], &gradl, &gradr, &grad)

	ulf := ws.uleft[f*nvars : (f+1)*nvars]
	urf := ws.uright[f*nvars : (f+1)*nvars]
	var muRe float64
	if e.cfg.ConstVisc {
		muRe = e.gas.ConstantViscosity()
	} else {
		muRe = 0.5 * (e.gas.Viscosity(ulf) + e.gas.Viscosity(urf))
	}
	kdiff := e.gas.ThermalConductivity(muRe)

	var stress [ndim][ndim]float64
	e.gas.StressTensor(muRe, &grad, &stress)

	nx, ny, _ := m.FaceMetric(f)
	nvec := [2]float64{nx, ny}

	vflux[0] = 0
	for i := 0; i < ndim; i++ {
		vflux[i+1] = 0
		for j := 0; j < ndim; j++ {
			vflux[i+1] -= stress[i][j] * nvec[j]
		}
	}

	var vavg [ndim]float64
	for j := 0; j < ndim; j++ {
		vavg[j] = 0.5 * (ulf[j+1]/ulf[0] + urf[j+1]/urf[0])
	}

	vflux[nvars-1] = 0
	for i := 0; i < ndim; i++ {
		var comp float64
		for j := 0; j < ndim; j++ {
			comp += stress[i][j] * vavg[j]
		}
		comp += kdiff * grad[i][nvars-1]
		vflux[nvars-1] -= comp * nvec[i]
	}
}

/*
	computeViscousFluxJacobian accumulates the full viscous flux Jacobian
	contributions into dvfi and dvfj, in the inviscid-flux sign convention
	(dvfi = -dF/dul contributions, dvfj = +dF/dur). The face gradient is
	approximated thin-layer for differentiation.
*/
func (e *Engine) computeViscousFluxJacobian(f int, ul, ur []float64, dvfi, dvfj *[16]float64) {
	var upl, upr [nvars]float64
	var dupl, dupr [16]float64

	e.gas.Prim2FromCons(ul, upl[:])
	e.gas.Prim2FromCons(ur, upr[:])
	e.gas.JacPrim2FromCons(ul, &dupl)
	e.gas.JacPrim2FromCons(ur, &dupr)

	var grad [ndim][nvars]float64
	var dgradl, dgradr [ndim][nvars][nvars]float64
	e.faceGradientThinLayer(f, upl[:], upr[:], &dupl, &dupr, &grad, &dgradl, &dgradr)

	var muRe float64
	if e.cfg.ConstVisc {
		muRe = e.gas.ConstantViscosity()
	} else {
		muRe = 0.5 * (e.gas.Viscosity(ul) + e.gas.Viscosity(ur))
	}
	kdiff := e.gas.ThermalConductivity(muRe)

	var dmul, dmur, dkdl, dkdr [4]float64
	if !e.cfg.ConstVisc {
		e.gas.JacSutherlandViscosity(ul, &dmul)
		e.gas.JacSutherlandViscosity(ur, &dmur)
		for k := 0; k < nvars; k++ {
			dmul[k] *= 0.5
			dmur[k] *= 0.5
		}
		e.gas.JacThermalConductivity(&dmul, &dkdl)
		e.gas.JacThermalConductivity(&dmur, &dkdr)
	}

	var stress [ndim][ndim]float64
	var dstressl, dstressr [ndim][ndim][nvars]float64
	e.gas.JacStressTensor(muRe, &dmul, &grad, &dgradl, &stress, &dstressl)
	e.gas.JacStressTensor(muRe, &dmur, &grad, &dgradr, &stress, &dstressr)

	nx, ny, _ := e.msh.FaceMetric(f)
	nvec := [2]float64{nx, ny}

	for i := 0; i < ndim; i++ {
		for j := 0; j < ndim; j++ {
			for k := 0; k < nvars; k++ {
				dvfi[(i+1)*nvars+k] += dstressl[i][j][k] * nvec[j]
				dvfj[(i+1)*nvars+k] -= dstressr[i][j][k] * nvec[j]
			}
		}
	}

	var vavg [ndim]float64
	var dvavgl, dvavgr [ndim][nvars]float64
	for j := 0; j < ndim; j++ {
		vavg[j] = 0.5 * (ul[j+1]/ul[0] + ur[j+1]/ur[0])
		dvavgl[j][0] = -0.5 * ul[j+1] / (ul[0] * ul[0])
		dvavgr[j][0] = -0.5 * ur[j+1] / (ur[0] * ur[0])
		dvavgl[j][j+1] = 0.5 / ul[0]
		dvavgr[j][j+1] = 0.5 / ur[0]
	}

	for i := 0; i < ndim; i++ {
		var dcompl, dcompr [nvars]float64
		for j := 0; j < ndim; j++ {
			for k := 0; k < nvars; k++ {
				dcompl[k] += dstressl[i][j][k]*vavg[j] + stress[i][j]*dvavgl[j][k]
				dcompr[k] += dstressr[i][j][k]*vavg[j] + stress[i][j]*dvavgr[j][k]
			}
		}
		for k := 0; k < nvars; k++ {
			dcompl[k] += dkdl[k]*grad[i][nvars-1] + kdiff*dgradl[i][nvars-1][k]
			dcompr[k] += dkdr[k]*grad[i][nvars-1] + kdiff*dgradr[i][nvars-1][k]
			dvfi[(nvars-1)*nvars+k] += dcompl[k] * nvec[i]
			dvfj[(nvars-1)*nvars+k] -= dcompr[k] * nvec[i]
		}
	}
}

// computeViscousFluxApproxJacobian adds the diagonal thin-layer
// approximation mu/(rho d) to both Jacobian blocks; cheaper and more
// diffusive than the full one.
func (e *Engine) computeViscousFluxApproxJacobian(f int, ul, ur []float64, dvfi, dvfj *[16]float64) {
	var muRe float64
	if e.cfg.ConstVisc {
		muRe = e.gas.ConstantViscosity()
	} else {
		muRe = 0.5 * (e.gas.Viscosity(ul) + e.gas.Viscosity(ur))
	}
	rho := 0.5 * (ul[0] + ur[0])
	_, dist := e.faceDirection(f)
	for i := 0; i < nvars; i++ {
		dvfi[i*nvars+i] -= muRe / (rho * dist)
		dvfj[i*nvars+i] -= muRe / (rho * dist)
	}
}
