package invflux

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

// roeAverage holds the density-square-root weighted mean of two states, the
// linearization underlying the Roe, HLL and HLLC fluxes.
type roeAverage struct {
	R, rho         float64
	vx, vy, vn, q2 float64
	H, c           float64
}

// roeAverageJac holds derivatives of the Roe-averaged quantities w.r.t. the
// left and right conserved states.
type roeAverageJac struct {
	dR, drho, dvx, dvy, dvn, dH, dc [2][4]float64
}

func computeRoeAverage(gas *physics.IdealGas, ul, ur, n []float64) (a roeAverage) {
	rhol, vxl, vyl, _, _, _, Hl := decompose(gas, ul, n)
	rhor, vxr, vyr, _, _, _, Hr := decompose(gas, ur, n)

	a.R = math.Sqrt(rhor / rhol)
	a.rho = a.R * rhol
	a.vx = (a.R*vxr + vxl) / (a.R + 1.0)
	a.vy = (a.R*vyr + vyl) / (a.R + 1.0)
	a.H = (a.R*Hr + Hl) / (a.R + 1.0)
	a.q2 = a.vx*a.vx + a.vy*a.vy
	a.vn = a.vx*n[0] + a.vy*n[1]
	a.c = math.Sqrt((gas.Gamma - 1.0) * (a.H - 0.5*a.q2))
	return
}

// computeRoeAverageJac computes the Roe average and its derivatives w.r.t.
// both states. Index 0 of each derivative pair is the left state.
func computeRoeAverageJac(gas *physics.IdealGas, ul, ur, n []float64) (a roeAverage, ja roeAverageJac) {
	a = computeRoeAverage(gas, ul, ur, n)

	rhol := ul[0]
	rhor := ur[0]
	vxr, vyr := ur[1]/rhor, ur[2]/rhor
	Hr := gas.Enthalpy(ur)

	var dvxl, dvyl, dHl, dvxr, dvyr, dHr [4]float64
	gas.JacVelocity(ul, 0, &dvxl)
	gas.JacVelocity(ul, 1, &dvyl)
	gas.JacEnthalpy(ul, &dHl)
	gas.JacVelocity(ur, 0, &dvxr)
	gas.JacVelocity(ur, 1, &dvyr)
	gas.JacEnthalpy(ur, &dHr)

	// R = sqrt(rhor/rhol) depends on the densities only
	ja.dR[0][0] = -a.R / (2.0 * rhol)
	ja.dR[1][0] = a.R / (2.0 * rhor)

	for s := 0; s < 2; s++ {
		for k := 0; k < 4; k++ {
			dR := ja.dR[s][k]
			// rho~ = R*rhol
			ja.drho[s][k] = dR * rhol
			if s == 0 && k == 0 {
				ja.drho[s][k] += a.R
			}
			var dvxo, dvyo, dHo float64 // own-state primitive derivatives
			if s == 0 {
				dvxo, dvyo, dHo = dvxl[k], dvyl[k], dHl[k]
				// left primitives enter without the R weight
				ja.dvx[s][k] = (dvxo + dR*(vxr-a.vx)) / (a.R + 1.0)
				ja.dvy[s][k] = (dvyo + dR*(vyr-a.vy)) / (a.R + 1.0)
				ja.dH[s][k] = (dHo + dR*(Hr-a.H)) / (a.R + 1.0)
			} else {
				dvxo, dvyo, dHo = dvxr[k], dvyr[k], dHr[k]
				ja.dvx[s][k] = (a.R*dvxo + dR*(vxr-a.vx)) / (a.R + 1.0)
				ja.dvy[s][k] = (a.R*dvyo + dR*(vyr-a.vy)) / (a.R + 1.0)
				ja.dH[s][k] = (a.R*dHo + dR*(Hr-a.H)) / (a.R + 1.0)
			}
			ja.dvn[s][k] = ja.dvx[s][k]*n[0] + ja.dvy[s][k]*n[1]
			dq2 := 2.0*a.vx*ja.dvx[s][k] + 2.0*a.vy*ja.dvy[s][k]
			ja.dc[s][k] = (gas.Gamma - 1.0) * (ja.dH[s][k] - 0.5*dq2) / (2.0 * a.c)
		}
	}
	return
}

// hartenFix applies the Harten entropy fix to an eigenvalue: below eps in
// magnitude the absolute value is replaced by the smooth parabola.
func hartenFix(lambda, eps float64) float64 {
	a := math.Abs(lambda)
	if a < eps {
		return (lambda*lambda + eps*eps) / (2.0 * eps)
	}
	return a
}

// dHartenFix returns d|lambda|_fixed / d lambda.
func dHartenFix(lambda, eps float64) float64 {
	if math.Abs(lambda) < eps {
		return lambda / eps
	}
	if lambda < 0 {
		return -1
	}
	return 1
}

// waveSpeeds computes the HLL/HLLC signal speed estimates
//
//	sl = min(vnl-cl, vn~-c~),  sr = max(vnr+cr, vn~+c~)
//
// and their derivatives w.r.t. both states.
func waveSpeeds(gas *physics.IdealGas, ul, ur, n []float64) (sl, sr float64, dsl, dsr [2][4]float64) {
	a, ja := computeRoeAverageJac(gas, ul, ur, n)

	_, _, _, vnl, _, cl, _ := decompose(gas, ul, n)
	_, _, _, vnr, _, cr, _ := decompose(gas, ur, n)

	var dvnl, dcl, dvnr, dcr [4]float64
	gas.JacNormalVelocity(ul, n, &dvnl)
	gas.JacSoundSpeed(ul, &dcl)
	gas.JacNormalVelocity(ur, n, &dvnr)
	gas.JacSoundSpeed(ur, &dcr)

	if vnl-cl <= a.vn-a.c {
		sl = vnl - cl
		for k := 0; k < 4; k++ {
			dsl[0][k] = dvnl[k] - dcl[k]
		}
	} else {
		sl = a.vn - a.c
		for s := 0; s < 2; s++ {
			for k := 0; k < 4; k++ {
				dsl[s][k] = ja.dvn[s][k] - ja.dc[s][k]
			}
		}
	}

	if vnr+cr >= a.vn+a.c {
		sr = vnr + cr
		for k := 0; k < 4; k++ {
			dsr[1][k] = dvnr[k] + dcr[k]
		}
	} else {
		sr = a.vn + a.c
		for s := 0; s < 2; s++ {
			for k := 0; k < 4; k++ {
				dsr[s][k] = ja.dvn[s][k] + ja.dc[s][k]
			}
		}
	}
	return
}
