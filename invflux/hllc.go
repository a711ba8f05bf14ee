package invflux

import (
	"github.com/wme7/FVENS/physics"
)

// HLLCFlux restores the contact wave in the HLL flux following Batten's
// formulation of Toro's contact restoration.
type HLLCFlux struct {
	gas    *physics.IdealGas
	fixeps float64
}

func NewHLLCFlux(gas *physics.IdealGas, fixeps float64) *HLLCFlux {
	return &HLLCFlux{gas: gas, fixeps: fixeps}
}

// contactSpeed computes the contact wave speed sM from the outer wave speeds.
func contactSpeed(rhol, vnl, pl, rhor, vnr, pr, sl, sr float64) float64 {
	num := pr - pl + rhol*vnl*(sl-vnl) - rhor*vnr*(sr-vnr)
	den := rhol*(sl-vnl) - rhor*(sr-vnr)
	return num / den
}

// starState computes the average state between an outer wave and the contact
// from the state u outside the Riemann fan on the same side.
func (hc *HLLCFlux) starState(u, n []float64, vn, p, ss, sm float64, ustr *[4]float64) {
	g := (ss - vn) / (ss - sm)
	ustr[0] = u[0] * g
	ustr[1] = g * (u[1] + u[0]*(sm-vn)*n[0])
	ustr[2] = g * (u[2] + u[0]*(sm-vn)*n[1])
	ustr[3] = g * (u[3] + (sm-vn)*(u[0]*sm+p/(ss-vn)))
}

func (hc *HLLCFlux) GetFlux(ul, ur, n, flux []float64) {
	rhol, _, _, vnl, pl, _, _ := decompose(hc.gas, ul, n)
	rhor, _, _, vnr, pr, _, _ := decompose(hc.gas, ur, n)

	sl, sr, _, _ := waveSpeeds(hc.gas, ul, ur, n)
	sm := contactSpeed(rhol, vnl, pl, rhor, vnr, pr, sl, sr)

	switch {
	case sl > 0:
		hc.gas.NormalFlux(ul, n, flux)
	case sr < 0:
		hc.gas.NormalFlux(ur, n, flux)
	case sm >= 0:
		var ustr [4]float64
		hc.starState(ul, n, vnl, pl, sl, sm, &ustr)
		hc.gas.NormalFlux(ul, n, flux)
		for i := 0; i < 4; i++ {
			flux[i] += sl * (ustr[i] - ul[i])
		}
	default:
		var ustr [4]float64
		hc.starState(ur, n, vnr, pr, sr, sm, &ustr)
		hc.gas.NormalFlux(ur, n, flux)
		for i := 0; i < 4; i++ {
			flux[i] += sr * (ustr[i] - ur[i])
		}
	}
}

/*
	starStateJac computes the star state and its Jacobians w.r.t. "this"
	side's state (the side u belongs to) and the "other" side. The outer wave
	speed ss and contact speed sm depend on both sides; their derivative
	vectors are passed in. Own-state primitive derivatives (dvn, dp) enter
	only the "this" Jacobian.
*/
func (hc *HLLCFlux) starStateJac(u, n []float64, vn, p, ss, sm float64,
	dvn, dp, dssThis, dsmThis, dssOther, dsmOther *[4]float64,
	ustr *[4]float64, dustrThis, dustrOther *[16]float64) {

	hc.starState(u, n, vn, p, ss, sm, ustr)

	g := (ss - vn) / (ss - sm)
	den := ss - sm

	for side := 0; side < 2; side++ {
		var dss, dsm *[4]float64
		this := side == 0
		if this {
			dss, dsm = dssThis, dsmThis
		} else {
			dss, dsm = dssOther, dsmOther
		}
		out := dustrThis
		if !this {
			out = dustrOther
		}
		for k := 0; k < 4; k++ {
			var dvnk, dpk, du0, du1, du2, du3 float64
			if this {
				dvnk, dpk = dvn[k], dp[k]
				if k == 0 {
					du0 = 1
				}
				if k == 1 {
					du1 = 1
				}
				if k == 2 {
					du2 = 1
				}
				if k == 3 {
					du3 = 1
				}
			}
			dg := ((dss[k]-dvnk)*den - (ss-vn)*(dss[k]-dsm[k])) / (den * den)

			out[0*4+k] = du0*g + u[0]*dg

			m1 := u[1] + u[0]*(sm-vn)*n[0]
			dm1 := du1 + (du0*(sm-vn)+u[0]*(dsm[k]-dvnk))*n[0]
			out[1*4+k] = dg*m1 + g*dm1

			m2 := u[2] + u[0]*(sm-vn)*n[1]
			dm2 := du2 + (du0*(sm-vn)+u[0]*(dsm[k]-dvnk))*n[1]
			out[2*4+k] = dg*m2 + g*dm2

			term := (sm - vn) * (u[0]*sm + p/(ss-vn))
			dterm := (dsm[k]-dvnk)*(u[0]*sm+p/(ss-vn)) +
				(sm-vn)*(du0*sm+u[0]*dsm[k]+
					(dpk*(ss-vn)-p*(dss[k]-dvnk))/((ss-vn)*(ss-vn)))
			out[3*4+k] = dg*(u[3]+term) + g*(du3+dterm)
		}
	}
}

// GetJacobian computes the exact HLLC Jacobian, chaining the wave-speed,
// contact-speed and star-state derivatives.
func (hc *HLLCFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	gas := hc.gas
	rhol, _, _, vnl, pl, _, _ := decompose(gas, ul, n)
	rhor, _, _, vnr, pr, _, _ := decompose(gas, ur, n)

	sl, sr, dsl, dsr := waveSpeeds(gas, ul, ur, n)
	sm := contactSpeed(rhol, vnl, pl, rhor, vnr, pr, sl, sr)

	var al, ar [16]float64
	gas.JacNormalFlux(ul, n, &al)
	gas.JacNormalFlux(ur, n, &ar)

	switch {
	case sl > 0:
		for k := 0; k < 16; k++ {
			dfdl[k] = -al[k]
			dfdr[k] = 0
		}
		return
	case sr < 0:
		for k := 0; k < 16; k++ {
			dfdl[k] = 0
			dfdr[k] = ar[k]
		}
		return
	}

	var dvnl, dvnr, dpl, dpr [4]float64
	gas.JacNormalVelocity(ul, n, &dvnl)
	gas.JacNormalVelocity(ur, n, &dvnr)
	gas.JacPressure(ul, &dpl)
	gas.JacPressure(ur, &dpr)

	// derivatives of sm w.r.t. both states
	num := pr - pl + rhol*vnl*(sl-vnl) - rhor*vnr*(sr-vnr)
	den := rhol*(sl-vnl) - rhor*(sr-vnr)
	var dsm [2][4]float64
	for s := 0; s < 2; s++ {
		for k := 0; k < 4; k++ {
			var dnum, dden float64
			if s == 0 {
				drho := boolIdx(k == 0)
				dnum = -dpl[k] + (drho*vnl+rhol*dvnl[k])*(sl-vnl) +
					rhol*vnl*(dsl[0][k]-dvnl[k]) - rhor*vnr*dsr[0][k]
				dden = drho*(sl-vnl) + rhol*(dsl[0][k]-dvnl[k]) - rhor*dsr[0][k]
			} else {
				drho := boolIdx(k == 0)
				dnum = dpr[k] + rhol*vnl*dsl[1][k] -
					(drho*vnr+rhor*dvnr[k])*(sr-vnr) - rhor*vnr*(dsr[1][k]-dvnr[k])
				dden = rhol*dsl[1][k] - drho*(sr-vnr) - rhor*(dsr[1][k]-dvnr[k])
			}
			dsm[s][k] = dnum/den - num*dden/(den*den)
		}
	}

	var ustr [4]float64
	var dustrThis, dustrOther [16]float64
	var jl, jr [16]float64

	if sm >= 0 {
		// F = F(ul) + sl*(ustr(ul) - ul)
		hc.starStateJac(ul, n, vnl, pl, sl, sm,
			&dvnl, &dpl, &dsl[0], &dsm[0], &dsl[1], &dsm[1],
			&ustr, &dustrThis, &dustrOther)
		for i := 0; i < 4; i++ {
			for k := 0; k < 4; k++ {
				jl[i*4+k] = al[i*4+k] + dsl[0][k]*(ustr[i]-ul[i]) +
					sl*(dustrThis[i*4+k]-boolIdx(i == k))
				jr[i*4+k] = dsl[1][k]*(ustr[i]-ul[i]) + sl*dustrOther[i*4+k]
			}
		}
	} else {
		hc.starStateJac(ur, n, vnr, pr, sr, sm,
			&dvnr, &dpr, &dsr[1], &dsm[1], &dsr[0], &dsm[0],
			&ustr, &dustrThis, &dustrOther)
		for i := 0; i < 4; i++ {
			for k := 0; k < 4; k++ {
				jr[i*4+k] = ar[i*4+k] + dsr[1][k]*(ustr[i]-ur[i]) +
					sr*(dustrThis[i*4+k]-boolIdx(i == k))
				jl[i*4+k] = dsr[0][k]*(ustr[i]-ur[i]) + sr*dustrOther[i*4+k]
			}
		}
	}

	for k := 0; k < 16; k++ {
		dfdl[k] = -jl[k]
		dfdr[k] = jr[k]
	}
}
