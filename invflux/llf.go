package invflux

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

// LLFFlux is the local Lax-Friedrichs (Rusanov) flux
//
//	F = 0.5(F(ul)+F(ur)) - 0.5 lmax (ur-ul),
//
// with lmax the largest |vn|+c over the two states.
type LLFFlux struct {
	gas *physics.IdealGas
}

func NewLLFFlux(gas *physics.IdealGas) *LLFFlux { return &LLFFlux{gas: gas} }

func (lf *LLFFlux) maxEig(ul, ur, n []float64) float64 {
	_, _, _, vnl, _, cl, _ := decompose(lf.gas, ul, n)
	_, _, _, vnr, _, cr, _ := decompose(lf.gas, ur, n)
	return math.Max(math.Abs(vnl)+cl, math.Abs(vnr)+cr)
}

func (lf *LLFFlux) GetFlux(ul, ur, n, flux []float64) {
	var fl, fr [4]float64
	lf.gas.NormalFlux(ul, n, fl[:])
	lf.gas.NormalFlux(ur, n, fr[:])
	lmax := lf.maxEig(ul, ur, n)
	for i := 0; i < 4; i++ {
		flux[i] = 0.5*(fl[i]+fr[i]) - 0.5*lmax*(ur[i]-ul[i])
	}
}

// GetJacobian computes an approximate Jacobian with frozen spectral radius.
// This has been found to perform no worse than the exact Jacobian for
// steady flows.
func (lf *LLFFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	var al, ar [16]float64
	lf.gas.JacNormalFlux(ul, n, &al)
	lf.gas.JacNormalFlux(ur, n, &ar)
	lmax := lf.maxEig(ul, ur, n)
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			dfdl[i*4+k] = -0.5 * al[i*4+k]
			dfdr[i*4+k] = 0.5 * ar[i*4+k]
			if i == k {
				dfdl[i*4+k] -= 0.5 * lmax
				dfdr[i*4+k] -= 0.5 * lmax
			}
		}
	}
}

// GetJacobianExact adds the spectral-radius derivative terms that
// GetJacobian freezes.
func (lf *LLFFlux) GetJacobianExact(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	lf.GetJacobian(ul, ur, n, dfdl, dfdr)

	_, _, _, vnl, _, cl, _ := decompose(lf.gas, ul, n)
	_, _, _, vnr, _, cr, _ := decompose(lf.gas, ur, n)

	var du [4]float64
	for i := 0; i < 4; i++ {
		du[i] = ur[i] - ul[i]
	}

	var dvn, dc, dl [4]float64
	if math.Abs(vnl)+cl >= math.Abs(vnr)+cr {
		// left state carries the maximum eigenvalue
		lf.gas.JacNormalVelocity(ul, n, &dvn)
		lf.gas.JacSoundSpeed(ul, &dc)
		s := 1.0
		if vnl < 0 {
			s = -1.0
		}
		for k := 0; k < 4; k++ {
			dl[k] = s*dvn[k] + dc[k]
		}
		// dfdl holds -dF/dul; the extra term in dF/dul is -0.5*du*dl
		outerAdd(dfdl, 0.5, &du, &dl)
	} else {
		lf.gas.JacNormalVelocity(ur, n, &dvn)
		lf.gas.JacSoundSpeed(ur, &dc)
		s := 1.0
		if vnr < 0 {
			s = -1.0
		}
		for k := 0; k < 4; k++ {
			dl[k] = s*dvn[k] + dc[k]
		}
		outerAdd(dfdr, -0.5, &du, &dl)
	}
}
