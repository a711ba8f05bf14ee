package invflux

import (
	"github.com/wme7/FVENS/physics"
)

// HLLFlux is the Harten-Lax-van Leer flux with Roe-average based wave-speed
// estimates.
type HLLFlux struct {
	gas    *physics.IdealGas
	fixeps float64
}

func NewHLLFlux(gas *physics.IdealGas, fixeps float64) *HLLFlux {
	return &HLLFlux{gas: gas, fixeps: fixeps}
}

func (hf *HLLFlux) GetFlux(ul, ur, n, flux []float64) {
	sl, sr, _, _ := waveSpeeds(hf.gas, ul, ur, n)

	switch {
	case sl > 0:
		hf.gas.NormalFlux(ul, n, flux)
	case sr < 0:
		hf.gas.NormalFlux(ur, n, flux)
	default:
		var fl, fr [4]float64
		hf.gas.NormalFlux(ul, n, fl[:])
		hf.gas.NormalFlux(ur, n, fr[:])
		for i := 0; i < 4; i++ {
			flux[i] = (sr*fl[i] - sl*fr[i] + sl*sr*(ur[i]-ul[i])) / (sr - sl)
		}
	}
}

// GetJacobian computes the exact HLL Jacobian including the wave-speed
// derivatives.
func (hf *HLLFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	sl, sr, dsl, dsr := waveSpeeds(hf.gas, ul, ur, n)

	var al, ar [16]float64
	hf.gas.JacNormalFlux(ul, n, &al)
	hf.gas.JacNormalFlux(ur, n, &ar)

	switch {
	case sl > 0:
		for k := 0; k < 16; k++ {
			dfdl[k] = -al[k]
			dfdr[k] = 0
		}
	case sr < 0:
		for k := 0; k < 16; k++ {
			dfdl[k] = 0
			dfdr[k] = ar[k]
		}
	default:
		var fl, fr, f [4]float64
		hf.gas.NormalFlux(ul, n, fl[:])
		hf.gas.NormalFlux(ur, n, fr[:])
		d := sr - sl
		for i := 0; i < 4; i++ {
			f[i] = (sr*fl[i] - sl*fr[i] + sl*sr*(ur[i]-ul[i])) / d
		}
		for s := 0; s < 2; s++ {
			var jac [16]float64
			for k := 0; k < 4; k++ {
				dSl, dSr := dsl[s][k], dsr[s][k]
				dd := dSr - dSl
				for i := 0; i < 4; i++ {
					var num float64
					num = dSr*fl[i] - dSl*fr[i] + (dSl*sr+sl*dSr)*(ur[i]-ul[i])
					if s == 0 {
						num += sr*al[i*4+k] - sl*sr*boolIdx(i == k)
					} else {
						num += -sl*ar[i*4+k] + sl*sr*boolIdx(i == k)
					}
					jac[i*4+k] = num/d - f[i]*dd/d
				}
			}
			if s == 0 {
				for k := 0; k < 16; k++ {
					dfdl[k] = -jac[k]
				}
			} else {
				copy(dfdr[:], jac[:])
			}
		}
	}
}
