package invflux

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

// AUSMFlux is the Liou-Steffen splitting of the convective and pressure
// fluxes. Its own Jacobian is not usable; GetJacobian substitutes the
// frozen-spectral-radius LLF Jacobian, which the factory documents.
type AUSMFlux struct {
	gas *physics.IdealGas
	llf *LLFFlux
}

func NewAUSMFlux(gas *physics.IdealGas) *AUSMFlux {
	return &AUSMFlux{gas: gas, llf: NewLLFFlux(gas)}
}

func splitMachLS(M, sign float64) float64 {
	if math.Abs(M) <= 1 {
		return sign * 0.25 * (M + sign) * (M + sign)
	}
	return 0.5 * (M + sign*math.Abs(M))
}

func splitPressureLS(M, sign float64) float64 {
	if math.Abs(M) <= 1 {
		return 0.25 * (M + sign) * (M + sign) * (2.0 - sign*M)
	}
	return 0.5 * (M + sign*math.Abs(M)) / M
}

func (af *AUSMFlux) GetFlux(ul, ur, n, flux []float64) {
	rhol, vxl, vyl, vnl, pl, cl, Hl := decompose(af.gas, ul, n)
	rhor, vxr, vyr, vnr, pr, cr, Hr := decompose(af.gas, ur, n)

	Ml, Mr := vnl/cl, vnr/cr
	Mhalf := splitMachLS(Ml, 1) + splitMachLS(Mr, -1)
	phalf := splitPressureLS(Ml, 1)*pl + splitPressureLS(Mr, -1)*pr

	psil := [4]float64{rhol * cl, rhol * cl * vxl, rhol * cl * vyl, rhol * cl * Hl}
	psir := [4]float64{rhor * cr, rhor * cr * vxr, rhor * cr * vyr, rhor * cr * Hr}

	for i := 0; i < 4; i++ {
		flux[i] = 0.5*Mhalf*(psil[i]+psir[i]) - 0.5*math.Abs(Mhalf)*(psir[i]-psil[i])
	}
	flux[1] += phalf * n[0]
	flux[2] += phalf * n[1]
}

// GetJacobian substitutes the LLF Jacobian for the AUSM flux.
func (af *AUSMFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	af.llf.GetJacobian(ul, ur, n, dfdl, dfdr)
}

// AUSMPlusFlux is Liou's AUSM+ flux with the interface Mach number and
// pressure polynomials (beta = 1/8, alpha = 3/16) and the arithmetic-mean
// interface speed of sound.
type AUSMPlusFlux struct {
	gas *physics.IdealGas
}

const (
	ausmBeta  = 1.0 / 8.0
	ausmAlpha = 3.0 / 16.0
)

func NewAUSMPlusFlux(gas *physics.IdealGas) *AUSMPlusFlux {
	return &AUSMPlusFlux{gas: gas}
}

func splitMachPlus(M, sign float64) float64 {
	if math.Abs(M) >= 1 {
		return 0.5 * (M + sign*math.Abs(M))
	}
	return sign*0.25*(M+sign)*(M+sign) + sign*ausmBeta*(M*M-1)*(M*M-1)
}

func dSplitMachPlus(M, sign float64) float64 {
	if math.Abs(M) >= 1 {
		if sign*M > 0 {
			return 1
		}
		return 0
	}
	return sign*0.5*(M+sign) + sign*4.0*ausmBeta*M*(M*M-1)
}

func splitPressurePlus(M, sign float64) float64 {
	if math.Abs(M) >= 1 {
		if sign*M > 0 {
			return 1
		}
		return 0
	}
	return 0.25*(M+sign)*(M+sign)*(2.0-sign*M) + sign*ausmAlpha*M*(M*M-1)*(M*M-1)
}

func dSplitPressurePlus(M, sign float64) float64 {
	if math.Abs(M) >= 1 {
		return 0
	}
	return 0.25*(2.0*(M+sign)*(2.0-sign*M)-sign*(M+sign)*(M+sign)) +
		sign*ausmAlpha*((M*M-1)*(M*M-1)+4.0*M*M*(M*M-1))
}

func (ap *AUSMPlusFlux) GetFlux(ul, ur, n, flux []float64) {
	rhol, vxl, vyl, vnl, pl, cl, Hl := decompose(ap.gas, ul, n)
	rhor, vxr, vyr, vnr, pr, cr, Hr := decompose(ap.gas, ur, n)

	ahalf := 0.5 * (cl + cr)
	Ml, Mr := vnl/ahalf, vnr/ahalf

	mhalf := splitMachPlus(Ml, 1) + splitMachPlus(Mr, -1)
	phalf := splitPressurePlus(Ml, 1)*pl + splitPressurePlus(Mr, -1)*pr

	psil := [4]float64{rhol, rhol * vxl, rhol * vyl, rhol * Hl}
	psir := [4]float64{rhor, rhor * vxr, rhor * vyr, rhor * Hr}

	mplus, mminus := 0.5*(mhalf+math.Abs(mhalf)), 0.5*(mhalf-math.Abs(mhalf))
	for i := 0; i < 4; i++ {
		flux[i] = ahalf * (mplus*psil[i] + mminus*psir[i])
	}
	flux[1] += phalf * n[0]
	flux[2] += phalf * n[1]
}

// GetJacobian computes the analytic AUSM+ Jacobian by chaining the split
// polynomial derivatives. Both interface Mach numbers depend on both states
// through the common speed of sound.
func (ap *AUSMPlusFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	rhol, vxl, vyl, vnl, pl, cl, Hl := decompose(ap.gas, ul, n)
	rhor, vxr, vyr, vnr, pr, cr, Hr := decompose(ap.gas, ur, n)

	ahalf := 0.5 * (cl + cr)
	Ml, Mr := vnl/ahalf, vnr/ahalf
	mhalf := splitMachPlus(Ml, 1) + splitMachPlus(Mr, -1)

	var dcl, dcr, dvnl, dvnr, dpl, dpr [4]float64
	ap.gas.JacSoundSpeed(ul, &dcl)
	ap.gas.JacSoundSpeed(ur, &dcr)
	ap.gas.JacNormalVelocity(ul, n, &dvnl)
	ap.gas.JacNormalVelocity(ur, n, &dvnr)
	ap.gas.JacPressure(ul, &dpl)
	ap.gas.JacPressure(ur, &dpr)

	// interface speed of sound depends on both sides
	var dahl, dahr [4]float64
	for k := 0; k < 4; k++ {
		dahl[k] = 0.5 * dcl[k]
		dahr[k] = 0.5 * dcr[k]
	}

	// dM/du for both Mach numbers w.r.t. both sides
	var dMll, dMlr, dMrl, dMrr [4]float64
	for k := 0; k < 4; k++ {
		dMll[k] = dvnl[k]/ahalf - vnl/(ahalf*ahalf)*dahl[k]
		dMlr[k] = -vnl / (ahalf * ahalf) * dahr[k]
		dMrl[k] = -vnr / (ahalf * ahalf) * dahl[k]
		dMrr[k] = dvnr[k]/ahalf - vnr/(ahalf*ahalf)*dahr[k]
	}

	dMp, dMm := dSplitMachPlus(Ml, 1), dSplitMachPlus(Mr, -1)
	dPp, dPm := dSplitPressurePlus(Ml, 1), dSplitPressurePlus(Mr, -1)

	var dmhl, dmhr, dphl, dphr [4]float64
	for k := 0; k < 4; k++ {
		dmhl[k] = dMp*dMll[k] + dMm*dMrl[k]
		dmhr[k] = dMp*dMlr[k] + dMm*dMrr[k]
		dphl[k] = dPp*dMll[k]*pl + splitPressurePlus(Ml, 1)*dpl[k] + dPm*dMrl[k]*pr
		dphr[k] = dPp*dMlr[k]*pl + dPm*dMrr[k]*pr + splitPressurePlus(Mr, -1)*dpr[k]
	}

	psil := [4]float64{rhol, rhol * vxl, rhol * vyl, rhol * Hl}
	psir := [4]float64{rhor, rhor * vxr, rhor * vyr, rhor * Hr}

	// d(psi)/du of each side's own state: psi = (rho, rho vx, rho vy, rho H)
	var dpsil, dpsir [4][4]float64
	dpsil[0] = [4]float64{1, 0, 0, 0}
	dpsil[1] = [4]float64{0, 1, 0, 0}
	dpsil[2] = [4]float64{0, 0, 1, 0}
	for k := 0; k < 4; k++ { // rho*H = E + p
		dpsil[3][k] = dpl[k]
		dpsir[3][k] = dpr[k]
	}
	dpsil[3][3] += 1
	dpsir[0] = [4]float64{1, 0, 0, 0}
	dpsir[1] = [4]float64{0, 1, 0, 0}
	dpsir[2] = [4]float64{0, 0, 1, 0}
	dpsir[3][3] += 1

	var jl, jr [16]float64
	if mhalf >= 0 {
		// F = ahalf*mhalf*psil + phalf*N
		for i := 0; i < 4; i++ {
			for k := 0; k < 4; k++ {
				jl[i*4+k] = dahl[k]*mhalf*psil[i] + ahalf*dmhl[k]*psil[i] +
					ahalf*mhalf*dpsil[i][k]
				jr[i*4+k] = dahr[k]*mhalf*psil[i] + ahalf*dmhr[k]*psil[i]
			}
		}
	} else {
		for i := 0; i < 4; i++ {
			for k := 0; k < 4; k++ {
				jl[i*4+k] = dahl[k]*mhalf*psir[i] + ahalf*dmhl[k]*psir[i]
				jr[i*4+k] = dahr[k]*mhalf*psir[i] + ahalf*dmhr[k]*psir[i] +
					ahalf*mhalf*dpsir[i][k]
			}
		}
	}
	for k := 0; k < 4; k++ {
		jl[1*4+k] += dphl[k] * n[0]
		jl[2*4+k] += dphl[k] * n[1]
		jr[1*4+k] += dphr[k] * n[0]
		jr[2*4+k] += dphr[k] * n[1]
	}

	for k := 0; k < 16; k++ {
		dfdl[k] = -jl[k]
		dfdr[k] = jr[k]
	}
}
