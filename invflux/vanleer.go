package invflux

import (
	"github.com/wme7/FVENS/physics"
)

// VanLeerFlux is the Van Leer flux-vector splitting F = F+(ul) + F-(ur),
// with the standard subsonic polynomial split on the normal Mach number.
type VanLeerFlux struct {
	gas *physics.IdealGas
}

func NewVanLeerFlux(gas *physics.IdealGas) *VanLeerFlux { return &VanLeerFlux{gas: gas} }

// splitFlux computes F+ (sign=+1) or F- (sign=-1) of one state.
func (vl *VanLeerFlux) splitFlux(u, n []float64, sign float64, f *[4]float64) {
	g := vl.gas.Gamma
	rho, vx, vy, vn, _, c, _ := decompose(vl.gas, u, n)
	M := vn / c

	if sign > 0 && M >= 1 {
		vl.gas.NormalFlux(u, n, f[:])
		return
	}
	if sign > 0 && M <= -1 {
		f[0], f[1], f[2], f[3] = 0, 0, 0, 0
		return
	}
	if sign < 0 && M <= -1 {
		vl.gas.NormalFlux(u, n, f[:])
		return
	}
	if sign < 0 && M >= 1 {
		f[0], f[1], f[2], f[3] = 0, 0, 0, 0
		return
	}

	q2 := vx*vx + vy*vy
	fm := sign * rho * c * (M + sign) * (M + sign) / 4.0
	en := ((g-1.0)*vn+sign*2.0*c)*((g-1.0)*vn+sign*2.0*c)/(2.0*(g*g-1.0)) +
		0.5*(q2-vn*vn)
	f[0] = fm
	f[1] = fm * (vx + n[0]*(-vn+sign*2.0*c)/g)
	f[2] = fm * (vy + n[1]*(-vn+sign*2.0*c)/g)
	f[3] = fm * en
}

func (vl *VanLeerFlux) GetFlux(ul, ur, n, flux []float64) {
	var fp, fm [4]float64
	vl.splitFlux(ul, n, 1, &fp)
	vl.splitFlux(ur, n, -1, &fm)
	for i := 0; i < 4; i++ {
		flux[i] = fp[i] + fm[i]
	}
}

// splitJacobian computes d(F+-)/du of one state into jac (assigned).
func (vl *VanLeerFlux) splitJacobian(u, n []float64, sign float64, jac *[16]float64) {
	g := vl.gas.Gamma
	rho, vx, vy, vn, _, c, _ := decompose(vl.gas, u, n)
	M := vn / c

	if (sign > 0 && M >= 1) || (sign < 0 && M <= -1) {
		vl.gas.JacNormalFlux(u, n, jac)
		return
	}
	if (sign > 0 && M <= -1) || (sign < 0 && M >= 1) {
		for k := range jac {
			jac[k] = 0
		}
		return
	}

	var dvx, dvy, dvn, dc [4]float64
	vl.gas.JacVelocity(u, 0, &dvx)
	vl.gas.JacVelocity(u, 1, &dvy)
	vl.gas.JacNormalVelocity(u, n, &dvn)
	vl.gas.JacSoundSpeed(u, &dc)

	drho := [4]float64{1, 0, 0, 0}
	var dM, dq2 [4]float64
	for k := 0; k < 4; k++ {
		dM[k] = dvn[k]/c - vn/(c*c)*dc[k]
		dq2[k] = 2.0*vx*dvx[k] + 2.0*vy*dvy[k]
	}

	q2 := vx*vx + vy*vy
	fm := sign * rho * c * (M + sign) * (M + sign) / 4.0
	en := ((g-1.0)*vn+sign*2.0*c)*((g-1.0)*vn+sign*2.0*c)/(2.0*(g*g-1.0)) +
		0.5*(q2-vn*vn)
	gv := [4]float64{
		1,
		vx + n[0]*(-vn+sign*2.0*c)/g,
		vy + n[1]*(-vn+sign*2.0*c)/g,
		en,
	}

	var dfm [4]float64
	for k := 0; k < 4; k++ {
		dfm[k] = sign * ((M+sign)*(M+sign)/4.0*(c*drho[k]+rho*dc[k]) +
			rho*c*(M+sign)/2.0*dM[k])
	}

	var dg1, dg2, dg3 [4]float64
	lin := (g - 1.0) * vn + sign*2.0*c
	for k := 0; k < 4; k++ {
		dg1[k] = dvx[k] + n[0]*(-dvn[k]+sign*2.0*dc[k])/g
		dg2[k] = dvy[k] + n[1]*(-dvn[k]+sign*2.0*dc[k])/g
		dg3[k] = lin*((g-1.0)*dvn[k]+sign*2.0*dc[k])/(g*g-1.0) +
			0.5*dq2[k] - vn*dvn[k]
	}

	for k := 0; k < 4; k++ {
		jac[0*4+k] = dfm[k]
		jac[1*4+k] = dfm[k]*gv[1] + fm*dg1[k]
		jac[2*4+k] = dfm[k]*gv[2] + fm*dg2[k]
		jac[3*4+k] = dfm[k]*gv[3] + fm*dg3[k]
	}
}

func (vl *VanLeerFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	vl.splitJacobian(ul, n, 1, dfdl)
	vl.splitJacobian(ur, n, -1, dfdr)
	// dfdl holds -dF/dul by convention
	for k := range dfdl {
		dfdl[k] = -dfdl[k]
	}
}
