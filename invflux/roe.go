package invflux

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

// RoeFlux is the Roe-Pike flux-difference splitting with the Harten entropy
// fix applied to the acoustic eigenvalues.
type RoeFlux struct {
	gas    *physics.IdealGas
	fixeps float64
}

func NewRoeFlux(gas *physics.IdealGas, fixeps float64) *RoeFlux {
	return &RoeFlux{gas: gas, fixeps: fixeps}
}

func (rf *RoeFlux) GetFlux(ul, ur, n, flux []float64) {
	a := computeRoeAverage(rf.gas, ul, ur, n)

	rhol, vxl, vyl, vnl, pl, _, _ := decompose(rf.gas, ul, n)
	rhor, vxr, vyr, vnr, pr, _, _ := decompose(rf.gas, ur, n)

	drho, dp, dvn := rhor-rhol, pr-pl, vnr-vnl
	dvx, dvy := vxr-vxl, vyr-vyl

	l1 := hartenFix(a.vn-a.c, rf.fixeps)
	lm := math.Abs(a.vn)
	l5 := hartenFix(a.vn+a.c, rf.fixeps)

	c2 := a.c * a.c
	t1 := l1 * (dp - a.rho*a.c*dvn) / (2.0 * c2)
	t2 := lm * (drho - dp/c2)
	t3 := lm * a.rho
	t5 := l5 * (dp + a.rho*a.c*dvn) / (2.0 * c2)

	v1 := [4]float64{1, a.vx - a.c*n[0], a.vy - a.c*n[1], a.H - a.c*a.vn}
	v2 := [4]float64{1, a.vx, a.vy, 0.5 * a.q2}
	v3 := [4]float64{0, dvx - dvn*n[0], dvy - dvn*n[1],
		a.vx*dvx + a.vy*dvy - a.vn*dvn}
	v5 := [4]float64{1, a.vx + a.c*n[0], a.vy + a.c*n[1], a.H + a.c*a.vn}

	var fl, fr [4]float64
	rf.gas.NormalFlux(ul, n, fl[:])
	rf.gas.NormalFlux(ur, n, fr[:])
	for i := 0; i < 4; i++ {
		flux[i] = 0.5*(fl[i]+fr[i]) -
			0.5*(t1*v1[i]+t2*v2[i]+t3*v3[i]+t5*v5[i])
	}
}

// GetJacobian computes the exact Jacobian of the Roe flux, including the
// derivatives of the Roe averages and of the entropy-fixed eigenvalues.
func (rf *RoeFlux) GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64) {
	gas := rf.gas
	a, ja := computeRoeAverageJac(gas, ul, ur, n)

	rhol, vxl, vyl, vnl, pl, _, _ := decompose(gas, ul, n)
	rhor, vxr, vyr, vnr, pr, _, _ := decompose(gas, ur, n)

	drho, dp, dvn := rhor-rhol, pr-pl, vnr-vnl
	dvx, dvy := vxr-vxl, vyr-vyl

	var dpl, dpr, dvnl2, dvnr2, dvxl, dvyl, dvxr, dvyr [4]float64
	gas.JacPressure(ul, &dpl)
	gas.JacPressure(ur, &dpr)
	gas.JacNormalVelocity(ul, n, &dvnl2)
	gas.JacNormalVelocity(ur, n, &dvnr2)
	gas.JacVelocity(ul, 0, &dvxl)
	gas.JacVelocity(ul, 1, &dvyl)
	gas.JacVelocity(ur, 0, &dvxr)
	gas.JacVelocity(ur, 1, &dvyr)

	c2 := a.c * a.c
	lam1 := a.vn - a.c
	lam5 := a.vn + a.c
	l1 := hartenFix(lam1, rf.fixeps)
	lm := math.Abs(a.vn)
	l5 := hartenFix(lam5, rf.fixeps)

	t1 := l1 * (dp - a.rho*a.c*dvn) / (2.0 * c2)
	t2 := lm * (drho - dp/c2)
	t3 := lm * a.rho
	t5 := l5 * (dp + a.rho*a.c*dvn) / (2.0 * c2)

	v1 := [4]float64{1, a.vx - a.c*n[0], a.vy - a.c*n[1], a.H - a.c*a.vn}
	v2 := [4]float64{1, a.vx, a.vy, 0.5 * a.q2}
	v3 := [4]float64{0, dvx - dvn*n[0], dvy - dvn*n[1],
		a.vx*dvx + a.vy*dvy - a.vn*dvn}
	v5 := [4]float64{1, a.vx + a.c*n[0], a.vy + a.c*n[1], a.H + a.c*a.vn}

	var al, ar [16]float64
	gas.JacNormalFlux(ul, n, &al)
	gas.JacNormalFlux(ur, n, &ar)

	for s := 0; s < 2; s++ {
		var jac [16]float64
		sgn := -1.0 // derivative of the jumps w.r.t. the left state
		if s == 1 {
			sgn = 1.0
		}
		for k := 0; k < 4; k++ {
			// jump derivatives: only the own side's state enters
			var dDrho, dDp, dDvn, dDvx, dDvy float64
			if s == 0 {
				dDrho, dDp, dDvn = sgn*boolIdx(k == 0), sgn*dpl[k], sgn*dvnl2[k]
				dDvx, dDvy = sgn*dvxl[k], sgn*dvyl[k]
			} else {
				dDrho, dDp, dDvn = sgn*boolIdx(k == 0), sgn*dpr[k], sgn*dvnr2[k]
				dDvx, dDvy = sgn*dvxr[k], sgn*dvyr[k]
			}

			dvnA := ja.dvn[s][k]
			dcA := ja.dc[s][k]
			drhoA := ja.drho[s][k]
			dvxA := ja.dvx[s][k]
			dvyA := ja.dvy[s][k]
			dHA := ja.dH[s][k]
			dq2A := 2.0*a.vx*dvxA + 2.0*a.vy*dvyA
			dc2 := 2.0 * a.c * dcA

			dl1 := dHartenFix(lam1, rf.fixeps) * (dvnA - dcA)
			var dlm float64
			if a.vn >= 0 {
				dlm = dvnA
			} else {
				dlm = -dvnA
			}
			dl5 := dHartenFix(lam5, rf.fixeps) * (dvnA + dcA)

			num1 := dp - a.rho*a.c*dvn
			dnum1 := dDp - (drhoA*a.c+a.rho*dcA)*dvn - a.rho*a.c*dDvn
			dt1 := dl1*num1/(2.0*c2) + l1*dnum1/(2.0*c2) - l1*num1*dc2/(2.0*c2*c2)

			num2 := drho - dp/c2
			dnum2 := dDrho - dDp/c2 + dp*dc2/(c2*c2)
			dt2 := dlm*num2 + lm*dnum2

			dt3 := dlm*a.rho + lm*drhoA

			num5 := dp + a.rho*a.c*dvn
			dnum5 := dDp + (drhoA*a.c+a.rho*dcA)*dvn + a.rho*a.c*dDvn
			dt5 := dl5*num5/(2.0*c2) + l5*dnum5/(2.0*c2) - l5*num5*dc2/(2.0*c2*c2)

			dv1 := [4]float64{0, dvxA - dcA*n[0], dvyA - dcA*n[1],
				dHA - dcA*a.vn - a.c*dvnA}
			dv2 := [4]float64{0, dvxA, dvyA, 0.5 * dq2A}
			dv3 := [4]float64{0, dDvx - dDvn*n[0], dDvy - dDvn*n[1],
				dvxA*dvx + a.vx*dDvx + dvyA*dvy + a.vy*dDvy - dvnA*dvn - a.vn*dDvn}
			dv5 := [4]float64{0, dvxA + dcA*n[0], dvyA + dcA*n[1],
				dHA + dcA*a.vn + a.c*dvnA}

			for i := 0; i < 4; i++ {
				diss := dt1*v1[i] + t1*dv1[i] + dt2*v2[i] + t2*dv2[i] +
					dt3*v3[i] + t3*dv3[i] + dt5*v5[i] + t5*dv5[i]
				var central float64
				if s == 0 {
					central = al[i*4+k]
				} else {
					central = ar[i*4+k]
				}
				jac[i*4+k] = 0.5*central - 0.5*diss
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

func boolIdx(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
