package physics

import "math"

/*
	Analytic derivatives of thermodynamic quantities with respect to the
	conserved variables. These are the building blocks the numerical fluxes
	and boundary conditions chain together for their own Jacobians.

	Derivative vectors are length-4 and are assigned, not accumulated.
*/

// JacPressure computes dp/du.
func (g *IdealGas) JacPressure(u []float64, dp *[4]float64) {
	gm1 := g.Gamma - 1.0
	vx, vy := u[1]/u[0], u[2]/u[0]
	dp[0] = 0.5 * gm1 * (vx*vx + vy*vy)
	dp[1] = -gm1 * vx
	dp[2] = -gm1 * vy
	dp[3] = gm1
}

// JacSoundSpeed computes dc/du given the state.
func (g *IdealGas) JacSoundSpeed(u []float64, dc *[4]float64) {
	var dp [4]float64
	g.JacPressure(u, &dp)
	p := g.Pressure(u)
	c := math.Sqrt(g.Gamma * p / u[0])
	// c^2 = gamma p / rho
	fac := g.Gamma / (2.0 * c * u[0])
	dc[0] = fac * (dp[0] - p/u[0])
	dc[1] = fac * dp[1]
	dc[2] = fac * dp[2]
	dc[3] = fac * dp[3]
}

// JacNormalVelocity computes d(vn)/du for vn = (u[1]*nx + u[2]*ny)/u[0].
func (g *IdealGas) JacNormalVelocity(u, n []float64, dvn *[4]float64) {
	vn := (u[1]*n[0] + u[2]*n[1]) / u[0]
	dvn[0] = -vn / u[0]
	dvn[1] = n[0] / u[0]
	dvn[2] = n[1] / u[0]
	dvn[3] = 0
}

// JacVelocity computes d(u_i)/du for the velocity component idim (0 or 1).
func (g *IdealGas) JacVelocity(u []float64, idim int, dv *[4]float64) {
	dv[0] = -u[idim+1] / (u[0] * u[0])
	dv[1], dv[2], dv[3] = 0, 0, 0
	dv[idim+1] = 1.0 / u[0]
}

// JacEnthalpy computes dH/du for H = (E+p)/rho.
func (g *IdealGas) JacEnthalpy(u []float64, dH *[4]float64) {
	var dp [4]float64
	g.JacPressure(u, &dp)
	H := g.Enthalpy(u)
	dH[0] = (dp[0] - H) / u[0]
	dH[1] = dp[1] / u[0]
	dH[2] = dp[2] / u[0]
	dH[3] = (1.0 + dp[3]) / u[0]
}

// JacTemperature computes dT/du for T = gamma*p/rho.
func (g *IdealGas) JacTemperature(u []float64, dT *[4]float64) {
	var dp [4]float64
	g.JacPressure(u, &dp)
	p := g.Pressure(u)
	fac := g.Gamma / u[0]
	dT[0] = fac * (dp[0] - p/u[0])
	dT[1] = fac * dp[1]
	dT[2] = fac * dp[2]
	dT[3] = fac * dp[3]
}

// JacPrimFromCons computes the 4x4 row-major Jacobian of (rho,u,v,p) w.r.t.
// the conserved variables.
func (g *IdealGas) JacPrimFromCons(u []float64, jac *[16]float64) {
	var dp [4]float64
	g.JacPressure(u, &dp)
	rho := u[0]
	for k := range jac {
		jac[k] = 0
	}
	jac[0] = 1
	jac[4+0] = -u[1] / (rho * rho)
	jac[4+1] = 1.0 / rho
	jac[8+0] = -u[2] / (rho * rho)
	jac[8+2] = 1.0 / rho
	for k := 0; k < 4; k++ {
		jac[12+k] = dp[k]
	}
}

// JacPrim2FromCons computes the 4x4 row-major Jacobian of (rho,u,v,T) w.r.t.
// the conserved variables.
func (g *IdealGas) JacPrim2FromCons(u []float64, jac *[16]float64) {
	g.JacPrimFromCons(u, jac)
	var dT [4]float64
	g.JacTemperature(u, &dT)
	for k := 0; k < 4; k++ {
		jac[12+k] = dT[k]
	}
}

// JacSutherlandViscosity computes d(mu)/du for the Sutherland law.
func (g *IdealGas) JacSutherlandViscosity(u []float64, dmu *[4]float64) {
	var dT [4]float64
	g.JacTemperature(u, &dT)
	T := g.Temperature(u[0], g.Pressure(u))
	sc := sutherlandC / g.Tinf
	// mu = T^1.5 (1+sc)/(T+sc)/Re
	dmudT := (1.0 + sc) / g.Reinf * math.Sqrt(T) * (0.5*T + 1.5*sc) / ((T + sc) * (T + sc))
	for k := 0; k < 4; k++ {
		dmu[k] = dmudT * dT[k]
	}
}

// JacThermalConductivity converts a viscosity derivative into a thermal
// conductivity derivative.
func (g *IdealGas) JacThermalConductivity(dmu, dk *[4]float64) {
	fac := g.Gamma / (g.Pr * (g.Gamma - 1.0))
	for k := 0; k < 4; k++ {
		dk[k] = fac * dmu[k]
	}
}

// JacStressTensor computes the stress tensor and its derivative w.r.t. one
// side's conserved state, given that side's viscosity derivative dmu and
// face-gradient derivative dgrad[dir][var][k]. stress is assigned; dstress
// is assigned as well.
func (g *IdealGas) JacStressTensor(mu float64, dmu *[4]float64,
	grad *[NDim][NVars]float64, dgrad *[NDim][NVars][NVars]float64,
	stress *[NDim][NDim]float64, dstress *[NDim][NDim][NVars]float64) {

	div := grad[0][1] + grad[1][2]
	for i := 0; i < NDim; i++ {
		for j := 0; j < NDim; j++ {
			sij := grad[i][j+1] + grad[j][i+1]
			if i == j {
				sij -= 2.0 / 3.0 * div
			}
			stress[i][j] = mu * sij
			for k := 0; k < NVars; k++ {
				dsij := dgrad[i][j+1][k] + dgrad[j][i+1][k]
				if i == j {
					dsij -= 2.0 / 3.0 * (dgrad[0][1][k] + dgrad[1][2][k])
				}
				dstress[i][j][k] = dmu[k]*sij + mu*dsij
			}
		}
	}
}

// NormalFlux computes the analytic Euler flux projected on the unit normal n.
func (g *IdealGas) NormalFlux(u, n, flux []float64) {
	p := g.Pressure(u)
	vn := (u[1]*n[0] + u[2]*n[1]) / u[0]
	flux[0] = vn * u[0]
	flux[1] = vn*u[1] + p*n[0]
	flux[2] = vn*u[2] + p*n[1]
	flux[3] = vn * (u[3] + p)
}

// JacNormalFlux computes the 4x4 row-major Jacobian of the analytic Euler
// normal flux w.r.t. the conserved state. The result is assigned.
func (g *IdealGas) JacNormalFlux(u, n []float64, jac *[16]float64) {
	var dp, dvn [4]float64
	g.JacPressure(u, &dp)
	g.JacNormalVelocity(u, n, &dvn)
	vn := (u[1]*n[0] + u[2]*n[1]) / u[0]
	p := g.Pressure(u)

	// F = vn*u + p*(0,nx,ny,0) + (0,0,0,vn*p)
	pvec := [4]float64{0, n[0], n[1], 0}
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			jac[i*4+k] = dvn[k]*u[i] + pvec[i]*dp[k]
			if i == k {
				jac[i*4+k] += vn
			}
		}
	}
	// energy row: F4 = vn*(E+p)
	for k := 0; k < 4; k++ {
		jac[12+k] = dvn[k]*(u[3]+p) + vn*dp[k]
		if k == 3 {
			jac[12+k] += vn
		}
	}
}
