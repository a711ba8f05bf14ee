package bcond

import (
	"math"

	"github.com/wme7/FVENS/physics"
)

// Slipwall reflects the velocity about the face, leaving density and total
// energy unchanged.
type Slipwall struct{}

func (s *Slipwall) GhostState(uin, n, ug []float64) {
	vnm := uin[1]*n[0] + uin[2]*n[1]
	ug[0] = uin[0]
	ug[1] = uin[1] - 2.0*vnm*n[0]
	ug[2] = uin[2] - 2.0*vnm*n[1]
	ug[3] = uin[3]
}

func (s *Slipwall) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	s.GhostState(uin, n, ug)
	for k := range dugdu {
		dugdu[k] = 0
	}
	dugdu[0] = 1
	dugdu[15] = 1
	dugdu[4+1] = 1 - 2.0*n[0]*n[0]
	dugdu[4+2] = -2.0 * n[0] * n[1]
	dugdu[8+1] = -2.0 * n[0] * n[1]
	dugdu[8+2] = 1 - 2.0*n[1]*n[1]
}

// Farfield sets the ghost state to the free-stream state.
type Farfield struct {
	Uinf [4]float64
}

func (f *Farfield) GhostState(uin, n, ug []float64) {
	copy(ug, f.Uinf[:])
}

func (f *Farfield) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	f.GhostState(uin, n, ug)
	for k := range dugdu {
		dugdu[k] = 0
	}
}

// Extrapolation copies the interior state to the ghost cell.
type Extrapolation struct{}

func (e *Extrapolation) GhostState(uin, n, ug []float64) {
	copy(ug, uin)
}

func (e *Extrapolation) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	e.GhostState(uin, n, ug)
	for k := range dugdu {
		dugdu[k] = 0
	}
	dugdu[0], dugdu[5], dugdu[10], dugdu[15] = 1, 1, 1, 1
}

/*
	InOutFlow imposes the free-stream state at inflow and the free-stream
	pressure at outflow, with density adjusted isentropically and velocity
	extrapolated; supersonic outflow extrapolates everything. The flow
	direction is decided by the interior normal velocity, sub/supersonic by
	the interior normal Mach number.
*/
type InOutFlow struct {
	gas  *physics.IdealGas
	Uinf [4]float64
}

func (b *InOutFlow) GhostState(uin, n, ug []float64) {
	b.ghost(uin, n, ug, nil)
}

func (b *InOutFlow) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	b.ghost(uin, n, ug, dugdu)
}

func (b *InOutFlow) ghost(uin, n, ug []float64, jac *[16]float64) {
	g := b.gas.Gamma
	rho := uin[0]
	vx, vy := uin[1]/rho, uin[2]/rho
	vn := vx*n[0] + vy*n[1]
	p := b.gas.Pressure(uin)
	c := b.gas.SoundSpeed(uin)

	if jac != nil {
		for k := range jac {
			jac[k] = 0
		}
	}

	if vn < 0 {
		// inflow: impose the free stream
		copy(ug, b.Uinf[:])
		return
	}
	if vn/c >= 1 {
		// supersonic outflow: pure extrapolation
		copy(ug, uin)
		if jac != nil {
			jac[0], jac[5], jac[10], jac[15] = 1, 1, 1, 1
		}
		return
	}

	// subsonic outflow: pin the free-stream pressure, adjust the density
	// along the isentrope, keep the velocity
	pinf := b.gas.FreestreamPressure()
	ratio := math.Pow(pinf/p, 1.0/g)
	rhog := rho * ratio
	ug[0] = rhog
	ug[1] = rhog * vx
	ug[2] = rhog * vy
	ug[3] = pinf/(g-1.0) + 0.5*rhog*(vx*vx+vy*vy)

	if jac == nil {
		return
	}

	var dp, dvx, dvy [4]float64
	b.gas.JacPressure(uin, &dp)
	b.gas.JacVelocity(uin, 0, &dvx)
	b.gas.JacVelocity(uin, 1, &dvy)

	for k := 0; k < 4; k++ {
		drho := boolIdx(k == 0)
		drhog := ratio * (drho - rho/(g*p)*dp[k])
		jac[0*4+k] = drhog
		jac[1*4+k] = drhog*vx + rhog*dvx[k]
		jac[2*4+k] = drhog*vy + rhog*dvy[k]
		jac[3*4+k] = 0.5*drhog*(vx*vx+vy*vy) + rhog*(vx*dvx[k]+vy*dvy[k])
	}
}

/*
	InFlow is the subsonic inflow with prescribed total pressure and total
	temperature, flow constrained normal to the boundary. The boundary speed
	of sound comes from the outgoing Riemann invariant and the total
	temperature; in this non-dimensionalization c^2 equals T, so the total
	sound speed squared is the prescribed total temperature.
*/
type InFlow struct {
	gas    *physics.IdealGas
	Ptotal float64
	Ttotal float64
}

func (b *InFlow) GhostState(uin, n, ug []float64) {
	b.ghost(uin, n, ug, nil)
}

func (b *InFlow) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	b.ghost(uin, n, ug, dugdu)
}

func (b *InFlow) ghost(uin, n, ug []float64, jac *[16]float64) {
	g := b.gas.Gamma
	gm1 := g - 1.0
	rho := uin[0]
	vn := (uin[1]*n[0] + uin[2]*n[1]) / rho
	c := b.gas.SoundSpeed(uin)

	// outgoing acoustic invariant from the interior
	rm := vn - 2.0*c/gm1
	c02 := b.Ttotal

	qa := (g + 1.0) / gm1
	qb := 2.0 * rm
	qc := 0.5*gm1*rm*rm - c02
	disc := qb*qb - 4.0*qa*qc
	if disc < 0 {
		disc = 0
	}
	cb := (-qb + math.Sqrt(disc)) / (2.0 * qa)
	vnb := rm + 2.0*cb/gm1

	tb := cb * cb
	pb := b.Ptotal * math.Pow(tb/b.Ttotal, g/gm1)
	rhob := g * pb / tb

	ug[0] = rhob
	ug[1] = rhob * vnb * n[0]
	ug[2] = rhob * vnb * n[1]
	ug[3] = pb/gm1 + 0.5*rhob*vnb*vnb

	if jac == nil {
		return
	}
	for k := range jac {
		jac[k] = 0
	}

	var dvn, dc [4]float64
	b.gas.JacNormalVelocity(uin, n, &dvn)
	b.gas.JacSoundSpeed(uin, &dc)

	for k := 0; k < 4; k++ {
		drm := dvn[k] - 2.0*dc[k]/gm1
		dqb := 2.0 * drm
		dqc := gm1 * rm * drm
		ddisc := 2.0*qb*dqb - 4.0*qa*dqc
		var dcb float64
		if disc > 0 {
			dcb = (-dqb + ddisc/(2.0*math.Sqrt(disc))) / (2.0 * qa)
		} else {
			dcb = -dqb / (2.0 * qa)
		}
		dvnb := drm + 2.0*dcb/gm1
		dtb := 2.0 * cb * dcb
		dpb := b.Ptotal * g / gm1 * math.Pow(tb/b.Ttotal, g/gm1-1.0) * dtb / b.Ttotal
		drhob := g * (dpb*tb - pb*dtb) / (tb * tb)

		jac[0*4+k] = drhob
		jac[1*4+k] = (drhob*vnb + rhob*dvnb) * n[0]
		jac[2*4+k] = (drhob*vnb + rhob*dvnb) * n[1]
		jac[3*4+k] = dpb/gm1 + 0.5*drhob*vnb*vnb + rhob*vnb*dvnb
	}
}

/*
	AdiabaticWall is the no-slip wall with prescribed tangential wall
	velocity. The ghost velocity mirrors the interior one about the wall
	velocity so the face average matches the wall, and the ghost pressure
	equals the interior pressure, which makes the normal temperature
	gradient vanish at equal densities.
*/
type AdiabaticWall struct {
	gas     *physics.IdealGas
	TangVel float64
}

func (b *AdiabaticWall) GhostState(uin, n, ug []float64) {
	b.ghost(uin, n, ug, nil)
}

func (b *AdiabaticWall) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	b.ghost(uin, n, ug, dugdu)
}

func (b *AdiabaticWall) ghost(uin, n, ug []float64, jac *[16]float64) {
	g := b.gas.Gamma
	rho := uin[0]
	tx, ty := n[1], -n[0]
	p := b.gas.Pressure(uin)

	ug[0] = rho
	ug[1] = 2.0*b.TangVel*tx*rho - uin[1]
	ug[2] = 2.0*b.TangVel*ty*rho - uin[2]
	ug[3] = p/(g-1.0) + 0.5*(ug[1]*ug[1]+ug[2]*ug[2])/rho

	if jac == nil {
		return
	}
	var dp [4]float64
	b.gas.JacPressure(uin, &dp)
	for k := range jac {
		jac[k] = 0
	}
	jac[0] = 1
	jac[1*4+0] = 2.0 * b.TangVel * tx
	jac[1*4+1] = -1
	jac[2*4+0] = 2.0 * b.TangVel * ty
	jac[2*4+2] = -1
	for k := 0; k < 4; k++ {
		dg1 := jac[1*4+k]
		dg2 := jac[2*4+k]
		jac[3*4+k] = dp[k]/(g-1.0) + (ug[1]*dg1+ug[2]*dg2)/rho -
			0.5*(ug[1]*ug[1]+ug[2]*ug[2])/(rho*rho)*boolIdx(k == 0)
	}
}

// IsothermalWall is the no-slip wall with prescribed wall temperature; the
// ghost temperature reflects about the wall value.
type IsothermalWall struct {
	gas      *physics.IdealGas
	TangVel  float64
	WallTemp float64
}

func (b *IsothermalWall) GhostState(uin, n, ug []float64) {
	b.ghost(uin, n, ug, nil)
}

func (b *IsothermalWall) GhostJacobian(uin, n, ug []float64, dugdu *[16]float64) {
	b.ghost(uin, n, ug, dugdu)
}

func (b *IsothermalWall) ghost(uin, n, ug []float64, jac *[16]float64) {
	g := b.gas.Gamma
	rho := uin[0]
	tx, ty := n[1], -n[0]
	p := b.gas.Pressure(uin)
	ti := b.gas.Temperature(rho, p)
	tg := 2.0*b.WallTemp - ti
	pg := rho * tg / g

	ug[0] = rho
	ug[1] = 2.0*b.TangVel*tx*rho - uin[1]
	ug[2] = 2.0*b.TangVel*ty*rho - uin[2]
	ug[3] = pg/(g-1.0) + 0.5*(ug[1]*ug[1]+ug[2]*ug[2])/rho

	if jac == nil {
		return
	}
	var dti [4]float64
	b.gas.JacTemperature(uin, &dti)
	for k := range jac {
		jac[k] = 0
	}
	jac[0] = 1
	jac[1*4+0] = 2.0 * b.TangVel * tx
	jac[1*4+1] = -1
	jac[2*4+0] = 2.0 * b.TangVel * ty
	jac[2*4+2] = -1
	for k := 0; k < 4; k++ {
		dtg := -dti[k]
		dpg := (boolIdx(k == 0)*tg + rho*dtg) / g
		dg1 := jac[1*4+k]
		dg2 := jac[2*4+k]
		jac[3*4+k] = dpg/(g-1.0) + (ug[1]*dg1+ug[2]*dg2)/rho -
			0.5*(ug[1]*ug[1]+ug[2]*ug[2])/(rho*rho)*boolIdx(k == 0)
	}
}

func boolIdx(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
