package physics

import (
	"fmt"
	"math"

	"github.com/wme7/FVENS/utils"
)

// NVars is the number of conserved variables (rho, rho*u, rho*v, rho*E).
const NVars = 4

// NDim is the spatial dimension.
const NDim = 2

// Sutherland constant in Kelvin.
const sutherlandC = 110.5

/*
	IdealGas holds the constitutive parameters of a calorically perfect gas in
	the solver's non-dimensionalization:
		density by rho_inf, velocity by the free-stream speed of sound,
		pressure by rho_inf*c_inf^2, temperature by T_inf.
	Consequences used throughout:
		p_inf = 1/gamma,  |v_inf| = Minf,  T = gamma*p/rho,  T_inf = 1.
*/
type IdealGas struct {
	Gamma float64 // Adiabatic index
	Minf  float64 // Free-stream Mach number
	Tinf  float64 // Free-stream temperature in Kelvin, for the Sutherland law
	Reinf float64 // Free-stream Reynolds number
	Pr    float64 // Prandtl number
}

func NewIdealGas(gamma, Minf, Tinf, Reinf, Pr float64) *IdealGas {
	return &IdealGas{Gamma: gamma, Minf: Minf, Tinf: Tinf, Reinf: Reinf, Pr: Pr}
}

// FreestreamState returns the conserved free-stream state at angle of attack
// aoa (radians): unit density, velocity magnitude Minf, pressure 1/gamma.
func (g *IdealGas) FreestreamState(aoa float64) (u [4]float64) {
	u[0] = 1.0
	u[1] = g.Minf * math.Cos(aoa)
	u[2] = g.Minf * math.Sin(aoa)
	u[3] = 1.0/(g.Gamma*(g.Gamma-1.0)) + 0.5*g.Minf*g.Minf
	return
}

// FreestreamPressure returns the non-dimensional free-stream pressure.
func (g *IdealGas) FreestreamPressure() float64 { return 1.0 / g.Gamma }

// Pressure computes the static pressure from a conserved state.
func (g *IdealGas) Pressure(u []float64) float64 {
	return (g.Gamma - 1.0) * (u[3] - 0.5*(u[1]*u[1]+u[2]*u[2])/u[0])
}

// Temperature computes the non-dimensional temperature from density and
// pressure; T_inf scales to 1.
func (g *IdealGas) Temperature(rho, p float64) float64 {
	return g.Gamma * p / rho
}

// SoundSpeed computes the speed of sound from a conserved state. The state
// must have been validated (CheckPhysical) before entering flux loops.
func (g *IdealGas) SoundSpeed(u []float64) float64 {
	return math.Sqrt(g.Gamma * g.Pressure(u) / u[0])
}

// Enthalpy computes the specific total enthalpy (E+p)/rho.
func (g *IdealGas) Enthalpy(u []float64) float64 {
	return (u[3] + g.Pressure(u)) / u[0]
}

// CheckPhysical reports ErrUnphysicalState for non-positive density or
// pressure and ErrNumericInvalid for non-finite entries.
func (g *IdealGas) CheckPhysical(u []float64) error {
	for i := 0; i < NVars; i++ {
		if math.IsNaN(u[i]) || math.IsInf(u[i], 0) {
			return fmt.Errorf("state component %d is not finite: %w", i, utils.ErrNumericInvalid)
		}
	}
	if u[0] <= 0 {
		return fmt.Errorf("density %g: %w", u[0], utils.ErrUnphysicalState)
	}
	if p := g.Pressure(u); p <= 0 {
		return fmt.Errorf("pressure %g: %w", p, utils.ErrUnphysicalState)
	}
	return nil
}

// PrimFromCons converts conserved (rho,rho*u,rho*v,rho*E) to primitive
// (rho,u,v,p). In-place conversion (w aliasing u) is allowed.
func (g *IdealGas) PrimFromCons(u, w []float64) {
	p := g.Pressure(u)
	rho := u[0]
	w[0] = rho
	w[1] = u[1] / rho
	w[2] = u[2] / rho
	w[3] = p
}

// ConsFromPrim converts primitive (rho,u,v,p) to conserved. In-place
// conversion is allowed.
func (g *IdealGas) ConsFromPrim(w, u []float64) {
	rho, vx, vy, p := w[0], w[1], w[2], w[3]
	u[0] = rho
	u[1] = rho * vx
	u[2] = rho * vy
	u[3] = p/(g.Gamma-1.0) + 0.5*rho*(vx*vx+vy*vy)
}

// Prim2FromCons converts conserved variables to the primitive-2 set
// (rho,u,v,T). In-place conversion is allowed.
func (g *IdealGas) Prim2FromCons(u, w []float64) {
	p := g.Pressure(u)
	rho := u[0]
	w[0] = rho
	w[1] = u[1] / rho
	w[2] = u[2] / rho
	w[3] = g.Temperature(rho, p)
}

// GradTemperature converts a one-sided (d rho, d p) gradient pair into the
// temperature gradient using T = gamma*p/rho.
func (g *IdealGas) GradTemperature(rho, gradrho, p, gradp float64) float64 {
	return g.Gamma * (gradp*rho - p*gradrho) / (rho * rho)
}

// Viscosity computes the non-dimensional dynamic viscosity (divided by the
// free-stream Reynolds number) by the Sutherland law.
func (g *IdealGas) Viscosity(u []float64) float64 {
	T := g.Temperature(u[0], g.Pressure(u))
	sc := sutherlandC / g.Tinf
	return T * math.Sqrt(T) * (1.0 + sc) / (T + sc) / g.Reinf
}

// ConstantViscosity is the free-stream viscosity, used when the Sutherland
// law is disabled.
func (g *IdealGas) ConstantViscosity() float64 { return 1.0 / g.Reinf }

// ThermalConductivity converts viscosity to non-dimensional thermal
// conductivity.
func (g *IdealGas) ThermalConductivity(mu float64) float64 {
	return mu * g.Gamma / (g.Pr * (g.Gamma - 1.0))
}

// StressTensor computes the Newtonian viscous stress with the Stokes
// hypothesis from the primitive-2 face gradient grad[dir][var].
func (g *IdealGas) StressTensor(mu float64, grad *[NDim][NVars]float64, stress *[NDim][NDim]float64) {
	div := grad[0][1] + grad[1][2]
	for i := 0; i < NDim; i++ {
		for j := 0; j < NDim; j++ {
			stress[i][j] = mu * (grad[i][j+1] + grad[j][i+1])
			if i == j {
				stress[i][j] -= mu * 2.0 / 3.0 * div
			}
		}
	}
}
