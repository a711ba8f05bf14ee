package invflux

import (
	"fmt"
	"strings"

	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

/*
	An InviscidFlux computes the numerical flux across a face from the left
	and right conserved states and the unit face normal, and the Jacobians of
	that flux with respect to both states.

	Jacobian sign convention: dfdl is assigned the NEGATIVE of dF/d(ul) while
	dfdr is assigned the positive dF/d(ur). dfdl is the `lower' block formed
	by the coupling between the cells adjoining the face and dfdr the
	`upper' block; the negatives of the lower and upper blocks are the
	contributions to the diagonal blocks of the left and right cells. Both
	outputs are assigned, not accumulated.
*/
type InviscidFlux interface {
	// GetFlux computes the face-normal numerical flux. The normal must be a
	// unit vector; flux is assigned.
	GetFlux(ul, ur, n, flux []float64)

	// GetJacobian computes the flux Jacobians w.r.t. the left and right
	// states in the sign convention documented on the interface.
	GetJacobian(ul, ur, n []float64, dfdl, dfdr *[16]float64)
}

// New constructs the named inviscid flux. Recognized names are LLF, VANLEER,
// AUSM, AUSMPLUS, ROE, HLL and HLLC (case-insensitive). entropyFix is the
// Harten entropy fix parameter used by the Roe-average based fluxes.
// The AUSM flux's GetJacobian returns the local Lax-Friedrichs Jacobian with
// a frozen spectral radius, not the Jacobian of the AUSM flux itself.
func New(name string, gas *physics.IdealGas, entropyFix float64) (InviscidFlux, error) {
	switch strings.ToUpper(name) {
	case "LLF":
		return NewLLFFlux(gas), nil
	case "VANLEER":
		return NewVanLeerFlux(gas), nil
	case "AUSM":
		return NewAUSMFlux(gas), nil
	case "AUSMPLUS":
		return NewAUSMPlusFlux(gas), nil
	case "ROE":
		return NewRoeFlux(gas, entropyFix), nil
	case "HLL":
		return NewHLLFlux(gas, entropyFix), nil
	case "HLLC":
		return NewHLLCFlux(gas, entropyFix), nil
	}
	return nil, fmt.Errorf("unknown inviscid flux %q: %w", name, utils.ErrConfigInvalid)
}

// decompose pulls the primitive quantities every flux needs out of a
// conserved state.
func decompose(gas *physics.IdealGas, u, n []float64) (rho, vx, vy, vn, p, c, H float64) {
	rho = u[0]
	vx, vy = u[1]/rho, u[2]/rho
	vn = vx*n[0] + vy*n[1]
	p = gas.Pressure(u)
	c = gas.SoundSpeed(u)
	H = (u[3] + p) / rho
	return
}

// outerAdd accumulates scale * col ⊗ drow into the row-major 4x4 jac.
func outerAdd(jac *[16]float64, scale float64, col, drow *[4]float64) {
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			jac[i*4+k] += scale * col[i] * drow[k]
		}
	}
}
