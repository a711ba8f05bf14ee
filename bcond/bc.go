package bcond

import (
	"fmt"
	"strings"

	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

/*
	A BC maps the interior conserved state at a boundary face to the ghost
	state that enforces the boundary condition through the standard interior
	face machinery.

	GhostJacobian assigns d(ughost)/d(uin) in row-major order; prior contents
	are lost. Periodic boundaries are handled by the spatial engine by
	copying the paired face's interior state, so there is no periodic BC
	object; the registry records the periodic marker.
*/
type BC interface {
	// GhostState computes the ghost conserved state from the interior
	// conserved state and the unit face normal.
	GhostState(uin, n, ug []float64)

	// GhostJacobian computes the ghost state along with its Jacobian with
	// respect to the interior state.
	GhostJacobian(uin, n, ug []float64, dugdu *[16]float64)
}

// Config is one per-boundary record from the control file.
type Config struct {
	Marker int       `yaml:"Marker"`
	Type   string    `yaml:"Type"`
	Values []float64 `yaml:"Values,omitempty"`
}

// Registry maps boundary markers to BC implementations.
type Registry struct {
	bcs            map[int]BC
	periodicMarker int
}

// NewRegistry builds the marker->BC map from control-file records.
// Recognized types: slipwall, farfield, inoutflow, inflow, extrapolation,
// adiabaticwall, isothermalwall, periodic (case-insensitive).
func NewRegistry(confs []Config, gas *physics.IdealGas, uinf [4]float64) (*Registry, error) {
	r := &Registry{bcs: make(map[int]BC), periodicMarker: -1}
	for _, bc := range confs {
		if _, dup := r.bcs[bc.Marker]; dup || bc.Marker == r.periodicMarker {
			return nil, fmt.Errorf("duplicate BC for marker %d: %w", bc.Marker,
				utils.ErrConfigInvalid)
		}
		val := func(i int, def float64) float64 {
			if i < len(bc.Values) {
				return bc.Values[i]
			}
			return def
		}
		switch strings.ToLower(bc.Type) {
		case "slipwall":
			r.bcs[bc.Marker] = &Slipwall{}
		case "farfield":
			r.bcs[bc.Marker] = &Farfield{Uinf: uinf}
		case "extrapolation":
			r.bcs[bc.Marker] = &Extrapolation{}
		case "inoutflow":
			r.bcs[bc.Marker] = &InOutFlow{gas: gas, Uinf: uinf}
		case "inflow":
			if len(bc.Values) < 2 {
				return nil, fmt.Errorf("inflow BC on marker %d needs total pressure and temperature: %w",
					bc.Marker, utils.ErrConfigInvalid)
			}
			r.bcs[bc.Marker] = &InFlow{gas: gas, Ptotal: bc.Values[0], Ttotal: bc.Values[1]}
		case "adiabaticwall":
			r.bcs[bc.Marker] = &AdiabaticWall{gas: gas, TangVel: val(0, 0)}
		case "isothermalwall":
			if len(bc.Values) < 2 {
				return nil, fmt.Errorf("isothermal wall on marker %d needs tangential velocity and temperature: %w",
					bc.Marker, utils.ErrConfigInvalid)
			}
			r.bcs[bc.Marker] = &IsothermalWall{gas: gas, TangVel: bc.Values[0], WallTemp: bc.Values[1]}
		case "periodic":
			r.periodicMarker = bc.Marker
		default:
			return nil, fmt.Errorf("unknown BC type %q: %w", bc.Type, utils.ErrConfigInvalid)
		}
	}
	return r, nil
}

// At returns the BC registered for a marker.
func (r *Registry) At(marker int) (BC, error) {
	bc, ok := r.bcs[marker]
	if !ok {
		return nil, fmt.Errorf("no BC registered for boundary marker %d: %w", marker,
			utils.ErrConfigInvalid)
	}
	return bc, nil
}

// PeriodicMarker returns the periodic boundary marker, or -1 when no
// periodic boundary was declared.
func (r *Registry) PeriodicMarker() int { return r.periodicMarker }

// Markers returns all registered markers, for configuration validation.
func (r *Registry) Markers() []int {
	out := make([]int, 0, len(r.bcs))
	for m := range r.bcs {
		out = append(out, m)
	}
	if r.periodicMarker >= 0 {
		out = append(out, r.periodicMarker)
	}
	return out
}
