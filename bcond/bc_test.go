package bcond

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

func testGas() *physics.IdealGas {
	return physics.NewIdealGas(1.4, 0.5, 288.15, 5000, 0.72)
}

func consState(rho, vx, vy, p float64) []float64 {
	g := 1.4
	return []float64{rho, rho * vx, rho * vy, p/(g-1) + 0.5*rho*(vx*vx+vy*vy)}
}

func TestSlipwallReflection(t *testing.T) {
	bc := &Slipwall{}
	uin := consState(1.2, 0.4, -0.3, 0.9)
	n := []float64{0.6, 0.8}
	ug := make([]float64, 4)
	bc.GhostState(uin, n, ug)

	// normal momentum reverses, tangential momentum is preserved
	vnI := uin[1]*n[0] + uin[2]*n[1]
	vnG := ug[1]*n[0] + ug[2]*n[1]
	assert.InDelta(t, -vnI, vnG, 1e-13)

	vtI := uin[1]*n[1] - uin[2]*n[0]
	vtG := ug[1]*n[1] - ug[2]*n[0]
	assert.InDelta(t, vtI, vtG, 1e-13)

	assert.Equal(t, uin[0], ug[0])
	assert.Equal(t, uin[3], ug[3])
}

func TestFarfieldAndExtrapolation(t *testing.T) {
	gas := testGas()
	uinf := gas.FreestreamState(0)
	far := &Farfield{Uinf: uinf}
	uin := consState(1.1, 0.2, 0.1, 0.8)
	n := []float64{1, 0}
	ug := make([]float64, 4)
	far.GhostState(uin, n, ug)
	assert.Equal(t, uinf[:], ug)

	ex := &Extrapolation{}
	ex.GhostState(uin, n, ug)
	assert.Equal(t, uin, ug)
}

func TestAdiabaticWallGhost(t *testing.T) {
	gas := testGas()
	bc := &AdiabaticWall{gas: gas, TangVel: 0}
	uin := consState(1.1, 0.3, 0.2, 0.85)
	n := []float64{0, -1} // bottom wall, outward normal
	ug := make([]float64, 4)
	bc.GhostState(uin, n, ug)

	// face-average velocity vanishes for a stationary wall
	assert.InDelta(t, -uin[1], ug[1], 1e-13)
	assert.InDelta(t, -uin[2], ug[2], 1e-13)
	assert.Equal(t, uin[0], ug[0])
	// equal density and pressure: temperature reflects to the same value
	assert.InDelta(t, gas.Pressure(uin), gas.Pressure(ug), 1e-12)
}

func TestIsothermalWallGhostTemperature(t *testing.T) {
	gas := testGas()
	const tw = 1.1
	bc := &IsothermalWall{gas: gas, TangVel: 0, WallTemp: tw}
	uin := consState(1.0, 0.25, 0.0, 0.75)
	n := []float64{0, -1}
	ug := make([]float64, 4)
	bc.GhostState(uin, n, ug)

	ti := gas.Temperature(uin[0], gas.Pressure(uin))
	tg := gas.Temperature(ug[0], gas.Pressure(ug))
	assert.InDelta(t, 2*tw-ti, tg, 1e-12)
	// face-average temperature equals the wall temperature
	assert.InDelta(t, tw, 0.5*(ti+tg), 1e-12)
}

// ghost-state Jacobians against central differences of the ghost state
func TestGhostJacobiansAgainstFiniteDifferences(t *testing.T) {
	gas := testGas()
	uinf := gas.FreestreamState(2 * math.Pi / 180)

	cases := []struct {
		name string
		bc   BC
		uin  []float64
		n    []float64
	}{
		{"slipwall", &Slipwall{}, consState(1.2, 0.4, -0.3, 0.9), []float64{0.6, 0.8}},
		{"farfield", &Farfield{Uinf: uinf}, consState(1.1, 0.2, 0.1, 0.8), []float64{1, 0}},
		{"extrapolation", &Extrapolation{}, consState(1.1, 0.2, 0.1, 0.8), []float64{1, 0}},
		{"inoutflow subsonic outflow", &InOutFlow{gas: gas, Uinf: uinf},
			consState(1.05, 0.3, 0.05, 0.72), []float64{1, 0}},
		{"inoutflow supersonic outflow", &InOutFlow{gas: gas, Uinf: uinf},
			consState(1.0, 2.4, 0.0, 0.7), []float64{1, 0}},
		{"inflow", &InFlow{gas: gas, Ptotal: 0.78, Ttotal: 1.03},
			consState(1.0, 0.35, 0.02, 0.73), []float64{-1, 0}},
		{"adiabatic wall", &AdiabaticWall{gas: gas, TangVel: 0.1},
			consState(1.1, 0.3, 0.2, 0.85), []float64{0, -1}},
		{"isothermal wall", &IsothermalWall{gas: gas, TangVel: 0, WallTemp: 1.05},
			consState(1.0, 0.25, 0.1, 0.75), []float64{0, -1}},
	}

	const h = 1e-6
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var jac [16]float64
			ug := make([]float64, 4)
			tc.bc.GhostJacobian(tc.uin, tc.n, ug, &jac)

			for k := 0; k < 4; k++ {
				up := append([]float64(nil), tc.uin...)
				um := append([]float64(nil), tc.uin...)
				up[k] += h
				um[k] -= h
				gp := make([]float64, 4)
				gm := make([]float64, 4)
				tc.bc.GhostState(up, tc.n, gp)
				tc.bc.GhostState(um, tc.n, gm)
				for i := 0; i < 4; i++ {
					fd := (gp[i] - gm[i]) / (2 * h)
					assert.InDelta(t, fd, jac[i*4+k], 1e-6,
						"d ug[%d] / d u[%d]", i, k)
				}
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	gas := testGas()
	uinf := gas.FreestreamState(0)
	reg, err := NewRegistry([]Config{
		{Marker: 1, Type: "slipwall"},
		{Marker: 2, Type: "farfield"},
		{Marker: 7, Type: "periodic"},
	}, gas, uinf)
	require.NoError(t, err)

	_, err = reg.At(1)
	assert.NoError(t, err)
	_, err = reg.At(99)
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
	assert.Equal(t, 7, reg.PeriodicMarker())
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	gas := testGas()
	_, err := NewRegistry([]Config{{Marker: 1, Type: "teleport"}}, gas, gas.FreestreamState(0))
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}

func TestRegistryRejectsIncompleteInflow(t *testing.T) {
	gas := testGas()
	_, err := NewRegistry([]Config{{Marker: 1, Type: "inflow", Values: []float64{1.0}}},
		gas, gas.FreestreamState(0))
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}
