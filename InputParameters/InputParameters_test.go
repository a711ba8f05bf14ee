package InputParameters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wme7/FVENS/utils"
)

const sampleControl = `
Title: "Transonic airfoil"
FlowKind: euler
Minf: 0.85
Alpha: 1.0
InviscidFlux: HLLC
JacobianFlux: ROE
Gradient: LEASTSQUARES
Limiter: VENKATAKRISHNAN
LimiterParam: 4.0
SecondOrder: true
CFL: 10.
CFLMax: 5000.
Tolerance: 1.e-6
MaxIterations: 300
ImplicitSolver: true
BCs:
  - Marker: 1
    Type: slipwall
  - Marker: 2
    Type: farfield
`

func TestParseControlFile(t *testing.T) {
	ip := &FlowParameters2D{}
	require.NoError(t, ip.Parse([]byte(sampleControl)))

	assert.Equal(t, "euler", ip.FlowKind)
	assert.Equal(t, 0.85, ip.Minf)
	assert.Equal(t, "HLLC", ip.InviscidFlux)
	assert.Equal(t, "ROE", ip.JacobianFlux)
	assert.True(t, ip.SecondOrder)
	require.Len(t, ip.BCs, 2)
	assert.Equal(t, 1, ip.BCs[0].Marker)
	assert.Equal(t, "slipwall", ip.BCs[0].Type)

	// defaults applied by validation
	assert.Equal(t, 1.4, ip.Gamma)
	assert.Equal(t, 0.72, ip.Pr)

	cfg := ip.EngineConfig()
	assert.False(t, cfg.Viscous)
	assert.Equal(t, "HLLC", cfg.InviscidFlux)
	assert.InDelta(t, 1.0*3.14159/180.0, cfg.Alpha, 1e-4)
}

func TestUnknownFluxRejected(t *testing.T) {
	ip := &FlowParameters2D{InviscidFlux: "GODUNOV"}
	err := ip.Validate()
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}

func TestSecondOrderNeedsGradients(t *testing.T) {
	ip := &FlowParameters2D{InviscidFlux: "ROE", SecondOrder: true}
	err := ip.Validate()
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}

func TestNavierStokesNeedsReynolds(t *testing.T) {
	ip := &FlowParameters2D{FlowKind: "navier-stokes", InviscidFlux: "HLLC"}
	err := ip.Validate()
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}
