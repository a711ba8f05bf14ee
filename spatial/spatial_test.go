package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wme7/FVENS/bcond"
	"github.com/wme7/FVENS/mesh"
	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

func testGas() *physics.IdealGas {
	return physics.NewIdealGas(1.4, 0.5, 288.15, 5000, 0.72)
}

func channelMesh(t *testing.T, nx, ny int, markers mesh.ChannelMarkers, periodic int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewChannel(mesh.ChannelSpec{
		Nx: nx, Ny: ny,
		X0: 0, X1: 3, Y0: 0, Y1: 1,
		Markers:        markers,
		PeriodicMarker: periodic,
	})
	require.NoError(t, err)
	return m
}

func allFarfield() []bcond.Config {
	return []bcond.Config{
		{Marker: 1, Type: "farfield"},
		{Marker: 2, Type: "farfield"},
		{Marker: 3, Type: "farfield"},
		{Marker: 4, Type: "farfield"},
	}
}

func defaultMarkers() mesh.ChannelMarkers {
	return mesh.ChannelMarkers{Bottom: 1, Top: 2, Inlet: 3, Outlet: 4}
}

func newTestEngine(t *testing.T, m *mesh.Mesh, cfg Config) *Engine {
	t.Helper()
	eng, err := NewEngine(m, testGas(), cfg)
	require.NoError(t, err)
	return eng
}

// A uniform free stream on a farfield-enclosed mesh must produce a residual
// that vanishes to machine precision, for first and second order.
func TestFreestreamPreservation(t *testing.T) {
	m := channelMesh(t, 6, 4, defaultMarkers(), -1)
	for _, second := range []bool{false, true} {
		cfg := Config{
			InviscidFlux:   "ROE",
			GradientScheme: "LEASTSQUARES",
			Limiter:        "NONE",
			SecondOrder:    second,
			EntropyFix:     0.1,
			BCs:            allFarfield(),
		}
		if !second {
			cfg.GradientScheme = "NONE"
		}
		eng := newTestEngine(t, m, cfg)

		u := make([]float64, m.NElem()*4)
		eng.InitializeUnknowns(u)
		res := make([]float64, m.NElem()*4)
		dtm := make([]float64, m.NElem())

		require.NoError(t, eng.ComputeResidual(u, res, true, dtm))
		for i, r := range res {
			assert.InDelta(t, 0.0, r, 1e-12, "residual entry %d (second=%v)", i, second)
		}
		for c, dt := range dtm {
			assert.Greater(t, dt, 0.0, "time step of cell %d", c)
		}
	}
}

// A uniform stream along a channel with periodic inlet/outlet and slip walls
// gives a zero residual.
func TestPeriodicFreestreamPreservation(t *testing.T) {
	markers := mesh.ChannelMarkers{Bottom: 1, Top: 2, Inlet: 5, Outlet: 5}
	m := channelMesh(t, 6, 4, markers, 5)
	cfg := Config{
		InviscidFlux: "HLLC",
		EntropyFix:   0.1,
		BCs: []bcond.Config{
			{Marker: 1, Type: "slipwall"},
			{Marker: 2, Type: "slipwall"},
			{Marker: 5, Type: "periodic"},
		},
	}
	eng := newTestEngine(t, m, cfg)

	u := make([]float64, m.NElem()*4)
	// a horizontal stream aligned with the slip walls
	for c := 0; c < m.NElem(); c++ {
		u[c*4+0] = 1
		u[c*4+1] = 0.5
		u[c*4+2] = 0
		u[c*4+3] = 1/(1.4*0.4) + 0.5*0.25
	}
	res := make([]float64, m.NElem()*4)
	require.NoError(t, eng.ComputeResidual(u, res, false, nil))
	for i, r := range res {
		assert.InDelta(t, 0.0, r, 1e-12, "residual entry %d", i)
	}
}

// At first order the periodic ghost state is the interior cell state of the
// paired face.
func TestPeriodicGhostCopiesPairedInterior(t *testing.T) {
	markers := mesh.ChannelMarkers{Bottom: 1, Top: 2, Inlet: 5, Outlet: 5}
	m := channelMesh(t, 6, 4, markers, 5)
	eng := newTestEngine(t, m, Config{
		InviscidFlux: "LLF",
		BCs: []bcond.Config{
			{Marker: 1, Type: "slipwall"},
			{Marker: 2, Type: "slipwall"},
			{Marker: 5, Type: "periodic"},
		},
	})

	u := make([]float64, m.NElem()*4)
	eng.InitializeUnknowns(u)
	for c := 0; c < m.NElem(); c++ {
		x, y := m.CellCentroid(c)
		u[c*4] *= 1 + 0.02*math.Sin(x+2*y)
	}
	res := make([]float64, m.NElem()*4)
	require.NoError(t, eng.ComputeResidual(u, res, false, nil))

	for f := 0; f < m.NBFace(); f++ {
		if m.FaceMarker(f) != 5 {
			continue
		}
		pl, _ := m.FaceCells(m.PeriodicMap(f))
		for k := 0; k < 4; k++ {
			assert.Equal(t, u[pl*4+k], eng.ws.uright[f*4+k],
				"periodic ghost of face %d var %d", f, k)
		}
	}
}

// An initial state with negative density fails with unphysical-state before
// the output vector is touched.
func TestUnphysicalStateRejected(t *testing.T) {
	m := channelMesh(t, 4, 3, defaultMarkers(), -1)
	eng := newTestEngine(t, m, Config{
		InviscidFlux: "LLF",
		BCs:          allFarfield(),
	})

	u := make([]float64, m.NElem()*4)
	eng.InitializeUnknowns(u)
	u[0] = -1 // poison one density

	res := make([]float64, m.NElem()*4)
	for i := range res {
		res[i] = 7.5 // sentinel
	}
	err := eng.ComputeResidual(u, res, false, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUnphysicalState))
	for i, r := range res {
		assert.Equal(t, 7.5, r, "output entry %d was touched", i)
	}
}

func TestUnknownBoundaryMarkerRejected(t *testing.T) {
	m := channelMesh(t, 3, 2, defaultMarkers(), -1)
	_, err := NewEngine(m, testGas(), Config{
		InviscidFlux: "LLF",
		BCs: []bcond.Config{
			{Marker: 1, Type: "farfield"},
			// markers 2, 3, 4 undeclared
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigInvalid))
}

func TestGhostCentroidReflection(t *testing.T) {
	m := channelMesh(t, 3, 2, defaultMarkers(), -1)
	eng := newTestEngine(t, m, Config{InviscidFlux: "LLF", BCs: allFarfield()})
	rc := eng.CellCentroids()
	require.Len(t, rc, m.NElem()+m.NBFace())

	for f := 0; f < m.NBFace(); f++ {
		l, _ := m.FaceCells(f)
		n1, n2 := m.FaceNodes(f)
		x1, y1 := m.NodeCoord(n1)
		x2, y2 := m.NodeCoord(n2)
		mx, my := 0.5*(x1+x2), 0.5*(y1+y2)
		g := rc[m.NElem()+f]
		// the face midpoint bisects the centroid-ghost segment
		assert.InDelta(t, mx, 0.5*(rc[l][0]+g[0]), 1e-13)
		assert.InDelta(t, my, 0.5*(rc[l][1]+g[1]), 1e-13)
	}
}

// The assembled Jacobian must match central differences of the residual.
func TestJacobianAgainstFiniteDifferences(t *testing.T) {
	m := channelMesh(t, 3, 2, defaultMarkers(), -1)
	cfg := Config{
		// the inclined stream keeps every face's normal velocity away from
		// the kink of the |vn| eigenvalue
		Alpha:        0.25,
		InviscidFlux: "ROE",
		EntropyFix:   0.01,
		BCs: []bcond.Config{
			{Marker: 1, Type: "slipwall"},
			{Marker: 2, Type: "slipwall"},
			{Marker: 3, Type: "farfield"},
			{Marker: 4, Type: "extrapolation"},
		},
	}
	eng := newTestEngine(t, m, cfg)
	nelem := m.NElem()

	u := make([]float64, nelem*4)
	eng.InitializeUnknowns(u)
	// a smooth non-uniform perturbation so the Jacobian has structure
	for c := 0; c < nelem; c++ {
		x, y := m.CellCentroid(c)
		u[c*4+0] *= 1 + 0.05*math.Sin(x)*math.Cos(y)
		u[c*4+1] *= 1 + 0.04*math.Cos(x)
		u[c*4+2] *= 1 + 0.03*math.Sin(x+y)
		u[c*4+3] *= 1 + 0.03*math.Sin(y)
	}

	A := eng.NewJacobianMatrix()
	require.NoError(t, eng.ComputeJacobian(u, A))

	const h = 1e-6
	resp := make([]float64, nelem*4)
	resm := make([]float64, nelem*4)
	for j := 0; j < nelem; j++ {
		for k := 0; k < 4; k++ {
			up := append([]float64(nil), u...)
			um := append([]float64(nil), u...)
			up[j*4+k] += h
			um[j*4+k] -= h
			require.NoError(t, eng.ComputeResidual(up, resp, false, nil))
			require.NoError(t, eng.ComputeResidual(um, resm, false, nil))

			for i := 0; i < nelem; i++ {
				// the matrix holds d(r)/d(u) while the residual vector
				// holds -r
				var blk []float64
				coupled := i == j
				for _, f := range m.CellFaces(i) {
					l, r := m.FaceCells(f)
					if (l == i && r == j) || (r == i && l == j) {
						coupled = true
					}
				}
				if !coupled {
					continue
				}
				blk = A.Block(i, j)
				for row := 0; row < 4; row++ {
					fd := -(resp[i*4+row] - resm[i*4+row]) / (2 * h)
					assert.InDelta(t, fd, blk[row*4+k], 5e-5,
						"block (%d,%d) entry (%d,%d)", i, j, row, k)
				}
			}
		}
	}
}

func TestSurfaceDataSymmetricChannel(t *testing.T) {
	m := channelMesh(t, 6, 4, defaultMarkers(), -1)
	cfg := Config{
		InviscidFlux: "HLLC",
		EntropyFix:   0.1,
		BCs: []bcond.Config{
			{Marker: 1, Type: "slipwall"},
			{Marker: 2, Type: "slipwall"},
			{Marker: 3, Type: "farfield"},
			{Marker: 4, Type: "farfield"},
		},
	}
	eng := newTestEngine(t, m, cfg)

	u := make([]float64, m.NElem()*4)
	eng.InitializeUnknowns(u)
	grads := make([]float64, m.NElem()*2*4)
	require.NoError(t, eng.Gradients(u, grads))

	sd := eng.ComputeSurfaceData(u, grads, 1)
	require.Len(t, sd.Cp, 6)
	// uniform free stream at the free-stream pressure: no lift, no
	// pressure drag
	assert.InDelta(t, 0.0, sd.Cl, 1e-10)
	assert.InDelta(t, 0.0, sd.Cdp, 1e-10)
	assert.InDelta(t, 3.0, sd.TotalLength, 1e-12)
	for i, cp := range sd.Cp {
		assert.InDelta(t, 0.0, cp, 1e-12, "Cp of wall face %d", i)
	}
}

// Viscous residual on a uniform free stream also vanishes: constant
// velocity and temperature produce no stresses or heat flux.
func TestViscousFreestreamPreservation(t *testing.T) {
	m := channelMesh(t, 5, 3, defaultMarkers(), -1)
	cfg := Config{
		InviscidFlux:   "HLLC",
		EntropyFix:     0.1,
		Viscous:        true,
		SecondOrder:    true,
		GradientScheme: "GREENGAUSS",
		Limiter:        "NONE",
		BCs:            allFarfield(),
	}
	eng := newTestEngine(t, m, cfg)

	u := make([]float64, m.NElem()*4)
	eng.InitializeUnknowns(u)
	res := make([]float64, m.NElem()*4)
	dtm := make([]float64, m.NElem())
	require.NoError(t, eng.ComputeResidual(u, res, true, dtm))
	for i, r := range res {
		assert.InDelta(t, 0.0, r, 1e-11, "residual entry %d", i)
	}
	// viscous stiffness shortens admissible steps
	for c, dt := range dtm {
		assert.Greater(t, dt, 0.0, "cell %d", c)
	}
}

// The viscous Jacobian options must both be accepted and produce finite
// entries.
func TestViscousJacobianVariants(t *testing.T) {
	m := channelMesh(t, 4, 3, defaultMarkers(), -1)
	for _, thin := range []bool{false, true} {
		cfg := Config{
			InviscidFlux:      "LLF",
			Viscous:           true,
			ThinLayerJacobian: thin,
			BCs: []bcond.Config{
				{Marker: 1, Type: "adiabaticwall"},
				{Marker: 2, Type: "adiabaticwall"},
				{Marker: 3, Type: "farfield"},
				{Marker: 4, Type: "farfield"},
			},
		}
		eng := newTestEngine(t, m, cfg)
		u := make([]float64, m.NElem()*4)
		eng.InitializeUnknowns(u)

		A := eng.NewJacobianMatrix()
		require.NoError(t, eng.ComputeJacobian(u, A))
		for c := 0; c < m.NElem(); c++ {
			blk := A.Block(c, c)
			for _, v := range blk {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}
	}
}
