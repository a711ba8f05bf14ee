package reconstr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wme7/FVENS/gradient"
	"github.com/wme7/FVENS/mesh"
)

func testMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewChannel(mesh.ChannelSpec{
		Nx: 6, Ny: 4,
		X0: 0, X1: 3, Y0: 0, Y1: 1,
		Markers:        mesh.ChannelMarkers{Bottom: 1, Top: 2, Inlet: 3, Outlet: 4},
		PeriodicMarker: -1,
	})
	require.NoError(t, err)
	return m
}

func centroids(m *mesh.Mesh) [][2]float64 {
	rc := make([][2]float64, m.NElem()+m.NBFace())
	for c := 0; c < m.NElem(); c++ {
		x, y := m.CellCentroid(c)
		rc[c] = [2]float64{x, y}
	}
	for f := 0; f < m.NBFace(); f++ {
		l, _ := m.FaceCells(f)
		n1, n2 := m.FaceNodes(f)
		x1, y1 := m.NodeCoord(n1)
		x2, y2 := m.NodeCoord(n2)
		rc[m.NElem()+f] = [2]float64{x1 + x2 - rc[l][0], y1 + y2 - rc[l][1]}
	}
	return rc
}

func midpoints(m *mesh.Mesh) [][2]float64 {
	gp := make([][2]float64, m.NFace())
	for f := 0; f < m.NFace(); f++ {
		n1, n2 := m.FaceNodes(f)
		x1, y1 := m.NodeCoord(n1)
		x2, y2 := m.NodeCoord(n2)
		gp[f] = [2]float64{0.5 * (x1 + x2), 0.5 * (y1 + y2)}
	}
	return gp
}

// fill evaluates a scalar field at real and ghost centroids into all four
// variable slots.
func fill(m *mesh.Mesh, rc [][2]float64, f func(x, y float64) float64) (u, ug []float64) {
	u = make([]float64, m.NElem()*nvars)
	ug = make([]float64, m.NBFace()*nvars)
	for c := 0; c < m.NElem(); c++ {
		v := f(rc[c][0], rc[c][1])
		for k := 0; k < nvars; k++ {
			u[c*nvars+k] = v
		}
	}
	for fc := 0; fc < m.NBFace(); fc++ {
		g := m.NElem() + fc
		v := f(rc[g][0], rc[g][1])
		for k := 0; k < nvars; k++ {
			ug[fc*nvars+k] = v
		}
	}
	return
}

func TestLinearUnlimitedReproducesLinearField(t *testing.T) {
	m := testMesh(t)
	rc := centroids(m)
	gp := midpoints(m)

	linField := func(x, y float64) float64 { return 1.0 + 2.0*x - 0.7*y }
	u, ug := fill(m, rc, linField)

	ls := gradient.NewWeightedLeastSquares(m, rc)
	grads := make([]float64, m.NElem()*2*nvars)
	ls.ComputeGradients(u, ug, grads)

	recon, err := New("NONE", m, rc, gp, 0)
	require.NoError(t, err)
	uleft := make([]float64, m.NFace()*nvars)
	uright := make([]float64, m.NFace()*nvars)
	recon.ComputeFaceValues(u, ug, grads, uleft, uright)

	for f := 0; f < m.NFace(); f++ {
		want := linField(gp[f][0], gp[f][1])
		assert.InDelta(t, want, uleft[f*nvars], 1e-10, "face %d left", f)
		if f >= m.NBFace() {
			assert.InDelta(t, want, uright[f*nvars], 1e-10, "face %d right", f)
			// left and right reconstructions agree on smooth data
			assert.InDelta(t, uleft[f*nvars], uright[f*nvars], 1e-10)
		}
	}
}

// The Barth-Jespersen limited face values must stay inside the stencil
// bounds: no new extrema.
func TestBarthJespersenNoNewExtrema(t *testing.T) {
	m := testMesh(t)
	rc := centroids(m)
	gp := midpoints(m)

	rnd := rand.New(rand.NewSource(99))
	u := make([]float64, m.NElem()*nvars)
	ug := make([]float64, m.NBFace()*nvars)
	for i := range u {
		u[i] = rnd.Float64()
	}
	for i := range ug {
		ug[i] = rnd.Float64()
	}

	ls := gradient.NewWeightedLeastSquares(m, rc)
	grads := make([]float64, m.NElem()*2*nvars)
	ls.ComputeGradients(u, ug, grads)

	recon, err := New("BARTHJESPERSEN", m, rc, gp, 0)
	require.NoError(t, err)
	uleft := make([]float64, m.NFace()*nvars)
	uright := make([]float64, m.NFace()*nvars)
	recon.ComputeFaceValues(u, ug, grads, uleft, uright)

	// stencil bounds per cell
	check := func(c, f int, val float64, k int) {
		lo, hi := u[c*nvars+k], u[c*nvars+k]
		for _, cf := range m.CellFaces(c) {
			l, r := m.FaceCells(cf)
			var v float64
			if cf < m.NBFace() {
				v = ug[cf*nvars+k]
			} else if c == l {
				v = u[r*nvars+k]
			} else {
				v = u[l*nvars+k]
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		assert.GreaterOrEqual(t, val, lo-1e-12, "face %d cell %d var %d", f, c, k)
		assert.LessOrEqual(t, val, hi+1e-12, "face %d cell %d var %d", f, c, k)
	}

	for f := 0; f < m.NFace(); f++ {
		l, r := m.FaceCells(f)
		for k := 0; k < nvars; k++ {
			check(l, f, uleft[f*nvars+k], k)
			if f >= m.NBFace() {
				check(r, f, uright[f*nvars+k], k)
			}
		}
	}
}

func TestVanAlbadaStaysWithinDataRange(t *testing.T) {
	m := testMesh(t)
	rc := centroids(m)
	gp := midpoints(m)

	// a local extremum: slopes of opposite sign must suppress the update
	u := make([]float64, m.NElem()*nvars)
	ug := make([]float64, m.NBFace()*nvars)
	for c := 0; c < m.NElem(); c++ {
		x, _ := m.CellCentroid(c)
		v := math.Abs(x - 1.5)
		for k := 0; k < nvars; k++ {
			u[c*nvars+k] = v
		}
	}

	ls := gradient.NewWeightedLeastSquares(m, rc)
	grads := make([]float64, m.NElem()*2*nvars)
	ls.ComputeGradients(u, ug, grads)

	recon, err := New("VANALBADA", m, rc, gp, 0)
	require.NoError(t, err)
	uleft := make([]float64, m.NFace()*nvars)
	uright := make([]float64, m.NFace()*nvars)
	recon.ComputeFaceValues(u, ug, grads, uleft, uright)

	// every reconstructed value stays within the global data range
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range u {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, v := range ug {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for f := m.NBFace(); f < m.NFace(); f++ {
		for k := 0; k < nvars; k++ {
			assert.GreaterOrEqual(t, uleft[f*nvars+k], lo-1e-10)
			assert.LessOrEqual(t, uleft[f*nvars+k], hi+1e-10)
		}
	}
}

func TestVenkatakrishnanAndWENOSmoke(t *testing.T) {
	m := testMesh(t)
	rc := centroids(m)
	gp := midpoints(m)

	linField := func(x, y float64) float64 { return 2.0 + 0.5*x + 0.25*y }
	u, ug := fill(m, rc, linField)
	ls := gradient.NewWeightedLeastSquares(m, rc)
	grads := make([]float64, m.NElem()*2*nvars)
	ls.ComputeGradients(u, ug, grads)

	for _, name := range []string{"VENKATAKRISHNAN", "WENO"} {
		recon, err := New(name, m, rc, gp, 2.0)
		require.NoError(t, err)
		uleft := make([]float64, m.NFace()*nvars)
		uright := make([]float64, m.NFace()*nvars)
		recon.ComputeFaceValues(u, ug, grads, uleft, uright)

		// smooth linear data must be reconstructed close to exactly
		for f := m.NBFace(); f < m.NFace(); f++ {
			want := linField(gp[f][0], gp[f][1])
			assert.InDelta(t, want, uleft[f*nvars], 2e-2, "%s face %d", name, f)
		}
	}
}

func TestUnknownLimiterRejected(t *testing.T) {
	m := testMesh(t)
	_, err := New("SUPERBEE", m, centroids(m), midpoints(m), 0)
	assert.Error(t, err)
}
