package reconstr

import (
	"fmt"
	"math"
	"strings"

	"github.com/wme7/FVENS/mesh"
	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/utils"
)

const nvars = physics.NVars

/*
	A Reconstructor produces left and right face states at every face from
	cell values, ghost values and cell gradients. All state arrays are in
	the same (usually primitive) variable set.

	For boundary faces only the left value is produced; the engine computes
	the right (ghost) value from the reconstructed left state through the
	boundary conditions.
*/
type Reconstructor interface {
	ComputeFaceValues(u, ug, grads, uleft, uright []float64)
}

// New constructs the named reconstruction scheme. rc holds real and ghost
// centroids, gp the face evaluation points, param the limiter parameter
// (Venkatakrishnan K, WENO regularization).
func New(name string, msh *mesh.Mesh, rc, gp [][2]float64, param float64) (Reconstructor, error) {
	switch strings.ToUpper(name) {
	case "", "NONE":
		return &LinearUnlimited{msh: msh, rc: rc, gp: gp}, nil
	case "VANALBADA":
		return &MUSCLVanAlbada{msh: msh, rc: rc}, nil
	case "BARTHJESPERSEN":
		return &cellLimited{msh: msh, rc: rc, gp: gp, venkat: false}, nil
	case "VENKATAKRISHNAN":
		return &cellLimited{msh: msh, rc: rc, gp: gp, venkat: true, k: param}, nil
	case "WENO":
		return &WENOReconstruction{msh: msh, rc: rc, gp: gp, eps: param}, nil
	}
	return nil, fmt.Errorf("unknown reconstruction scheme %q: %w", name, utils.ErrConfigInvalid)
}

func dot2(gx, gy, dx, dy float64) float64 { return gx*dx + gy*dy }

// LinearUnlimited extrapolates the cell gradients to the face evaluation
// points without limiting.
type LinearUnlimited struct {
	msh    *mesh.Mesh
	rc, gp [][2]float64
}

func (lu *LinearUnlimited) ComputeFaceValues(u, ug, grads, uleft, uright []float64) {
	m := lu.msh
	for f := 0; f < m.NFace(); f++ {
		l, r := m.FaceCells(f)
		gpf := lu.gp[f]
		gl := grads[l*2*nvars : (l+1)*2*nvars]
		for k := 0; k < nvars; k++ {
			uleft[f*nvars+k] = u[l*nvars+k] +
				dot2(gl[k], gl[nvars+k], gpf[0]-lu.rc[l][0], gpf[1]-lu.rc[l][1])
		}
		if f >= m.NBFace() {
			gr := grads[r*2*nvars : (r+1)*2*nvars]
			for k := 0; k < nvars; k++ {
				uright[f*nvars+k] = u[r*nvars+k] +
					dot2(gr[k], gr[nvars+k], gpf[0]-lu.rc[r][0], gpf[1]-lu.rc[r][1])
			}
		}
	}
}

/*
	MUSCLVanAlbada is the MUSCL kappa-scheme with the van Albada smooth
	switch applied componentwise:
		s = max(0, (2 dm dp + eps)/(dm^2 + dp^2 + eps))
	which equals the limiter 2r/(r^2+1) of the slope ratio r = dm/dp.
*/
type MUSCLVanAlbada struct {
	msh *mesh.Mesh
	rc  [][2]float64
}

const musclKappa = 1.0 / 3.0
const vaEps = 1e-12

func (va *MUSCLVanAlbada) ComputeFaceValues(u, ug, grads, uleft, uright []float64) {
	m := va.msh
	for f := 0; f < m.NFace(); f++ {
		l, r := m.FaceCells(f)
		var urr []float64
		if f < m.NBFace() {
			urr = ug[f*nvars : (f+1)*nvars]
		} else {
			urr = u[r*nvars : (r+1)*nvars]
		}
		ull := u[l*nvars : (l+1)*nvars]
		dx := va.rc[r][0] - va.rc[l][0]
		dy := va.rc[r][1] - va.rc[l][1]

		gl := grads[l*2*nvars : (l+1)*2*nvars]
		for k := 0; k < nvars; k++ {
			dp := urr[k] - ull[k]
			dm := 2.0*dot2(gl[k], gl[nvars+k], dx, dy) - dp
			s := (2.0*dm*dp + vaEps) / (dm*dm + dp*dp + vaEps)
			if s < 0 {
				s = 0
			}
			uleft[f*nvars+k] = ull[k] +
				s/4.0*((1.0-musclKappa*s)*dm+(1.0+musclKappa*s)*dp)
		}
		if f >= m.NBFace() {
			gr := grads[r*2*nvars : (r+1)*2*nvars]
			for k := 0; k < nvars; k++ {
				dp := urr[k] - ull[k]
				dm := 2.0*dot2(gr[k], gr[nvars+k], dx, dy) - dp
				s := (2.0*dm*dp + vaEps) / (dm*dm + dp*dp + vaEps)
				if s < 0 {
					s = 0
				}
				uright[f*nvars+k] = urr[k] -
					s/4.0*((1.0-musclKappa*s)*dm+(1.0+musclKappa*s)*dp)
			}
		}
	}
}

// cellLimited is the linear reconstruction with a per-cell limiter factor,
// Barth-Jespersen or its Venkatakrishnan smoothing.
type cellLimited struct {
	msh    *mesh.Mesh
	rc, gp [][2]float64
	venkat bool
	k      float64 // Venkatakrishnan K
}

func (cl *cellLimited) ComputeFaceValues(u, ug, grads, uleft, uright []float64) {
	m := cl.msh
	nelem := m.NElem()

	// per-cell limiter factors
	psi := make([]float64, nelem*nvars)
	for c := 0; c < nelem; c++ {
		var umin, umax [nvars]float64
		uc := u[c*nvars : (c+1)*nvars]
		for k := 0; k < nvars; k++ {
			umin[k], umax[k] = uc[k], uc[k]
		}
		for _, f := range m.CellFaces(c) {
			l, r := m.FaceCells(f)
			var uo []float64
			if f < m.NBFace() {
				uo = ug[f*nvars : (f+1)*nvars]
			} else if c == l {
				uo = u[r*nvars : (r+1)*nvars]
			} else {
				uo = u[l*nvars : (l+1)*nvars]
			}
			for k := 0; k < nvars; k++ {
				umin[k] = math.Min(umin[k], uo[k])
				umax[k] = math.Max(umax[k], uo[k])
			}
		}

		var eps2 float64
		if cl.venkat {
			h := math.Sqrt(m.CellArea(c))
			eps2 = (cl.k * h) * (cl.k * h) * (cl.k * h)
		}

		gc := grads[c*2*nvars : (c+1)*2*nvars]
		for k := 0; k < nvars; k++ {
			p := 1.0
			for _, f := range m.CellFaces(c) {
				gpf := cl.gp[f]
				d2 := dot2(gc[k], gc[nvars+k], gpf[0]-cl.rc[c][0], gpf[1]-cl.rc[c][1])
				var phi float64
				switch {
				case d2 > 0:
					phi = cl.limit(umax[k]-uc[k], d2, eps2)
				case d2 < 0:
					phi = cl.limit(umin[k]-uc[k], d2, eps2)
				default:
					phi = 1
				}
				p = math.Min(p, phi)
			}
			psi[c*nvars+k] = p
		}
	}

	for f := 0; f < m.NFace(); f++ {
		l, r := m.FaceCells(f)
		gpf := cl.gp[f]
		gl := grads[l*2*nvars : (l+1)*2*nvars]
		for k := 0; k < nvars; k++ {
			uleft[f*nvars+k] = u[l*nvars+k] + psi[l*nvars+k]*
				dot2(gl[k], gl[nvars+k], gpf[0]-cl.rc[l][0], gpf[1]-cl.rc[l][1])
		}
		if f >= m.NBFace() {
			gr := grads[r*2*nvars : (r+1)*2*nvars]
			for k := 0; k < nvars; k++ {
				uright[f*nvars+k] = u[r*nvars+k] + psi[r*nvars+k]*
					dot2(gr[k], gr[nvars+k], gpf[0]-cl.rc[r][0], gpf[1]-cl.rc[r][1])
			}
		}
	}
}

// limit evaluates the limiter function for admissible jump a and
// reconstructed increment b.
func (cl *cellLimited) limit(a, b, eps2 float64) float64 {
	if !cl.venkat {
		return math.Min(1.0, a/b)
	}
	return ((a*a+eps2)*b + 2.0*b*b*a) / (b * (a*a + 2.0*b*b + a*b + eps2))
}

/*
	WENOReconstruction blends the cell's own gradient with its neighbours'
	by smoothness-weighted nonlinear averaging, then reconstructs linearly
	with the blended gradient. The central candidate carries a large linear
	weight; eps regularizes the smoothness indicators.
*/
type WENOReconstruction struct {
	msh    *mesh.Mesh
	rc, gp [][2]float64
	eps    float64
}

const wenoCentralWeight = 100.0
const wenoPower = 4.0

func (wr *WENOReconstruction) ComputeFaceValues(u, ug, grads, uleft, uright []float64) {
	m := wr.msh
	nelem := m.NElem()
	eps := wr.eps
	if eps <= 0 {
		eps = 1e-6
	}

	blended := make([]float64, nelem*2*nvars)
	for c := 0; c < nelem; c++ {
		for k := 0; k < nvars; k++ {
			var wsum, gx, gy float64
			add := func(cell int, lambda float64) {
				g := grads[cell*2*nvars : (cell+1)*2*nvars]
				beta := g[k]*g[k] + g[nvars+k]*g[nvars+k]
				w := lambda / math.Pow(beta+eps, wenoPower)
				wsum += w
				gx += w * g[k]
				gy += w * g[nvars+k]
			}
			add(c, wenoCentralWeight)
			for _, f := range m.CellFaces(c) {
				if f < m.NBFace() {
					continue
				}
				l, r := m.FaceCells(f)
				if c == l {
					add(r, 1.0)
				} else {
					add(l, 1.0)
				}
			}
			blended[c*2*nvars+k] = gx / wsum
			blended[c*2*nvars+nvars+k] = gy / wsum
		}
	}

	lin := &LinearUnlimited{msh: m, rc: wr.rc, gp: wr.gp}
	lin.ComputeFaceValues(u, ug, blended, uleft, uright)
}
