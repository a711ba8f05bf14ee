package spatial

import (
	"fmt"
	"math"

	"github.com/wme7/FVENS/bcond"
	"github.com/wme7/FVENS/gradient"
	"github.com/wme7/FVENS/invflux"
	"github.com/wme7/FVENS/mesh"
	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/reconstr"
	"github.com/wme7/FVENS/utils"
)

const nvars = physics.NVars

// NGauss is the number of quadrature points per face. Gauss points are
// distributed uniformly along the face edge.
const NGauss = 1

// Config selects the discretization options of one spatial engine.
type Config struct {
	Alpha       float64 // angle of attack in radians
	Viscous     bool    // include viscous fluxes (Navier-Stokes)
	SecondOrder bool
	ConstVisc   bool // constant viscosity instead of the Sutherland law

	InviscidFlux string // flux used for the residual
	JacobianFlux string // flux used for the Jacobian, possibly different

	GradientScheme string
	Limiter        string
	LimiterParam   float64
	EntropyFix     float64

	BCs []bcond.Config

	// GhostFaceReflection reflects ghost centroids about the face line
	// instead of the face midpoint.
	GhostFaceReflection bool

	// ThinLayerJacobian selects the approximate diagonal viscous Jacobian
	// instead of the full one.
	ThinLayerJacobian bool

	NumParallel int // worker goroutines; 0 means one per CPU
}

/*
	Engine assembles the residual and Jacobian of the cell-centered finite
	volume discretization. Mesh, gas model, BC registry and least-squares
	precomputations are immutable after construction; the face, ghost,
	primitive and gradient scratch arrays live in a workspace allocated once
	and reused by every residual evaluation. The Barth-Jespersen,
	Venkatakrishnan and WENO reconstructions allocate one limiter or
	blended-gradient array per call.

	Sign convention: the residual is assembled for du/dt + r(u) = 0 and the
	output vector receives -r, i.e. face fluxes are subtracted from the left
	cell's entry and added to the right cell's. The Jacobian matrix holds
	d(r)/d(u), so drivers solve A*du = res directly.
*/
type Engine struct {
	msh *mesh.Mesh
	gas *physics.IdealGas
	cfg Config

	iflux invflux.InviscidFlux
	jflux invflux.InviscidFlux
	grad  gradient.Scheme
	recon reconstr.Reconstructor
	bcs   *bcond.Registry

	uinf [4]float64

	// rc holds the centroids of real cells followed by the virtual ghost
	// centroids of boundary faces.
	rc [][2]float64
	// gp holds the face quadrature points.
	gp [][2]float64

	npar    int
	pmFace  *utils.PartitionMap
	pmCell  *utils.PartitionMap
	pmBFace *utils.PartitionMap

	ws workspace
}

// workspace is the preallocated per-call scratch of the engine.
type workspace struct {
	integ  []float64 // per-cell spectral radius integral
	ug     []float64 // ghost states, nbface x nvars
	uleft  []float64 // face left states, nface x nvars
	uright []float64 // face right states, nface x nvars
	up     []float64 // cell primitives, nelem x nvars
	grads  []float64 // cell gradients, nelem x 2 x nvars
}

func NewEngine(msh *mesh.Mesh, gas *physics.IdealGas, cfg Config) (*Engine, error) {
	e := &Engine{msh: msh, gas: gas, cfg: cfg}
	e.uinf = gas.FreestreamState(cfg.Alpha)

	var err error
	if e.iflux, err = invflux.New(cfg.InviscidFlux, gas, cfg.EntropyFix); err != nil {
		return nil, err
	}
	jname := cfg.JacobianFlux
	if jname == "" {
		jname = cfg.InviscidFlux
	}
	if e.jflux, err = invflux.New(jname, gas, cfg.EntropyFix); err != nil {
		return nil, err
	}
	if e.bcs, err = bcond.NewRegistry(cfg.BCs, gas, e.uinf); err != nil {
		return nil, err
	}
	for f := 0; f < msh.NBFace(); f++ {
		marker := msh.FaceMarker(f)
		if marker == e.bcs.PeriodicMarker() {
			continue
		}
		if _, err = e.bcs.At(marker); err != nil {
			return nil, err
		}
	}

	e.buildGeometry()

	if e.grad, err = gradient.New(cfg.GradientScheme, msh, e.rc); err != nil {
		return nil, err
	}
	if e.recon, err = reconstr.New(cfg.Limiter, msh, e.rc, e.gp, cfg.LimiterParam); err != nil {
		return nil, err
	}

	e.npar = cfg.NumParallel
	if e.npar <= 0 {
		e.npar = utils.DefaultParallelism()
	}
	e.pmFace = utils.NewPartitionMap(e.npar, msh.NFace())
	e.pmCell = utils.NewPartitionMap(e.npar, msh.NElem())
	e.pmBFace = utils.NewPartitionMap(e.npar, msh.NBFace())

	nelem, nface, nbface := msh.NElem(), msh.NFace(), msh.NBFace()
	e.ws = workspace{
		integ:  make([]float64, nelem),
		ug:     make([]float64, nbface*nvars),
		uleft:  make([]float64, nface*nvars),
		uright: make([]float64, nface*nvars),
		up:     make([]float64, nelem*nvars),
		grads:  make([]float64, nelem*2*nvars),
	}
	return e, nil
}

// buildGeometry computes real and ghost cell centroids and the face Gauss
// points.
func (e *Engine) buildGeometry() {
	m := e.msh
	nelem, nbface := m.NElem(), m.NBFace()
	e.rc = make([][2]float64, nelem+nbface)
	for c := 0; c < nelem; c++ {
		x, y := m.CellCentroid(c)
		e.rc[c] = [2]float64{x, y}
	}
	for f := 0; f < nbface; f++ {
		l, _ := m.FaceCells(f)
		if e.cfg.GhostFaceReflection {
			e.rc[nelem+f] = reflectAboutFace(m, f, e.rc[l])
		} else {
			n1, n2 := m.FaceNodes(f)
			x1, y1 := m.NodeCoord(n1)
			x2, y2 := m.NodeCoord(n2)
			mx, my := 0.5*(x1+x2), 0.5*(y1+y2)
			e.rc[nelem+f] = [2]float64{2.0*mx - e.rc[l][0], 2.0*my - e.rc[l][1]}
		}
	}

	e.gp = make([][2]float64, m.NFace())
	for f := 0; f < m.NFace(); f++ {
		n1, n2 := m.FaceNodes(f)
		x1, y1 := m.NodeCoord(n1)
		x2, y2 := m.NodeCoord(n2)
		// single Gauss point: the uniform distribution lands on the midpoint
		t := 1.0 / float64(NGauss+1)
		e.gp[f] = [2]float64{x1 + t*(x2-x1), y1 + t*(y2-y1)}
	}
}

// reflectAboutFace reflects the left centroid about the line carrying the
// face, rather than about the face midpoint.
func reflectAboutFace(m *mesh.Mesh, f int, rl [2]float64) [2]float64 {
	n1, n2 := m.FaceNodes(f)
	x1, y1 := m.NodeCoord(n1)
	x2, y2 := m.NodeCoord(n2)
	dx, dy := x2-x1, y2-y1
	l2 := dx*dx + dy*dy
	t := ((rl[0]-x1)*dx + (rl[1]-y1)*dy) / l2
	fx, fy := x1+t*dx, y1+t*dy
	return [2]float64{2.0*fx - rl[0], 2.0*fy - rl[1]}
}

// Mesh returns the engine's mesh.
func (e *Engine) Mesh() *mesh.Mesh { return e.msh }

// Gas returns the engine's gas model.
func (e *Engine) Gas() *physics.IdealGas { return e.gas }

// FreestreamState returns the conserved free-stream state at the configured
// angle of attack.
func (e *Engine) FreestreamState() [4]float64 { return e.uinf }

// CellCentroids exposes the real-plus-ghost centroid array.
func (e *Engine) CellCentroids() [][2]float64 { return e.rc }

// InitializeUnknowns fills the state vector with the free stream.
func (e *Engine) InitializeUnknowns(u []float64) {
	for c := 0; c < e.msh.NElem(); c++ {
		copy(u[c*nvars:(c+1)*nvars], e.uinf[:])
	}
}

// NewJacobianMatrix allocates a block matrix with the mesh's face-neighbour
// sparsity pattern.
func (e *Engine) NewJacobianMatrix() *utils.BlockSparse {
	m := e.msh
	adj := make([][]int, m.NElem())
	for f := m.NBFace(); f < m.NFace(); f++ {
		l, r := m.FaceCells(f)
		adj[l] = append(adj[l], r)
		adj[r] = append(adj[r], l)
	}
	return utils.NewBlockSparse(m.NElem(), nvars, adj)
}

// computeBoundaryState fills the ghost state of one boundary face from the
// given interior (or face-reconstructed) state.
func (e *Engine) computeBoundaryState(f int, uin, ug []float64) error {
	marker := e.msh.FaceMarker(f)
	if marker == e.bcs.PeriodicMarker() {
		// handled by the caller via the periodic map
		return nil
	}
	bc, err := e.bcs.At(marker)
	if err != nil {
		return err
	}
	nx, ny, _ := e.msh.FaceMetric(f)
	n := [2]float64{nx, ny}
	bc.GhostState(uin, n[:], ug)
	return nil
}

// computeBoundaryStates fills ghost states for all boundary faces from the
// per-face interior states ins (nbface rows), applying the periodic copy
// after the BC loop.
func (e *Engine) computeBoundaryStates(ins, gs []float64) error {
	m := e.msh
	var firstErr error
	e.parallelRange(e.pmBFace, func(fmin, fmax int) error {
		for f := fmin; f < fmax; f++ {
			if err := e.computeBoundaryState(f, ins[f*nvars:(f+1)*nvars],
				gs[f*nvars:(f+1)*nvars]); err != nil {
				return err
			}
		}
		return nil
	}, &firstErr)
	if firstErr != nil {
		return firstErr
	}
	pmk := e.bcs.PeriodicMarker()
	if pmk >= 0 {
		for f := 0; f < m.NBFace(); f++ {
			if m.FaceMarker(f) == pmk {
				pf := m.PeriodicMap(f)
				if pf < 0 {
					return fmt.Errorf("face %d carries the periodic marker but has no pairing: %w",
						f, utils.ErrMeshInconsistent)
				}
				copy(gs[f*nvars:(f+1)*nvars], ins[pf*nvars:(pf+1)*nvars])
			}
		}
	}
	return nil
}

// checkFinite verifies that the assembled output contains no NaN or Inf.
func checkFinite(v []float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("entry %d is not finite: %w", i, utils.ErrNumericInvalid)
		}
	}
	return nil
}
