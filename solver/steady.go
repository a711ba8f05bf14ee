package solver

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/spatial"
	"github.com/wme7/FVENS/utils"
)

const nvars = physics.NVars

// Config drives the pseudo-time iteration to the steady state.
type Config struct {
	CFL       float64 // initial CFL number
	CFLMax    float64 // ceiling for the implicit CFL ramp
	Tol       float64 // relative residual convergence tolerance
	MaxIter   int
	LogEvery  int // iteration interval between progress lines; 0 disables

	// linear solver settings (implicit only)
	LinTol     float64
	LinRestart int
	LinMaxIter int
}

func (c *Config) defaults() {
	if c.CFLMax <= 0 {
		c.CFLMax = c.CFL
	}
	if c.LinTol <= 0 {
		c.LinTol = 1e-3
	}
	if c.LinRestart <= 0 {
		c.LinRestart = 30
	}
	if c.LinMaxIter <= 0 {
		c.LinMaxIter = 5
	}
	if c.LogEvery < 0 {
		c.LogEvery = 0
	}
}

// History records the convergence of a steady solve.
type History struct {
	Steps     int
	Converged bool
	RelRes    []float64
}

// recoverable reports whether a residual failure should trigger CFL backoff
// rather than abort the solve.
func recoverable(err error) bool {
	return errors.Is(err, utils.ErrNumericInvalid) || errors.Is(err, utils.ErrUnphysicalState)
}

// SteadyExplicit marches the solution to steady state by forward-Euler
// pseudo-time stepping with local time steps.
type SteadyExplicit struct {
	Eng *spatial.Engine
	Cfg Config
}

func (s *SteadyExplicit) Solve(u []float64) (*History, error) {
	s.Cfg.defaults()
	eng := s.Eng
	m := eng.Mesh()
	nelem := m.NElem()

	res := make([]float64, nelem*nvars)
	dtm := make([]float64, nelem)
	uprev := make([]float64, nelem*nvars)

	hist := &History{}
	cfl := s.Cfg.CFL
	initres := -1.0
	backoffs := 0

	for step := 0; step < s.Cfg.MaxIter; step++ {
		copy(uprev, u)
		if err := eng.ComputeResidual(u, res, true, dtm); err != nil {
			if recoverable(err) && backoffs < 10 {
				backoffs++
				cfl *= 0.5
				copy(u, uprev)
				log.WithError(err).Warnf("SteadyExplicit: residual failure, CFL backed off to %g", cfl)
				continue
			}
			return hist, err
		}
		backoffs = 0

		resi := norm2(res)
		if initres < 0 {
			initres = resi
		}
		rel := resi / initres
		hist.RelRes = append(hist.RelRes, rel)
		hist.Steps = step + 1
		if s.Cfg.LogEvery > 0 && step%s.Cfg.LogEvery == 0 {
			log.Infof("SteadyExplicit: step %6d  rel residual %10.4e  CFL %6.2f", step, rel, cfl)
		}
		if rel < s.Cfg.Tol {
			hist.Converged = true
			return hist, nil
		}

		// res holds -r, so the forward Euler update adds it
		for c := 0; c < nelem; c++ {
			fac := cfl * dtm[c] / m.CellArea(c)
			for k := 0; k < nvars; k++ {
				u[c*nvars+k] += fac * res[c*nvars+k]
			}
		}
	}
	return hist, nil
}

// SteadyImplicit marches backward-Euler pseudo-time steps, solving
// (V/dtau I + J) du = -r by restarted GMRES each nonlinear iteration, with
// a CFL ramp between iterations and backoff on residual failures.
type SteadyImplicit struct {
	Eng *spatial.Engine
	Cfg Config
}

func (s *SteadyImplicit) Solve(u []float64) (*History, error) {
	s.Cfg.defaults()
	eng := s.Eng
	m := eng.Mesh()
	nelem := m.NElem()

	A := eng.NewJacobianMatrix()
	res := make([]float64, nelem*nvars)
	dtm := make([]float64, nelem)
	du := make([]float64, nelem*nvars)
	uprev := make([]float64, nelem*nvars)

	hist := &History{}
	cfl := s.Cfg.CFL
	initres := -1.0
	backoffs := 0

	for step := 0; step < s.Cfg.MaxIter; step++ {
		copy(uprev, u)
		if err := eng.ComputeResidual(u, res, true, dtm); err != nil {
			if recoverable(err) && backoffs < 10 {
				backoffs++
				cfl = math.Max(cfl*0.25, 1e-3)
				copy(u, uprev)
				log.WithError(err).Warnf("SteadyImplicit: residual failure, CFL backed off to %g", cfl)
				continue
			}
			return hist, err
		}
		backoffs = 0

		resi := norm2(res)
		if initres < 0 {
			initres = resi
		}
		rel := resi / initres
		hist.RelRes = append(hist.RelRes, rel)
		hist.Steps = step + 1
		if s.Cfg.LogEvery > 0 && step%s.Cfg.LogEvery == 0 {
			log.Infof("SteadyImplicit: step %5d  rel residual %10.4e  CFL %8.2f", step, rel, cfl)
		}
		if rel < s.Cfg.Tol {
			hist.Converged = true
			return hist, nil
		}

		A.Zero()
		if err := eng.ComputeJacobian(u, A); err != nil {
			return hist, err
		}
		for c := 0; c < nelem; c++ {
			A.AddToDiagonal(c, m.CellArea(c)/(cfl*dtm[c]))
		}

		// res already holds -r, the Newton right-hand side
		for i := range du {
			du[i] = 0
		}
		csr := A.ToCSR()
		relres := gmres(csr, res, du, s.Cfg.LinTol, s.Cfg.LinRestart, s.Cfg.LinMaxIter)
		if math.IsNaN(relres) {
			return hist, fmt.Errorf("linear solve diverged at step %d: %w", step,
				utils.ErrNumericInvalid)
		}

		for i := range u {
			u[i] += du[i]
		}

		cfl = math.Min(cfl*1.5, s.Cfg.CFLMax)
	}
	return hist, nil
}
