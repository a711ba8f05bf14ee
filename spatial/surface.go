package spatial

import (
	"math"
)

// SurfaceData holds wall post-processing output for one boundary marker:
// face-center coordinates, pressure and skin-friction coefficients per face,
// and the integrated force coefficients normalized by total wall length.
type SurfaceData struct {
	Coords        [][2]float64
	Cp, Cf        []float64
	Cl, Cdp, Cdf  float64
	TotalLength   float64
}

/*
	ComputeSurfaceData computes Cp, Cf and the lift and pressure/friction
	drag coefficients over the faces carrying the wall marker. grads must be
	the conservative-variable gradients (see Gradients); the velocity
	gradient at the wall comes from the quotient rule on momentum and
	density.
*/
func (e *Engine) ComputeSurfaceData(u, grads []float64, marker int) *SurfaceData {
	m := e.msh
	gas := e.gas
	aoa := e.cfg.Alpha
	av := [2]float64{math.Cos(aoa), math.Sin(aoa)}
	flownormal := [2]float64{-av[1], av[0]}
	pinf := gas.FreestreamPressure()

	out := &SurfaceData{}
	for f := 0; f < m.NBFace(); f++ {
		if m.FaceMarker(f) != marker {
			continue
		}
		l, _ := m.FaceCells(f)
		nx, ny, length := m.FaceMetric(f)
		out.TotalLength += length

		n1, n2 := m.FaceNodes(f)
		x1, y1 := m.NodeCoord(n1)
		x2, y2 := m.NodeCoord(n2)
		out.Coords = append(out.Coords, [2]float64{0.5 * (x1 + x2), 0.5 * (y1 + y2)})

		ul := u[l*nvars : (l+1)*nvars]
		cp := 2.0 * (gas.Pressure(ul) - pinf)
		out.Cp = append(out.Cp, cp)

		muhat := gas.Viscosity(ul)
		if e.cfg.ConstVisc {
			muhat = gas.ConstantViscosity()
		}

		// velocity gradient tensor by the quotient rule on the
		// conservative gradients
		gc := grads[l*2*nvars : (l+1)*2*nvars]
		rho := ul[0]
		var gradu [2][2]float64
		for j := 0; j < 2; j++ { // direction
			for i := 0; i < 2; i++ { // velocity component
				gradu[j][i] = (gc[j*nvars+i+1]*rho - ul[i+1]*gc[j*nvars+0]) / (rho * rho)
			}
		}

		tauw := muhat * ((2.0*gradu[0][0]*nx+(gradu[1][0]+gradu[0][1])*ny)*ny +
			((gradu[0][1]+gradu[1][0])*nx+2.0*gradu[1][1]*ny)*(-nx))
		cf := 2.0 * tauw
		out.Cf = append(out.Cf, cf)

		ndotf := nx*av[0] + ny*av[1]
		ndotnf := nx*flownormal[0] + ny*flownormal[1]
		tdotf := ny*av[0] - nx*av[1]

		out.Cdp += cp * ndotf * length
		out.Cdf += cf * tdotf * length
		out.Cl += cp * ndotnf * length
	}

	if out.TotalLength > 0 {
		out.Cdp /= out.TotalLength
		out.Cdf /= out.TotalLength
		out.Cl /= out.TotalLength
	}
	return out
}
