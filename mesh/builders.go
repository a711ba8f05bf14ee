package mesh

import "math"

// ChannelMarkers assigns boundary markers to the four sides of a structured
// channel built by NewChannel.
type ChannelMarkers struct {
	Bottom, Top, Inlet, Outlet int
}

// ChannelSpec describes a structured channel mesh on [X0,X1] x [Y0,Y1] with
// nx x ny cells. Bump, when non-nil, displaces the bottom boundary by
// Bump(x); interior nodes are sheared linearly toward the top.
type ChannelSpec struct {
	Nx, Ny         int
	X0, X1, Y0, Y1 float64
	Bump           func(x float64) float64
	Markers        ChannelMarkers
	Triangles      bool // split each quad into two triangles
	PeriodicMarker int  // pass -1 when no side is periodic
}

// NewChannel builds a structured channel mesh of quadrilaterals or triangles.
// It is used by the tests and the demo command; mesh file ingestion is an
// external concern.
func NewChannel(spec ChannelSpec) (*Mesh, error) {
	nx, ny := spec.Nx, spec.Ny
	coords := make([][2]float64, (nx+1)*(ny+1))
	node := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x := spec.X0 + (spec.X1-spec.X0)*float64(i)/float64(nx)
			eta := float64(j) / float64(ny)
			ylo := spec.Y0
			if spec.Bump != nil {
				ylo += spec.Bump(x)
			}
			y := ylo + (spec.Y1-ylo)*eta
			coords[node(i, j)] = [2]float64{x, y}
		}
	}

	var cells [][]int
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b := node(i, j), node(i+1, j)
			c, d := node(i+1, j+1), node(i, j+1)
			if spec.Triangles {
				cells = append(cells, []int{a, b, c}, []int{a, c, d})
			} else {
				cells = append(cells, []int{a, b, c, d})
			}
		}
	}

	markers := make(map[[2]int]int)
	for i := 0; i < nx; i++ {
		markers[sortedPair(node(i, 0), node(i+1, 0))] = spec.Markers.Bottom
		markers[sortedPair(node(i, ny), node(i+1, ny))] = spec.Markers.Top
	}
	for j := 0; j < ny; j++ {
		markers[sortedPair(node(0, j), node(0, j+1))] = spec.Markers.Inlet
		markers[sortedPair(node(nx, j), node(nx, j+1))] = spec.Markers.Outlet
	}

	return NewFromRaw(coords, cells, markers, spec.PeriodicMarker)
}

// GaussianBump returns a bump profile of the given height and width centered
// at xc, for use as ChannelSpec.Bump.
func GaussianBump(height, xc, width float64) func(float64) float64 {
	return func(x float64) float64 {
		return height * math.Exp(-(x-xc)*(x-xc)/(width*width))
	}
}
