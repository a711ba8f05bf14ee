package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/wme7/FVENS/utils"
)

// Mesh is an immutable 2D unstructured mesh of linear triangles and
// quadrilaterals, with oriented faces. Faces 0..NBFace()-1 are boundary
// faces; the right cell of boundary face f is the virtual ghost index
// NElem()+f. Face unit normals point from the left cell to the right cell.
type Mesh struct {
	nelem, nface, nbface int

	faceCells  [][2]int
	faceNodes  [][2]int
	faceMetric [][3]float64 // nx, ny, length
	faceMarker []int        // boundary faces only

	cellNodes    [][]int
	cellFaces    [][]int
	cellArea     []float64
	cellCentroid [][2]float64

	coords [][2]float64

	periodicMap []int // per boundary face; -1 when not periodic
}

func (m *Mesh) NElem() int  { return m.nelem }
func (m *Mesh) NFace() int  { return m.nface }
func (m *Mesh) NBFace() int { return m.nbface }
func (m *Mesh) NNode() int  { return len(m.coords) }

// FaceCells returns the left and right cell of face f. For boundary faces
// the right index is the ghost index NElem()+f.
func (m *Mesh) FaceCells(f int) (l, r int) { return m.faceCells[f][0], m.faceCells[f][1] }

func (m *Mesh) FaceNodes(f int) (n1, n2 int) { return m.faceNodes[f][0], m.faceNodes[f][1] }

// FaceMetric returns the unit normal components and the face length.
func (m *Mesh) FaceMetric(f int) (nx, ny, length float64) {
	return m.faceMetric[f][0], m.faceMetric[f][1], m.faceMetric[f][2]
}

// FaceMarker returns the boundary marker of boundary face f.
func (m *Mesh) FaceMarker(f int) int { return m.faceMarker[f] }

func (m *Mesh) NNodeCell(c int) int      { return len(m.cellNodes[c]) }
func (m *Mesh) CellNode(c, i int) int    { return m.cellNodes[c][i] }
func (m *Mesh) CellFaces(c int) []int    { return m.cellFaces[c] }
func (m *Mesh) CellArea(c int) float64   { return m.cellArea[c] }
func (m *Mesh) NodeCoord(n int) (x, y float64) {
	return m.coords[n][0], m.coords[n][1]
}

// CellCentroid returns the node-average centroid of cell c.
func (m *Mesh) CellCentroid(c int) (x, y float64) {
	return m.cellCentroid[c][0], m.cellCentroid[c][1]
}

// PeriodicMap returns the paired boundary face of boundary face f, or -1
// when f does not carry the periodic marker. The pairing is involutive.
func (m *Mesh) PeriodicMap(f int) int { return m.periodicMap[f] }

type edgeRec struct {
	cell   int
	n1, n2 int // in the owning cell's counterclockwise order
}

// NewFromRaw builds a mesh from node coordinates, cell node lists (3 or 4
// nodes each), and a boundary marker lookup keyed by the sorted node pair of
// each boundary edge. Cells may be given in either orientation; they are
// normalized to counterclockwise. periodicMarker < 0 disables periodic
// pairing.
func NewFromRaw(coords [][2]float64, cells [][]int, markers map[[2]int]int,
	periodicMarker int) (*Mesh, error) {
	m := &Mesh{
		nelem:        len(cells),
		coords:       coords,
		cellNodes:    make([][]int, len(cells)),
		cellArea:     make([]float64, len(cells)),
		cellCentroid: make([][2]float64, len(cells)),
		cellFaces:    make([][]int, len(cells)),
	}

	for c, nodes := range cells {
		if len(nodes) != 3 && len(nodes) != 4 {
			return nil, fmt.Errorf("cell %d has %d nodes: %w", c, len(nodes),
				utils.ErrMeshInconsistent)
		}
		nn := make([]int, len(nodes))
		copy(nn, nodes)
		if signedArea(coords, nn) < 0 {
			for i, j := 0, len(nn)-1; i < j; i, j = i+1, j-1 {
				nn[i], nn[j] = nn[j], nn[i]
			}
		}
		area := signedArea(coords, nn)
		if area <= 0 {
			return nil, fmt.Errorf("cell %d is degenerate: %w", c, utils.ErrMeshInconsistent)
		}
		m.cellNodes[c] = nn
		m.cellArea[c] = area
		var cx, cy float64
		for _, n := range nn {
			cx += coords[n][0]
			cy += coords[n][1]
		}
		m.cellCentroid[c] = [2]float64{cx / float64(len(nn)), cy / float64(len(nn))}
	}

	// Collect edges; the owner of the counterclockwise orientation is the
	// left cell.
	edges := make(map[[2]int][]edgeRec)
	var keys [][2]int
	for c, nn := range m.cellNodes {
		for i := range nn {
			n1, n2 := nn[i], nn[(i+1)%len(nn)]
			key := sortedPair(n1, n2)
			if _, seen := edges[key]; !seen {
				keys = append(keys, key)
			}
			edges[key] = append(edges[key], edgeRec{cell: c, n1: n1, n2: n2})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	var bKeys, iKeys [][2]int
	for _, key := range keys {
		switch len(edges[key]) {
		case 1:
			bKeys = append(bKeys, key)
		case 2:
			iKeys = append(iKeys, key)
		default:
			return nil, fmt.Errorf("edge %v shared by %d cells: %w", key,
				len(edges[key]), utils.ErrMeshInconsistent)
		}
	}

	m.nbface = len(bKeys)
	m.nface = len(bKeys) + len(iKeys)
	m.faceCells = make([][2]int, m.nface)
	m.faceNodes = make([][2]int, m.nface)
	m.faceMetric = make([][3]float64, m.nface)
	m.faceMarker = make([]int, m.nbface)

	addFace := func(f int, left int, right int, n1, n2 int) error {
		dx := coords[n2][0] - coords[n1][0]
		dy := coords[n2][1] - coords[n1][1]
		length := math.Hypot(dx, dy)
		if length < 1e-14 {
			return fmt.Errorf("face %d has zero length: %w", f, utils.ErrMeshInconsistent)
		}
		m.faceCells[f] = [2]int{left, right}
		m.faceNodes[f] = [2]int{n1, n2}
		// A counterclockwise cell edge n1->n2 has outward normal (dy,-dx).
		m.faceMetric[f] = [3]float64{dy / length, -dx / length, length}
		m.cellFaces[left] = append(m.cellFaces[left], f)
		if right < m.nelem {
			m.cellFaces[right] = append(m.cellFaces[right], f)
		}
		return nil
	}

	for f, key := range bKeys {
		rec := edges[key][0]
		marker, ok := markers[key]
		if !ok {
			return nil, fmt.Errorf("boundary edge %v has no marker: %w", key,
				utils.ErrMeshInconsistent)
		}
		m.faceMarker[f] = marker
		if err := addFace(f, rec.cell, m.nelem+f, rec.n1, rec.n2); err != nil {
			return nil, err
		}
	}
	for i, key := range iKeys {
		f := m.nbface + i
		a, b := edges[key][0], edges[key][1]
		if err := addFace(f, a.cell, b.cell, a.n1, a.n2); err != nil {
			return nil, err
		}
	}

	if err := m.buildPeriodicMap(periodicMarker); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) buildPeriodicMap(marker int) error {
	m.periodicMap = make([]int, m.nbface)
	for f := range m.periodicMap {
		m.periodicMap[f] = -1
	}
	if marker < 0 {
		return nil
	}
	var group []int
	for f := 0; f < m.nbface; f++ {
		if m.faceMarker[f] == marker {
			group = append(group, f)
		}
	}
	if len(group) == 0 {
		return nil
	}
	if len(group)%2 != 0 {
		return fmt.Errorf("odd number of periodic faces: %w", utils.ErrMeshInconsistent)
	}

	const tol = 1e-9
	mid := func(f int) (x, y float64) {
		n1, n2 := m.faceNodes[f][0], m.faceNodes[f][1]
		return 0.5 * (m.coords[n1][0] + m.coords[n2][0]),
			0.5 * (m.coords[n1][1] + m.coords[n2][1])
	}
	// Translational periodicity: partner faces have opposite outward
	// normals and midpoints that agree along the face tangent.
	for _, f := range group {
		if m.periodicMap[f] >= 0 {
			continue
		}
		fx, fy := mid(f)
		nfx, nfy := m.faceMetric[f][0], m.faceMetric[f][1]
		found := -1
		for _, g := range group {
			if g == f || m.periodicMap[g] >= 0 {
				continue
			}
			ngx, ngy := m.faceMetric[g][0], m.faceMetric[g][1]
			if nfx*ngx+nfy*ngy > -1.0+1e-8 {
				continue
			}
			gx, gy := mid(g)
			// midpoint offset projected on the face tangent
			if math.Abs(nfy*(fx-gx)-nfx*(fy-gy)) < tol {
				found = g
				break
			}
		}
		if found < 0 {
			return fmt.Errorf("no periodic partner for boundary face %d: %w", f,
				utils.ErrMeshInconsistent)
		}
		m.periodicMap[f] = found
		m.periodicMap[found] = f
	}
	return nil
}

func sortedPair(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

func signedArea(coords [][2]float64, nodes []int) (area float64) {
	for i := range nodes {
		p, q := coords[nodes[i]], coords[nodes[(i+1)%len(nodes)]]
		area += p[0]*q[1] - q[0]*p[1]
	}
	return 0.5 * area
}
