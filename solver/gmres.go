package solver

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// gmres solves A x = b by restarted GMRES on a CSR matrix, returning the
// solution in x (which also provides the initial guess) and the achieved
// relative residual.
func gmres(A *sparse.CSR, b, x []float64, tol float64, restart, maxOuter int) float64 {
	n := len(b)
	r := make([]float64, n)
	w := make([]float64, n)

	bnorm := norm2(b)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return 0
	}

	relres := 1.0
	for outer := 0; outer < maxOuter; outer++ {
		// r = b - A x
		matVec(A, x, r)
		for i := 0; i < n; i++ {
			r[i] = b[i] - r[i]
		}
		beta := norm2(r)
		relres = beta / bnorm
		if relres < tol {
			return relres
		}

		V := make([][]float64, restart+1)
		V[0] = make([]float64, n)
		for i := 0; i < n; i++ {
			V[0][i] = r[i] / beta
		}
		H := mat.NewDense(restart+1, restart, nil)

		m := restart
		for j := 0; j < restart; j++ {
			matVec(A, V[j], w)
			// modified Gram-Schmidt
			for i := 0; i <= j; i++ {
				h := dot(V[i], w)
				H.Set(i, j, h)
				for k := 0; k < n; k++ {
					w[k] -= h * V[i][k]
				}
			}
			hj1 := norm2(w)
			H.Set(j+1, j, hj1)
			if hj1 < 1e-14 {
				m = j + 1
				break
			}
			V[j+1] = make([]float64, n)
			for k := 0; k < n; k++ {
				V[j+1][k] = w[k] / hj1
			}
		}

		// least squares: min || beta e1 - H y ||
		Hm := H.Slice(0, m+1, 0, m).(*mat.Dense)
		g := mat.NewVecDense(m+1, nil)
		g.SetVec(0, beta)
		var y mat.VecDense
		if err := y.SolveVec(Hm, g); err != nil {
			return relres
		}
		for j := 0; j < m; j++ {
			yj := y.AtVec(j)
			for k := 0; k < n; k++ {
				x[k] += yj * V[j][k]
			}
		}
	}

	matVec(A, x, r)
	for i := 0; i < n; i++ {
		r[i] = b[i] - r[i]
	}
	return norm2(r) / bnorm
}

func matVec(A *sparse.CSR, x, y []float64) {
	raw := A.RawMatrix()
	for i := 0; i < raw.I; i++ {
		var s float64
		for idx := raw.Indptr[i]; idx < raw.Indptr[i+1]; idx++ {
			s += raw.Data[idx] * x[raw.Ind[idx]]
		}
		y[i] = s
	}
}

func norm2(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
