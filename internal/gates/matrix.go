package gates

import "math/cmplx"

// Matrix is a dense 2x2 complex matrix in row-major order.
type Matrix [2][2]complex128

// Apply returns the product of m with the column vector (a0, a1).
func (m Matrix) Apply(a0, a1 complex128) (complex128, complex128) {
	return m[0][0]*a0 + m[0][1]*a1, m[1][0]*a0 + m[1][1]*a1
}

// Mul returns m * o.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := range 2 {
		for j := range 2 {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return r
}

// Adjoint returns the conjugate transpose of m.
func (m Matrix) Adjoint() Matrix {
	return Matrix{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Diagonal reports whether both off-diagonal entries are zero.
func (m Matrix) Diagonal() bool {
	return m[0][1] == 0 && m[1][0] == 0
}

// ApproxEqual reports whether every entry of m is within tol of o.
func (m Matrix) ApproxEqual(o Matrix, tol float64) bool {
	for i := range 2 {
		for j := range 2 {
			if cmplx.Abs(m[i][j]-o[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// Identity is the 2x2 identity matrix.
var Identity = Matrix{{1, 0}, {0, 1}}
