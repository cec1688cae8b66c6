package core

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Mat4 is a 4x4 row-major affine transform, the matrix_world layout most
// 3D content tools export.
type Mat4 [4][4]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewTranslation returns a transform that translates points by (x, y, z).
func NewTranslation(x, y, z float64) Mat4 {
	m := Identity()
	m[0][3] = x
	m[1][3] = y
	m[2][3] = z
	return m
}

// MulPoint applies the transform to a point (w=1). Transforms are assumed
// affine, so no perspective divide is performed.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// Mul returns the matrix product m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Inverse returns the inverse transform. It fails for singular (or nearly
// singular) matrices, which cannot serve as a world transform because the
// world<->local mapping must go both ways.
func (m Mat4) Inverse() (Mat4, error) {
	a := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a.Set(i, j, m[i][j])
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Mat4{}, errors.Wrap(err, "inverting transform")
	}

	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, nil
}
