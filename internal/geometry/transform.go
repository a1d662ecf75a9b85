// Package geometry holds the small amount of linear algebra the scene
// description needs: 4x4 transforms, points and axis-aligned bounds.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("singular matrix")

// Transform is an affine or projective 4x4 transform stored row-major.
type Transform struct {
	m [16]float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// FromRowMajor builds a transform from 16 row-major values.
func FromRowMajor(v [16]float64) Transform {
	return Transform{m: v}
}

// FromColumnMajor builds a transform from 16 column-major values, the layout
// used by the Transform and ConcatTransform directives.
func FromColumnMajor(v [16]float64) Transform {
	var t Transform
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t.m[r*4+c] = v[c*4+r]
		}
	}
	return t
}

// Translate returns a translation by d.
func Translate(d r3.Vec) Transform {
	t := Identity()
	t.m[3], t.m[7], t.m[11] = d.X, d.Y, d.Z
	return t
}

// Scale returns a non-uniform scale.
func Scale(x, y, z float64) Transform {
	t := Identity()
	t.m[0], t.m[5], t.m[10] = x, y, z
	return t
}

// Rotate returns a rotation of theta degrees about axis.
func Rotate(theta float64, axis r3.Vec) (Transform, error) {
	if r3.Norm(axis) == 0 {
		return Transform{}, fmt.Errorf("rotation axis has zero length")
	}
	a := r3.Unit(axis)
	rad := theta * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)

	t := Identity()
	t.m[0] = a.X*a.X + (1-a.X*a.X)*c
	t.m[1] = a.X*a.Y*(1-c) - a.Z*s
	t.m[2] = a.X*a.Z*(1-c) + a.Y*s
	t.m[4] = a.X*a.Y*(1-c) + a.Z*s
	t.m[5] = a.Y*a.Y + (1-a.Y*a.Y)*c
	t.m[6] = a.Y*a.Z*(1-c) - a.X*s
	t.m[8] = a.X*a.Z*(1-c) - a.Y*s
	t.m[9] = a.Y*a.Z*(1-c) + a.X*s
	t.m[10] = a.Z*a.Z + (1-a.Z*a.Z)*c
	return t, nil
}

// LookAt returns the world-to-camera transform for a camera at pos looking
// at look with the given up vector.
func LookAt(pos, look, up r3.Vec) (Transform, error) {
	dir := r3.Sub(look, pos)
	if r3.Norm(dir) == 0 {
		return Transform{}, fmt.Errorf("eye and look-at point are the same")
	}
	dir = r3.Unit(dir)
	if r3.Norm(r3.Cross(r3.Unit(up), dir)) == 0 {
		return Transform{}, fmt.Errorf("up vector (%g, %g, %g) and viewing direction (%g, %g, %g) are pointing in the same direction",
			up.X, up.Y, up.Z, dir.X, dir.Y, dir.Z)
	}
	right := r3.Unit(r3.Cross(r3.Unit(up), dir))
	newUp := r3.Cross(dir, right)

	cameraToWorld := FromRowMajor([16]float64{
		right.X, newUp.X, dir.X, pos.X,
		right.Y, newUp.Y, dir.Y, pos.Y,
		right.Z, newUp.Z, dir.Z, pos.Z,
		0, 0, 0, 1,
	})
	return cameraToWorld.Inverse()
}

func (t Transform) dense() *mat.Dense {
	v := t.m
	return mat.NewDense(4, 4, v[:])
}

func fromDense(d *mat.Dense) Transform {
	var t Transform
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t.m[r*4+c] = d.At(r, c)
		}
	}
	return t
}

// Mul returns t * u, so that u is applied first.
func (t Transform) Mul(u Transform) Transform {
	var out mat.Dense
	out.Mul(t.dense(), u.dense())
	return fromDense(&out)
}

// Inverse returns the inverse transform or ErrSingular.
func (t Transform) Inverse() (Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.dense()); err != nil {
		return Transform{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return fromDense(&inv), nil
}

// RowMajor returns the 16 matrix entries row by row.
func (t Transform) RowMajor() [16]float64 {
	return t.m
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t.m == Identity().m
}

// SwapsHandedness reports whether t flips the coordinate system handedness.
func (t Transform) SwapsHandedness() bool {
	m := t.m
	det := m[0]*(m[5]*m[10]-m[6]*m[9]) -
		m[1]*(m[4]*m[10]-m[6]*m[8]) +
		m[2]*(m[4]*m[9]-m[5]*m[8])
	return det < 0
}

// Point applies t to a point, including the homogeneous divide.
func (t Transform) Point(p r3.Vec) r3.Vec {
	m := t.m
	x := m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3]
	y := m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7]
	z := m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11]
	w := m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15]
	if w == 1 || w == 0 {
		return r3.Vec{X: x, Y: y, Z: z}
	}
	return r3.Scale(1/w, r3.Vec{X: x, Y: y, Z: z})
}

// Bounds transforms all eight corners of b and returns their bounds.
func (t Transform) Bounds(b Bounds) Bounds {
	if b.Empty() {
		return b
	}
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.Extend(t.Point(c))
	}
	return out
}
