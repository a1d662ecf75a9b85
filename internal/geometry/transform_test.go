package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func requireVecNear(t *testing.T, want, got r3.Vec) {
	t.Helper()
	const eps = 1e-9
	require.InDelta(t, want.X, got.X, eps, "X")
	require.InDelta(t, want.Y, got.Y, eps, "Y")
	require.InDelta(t, want.Z, got.Z, eps, "Z")
}

func TestTransform_Compose(t *testing.T) {
	t.Parallel()

	tr := Translate(r3.Vec{X: 1, Y: 2, Z: 3}).Mul(Scale(2, 2, 2))
	requireVecNear(t, r3.Vec{X: 3, Y: 4, Z: 5}, tr.Point(r3.Vec{X: 1, Y: 1, Z: 1}))

	inv, err := tr.Inverse()
	require.NoError(t, err)
	requireVecNear(t, r3.Vec{X: 1, Y: 1, Z: 1}, inv.Point(r3.Vec{X: 3, Y: 4, Z: 5}))
}

func TestTransform_Rotate(t *testing.T) {
	t.Parallel()

	rot, err := Rotate(90, r3.Vec{Z: 1})
	require.NoError(t, err)
	requireVecNear(t, r3.Vec{Y: 1}, rot.Point(r3.Vec{X: 1}))

	_, err = Rotate(45, r3.Vec{})
	require.Error(t, err)
}

func TestTransform_ColumnMajor(t *testing.T) {
	t.Parallel()

	// Translation lives in the last four entries of a column-major matrix.
	tr := FromColumnMajor([16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 6, 7, 1})
	requireVecNear(t, r3.Vec{X: 5, Y: 6, Z: 7}, tr.Point(r3.Vec{}))
}

func TestTransform_Singular(t *testing.T) {
	t.Parallel()

	_, err := Scale(0, 1, 1).Inverse()
	require.ErrorIs(t, err, ErrSingular)
	require.True(t, Scale(-1, 1, 1).SwapsHandedness())
	require.False(t, Scale(1, 1, 1).SwapsHandedness())
}

func TestLookAt(t *testing.T) {
	t.Parallel()

	worldToCamera, err := LookAt(r3.Vec{Z: -5}, r3.Vec{}, r3.Vec{Y: 1})
	require.NoError(t, err)
	// The look-at point lies on the camera's +z axis.
	requireVecNear(t, r3.Vec{Z: 5}, worldToCamera.Point(r3.Vec{}))

	_, err = LookAt(r3.Vec{}, r3.Vec{}, r3.Vec{Y: 1})
	require.Error(t, err)

	_, err = LookAt(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Y: 1})
	require.Error(t, err)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	b := EmptyBounds()
	require.True(t, b.Empty())

	b = BoundsOf(r3.Vec{X: -1, Y: 0, Z: 2}, r3.Vec{X: 1, Y: 3, Z: -2})
	require.False(t, b.Empty())
	require.Equal(t, r3.Vec{X: -1, Y: 0, Z: -2}, b.Min)
	require.Equal(t, r3.Vec{X: 1, Y: 3, Z: 2}, b.Max)
	require.Equal(t, b, b.Union(EmptyBounds()))
	require.Equal(t, b, EmptyBounds().Union(b))

	moved := Translate(r3.Vec{X: 10}).Bounds(b)
	require.Equal(t, 9.0, moved.Min.X)
	require.Equal(t, 11.0, moved.Max.X)

	require.True(t, math.IsInf(EmptyBounds().Min.X, 1))
	require.Equal(t, r3.Vec{}, EmptyBounds().Diagonal())
}
