package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Bounds is an axis-aligned bounding box. The zero value is a degenerate box
// at the origin; use EmptyBounds for an empty accumulator.
type Bounds struct {
	Min, Max r3.Vec
}

// EmptyBounds returns a box that contains nothing and absorbs the first
// point it is extended with.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoundsOf returns the bounds of a set of points.
func BoundsOf(points ...r3.Vec) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// Empty reports whether b contains no points.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns b grown to include p.
func (b Bounds) Extend(p r3.Vec) Bounds {
	return Bounds{
		Min: r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Corners returns the eight corners of b.
func (b Bounds) Corners() [8]r3.Vec {
	var c [8]r3.Vec
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}

// Diagonal returns the vector from Min to Max.
func (b Bounds) Diagonal() r3.Vec {
	if b.Empty() {
		return r3.Vec{}
	}
	return r3.Sub(b.Max, b.Min)
}
