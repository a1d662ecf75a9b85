package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/pbrtgo/internal/fsutil"
	"github.com/specialistvlad/pbrtgo/internal/geometry"
	"github.com/specialistvlad/pbrtgo/internal/ply"
	"github.com/specialistvlad/pbrtgo/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownShape is returned for shapes whose extent cannot be computed.
var ErrUnknownShape = errors.New("unknown shape")

// ObjectBounds returns the object-space bounds of a shape. Relative
// plymesh filenames resolve against searchDir.
func ObjectBounds(name string, ps scene.ParamSet, searchDir string) (geometry.Bounds, error) {
	switch name {
	case "sphere":
		r := ps.Float("radius", 1)
		zmin := ps.Float("zmin", -r)
		zmax := ps.Float("zmax", r)
		return geometry.BoundsOf(r3.Vec{X: -r, Y: -r, Z: zmin}, r3.Vec{X: r, Y: r, Z: zmax}), nil
	case "disk":
		r := ps.Float("radius", 1)
		h := ps.Float("height", 0)
		return geometry.BoundsOf(r3.Vec{X: -r, Y: -r, Z: h}, r3.Vec{X: r, Y: r, Z: h}), nil
	case "cylinder":
		r := ps.Float("radius", 1)
		return geometry.BoundsOf(r3.Vec{X: -r, Y: -r, Z: ps.Float("zmin", -1)}, r3.Vec{X: r, Y: r, Z: ps.Float("zmax", 1)}), nil
	case "cone":
		r := ps.Float("radius", 1)
		return geometry.BoundsOf(r3.Vec{X: -r, Y: -r, Z: 0}, r3.Vec{X: r, Y: r, Z: ps.Float("height", 1)}), nil
	case "paraboloid":
		r := ps.Float("radius", 1)
		return geometry.BoundsOf(r3.Vec{X: -r, Y: -r, Z: ps.Float("zmin", 0)}, r3.Vec{X: r, Y: r, Z: ps.Float("zmax", 1)}), nil
	case "hyperboloid":
		p1 := ps.Point3("p1", r3.Vec{})
		p2 := ps.Point3("p2", r3.Vec{X: 1, Y: 1, Z: 1})
		rmax := math.Max(math.Hypot(p1.X, p1.Y), math.Hypot(p2.X, p2.Y))
		return geometry.BoundsOf(
			r3.Vec{X: -rmax, Y: -rmax, Z: math.Min(p1.Z, p2.Z)},
			r3.Vec{X: rmax, Y: rmax, Z: math.Max(p1.Z, p2.Z)},
		), nil
	case "trianglemesh", "loopsubdiv", "curve", "nurbs":
		pts := ps.Point3s("P")
		if len(pts) == 0 {
			return geometry.EmptyBounds(), fmt.Errorf("%s shape has no \"P\" parameter", name)
		}
		return geometry.BoundsOf(pts...), nil
	case "heightfield":
		pz := ps.Floats("Pz")
		if len(pz) == 0 {
			return geometry.EmptyBounds(), fmt.Errorf("heightfield shape has no \"Pz\" parameter")
		}
		zmin, zmax := math.Inf(1), math.Inf(-1)
		for _, z := range pz {
			zmin = math.Min(zmin, z)
			zmax = math.Max(zmax, z)
		}
		return geometry.BoundsOf(r3.Vec{Z: zmin}, r3.Vec{X: 1, Y: 1, Z: zmax}), nil
	case "plymesh":
		filename := ps.String("filename", "")
		if filename == "" {
			return geometry.EmptyBounds(), fmt.Errorf("plymesh shape has no \"filename\" parameter")
		}
		pts, err := ply.ReadPositions(fsutil.ResolvePath(searchDir, filename))
		if err != nil {
			return geometry.EmptyBounds(), fmt.Errorf("plymesh %q: %w", filename, err)
		}
		return geometry.BoundsOf(pts...), nil
	}
	return geometry.EmptyBounds(), fmt.Errorf("%w %q", ErrUnknownShape, name)
}
