package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/pbrtgo/internal/ply"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/specialistvlad/pbrtgo/internal/scene"
)

// knownShapes are the shape plugins the renderer accepts.
var knownShapes = map[string]bool{
	"sphere":       true,
	"disk":         true,
	"cylinder":     true,
	"cone":         true,
	"paraboloid":   true,
	"hyperboloid":  true,
	"curve":        true,
	"trianglemesh": true,
	"plymesh":      true,
	"heightfield":  true,
	"loopsubdiv":   true,
	"nurbs":        true,
}

// meshGeometry are the trianglemesh parameters moved into the PLY file.
var meshGeometry = []string{"P", "N", "uv", "st", "indices"}

func (s *Session) shape(ctx context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	if s.formatter != nil {
		if s.opts.ToPly && name == "trianglemesh" {
			return s.writePlyShape(ctx, log, d)
		}
		return s.formatter.Write(d)
	}

	if !knownShapes[name] {
		log.Error("Shape unknown. Ignoring it.", "shape", name)
		return errSkipped
	}
	gs := &s.api.graphics
	for _, m := range []string{gs.insideMedium, gs.outsideMedium} {
		if _, ok := s.api.namedMedia[m]; m != "" && !ok {
			log.Error("Named medium undefined.", "medium", m)
		}
	}

	sh := render.Shape{
		Entity:             entity(d),
		ObjectToWorld:      s.api.transforms[0],
		Material:           gs.materialName(),
		AreaLight:          gs.areaLight,
		ReverseOrientation: gs.reverseOrientation,
		InsideMedium:       gs.insideMedium,
		OutsideMedium:      gs.outsideMedium,
	}
	if s.api.transforms.animated() {
		log.Warn("Animated shape transform; using the start transform.", "shape", name)
	}

	if inst := s.api.currentInstance; inst != nil {
		if sh.AreaLight != "" {
			log.Warn("Area lights not supported with object instancing.", "shape", name)
			sh.AreaLight = ""
		}
		inst.Shapes = append(inst.Shapes, sh)
		return nil
	}
	s.api.scene.Shapes = append(s.api.scene.Shapes, sh)
	return nil
}

// writePlyShape stores a trianglemesh as <prefix>_NNNNN.ply and prints a
// plymesh shape referring to it. Meshes that cannot be converted are
// printed unchanged.
func (s *Session) writePlyShape(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	mesh := &ply.Mesh{
		Indices: d.Params.Ints("indices"),
		P:       d.Params.Point3s("P"),
		N:       d.Params.Normals("N"),
		UV:      uvValues(d.Params),
	}
	if err := mesh.Validate(); err != nil {
		log.Error("Unable to convert trianglemesh to PLY.", "error", err)
		return s.formatter.Write(d)
	}

	s.plyCount++
	filename := fmt.Sprintf("%s_%05d.ply", s.opts.PlyPrefix, s.plyCount)
	if err := ply.WriteFile(filename, mesh); err != nil {
		log.Error("Unable to write PLY file.", "path", filename, "error", err)
		return s.formatter.Write(d)
	}
	log.Debug("Wrote PLY mesh.", "path", filename, "vertices", len(mesh.P), "triangles", len(mesh.Indices)/3)

	params := scene.ParamSet{{Type: "string", Name: "filename", Strings: []string{filename}}}
	params = append(params, d.Params.Without(meshGeometry...)...)
	return s.formatter.Write(&scene.Directive{
		Name:    "Shape",
		Strings: []string{"plymesh"},
		Params:  params,
		Loc:     d.Loc,
	})
}

// uvValues returns the texture coordinates given as "uv" or "st", either as
// floats or point2s.
func uvValues(ps scene.ParamSet) []float64 {
	for _, name := range []string{"uv", "st"} {
		if p := ps.Find(name); p != nil && (p.Type == "float" || p.Type == "point2") {
			return p.Floats
		}
	}
	return nil
}
