package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/geometry"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/specialistvlad/pbrtgo/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// handler applies one directive. Returning errSkipped means the directive
// was reported and must not be echoed in cat mode.
type handler func(s *Session, ctx context.Context, log *slog.Logger, d *scene.Directive) error

// validIn lists the blocks a directive may appear in. Directives not listed
// are valid in both blocks.
var validIn = map[string]block{
	"Camera":         blockOptions,
	"Film":           blockOptions,
	"Sampler":        blockOptions,
	"PixelFilter":    blockOptions,
	"Integrator":     blockOptions,
	"Accelerator":    blockOptions,
	"TransformTimes": blockOptions,
	"WorldBegin":     blockOptions,

	"WorldEnd":           blockWorld,
	"AttributeBegin":     blockWorld,
	"AttributeEnd":       blockWorld,
	"TransformBegin":     blockWorld,
	"TransformEnd":       blockWorld,
	"Material":           blockWorld,
	"MakeNamedMaterial":  blockWorld,
	"NamedMaterial":      blockWorld,
	"Texture":            blockWorld,
	"LightSource":        blockWorld,
	"AreaLightSource":    blockWorld,
	"Shape":              blockWorld,
	"ReverseOrientation": blockWorld,
	"ObjectBegin":        blockWorld,
	"ObjectEnd":          blockWorld,
	"ObjectInstance":     blockWorld,
}

var handlers = map[string]handler{
	"Accelerator":        (*Session).accelerator,
	"ActiveTransform":    (*Session).activeTransform,
	"AttributeBegin":     (*Session).attributeBegin,
	"AttributeEnd":       (*Session).attributeEnd,
	"AreaLightSource":    (*Session).areaLightSource,
	"Camera":             (*Session).camera,
	"ConcatTransform":    (*Session).concatTransform,
	"CoordinateSystem":   (*Session).coordinateSystem,
	"CoordSysTransform":  (*Session).coordSysTransform,
	"Film":               (*Session).film,
	"Identity":           (*Session).identity,
	"Integrator":         (*Session).integrator,
	"LightSource":        (*Session).lightSource,
	"LookAt":             (*Session).lookAt,
	"MakeNamedMaterial":  (*Session).makeNamedMaterial,
	"MakeNamedMedium":    (*Session).makeNamedMedium,
	"Material":           (*Session).material,
	"MediumInterface":    (*Session).mediumInterface,
	"NamedMaterial":      (*Session).namedMaterial,
	"ObjectBegin":        (*Session).objectBegin,
	"ObjectEnd":          (*Session).objectEnd,
	"ObjectInstance":     (*Session).objectInstance,
	"PixelFilter":        (*Session).pixelFilter,
	"ReverseOrientation": (*Session).reverseOrientation,
	"Rotate":             (*Session).rotate,
	"Sampler":            (*Session).sampler,
	"Scale":              (*Session).scale,
	"Shape":              (*Session).shape,
	"Texture":            (*Session).texture,
	"Transform":          (*Session).transform,
	"TransformBegin":     (*Session).transformBegin,
	"TransformEnd":       (*Session).transformEnd,
	"TransformTimes":     (*Session).transformTimes,
	"Translate":          (*Session).translate,
	"WorldBegin":         (*Session).worldBegin,
	"WorldEnd":           (*Session).worldEnd,
}

// Apply implements scene.Target. Semantic problems are logged against the
// directive's location and the directive is ignored; only output failures
// abort the parse.
func (s *Session) Apply(ctx context.Context, d *scene.Directive) error {
	if s.released.Load() {
		return ErrReleased
	}
	log := ctxlog.At(ctx, d.Loc.File, d.Loc.Line)

	h, ok := handlers[d.Name]
	if !ok {
		log.Error("Unknown directive. Ignoring it.", "directive", d.Name)
		return nil
	}
	if !s.checkBlock(log, d.Name) {
		return nil
	}

	err := h(s, ctx, log, d)
	if errors.Is(err, errSkipped) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.formatter != nil && d.Name != "Shape" {
		return s.formatter.Write(d)
	}
	return nil
}

// checkBlock reports directives used outside the block they belong to.
func (s *Session) checkBlock(log *slog.Logger, name string) bool {
	if s.api.block == blockUninitialized {
		log.Error("Rendering subsystem is not initialized. Ignoring directive.", "directive", name)
		return false
	}
	want, ok := validIn[name]
	if !ok || want == s.api.block {
		return true
	}
	if want == blockOptions {
		log.Error("Options cannot be set inside world block. Ignoring directive.", "directive", name)
	} else {
		log.Error("Scene description must be inside world block. Ignoring directive.", "directive", name)
	}
	return false
}

func vec(n []float64) r3.Vec {
	return r3.Vec{X: n[0], Y: n[1], Z: n[2]}
}

// concat post-multiplies every active transform by t.
func (s *Session) concat(t geometry.Transform) {
	s.api.transforms.apply(s.api.activeBits, func(cur geometry.Transform) geometry.Transform {
		return cur.Mul(t)
	})
}

func (s *Session) identity(_ context.Context, _ *slog.Logger, _ *scene.Directive) error {
	s.api.transforms.apply(s.api.activeBits, func(geometry.Transform) geometry.Transform {
		return geometry.Identity()
	})
	return nil
}

func (s *Session) translate(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.concat(geometry.Translate(vec(d.Numbers)))
	return nil
}

func (s *Session) scale(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.concat(geometry.Scale(d.Numbers[0], d.Numbers[1], d.Numbers[2]))
	return nil
}

func (s *Session) rotate(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	t, err := geometry.Rotate(d.Numbers[0], vec(d.Numbers[1:]))
	if err != nil {
		log.Error("Invalid rotation. Ignoring it.", "error", err)
		return errSkipped
	}
	s.concat(t)
	return nil
}

func (s *Session) lookAt(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	t, err := geometry.LookAt(vec(d.Numbers[0:3]), vec(d.Numbers[3:6]), vec(d.Numbers[6:9]))
	if err != nil {
		log.Error("Invalid LookAt. Ignoring it.", "error", err)
		return errSkipped
	}
	s.concat(t)
	return nil
}

func (s *Session) concatTransform(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.concat(geometry.FromColumnMajor([16]float64(d.Numbers)))
	return nil
}

func (s *Session) transform(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	t := geometry.FromColumnMajor([16]float64(d.Numbers))
	s.api.transforms.apply(s.api.activeBits, func(geometry.Transform) geometry.Transform {
		return t
	})
	return nil
}

func (s *Session) coordinateSystem(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.namedCoordinateSystems[d.Strings[0]] = s.api.transforms
	return nil
}

func (s *Session) coordSysTransform(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	ts, ok := s.api.namedCoordinateSystems[d.Strings[0]]
	if !ok {
		log.Warn("Couldn't find named coordinate system.", "name", d.Strings[0])
		return errSkipped
	}
	s.api.transforms = ts
	return nil
}

func (s *Session) activeTransform(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	switch d.Strings[0] {
	case "StartTime":
		s.api.activeBits = startTransformBit
	case "EndTime":
		s.api.activeBits = endTransformBit
	default:
		s.api.activeBits = allTransformBits
	}
	return nil
}

func (s *Session) transformTimes(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.TransformStartTime = d.Numbers[0]
	s.api.scene.TransformEndTime = d.Numbers[1]
	return nil
}

func entity(d *scene.Directive) render.Entity {
	return render.Entity{Name: d.Strings[0], Params: d.Params.Clone(), Loc: d.Loc}
}

func (s *Session) film(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.Film = entity(d)
	return nil
}

func (s *Session) sampler(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.Sampler = entity(d)
	return nil
}

func (s *Session) pixelFilter(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.Filter = entity(d)
	return nil
}

func (s *Session) integrator(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.Integrator = entity(d)
	return nil
}

func (s *Session) accelerator(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.scene.Accelerator = entity(d)
	return nil
}

// camera records the camera and registers the "camera" coordinate system
// as the camera-to-world transform.
func (s *Session) camera(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	var cameraToWorld transformSet
	for i, t := range s.api.transforms {
		inv, err := t.Inverse()
		if err != nil {
			log.Error("Camera transform is not invertible. Ignoring camera.", "error", err)
			return errSkipped
		}
		cameraToWorld[i] = inv
	}
	s.api.namedCoordinateSystems["camera"] = cameraToWorld
	s.api.scene.Camera = render.Camera{Entity: entity(d), CameraToWorld: cameraToWorld[0]}
	return nil
}

func (s *Session) worldBegin(_ context.Context, _ *slog.Logger, _ *scene.Directive) error {
	s.api.block = blockWorld
	s.api.transforms = identitySet()
	s.api.activeBits = allTransformBits
	s.api.namedCoordinateSystems["world"] = s.api.transforms
	return nil
}

// worldEnd closes any open blocks, renders the collected scene unless
// reformatting, and returns to the options block.
func (s *Session) worldEnd(ctx context.Context, log *slog.Logger, _ *scene.Directive) error {
	for i := len(s.api.pushedAttributes) - 1; i >= 0; i-- {
		if s.api.pushedAttributes[i] {
			log.Warn("Missing end to AttributeBegin.")
		} else {
			log.Warn("Missing end to TransformBegin.")
		}
	}
	if s.api.currentInstance != nil {
		log.Warn("Missing end to ObjectBegin.", "instance", s.api.currentInstance.Name)
	}

	if s.formatter == nil {
		sc := s.api.scene
		sc.SearchDir = s.searchDir
		if err := s.renderer.Render(ctx, sc); err != nil {
			log.Error("Rendering failed.", "error", err)
		}
	}
	s.api.resetWorld()
	return nil
}

func (s *Session) attributeBegin(_ context.Context, _ *slog.Logger, _ *scene.Directive) error {
	s.api.pushedGraphics = append(s.api.pushedGraphics, s.api.graphics.clone())
	s.pushTransform(true)
	return nil
}

func (s *Session) attributeEnd(_ context.Context, log *slog.Logger, _ *scene.Directive) error {
	n := len(s.api.pushedAttributes)
	if n == 0 || !s.api.pushedAttributes[n-1] || len(s.api.pushedGraphics) == 0 {
		log.Error("Unmatched AttributeEnd encountered. Ignoring it.")
		return errSkipped
	}
	last := len(s.api.pushedGraphics) - 1
	s.api.graphics = s.api.pushedGraphics[last]
	s.api.pushedGraphics = s.api.pushedGraphics[:last]
	s.popTransform()
	return nil
}

func (s *Session) transformBegin(_ context.Context, _ *slog.Logger, _ *scene.Directive) error {
	s.pushTransform(false)
	return nil
}

func (s *Session) transformEnd(_ context.Context, log *slog.Logger, _ *scene.Directive) error {
	n := len(s.api.pushedAttributes)
	if n == 0 || s.api.pushedAttributes[n-1] {
		log.Error("Unmatched TransformEnd encountered. Ignoring it.")
		return errSkipped
	}
	s.popTransform()
	return nil
}

func (s *Session) pushTransform(attribute bool) {
	s.api.pushedTransforms = append(s.api.pushedTransforms, transformFrame{
		transforms: s.api.transforms,
		activeBits: s.api.activeBits,
	})
	s.api.pushedAttributes = append(s.api.pushedAttributes, attribute)
}

func (s *Session) popTransform() {
	last := len(s.api.pushedTransforms) - 1
	frame := s.api.pushedTransforms[last]
	s.api.transforms = frame.transforms
	s.api.activeBits = frame.activeBits
	s.api.pushedTransforms = s.api.pushedTransforms[:last]
	s.api.pushedAttributes = s.api.pushedAttributes[:last]
}

func (s *Session) material(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.graphics.material = material{name: d.Strings[0], params: d.Params.Clone()}
	s.api.graphics.namedMaterial = ""
	return nil
}

func (s *Session) makeNamedMaterial(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	typ := d.Params.String("type", "")
	if typ == "" {
		log.Error("No parameter string \"type\" found in MakeNamedMaterial. Ignoring it.", "name", name)
		return errSkipped
	}
	if _, ok := s.api.graphics.namedMaterials[name]; ok {
		log.Warn("Named material redefined.", "name", name)
	}
	s.api.graphics.namedMaterials[name] = material{name: typ, params: d.Params.Without("type")}
	return nil
}

func (s *Session) namedMaterial(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	if _, ok := s.api.graphics.namedMaterials[name]; !ok && s.formatter == nil {
		log.Error("NamedMaterial unknown. Ignoring it.", "name", name)
		return errSkipped
	}
	s.api.graphics.namedMaterial = name
	return nil
}

func (s *Session) texture(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name, typ, class := d.Strings[0], d.Strings[1], d.Strings[2]
	var defs map[string]texture
	switch typ {
	case "float":
		defs = s.api.graphics.floatTextures
	case "spectrum", "color":
		defs = s.api.graphics.spectrumTextures
	default:
		log.Error("Texture type unknown. Ignoring it.", "name", name, "type", typ)
		return errSkipped
	}
	if _, ok := defs[name]; ok {
		log.Warn("Texture being redefined.", "name", name, "type", typ)
	}
	defs[name] = texture{class: class, params: d.Params.Clone()}
	return nil
}

func (s *Session) makeNamedMedium(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	if d.Params.String("type", "") == "" {
		log.Error("No parameter string \"type\" found in MakeNamedMedium. Ignoring it.", "name", name)
		return errSkipped
	}
	s.api.namedMedia[name] = d.Params.Clone()
	return nil
}

func (s *Session) mediumInterface(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	inside := d.Strings[0]
	outside := inside
	if len(d.Strings) > 1 {
		outside = d.Strings[1]
	}
	s.api.graphics.insideMedium = inside
	s.api.graphics.outsideMedium = outside
	return nil
}

func (s *Session) lightSource(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	if s.formatter == nil {
		s.api.scene.Lights = append(s.api.scene.Lights, render.Light{
			Entity:       entity(d),
			LightToWorld: s.api.transforms[0],
		})
	}
	return nil
}

func (s *Session) areaLightSource(_ context.Context, _ *slog.Logger, d *scene.Directive) error {
	s.api.graphics.areaLight = d.Strings[0]
	s.api.graphics.areaLightParams = d.Params.Clone()
	return nil
}

func (s *Session) reverseOrientation(_ context.Context, _ *slog.Logger, _ *scene.Directive) error {
	s.api.graphics.reverseOrientation = !s.api.graphics.reverseOrientation
	return nil
}

func (s *Session) objectBegin(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	if s.api.currentInstance != nil {
		log.Error("ObjectBegin called inside of instance definition. Ignoring it.", "name", name)
		return errSkipped
	}
	if _, ok := s.api.scene.Instances[name]; ok {
		log.Warn("Instance being redefined.", "name", name)
	}
	s.api.pushedGraphics = append(s.api.pushedGraphics, s.api.graphics.clone())
	s.pushTransform(true)
	inst := &render.Instance{Name: name}
	s.api.scene.Instances[name] = inst
	s.api.currentInstance = inst
	return nil
}

func (s *Session) objectEnd(ctx context.Context, log *slog.Logger, d *scene.Directive) error {
	if s.api.currentInstance == nil {
		log.Error("ObjectEnd called outside of instance definition. Ignoring it.")
		return errSkipped
	}
	s.api.currentInstance = nil
	return s.attributeEnd(ctx, log, d)
}

func (s *Session) objectInstance(_ context.Context, log *slog.Logger, d *scene.Directive) error {
	name := d.Strings[0]
	if s.api.currentInstance != nil {
		log.Error("ObjectInstance can't be called inside instance definition. Ignoring it.", "name", name)
		return errSkipped
	}
	if _, ok := s.api.scene.Instances[name]; !ok && s.formatter == nil {
		log.Error("Unable to find instance. Ignoring it.", "name", name)
		return errSkipped
	}
	s.api.scene.InstanceUses = append(s.api.scene.InstanceUses, render.InstanceUse{
		Name:            name,
		InstanceToWorld: s.api.transforms[0],
		Loc:             d.Loc,
	})
	return nil
}
