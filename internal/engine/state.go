package engine

import (
	"maps"

	"github.com/specialistvlad/pbrtgo/internal/geometry"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/specialistvlad/pbrtgo/internal/scene"
)

type block int

const (
	blockUninitialized block = iota
	blockOptions
	blockWorld
)

func (b block) String() string {
	switch b {
	case blockOptions:
		return "options"
	case blockWorld:
		return "world"
	default:
		return "uninitialized"
	}
}

// Transform slots for motion blur: one at the start time, one at the end.
const (
	startTransformBit = 1 << 0
	endTransformBit   = 1 << 1
	allTransformBits  = startTransformBit | endTransformBit
	maxTransforms     = 2
)

// transformSet holds the current transform for each time slot.
type transformSet [maxTransforms]geometry.Transform

func identitySet() transformSet {
	return transformSet{geometry.Identity(), geometry.Identity()}
}

// apply replaces every slot selected by bits with fn of its value.
func (ts *transformSet) apply(bits int, fn func(geometry.Transform) geometry.Transform) {
	for i := range ts {
		if bits&(1<<i) != 0 {
			ts[i] = fn(ts[i])
		}
	}
}

// animated reports whether the start and end transforms differ.
func (ts transformSet) animated() bool {
	return ts[0] != ts[1]
}

// material is a material selection with its parameters.
type material struct {
	name   string
	params scene.ParamSet
}

// texture is a named texture definition.
type texture struct {
	class  string
	params scene.ParamSet
}

// graphicsState is the attribute state saved by AttributeBegin.
type graphicsState struct {
	material           material
	namedMaterial      string
	namedMaterials     map[string]material
	floatTextures      map[string]texture
	spectrumTextures   map[string]texture
	areaLight          string
	areaLightParams    scene.ParamSet
	reverseOrientation bool
	insideMedium       string
	outsideMedium      string
}

func newGraphicsState() graphicsState {
	return graphicsState{
		material:         material{name: "matte"},
		namedMaterials:   make(map[string]material),
		floatTextures:    make(map[string]texture),
		spectrumTextures: make(map[string]texture),
	}
}

// clone copies gs so that definitions made inside an attribute block do not
// leak out of it.
func (gs graphicsState) clone() graphicsState {
	gs.namedMaterials = maps.Clone(gs.namedMaterials)
	gs.floatTextures = maps.Clone(gs.floatTextures)
	gs.spectrumTextures = maps.Clone(gs.spectrumTextures)
	return gs
}

// materialName is the material attached to shapes created now.
func (gs *graphicsState) materialName() string {
	if gs.namedMaterial != "" {
		return gs.namedMaterial
	}
	return gs.material.name
}

// transformFrame is a saved transform stack entry.
type transformFrame struct {
	transforms transformSet
	activeBits int
}

// apiState is the scene-description state machine.
type apiState struct {
	block      block
	transforms transformSet
	activeBits int

	namedCoordinateSystems map[string]transformSet
	namedMedia             map[string]scene.ParamSet

	graphics         graphicsState
	pushedGraphics   []graphicsState
	pushedTransforms []transformFrame
	// pushedAttributes records, for each open transform frame, whether it
	// was opened by AttributeBegin.
	pushedAttributes []bool

	scene           *render.Scene
	currentInstance *render.Instance
}

func newAPIState() *apiState {
	return &apiState{
		block:                  blockOptions,
		transforms:             identitySet(),
		activeBits:             allTransformBits,
		namedCoordinateSystems: make(map[string]transformSet),
		namedMedia:             make(map[string]scene.ParamSet),
		graphics:               newGraphicsState(),
		scene:                  render.NewScene(),
	}
}

// resetWorld returns to the options block after WorldEnd. Named media and
// coordinate systems other than the camera's survive; everything collected
// for the finished scene is dropped.
func (a *apiState) resetWorld() {
	a.block = blockOptions
	a.transforms = identitySet()
	a.activeBits = allTransformBits
	delete(a.namedCoordinateSystems, "world")
	a.graphics = newGraphicsState()
	a.pushedGraphics = nil
	a.pushedTransforms = nil
	a.pushedAttributes = nil
	a.currentInstance = nil
	a.scene = render.NewScene()
}
