// Package render defines the resolved scene handed over at WorldEnd and the
// Renderer that consumes it.
package render

import (
	"context"

	"github.com/specialistvlad/pbrtgo/internal/geometry"
	"github.com/specialistvlad/pbrtgo/internal/scene"
)

// Renderer turns a resolved scene into output.
type Renderer interface {
	Render(ctx context.Context, sc *Scene) error
}

// Entity is a named plugin selection with its parameters, e.g. a Film.
type Entity struct {
	Name   string
	Params scene.ParamSet
	Loc    scene.Loc
}

// Camera is the scene camera and its placement.
type Camera struct {
	Entity
	CameraToWorld geometry.Transform
}

// Shape is a shape instance with its resolved attribute state.
type Shape struct {
	Entity
	ObjectToWorld      geometry.Transform
	Material           string
	AreaLight          string
	ReverseOrientation bool
	InsideMedium       string
	OutsideMedium      string
}

// Light is a light source placed in the world.
type Light struct {
	Entity
	LightToWorld geometry.Transform
}

// Instance is a named group of shapes defined by ObjectBegin/ObjectEnd.
// Shape transforms are relative to the instance.
type Instance struct {
	Name   string
	Shapes []Shape
}

// InstanceUse places an instance in the world.
type InstanceUse struct {
	Name            string
	InstanceToWorld geometry.Transform
	Loc             scene.Loc
}

// Scene is everything collected between WorldBegin and WorldEnd plus the
// options block that preceded it.
type Scene struct {
	Camera      Camera
	Film        Entity
	Sampler     Entity
	Filter      Entity
	Integrator  Entity
	Accelerator Entity

	Lights       []Light
	Shapes       []Shape
	Instances    map[string]*Instance
	InstanceUses []InstanceUse

	TransformStartTime float64
	TransformEndTime   float64

	// SearchDir resolves relative file names such as plymesh filenames.
	SearchDir string
}

// NewScene returns a scene populated with the default plugin selections.
func NewScene() *Scene {
	return &Scene{
		Camera:             Camera{Entity: Entity{Name: "perspective"}, CameraToWorld: geometry.Identity()},
		Film:               Entity{Name: "image"},
		Sampler:            Entity{Name: "halton"},
		Filter:             Entity{Name: "box"},
		Integrator:         Entity{Name: "path"},
		Accelerator:        Entity{Name: "bvh"},
		Instances:          make(map[string]*Instance),
		TransformStartTime: 0,
		TransformEndTime:   1,
	}
}
