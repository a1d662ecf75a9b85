package render

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/fsutil"
	"github.com/specialistvlad/pbrtgo/internal/geometry"
	"github.com/specialistvlad/pbrtgo/internal/parallel"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Report summarizes a render job. It is written next to the image path.
type Report struct {
	Image        string        `yaml:"image"`
	Resolution   [2]int        `yaml:"resolution"`
	Quick        bool          `yaml:"quick,omitempty"`
	Camera       string        `yaml:"camera"`
	Eye          [3]float64    `yaml:"eye"`
	Sampler      string        `yaml:"sampler"`
	PixelSamples int           `yaml:"pixel_samples"`
	Filter       string        `yaml:"filter"`
	Integrator   string        `yaml:"integrator"`
	MaxDepth     int           `yaml:"max_depth"`
	Accelerator  string        `yaml:"accelerator"`
	Threads      int           `yaml:"threads"`
	Shapes       int           `yaml:"shapes"`
	Instances    int           `yaml:"instances"`
	Lights       int           `yaml:"lights"`
	AreaLights   int           `yaml:"area_lights"`
	WorldBounds  *BoundsReport `yaml:"world_bounds,omitempty"`
	Unbounded    []string      `yaml:"unbounded,omitempty"`
}

// BoundsReport is the YAML form of geometry.Bounds.
type BoundsReport struct {
	Min [3]float64 `yaml:"min,flow"`
	Max [3]float64 `yaml:"max,flow"`
}

// ReportRenderer is the bundled Renderer. It resolves the output settings,
// computes world bounds on the worker pool, and writes a YAML report.
type ReportRenderer struct {
	pool     *parallel.Pool
	settings Settings
}

// NewReportRenderer returns a ReportRenderer using pool for per-shape work.
func NewReportRenderer(pool *parallel.Pool, settings Settings) *ReportRenderer {
	return &ReportRenderer{pool: pool, settings: settings}
}

// placement is a shape positioned in world space, possibly through an
// instance.
type placement struct {
	shape   Shape
	toWorld geometry.Transform
}

// Render builds the report and writes it to <image>.yaml.
func (r *ReportRenderer) Render(ctx context.Context, sc *Scene) error {
	logger := ctxlog.FromContext(ctx)
	report, err := r.Report(ctx, sc)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode render report: %w", err)
	}
	path := fsutil.ReplaceExtension(report.Image, ".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write render report: %w", err)
	}
	logger.Info("Render report written.", "path", path, "shapes", report.Shapes, "lights", report.Lights)
	return nil
}

// Report resolves the scene into a Report without writing it.
func (r *ReportRenderer) Report(ctx context.Context, sc *Scene) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	film := ResolveFilm(ctx, sc.Film, r.settings)

	placed := flatten(sc)
	logger.Debug("Computing scene bounds.", "shapes", len(placed), "workers", r.pool.Workers())

	bounds := make([]geometry.Bounds, len(placed))
	errs := make([]error, len(placed))
	err := r.pool.For(ctx, len(placed), func(_ context.Context, i int) error {
		p := placed[i]
		b, err := ObjectBounds(p.shape.Name, p.shape.Params, sc.SearchDir)
		if err != nil {
			bounds[i], errs[i] = geometry.EmptyBounds(), err
			return nil
		}
		bounds[i] = p.toWorld.Bounds(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute scene bounds: %w", err)
	}

	report := &Report{
		Image:        film.Filename,
		Resolution:   [2]int{film.XResolution, film.YResolution},
		Quick:        r.settings.QuickRender,
		Camera:       sc.Camera.Name,
		Sampler:      sc.Sampler.Name,
		PixelSamples: ResolvePixelSamples(sc.Sampler, r.settings),
		Filter:       sc.Filter.Name,
		Integrator:   sc.Integrator.Name,
		MaxDepth:     ResolveMaxDepth(sc.Integrator),
		Accelerator:  sc.Accelerator.Name,
		Threads:      r.pool.Workers(),
		Shapes:       len(placed),
		Instances:    len(sc.InstanceUses),
		Lights:       len(sc.Lights),
	}
	eye := sc.Camera.CameraToWorld.Point(r3.Vec{})
	report.Eye = [3]float64{eye.X, eye.Y, eye.Z}

	world := geometry.EmptyBounds()
	for i, p := range placed {
		if p.shape.AreaLight != "" {
			report.AreaLights++
		}
		if errs[i] != nil {
			if !errors.Is(errs[i], ErrUnknownShape) {
				ctxlog.At(ctx, p.shape.Loc.File, p.shape.Loc.Line).Warn("Shape bounds unavailable.", "shape", p.shape.Name, "error", errs[i])
			}
			report.Unbounded = append(report.Unbounded, p.shape.Name)
			continue
		}
		world = world.Union(bounds[i])
	}
	if !world.Empty() {
		report.WorldBounds = &BoundsReport{
			Min: [3]float64{world.Min.X, world.Min.Y, world.Min.Z},
			Max: [3]float64{world.Max.X, world.Max.Y, world.Max.Z},
		}
	}
	return report, nil
}

// flatten expands instance uses into world-space placements.
func flatten(sc *Scene) []placement {
	placed := make([]placement, 0, len(sc.Shapes))
	for _, s := range sc.Shapes {
		placed = append(placed, placement{shape: s, toWorld: s.ObjectToWorld})
	}
	for _, use := range sc.InstanceUses {
		inst, ok := sc.Instances[use.Name]
		if !ok {
			continue
		}
		for _, s := range inst.Shapes {
			placed = append(placed, placement{shape: s, toWorld: use.InstanceToWorld.Mul(s.ObjectToWorld)})
		}
	}
	return placed
}
