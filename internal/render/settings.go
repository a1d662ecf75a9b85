package render

import (
	"context"

	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
)

const (
	defaultImageFile    = "pbrt.exr"
	defaultXResolution  = 1280
	defaultYResolution  = 720
	defaultPixelSamples = 16
	defaultMaxDepth     = 5
)

// Settings carries the command-line overrides that apply to every render.
type Settings struct {
	ImageFile   string
	QuickRender bool
}

// FilmSettings is the resolved output description.
type FilmSettings struct {
	Filename    string
	XResolution int
	YResolution int
}

// ResolveFilm applies the command-line output file and quick-render
// reduction to the scene's film parameters.
func ResolveFilm(ctx context.Context, film Entity, s Settings) FilmSettings {
	filename := film.Params.String("filename", "")
	if s.ImageFile != "" {
		if filename != "" && filename != s.ImageFile {
			ctxlog.At(ctx, film.Loc.File, film.Loc.Line).Warn("Output filename supplied on command line is overriding filename provided in scene description file.",
				"command_line", s.ImageFile, "scene", filename)
		}
		filename = s.ImageFile
	}
	if filename == "" {
		filename = defaultImageFile
	}

	xres := film.Params.Int("xresolution", defaultXResolution)
	yres := film.Params.Int("yresolution", defaultYResolution)
	if s.QuickRender {
		xres = max(1, xres/4)
		yres = max(1, yres/4)
	}
	return FilmSettings{Filename: filename, XResolution: xres, YResolution: yres}
}

// ResolvePixelSamples returns the sampler's sample count, forced to one for
// quick renders.
func ResolvePixelSamples(sampler Entity, s Settings) int {
	if s.QuickRender {
		return 1
	}
	return sampler.Params.Int("pixelsamples", defaultPixelSamples)
}

// ResolveMaxDepth returns the integrator's maximum path depth.
func ResolveMaxDepth(integrator Entity) int {
	return integrator.Params.Int("maxdepth", defaultMaxDepth)
}
