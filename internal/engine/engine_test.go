package engine

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/ply"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sessions are process-wide, so tests in this package do not run in
// parallel.

type captureRenderer struct {
	scenes []*render.Scene
}

func (c *captureRenderer) Render(_ context.Context, sc *render.Scene) error {
	c.scenes = append(c.scenes, sc)
	return nil
}

func testContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), &buf
}

func writeScene(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.pbrt")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func acquire(t *testing.T, ctx context.Context, opts config.Options, deps Deps) *Session {
	t.Helper()
	s, err := Acquire(ctx, &opts, deps)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func requirePoint(t *testing.T, want, got r3.Vec) {
	t.Helper()
	require.InDelta(t, want.X, got.X, 1e-9)
	require.InDelta(t, want.Y, got.Y, 1e-9)
	require.InDelta(t, want.Z, got.Z, 1e-9)
}

func TestAcquireRelease(t *testing.T) {
	ctx, _ := testContext()

	s, err := Acquire(ctx, nil, Deps{Renderer: &captureRenderer{}})
	require.NoError(t, err)
	require.Same(t, s, Active())
	require.Equal(t, "render", s.Mode())

	_, err = Acquire(ctx, nil, Deps{})
	require.ErrorIs(t, err, ErrAlreadyActive)

	s.Release()
	s.Release()
	require.Nil(t, Active())
	require.ErrorIs(t, s.ParseFile(ctx, "scene.pbrt"), ErrReleased)

	again, err := Acquire(ctx, nil, Deps{})
	require.NoError(t, err)
	again.Release()
}

func TestAcquire_Threads(t *testing.T) {
	ctx, _ := testContext()

	opts := config.Defaults()
	opts.NThreads = 3
	s := acquire(t, ctx, opts, Deps{})
	require.Equal(t, 3, s.Threads())
	s.Release()

	opts.NThreads = config.AutoThreads
	s = acquire(t, ctx, opts, Deps{})
	require.Positive(t, s.Threads())
}

func TestAcquire_Modes(t *testing.T) {
	ctx, _ := testContext()

	testCases := []struct {
		name string
		opts config.Options
		want string
	}{
		{name: "render", opts: config.Options{}, want: "render"},
		{name: "cat", opts: config.Options{Cat: true}, want: "cat"},
		{name: "toply", opts: config.Options{ToPly: true}, want: "toply"},
		{name: "toply wins", opts: config.Options{Cat: true, ToPly: true}, want: "toply"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := acquire(t, ctx, tc.opts, Deps{Stdout: &bytes.Buffer{}})
			require.Equal(t, tc.want, s.Mode())
			s.Release()
		})
	}
}

func TestRelease_InsideWorldBlock(t *testing.T) {
	ctx, logs := testContext()
	s := acquire(t, ctx, config.Defaults(), Deps{Renderer: &captureRenderer{}})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, "WorldBegin\n")))
	s.Release()
	require.Contains(t, logs.String(), "released while inside world block")
}

func TestParseFile_Stdin(t *testing.T) {
	ctx, _ := testContext()
	rec := &captureRenderer{}
	s := acquire(t, ctx, config.Defaults(), Deps{
		Renderer: rec,
		Stdin:    strings.NewReader("WorldBegin Shape \"sphere\" WorldEnd"),
	})

	require.NoError(t, s.ParseFile(ctx, "-"))
	require.Len(t, rec.scenes, 1)
	require.Len(t, rec.scenes[0].Shapes, 1)
	require.Equal(t, "", rec.scenes[0].SearchDir)
}

func TestParseFile_MissingFile(t *testing.T) {
	ctx, _ := testContext()
	s := acquire(t, ctx, config.Defaults(), Deps{Renderer: &captureRenderer{}})

	err := s.ParseFile(ctx, filepath.Join(t.TempDir(), "missing.pbrt"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderMode_Scene(t *testing.T) {
	ctx, logs := testContext()
	rec := &captureRenderer{}
	s := acquire(t, ctx, config.Defaults(), Deps{Renderer: rec})

	path := writeScene(t, `
LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" [45]
Film "image" "string filename" "out.exr"
Sampler "halton" "integer pixelsamples" 4
WorldBegin
LightSource "point"
AttributeBegin
  Material "plastic"
  AreaLightSource "diffuse"
  Translate 1 0 0
  Shape "sphere" "float radius" 2
AttributeEnd
MakeNamedMaterial "gold" "string type" "metal"
NamedMaterial "gold"
ObjectBegin "thing"
  Shape "disk"
ObjectEnd
Translate 0 5 0
ObjectInstance "thing"
Shape "cylinder"
WorldEnd
`)
	require.NoError(t, s.ParseFile(ctx, path))
	require.NotContains(t, logs.String(), "level=ERROR")
	require.Len(t, rec.scenes, 1)
	sc := rec.scenes[0]

	require.Equal(t, "perspective", sc.Camera.Name)
	require.Equal(t, 45.0, sc.Camera.Params.Float("fov", 0))
	requirePoint(t, r3.Vec{Z: -5}, sc.Camera.CameraToWorld.Point(r3.Vec{}))
	require.Equal(t, "out.exr", sc.Film.Params.String("filename", ""))
	require.Equal(t, 4, sc.Sampler.Params.Int("pixelsamples", 0))
	require.Equal(t, filepath.Dir(path), sc.SearchDir)

	require.Len(t, sc.Lights, 1)
	require.True(t, sc.Lights[0].LightToWorld.IsIdentity())

	require.Len(t, sc.Shapes, 2)
	sphere := sc.Shapes[0]
	require.Equal(t, "sphere", sphere.Name)
	require.Equal(t, "plastic", sphere.Material)
	require.Equal(t, "diffuse", sphere.AreaLight)
	requirePoint(t, r3.Vec{X: 1}, sphere.ObjectToWorld.Point(r3.Vec{}))

	cylinder := sc.Shapes[1]
	require.Equal(t, "cylinder", cylinder.Name)
	require.Equal(t, "gold", cylinder.Material)
	require.Empty(t, cylinder.AreaLight)
	requirePoint(t, r3.Vec{Y: 5}, cylinder.ObjectToWorld.Point(r3.Vec{}))

	require.Contains(t, sc.Instances, "thing")
	require.Len(t, sc.Instances["thing"].Shapes, 1)
	require.Equal(t, "gold", sc.Instances["thing"].Shapes[0].Material)
	require.Len(t, sc.InstanceUses, 1)
	requirePoint(t, r3.Vec{Y: 5}, sc.InstanceUses[0].InstanceToWorld.Point(r3.Vec{}))
}

func TestRenderMode_ResetsAfterWorldEnd(t *testing.T) {
	ctx, _ := testContext()
	rec := &captureRenderer{}
	s := acquire(t, ctx, config.Defaults(), Deps{Renderer: rec})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, `Film "image" "string filename" "a.exr"
WorldBegin Shape "sphere" WorldEnd`)))
	require.NoError(t, s.ParseFile(ctx, writeScene(t, `WorldBegin Shape "disk" Shape "disk" WorldEnd`)))

	require.Len(t, rec.scenes, 2)
	require.Len(t, rec.scenes[1].Shapes, 2)
	require.Empty(t, rec.scenes[1].Film.Params)
}

func TestRenderMode_ReportsMisplacedDirectives(t *testing.T) {
	ctx, logs := testContext()
	rec := &captureRenderer{}
	s := acquire(t, ctx, config.Defaults(), Deps{Renderer: rec})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, `
Shape "sphere"
WorldBegin
Film "image"
AttributeEnd
TransformBegin
AttributeEnd
TransformEnd
TransformEnd
Shape "teapot"
NamedMaterial "missing"
ObjectInstance "nothing"
CoordSysTransform "nowhere"
AttributeBegin
WorldEnd
`)))

	out := logs.String()
	require.Contains(t, out, "Scene description must be inside world block")
	require.Contains(t, out, "Options cannot be set inside world block")
	require.Equal(t, 2, strings.Count(out, "Unmatched AttributeEnd"))
	require.Contains(t, out, "Unmatched TransformEnd")
	require.Contains(t, out, "Shape unknown")
	require.Contains(t, out, "NamedMaterial unknown")
	require.Contains(t, out, "Unable to find instance")
	require.Contains(t, out, "Couldn't find named coordinate system")
	require.Contains(t, out, "Missing end to AttributeBegin")

	require.Len(t, rec.scenes, 1)
	require.Empty(t, rec.scenes[0].Shapes)
	require.Empty(t, rec.scenes[0].Film.Params)
}

func TestRenderMode_DefaultRenderer(t *testing.T) {
	ctx, _ := testContext()
	dir := t.TempDir()
	opts := config.Defaults()
	opts.ImageFile = filepath.Join(dir, "out.exr")
	s := acquire(t, ctx, opts, Deps{})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, `WorldBegin Shape "sphere" WorldEnd`)))
	_, err := os.Stat(filepath.Join(dir, "out.yaml"))
	require.NoError(t, err)
}

func TestCatMode(t *testing.T) {
	ctx, _ := testContext()
	rec := &captureRenderer{}
	var out bytes.Buffer
	s := acquire(t, ctx, config.Options{Cat: true}, Deps{Stdout: &out, Renderer: rec})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, `Film "image" "integer xresolution" [10]
WorldBegin
AttributeBegin
Translate 1 2 3
Shape "sphere"
AttributeEnd
AttributeEnd
WorldEnd
`)))

	want := "Film \"image\"\n" +
		"    \"integer xresolution\" [ 10 ]\n" +
		"\n\nWorldBegin\n\n" +
		"AttributeBegin\n" +
		"    Translate 1 2 3\n" +
		"    Shape \"sphere\"\n" +
		"AttributeEnd\n" +
		"WorldEnd\n"
	require.Equal(t, want, out.String())
	require.Empty(t, rec.scenes)
}

func TestToPlyMode(t *testing.T) {
	ctx, _ := testContext()
	dir := t.TempDir()
	var out bytes.Buffer
	opts := config.Options{ToPly: true, PlyPrefix: filepath.Join(dir, "mesh")}
	s := acquire(t, ctx, opts, Deps{Stdout: &out})

	require.NoError(t, s.ParseFile(ctx, writeScene(t, `WorldBegin
Shape "trianglemesh" "integer indices" [0 1 2] "point P" [0 0 0 1 0 0 0 1 0] "float uv" [0 0 1 0 0 1] "float alpha" [1]
Shape "trianglemesh" "integer indices" [0 1 7] "point P" [0 0 0 1 0 0 0 1 0]
Shape "sphere"
WorldEnd
`)))

	plyFile := filepath.Join(dir, "mesh_00001.ply")
	got := out.String()
	require.Contains(t, got, "Shape \"plymesh\"\n"+
		"    \"string filename\" [ \""+plyFile+"\" ]\n"+
		"    \"float alpha\" [ 1 ]\n")
	require.Contains(t, got, "Shape \"trianglemesh\"\n")
	require.Contains(t, got, "Shape \"sphere\"\n")

	pts, err := ply.ReadPositions(plyFile)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	_, err = os.Stat(filepath.Join(dir, "mesh_00002.ply"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
