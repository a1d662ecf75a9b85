package integration_tests

import (
	"os"
	"testing"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/specialistvlad/pbrtgo/internal/testutil"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test for: a scene split across Include files renders into a single report.
func TestRender_IncludedGeometryIsReported(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"main.pbrt": `
LookAt 0 0 10  0 0 0  0 1 0
Camera "perspective" "float fov" 40
Film "image" "integer xresolution" 400 "integer yresolution" 300
Sampler "halton" "integer pixelsamples" 32
WorldBegin
Include "geometry/spheres.pbrt"
WorldEnd
`,
		"geometry/spheres.pbrt": `
AttributeBegin
  Translate -2 0 0
  Shape "sphere" "float radius" 1
AttributeEnd
AttributeBegin
  AreaLightSource "diffuse" "rgb L" [4 4 4]
  Translate 2 0 0
  Shape "sphere" "float radius" 1
AttributeEnd
`,
	}
	opts := config.Defaults()
	opts.ImageFile = "out.exr"
	opts.QuickRender = true
	opts.Quiet = true

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, opts, "main.pbrt")

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Empty(t, result.Stdout, "quiet runs print no banner")

	data, err := os.ReadFile(result.Path("out.yaml"))
	require.NoError(t, err)
	var report render.Report
	require.NoError(t, yaml.Unmarshal(data, &report))

	require.Equal(t, [2]int{100, 75}, report.Resolution)
	require.Equal(t, 1, report.PixelSamples)
	require.Equal(t, 2, report.Shapes)
	require.Equal(t, 1, report.AreaLights)
	require.InDeltaSlice(t, []float64{0, 0, 10}, report.Eye[:], 1e-9)
	require.NotNil(t, report.WorldBounds)
	require.Equal(t, [3]float64{-3, -1, -1}, report.WorldBounds.Min)
	require.Equal(t, [3]float64{3, 1, 1}, report.WorldBounds.Max)
}

// Test for: a failing file does not stop the files after it.
func TestRender_MissingFileDoesNotStopBatch(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"good.pbrt": "WorldBegin\nShape \"disk\" \"float radius\" 3\nWorldEnd\n",
	}
	opts := config.Defaults()
	opts.ImageFile = "good.exr"

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, opts, "missing.pbrt", "good.pbrt")

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.Stdout, "pbrt version")
	require.Contains(t, result.LogOutput, "Couldn't open scene file")
	require.Contains(t, result.LogOutput, "missing.pbrt")
	_, err := os.Stat(result.Path("good.yaml"))
	require.NoError(t, err, "the second file still renders")
}

// Test for: a syntax error fails that input only.
func TestRender_SyntaxErrorFailsInput(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"broken.pbrt": "WorldBegin\nShape \"sphere\" \"float radius\" [ 1\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, config.Defaults(), "broken.pbrt")

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.LogOutput, "Couldn't open scene file")
	require.Contains(t, result.LogOutput, "released while inside world block")
}
