package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/ply"
	"github.com/specialistvlad/pbrtgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Test for: cat output parses back to the same output.
func TestCat_OutputIsStable(t *testing.T) {
	// --- Arrange ---
	src := `# a comment
Film "image" "string filename" "a.exr"
WorldBegin
AttributeBegin
Material "matte" "rgb Kd" [.5 .5 .5]
Translate 0 1 0
Shape "sphere"
AttributeEnd
WorldEnd
`
	opts := config.Defaults()
	opts.Cat = true

	// --- Act ---
	first := testutil.RunIntegrationTest(t, map[string]string{"stdin": src}, opts, config.StdinName)
	second := testutil.RunIntegrationTest(t, map[string]string{"stdin": first.Stdout}, opts)

	// --- Assert ---
	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	require.NotContains(t, first.Stdout, "pbrt version")
	require.NotContains(t, first.Stdout, "# a comment")
	require.Contains(t, first.Stdout, "    Material \"matte\"\n        \"rgb Kd\" [ 0.5 0.5 0.5 ]\n")
	require.Equal(t, first.Stdout, second.Stdout)
}

// Test for: toply writes every triangle mesh to its own numbered PLY file.
func TestToPly_WritesNumberedMeshes(t *testing.T) {
	// --- Arrange ---
	mesh := `Shape "trianglemesh" "integer indices" [0 1 2 0 2 3]
    "point P" [0 0 0 1 0 0 1 1 0 0 1 0]
    "normal N" [0 0 1 0 0 1 0 0 1 0 0 1]
    "string name" "quad"
`
	files := map[string]string{
		"scene.pbrt": "WorldBegin\n" + mesh + "Translate 0 0 1\n" + mesh + "WorldEnd\n",
	}
	opts := config.Defaults()
	opts.ToPly = true
	opts.PlyPrefix = "part"

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, opts, "scene.pbrt")

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, 2, strings.Count(result.Stdout, `Shape "plymesh"`))
	require.NotContains(t, result.Stdout, "trianglemesh")
	require.Contains(t, result.Stdout, `"string name" [ "quad" ]`)

	for _, name := range []string{"part_00001.ply", "part_00002.ply"} {
		require.Contains(t, result.Stdout, result.Path(name))
		pts, err := ply.ReadPositions(result.Path(name))
		require.NoError(t, err)
		require.Len(t, pts, 4)
	}
}
