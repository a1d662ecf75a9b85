package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchDirectory(t *testing.T) {
	t.Parallel()
	require.Equal(t, "", SearchDirectory("-"))
	require.Equal(t, "", SearchDirectory(""))
	require.Equal(t, filepath.Join("scenes", "kitchen"), SearchDirectory(filepath.Join("scenes", "kitchen", "main.pbrt")))
}

func TestResolvePath(t *testing.T) {
	t.Parallel()
	require.Equal(t, "geometry.pbrt", ResolvePath("", "geometry.pbrt"))
	require.Equal(t, filepath.Join("scenes", "geometry.pbrt"), ResolvePath("scenes", "geometry.pbrt"))
	abs := filepath.Join(string(filepath.Separator), "tmp", "geometry.pbrt")
	require.Equal(t, abs, ResolvePath("scenes", abs))
}

func TestReplaceExtension(t *testing.T) {
	t.Parallel()
	require.Equal(t, "out/frame.yaml", ReplaceExtension("out/frame.exr", ".yaml"))
	require.Equal(t, "frame.yaml", ReplaceExtension("frame", ".yaml"))
}
