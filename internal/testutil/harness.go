// Package testutil provides a harness that runs the full application against
// scene files written to a temporary directory.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/pbrtgo/internal/app"
	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string
	Stdout    string
	LogOutput string
	Err       error
}

// Path returns the absolute path of a file inside the run directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts config.Options, inputs ...string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts, inputs...)
}

// RunIntegrationTestWithContext writes files into a temporary directory, runs
// the application with the real rendering subsystem on inputs (relative to
// that directory, "-" meaning the "stdin" entry of files) and captures its
// output. The subsystem is process-wide, so callers must not run in parallel.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts config.Options, inputs ...string) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if name == "stdin" {
			continue
		}
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	paths := make([]string, len(inputs))
	for i, in := range inputs {
		if in == config.StdinName {
			paths[i] = in
			continue
		}
		paths[i] = filepath.Join(dir, in)
	}
	if opts.ImageFile != "" && !filepath.IsAbs(opts.ImageFile) {
		opts.ImageFile = filepath.Join(dir, opts.ImageFile)
	}
	if opts.PlyPrefix != "" && !filepath.IsAbs(opts.PlyPrefix) {
		opts.PlyPrefix = filepath.Join(dir, opts.PlyPrefix)
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "debug"
	}

	stdout := &app.SafeBuffer{}
	logs := &app.SafeBuffer{}
	testApp := app.NewApp(&opts, app.Deps{
		Stdout: stdout,
		Stderr: logs,
		Stdin:  strings.NewReader(files["stdin"]),
		Cores:  func() int { return 4 },
	})
	err := testApp.Run(ctx, paths)

	t.Cleanup(func() {
		if os.Getenv("PBRT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &HarnessResult{
		Dir:       dir,
		Stdout:    stdout.String(),
		LogOutput: logs.String(),
		Err:       err,
	}
}
