package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pbrt.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSettings_AllAttributes(t *testing.T) {
	t.Setenv("PBRTGO_TEST_OUT", "/renders")
	path := writeSettings(t, `
log_level        = "DEBUG"
log_format       = "json"
nthreads         = 6
outfile          = "${env.PBRTGO_TEST_OUT}/frame.exr"
ply_prefix       = "geo"
healthcheck_port = 8081

progress {
  url       = "http://localhost:3000/socket.io/"
  namespace = "/render"
}
`)

	s, err := LoadSettings(context.Background(), path)
	require.NoError(t, err)

	opts := Defaults()
	s.Apply(&opts)

	require.Equal(t, "debug", opts.LogLevel)
	require.Equal(t, "json", opts.LogFormat)
	require.Equal(t, 6, opts.NThreads)
	require.Equal(t, "/renders/frame.exr", opts.ImageFile)
	require.Equal(t, "geo", opts.PlyPrefix)
	require.Equal(t, 8081, opts.HealthcheckPort)
	require.NotNil(t, opts.Progress)
	require.Equal(t, "http://localhost:3000/socket.io/", opts.Progress.URL)
	require.Equal(t, "/render", opts.Progress.Namespace)
}

func TestSettingsApply_CommandLineWins(t *testing.T) {
	t.Parallel()
	path := writeSettings(t, `
nthreads = 6
outfile  = "from-file.exr"
`)
	s, err := LoadSettings(context.Background(), path)
	require.NoError(t, err)

	opts := Defaults()
	opts.NThreads = 2
	opts.ImageFile = "from-flag.exr"
	s.Apply(&opts)

	require.Equal(t, 2, opts.NThreads)
	require.Equal(t, "from-flag.exr", opts.ImageFile)
}

func TestSettingsApply_NilIsNoop(t *testing.T) {
	t.Parallel()
	var s *Settings
	opts := Defaults()
	s.Apply(&opts)
	require.Equal(t, Defaults(), opts)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "syntax error", content: `log_level = `, errPart: "failed to parse settings file"},
		{name: "unknown attribute", content: `colour = "red"`, errPart: "failed to decode settings file"},
		{name: "bad log level", content: `log_level = "loud"`, errPart: "log_level must be"},
		{name: "bad log format", content: `log_format = "xml"`, errPart: "log_format must be"},
		{name: "bad port", content: `healthcheck_port = 70000`, errPart: "healthcheck_port out of range"},
		{name: "empty progress url", content: "progress {\n  url = \"\"\n}\n", errPart: "progress.url must not be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadSettings(context.Background(), writeSettings(t, tc.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestLoadSettingsFromEnv_Unset(t *testing.T) {
	t.Setenv(SettingsEnvVar, "")
	s, err := LoadSettingsFromEnv(context.Background())
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestApplyEnvironment_PlyPrefix(t *testing.T) {
	t.Parallel()
	opts := Defaults()
	ApplyEnvironment(&opts, func(key string) (string, bool) {
		if key == PlyPrefixEnvVar {
			return "scan", true
		}
		return "", false
	})
	require.Equal(t, "scan", opts.PlyPrefix)
}

func TestOptions_Modes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		opts       Options
		showBanner bool
		logLevel   string
	}{
		{name: "defaults", opts: Defaults(), showBanner: true, logLevel: "info"},
		{name: "quiet", opts: Options{Quiet: true}, showBanner: false, logLevel: "error"},
		{name: "cat", opts: Options{Cat: true}, showBanner: false, logLevel: "info"},
		{name: "toply", opts: Options{ToPly: true}, showBanner: false, logLevel: "info"},
		{name: "verbose beats quiet", opts: Options{Quiet: true, Verbose: true}, showBanner: false, logLevel: "debug"},
		{name: "configured level", opts: Options{LogLevel: "warn"}, showBanner: true, logLevel: "warn"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.showBanner, tc.opts.ShowBanner())
			require.Equal(t, tc.logLevel, tc.opts.EffectiveLogLevel())
		})
	}
}
