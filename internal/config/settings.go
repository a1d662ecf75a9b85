package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// SettingsEnvVar names the environment variable pointing at the settings file.
const SettingsEnvVar = "PBRT_CONFIG"

// PlyPrefixEnvVar overrides the file name prefix used for converted meshes.
const PlyPrefixEnvVar = "PLY_PREFIX"

// Settings is the decoded form of an HCL settings file. Every attribute is
// optional; nil means "not set in the file".
type Settings struct {
	LogLevel        *string        `hcl:"log_level,optional"`
	LogFormat       *string        `hcl:"log_format,optional"`
	NThreads        *int           `hcl:"nthreads,optional"`
	Outfile         *string        `hcl:"outfile,optional"`
	PlyPrefix       *string        `hcl:"ply_prefix,optional"`
	HealthcheckPort *int           `hcl:"healthcheck_port,optional"`
	Progress        *ProgressBlock `hcl:"progress,block"`
}

// ProgressBlock is the `progress` block of the settings file.
type ProgressBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// LoadSettingsFromEnv loads the settings file named by PBRT_CONFIG. It returns
// nil settings and no error when the variable is unset.
func LoadSettingsFromEnv(ctx context.Context) (*Settings, error) {
	path := strings.TrimSpace(os.Getenv(SettingsEnvVar))
	if path == "" {
		ctxlog.FromContext(ctx).Debug("No settings file configured.", "env", SettingsEnvVar)
		return nil, nil
	}
	return LoadSettings(ctx, path)
}

// LoadSettings parses and decodes a single HCL settings file. Expressions may
// reference the process environment as env.NAME.
func LoadSettings(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding settings file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %s", path, diags.Error())
	}

	var settings Settings
	diags = gohcl.DecodeBody(file.Body, environmentEvalContext(os.Environ()), &settings)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %s", path, diags.Error())
	}
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	logger.Debug("Successfully decoded settings file.", "path", path)
	return &settings, nil
}

// environmentEvalContext exposes KEY=VALUE pairs as the `env` object.
func environmentEvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func (s *Settings) validate() error {
	if s.LogLevel != nil {
		switch strings.ToLower(*s.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %q", *s.LogLevel)
		}
	}
	if s.LogFormat != nil {
		switch strings.ToLower(*s.LogFormat) {
		case "text", "json":
		default:
			return fmt.Errorf("log_format must be 'text' or 'json', got %q", *s.LogFormat)
		}
	}
	if s.HealthcheckPort != nil && (*s.HealthcheckPort < 0 || *s.HealthcheckPort > 65535) {
		return fmt.Errorf("healthcheck_port out of range: %d", *s.HealthcheckPort)
	}
	if s.Progress != nil && strings.TrimSpace(s.Progress.URL) == "" {
		return fmt.Errorf("progress.url must not be empty")
	}
	return nil
}

// Apply copies file values into o wherever the command line left the field at
// its default. A nil receiver is a no-op.
func (s *Settings) Apply(o *Options) {
	if s == nil {
		return
	}
	if s.LogLevel != nil {
		o.LogLevel = strings.ToLower(*s.LogLevel)
	}
	if s.LogFormat != nil {
		o.LogFormat = strings.ToLower(*s.LogFormat)
	}
	if s.NThreads != nil && o.NThreads == AutoThreads {
		o.NThreads = *s.NThreads
	}
	if s.Outfile != nil && o.ImageFile == "" {
		o.ImageFile = *s.Outfile
	}
	if s.PlyPrefix != nil && *s.PlyPrefix != "" {
		o.PlyPrefix = *s.PlyPrefix
	}
	if s.HealthcheckPort != nil {
		o.HealthcheckPort = *s.HealthcheckPort
	}
	if s.Progress != nil {
		o.Progress = &ProgressOptions{
			URL:                s.Progress.URL,
			Namespace:          s.Progress.Namespace,
			InsecureSkipVerify: s.Progress.InsecureSkipVerify,
		}
	}
}

// ApplyEnvironment applies the environment overrides that pbrt honors
// directly, after the settings file.
func ApplyEnvironment(o *Options, lookup func(string) (string, bool)) {
	if prefix, ok := lookup(PlyPrefixEnvVar); ok && prefix != "" {
		o.PlyPrefix = prefix
	}
}
