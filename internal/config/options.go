package config

// AutoThreads is the NThreads sentinel that lets the rendering subsystem size
// its worker pool from the detected core count.
const AutoThreads = 0

// StdinName is the input name that selects standard input.
const StdinName = "-"

// Options holds everything a single run needs. The command-line fields map
// one-to-one onto pbrt flags; the rest come from the settings file.
type Options struct {
	NThreads    int
	ImageFile   string
	QuickRender bool
	Quiet       bool
	Verbose     bool
	Cat         bool
	ToPly       bool

	LogLevel        string
	LogFormat       string
	PlyPrefix       string
	HealthcheckPort int
	Progress        *ProgressOptions
}

// ProgressOptions configures the socket.io progress reporter.
type ProgressOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Defaults returns the built-in option values.
func Defaults() Options {
	return Options{
		NThreads:  AutoThreads,
		LogLevel:  "info",
		LogFormat: "text",
		PlyPrefix: "mesh",
	}
}

// Reformatting reports whether the run rewrites scene files instead of
// rendering them.
func (o *Options) Reformatting() bool {
	return o.Cat || o.ToPly
}

// ShowBanner reports whether the startup banner should be printed.
func (o *Options) ShowBanner() bool {
	return !o.Quiet && !o.Reformatting()
}

// EffectiveLogLevel resolves the log level from the verbosity flags, which
// take precedence over the configured level.
func (o *Options) EffectiveLogLevel() string {
	switch {
	case o.Verbose:
		return "debug"
	case o.Quiet:
		return "error"
	case o.LogLevel != "":
		return o.LogLevel
	default:
		return "info"
	}
}
