package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/specialistvlad/pbrtgo/internal/config"
)

var (
	// ErrMissingValue is returned when a flag that takes a value is the last
	// argument or is followed by another flag.
	ErrMissingValue = errors.New("missing value for flag")
	// ErrInvalidValue is returned when a flag value cannot be converted.
	ErrInvalidValue = errors.New("invalid value for flag")
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ExitError) Unwrap() error {
	return e.Err
}

const usage = `usage: pbrt [<options>] <filename.pbrt...>
  --cat                Print a reformatted version of the input file(s) to
                       standard output. Does not render an image.
  --help               Print this help text.
  --nthreads <num>     Use specified number of threads for rendering.
  --outfile <filename> Write the final image to the given filename.
  --quick              Automatically reduce a number of quality settings to
                       render more quickly.
  --quiet              Suppress all text output other than error messages.
  --toply              Print a reformatted version of the input file(s) to
                       standard output and convert all triangle meshes to
                       PLY files. Does not render an image.
  --verbose            Print out more detailed logging information.

With no file names, or with "-", the scene is read from standard input.

Environment:
  PBRT_CONFIG          Path to an HCL settings file.
  PLY_PREFIX           File name prefix for meshes written by --toply.
`

// option is a recognized flag. Flags with a value consume the next token.
type option struct {
	value bool
	set   func(o *config.Options, v string) error
}

var options = map[string]option{
	"--nthreads": {value: true, set: func(o *config.Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w --nthreads: %q is not an integer", ErrInvalidValue, v)
		}
		o.NThreads = n
		return nil
	}},
	"--outfile": {value: true, set: func(o *config.Options, v string) error {
		o.ImageFile = v
		return nil
	}},
	"--quick":   {set: func(o *config.Options, _ string) error { o.QuickRender = true; return nil }},
	"--quiet":   {set: func(o *config.Options, _ string) error { o.Quiet = true; return nil }},
	"--verbose": {set: func(o *config.Options, _ string) error { o.Verbose = true; return nil }},
	"--cat":     {set: func(o *config.Options, _ string) error { o.Cat = true; return nil }},
	"--toply":   {set: func(o *config.Options, _ string) error { o.ToPly = true; return nil }},
}

func isHelp(arg string) bool {
	return arg == "--help" || arg == "-help" || arg == "-h"
}

func isFlag(arg string) bool {
	_, ok := options[arg]
	return ok || isHelp(arg)
}

// Usage writes the help text to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Parse processes command-line arguments. It returns the options, the input
// file names in command-line order, a boolean indicating if the program
// should exit cleanly, or an ExitError. A help flag anywhere wins over any
// other problem with the arguments.
func Parse(args []string, output io.Writer) (*config.Options, []string, bool, error) {
	slog.Debug("CLI parser started.")
	opts := config.Defaults()
	var files []string
	var firstErr error

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if isHelp(arg) {
			slog.Debug("Help requested, printing usage and exiting.")
			Usage(output)
			return nil, nil, true, nil
		}
		opt, ok := options[arg]
		if !ok {
			files = append(files, arg)
			continue
		}

		var value string
		if opt.value {
			if i+1 >= len(args) || isFlag(args[i+1]) {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w %s", ErrMissingValue, arg)
				}
				continue
			}
			i++
			value = args[i]
		}
		if err := opt.set(&opts, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, nil, false, &ExitError{Code: 2, Message: firstErr.Error(), Err: firstErr}
	}
	slog.Debug("CLI parser finished successfully.", "files", len(files), "nthreads", opts.NThreads, "quiet", opts.Quiet, "cat", opts.Cat, "toply", opts.ToPly)
	return &opts, files, false, nil
}
