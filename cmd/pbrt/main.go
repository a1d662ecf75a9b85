package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/pbrtgo/internal/app"
	"github.com/specialistvlad/pbrtgo/internal/cli"
	"github.com/specialistvlad/pbrtgo/internal/config"
)

// main is the entrypoint for the pbrt renderer.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	err := run(os.Stdout, os.Stderr, os.Stdin, os.Args[1:])
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(exitCode(err))
}

// exitCode maps a run error to the process exit status: 0 on success, the
// ExitError code for invalid invocations, and 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, stdin io.Reader, args []string) error {
	opts, files, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ctx := context.Background()
	settings, err := config.LoadSettingsFromEnv(ctx)
	if err != nil {
		return err
	}
	settings.Apply(opts)
	config.ApplyEnvironment(opts, os.LookupEnv)

	pbrt := app.NewApp(opts, app.Deps{
		Stdout: outW,
		Stderr: errW,
		Stdin:  stdin,
	})
	return pbrt.Run(ctx, files)
}
