package app

import (
	"fmt"
	"io"

	"github.com/specialistvlad/pbrtgo/internal/config"
)

// PresentBanner writes the startup banner to w unless the options ask for
// quiet output or a reformatting mode.
func PresentBanner(w io.Writer, opts *config.Options, info BuildInfo) {
	if !opts.ShowBanner() {
		return
	}
	fmt.Fprintf(w, "pbrt version %s (built %s) [Detected %d cores]\n", info.Version, info.BuildTime, info.Cores)
	if info.Debug {
		fmt.Fprintln(w, "*** DEBUG BUILD ***")
	}
	fmt.Fprintln(w, "Copyright (c) The pbrtgo Authors. Based on pbrt by Matt Pharr, Greg Humphreys, and Wenzel Jakob.")
	fmt.Fprintln(w, "The source code to pbrt (but *not* the book contents) is covered by the BSD License.")
	fmt.Fprintln(w, "See the file LICENSE.txt for the conditions of the license.")
}
