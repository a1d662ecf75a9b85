// Package cli parses the pbrt command line and handles process-level
// concerns like exit codes. Arguments are scanned once, left to right;
// recognized flags update a config.Options and every other token is an
// input file name.
package cli
