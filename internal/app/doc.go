// Package app contains the core application logic. It prints the startup
// banner, brackets the rendering subsystem with acquire and release, and
// feeds the input files to it one at a time, decoupled from any specific
// entrypoint like a CLI.
package app
