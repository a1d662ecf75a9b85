// Package config defines the run configuration of the renderer along with
// the optional HCL settings file that supplies defaults for it.
//
// `config.Options` is the single value handed from the command line to the
// application and the rendering subsystem. It is built once and treated as
// read-only afterwards. The settings file only fills in values the command
// line left unset.
package config
