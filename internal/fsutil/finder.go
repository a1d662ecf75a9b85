// Package fsutil provides file system utility functions.
package fsutil

import (
	"path/filepath"
)

// SearchDirectory returns the directory relative references in the scene
// file at path are resolved against. Standard input ("-") resolves against
// the working directory, reported as the empty string.
func SearchDirectory(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	return filepath.Dir(path)
}

// ResolvePath resolves name against dir unless name is absolute or dir is
// empty.
func ResolvePath(dir, name string) string {
	if dir == "" || name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// ReplaceExtension returns path with its extension replaced by ext, which
// must include the leading dot.
func ReplaceExtension(path, ext string) string {
	base := path[:len(path)-len(filepath.Ext(path))]
	return base + ext
}
