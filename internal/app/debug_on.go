//go:build pbrtdebug

package app

const debugBuild = true
