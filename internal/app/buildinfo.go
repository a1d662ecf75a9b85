package app

import "runtime/debug"

// Version and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/specialistvlad/pbrtgo/internal/app.BuildTime=$(date -u +%FT%TZ)" ./cmd/pbrt
var (
	Version   = "3"
	BuildTime = ""
)

// BuildInfo is what the banner reports about the binary and host.
type BuildInfo struct {
	Version   string
	BuildTime string
	Cores     int
	Debug     bool
}

// CurrentBuildInfo describes the running binary. Without a link-time build
// time it falls back to the VCS commit time recorded by the toolchain.
func CurrentBuildInfo(cores int) BuildInfo {
	info := BuildInfo{Version: Version, BuildTime: BuildTime, Cores: cores, Debug: debugBuild}
	if info.BuildTime == "" {
		info.BuildTime = vcsTime()
	}
	return info
}

func vcsTime() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.time" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}
