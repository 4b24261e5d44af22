// Package version exposes build version information.
package version

import (
	"runtime/debug"
)

// Version and Commit are set at build time via ldflags:
//
//	go build -ldflags="-X github.com/dverge/insteonplm/internal/version.Version=v1.2.3 \
//	                   -X github.com/dverge/insteonplm/internal/version.Commit=abc123"
//
// When unset they are filled from the module's embedded VCS info, falling
// back to "dev"/"unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "" && s.Value != "" {
					Commit = shortHash(s.Value)
				}
			case "vcs.modified":
				if s.Value == "true" && Commit != "" {
					Commit += "-dirty"
				}
			}
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func shortHash(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
