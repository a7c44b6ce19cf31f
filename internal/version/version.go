// Package version holds the build-time version variables for the runson
// binary. The zero values ("dev", "none", "unknown") are used for local
// builds; release builds set them with
//
//	-ldflags "-X github.com/pankaj-dahiya-devops/runson/internal/version.Version=v1.2.3"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the formatted version string printed by runson version.
func Info() string {
	return fmt.Sprintf(
		"runson version %s\ncommit: %s\nbuilt: %s\n",
		resolvedVersion(),
		Commit,
		Date,
	)
}

// resolvedVersion falls back to the module version recorded by
// `go install module@version` when no ldflags were given.
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
