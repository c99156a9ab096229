// Package version holds the build version, set with
//
//	go build -ldflags "-X github.com/ramonehamilton/cube-drafter/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

// Version defaults to "dev" for local builds.
var Version = "dev"

// String returns the version with the Go toolchain and platform.
func String() string {
	return fmt.Sprintf("cube-drafter %s (%s, %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
