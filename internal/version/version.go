// Package version exposes the fedlogin build version.
//
// The Version constant lives in current.go, which is generated from the
// CODE_VERSION key in release.yaml by the build pipeline and must never be
// edited by hand. Commit and date are injected at build time:
//
//	go build -ldflags "-X github.com/fedlogin/fedlogin/internal/version.commit=abc1234"
package version

import "runtime/debug"

// Build-time variables injected via ldflags.
var (
	commit = "none"
	date   = "unknown"
)

// String returns the release version declared in release.yaml.
func String() string {
	return Version
}

// Commit returns the short git commit the binary was built from,
// falling back to VCS build info when ldflags did not set it.
func Commit() string {
	if commit != "none" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return commit
}

// Date returns the build timestamp, or "unknown" when not injected.
func Date() string {
	return date
}
