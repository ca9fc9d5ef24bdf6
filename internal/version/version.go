// Package version holds the build information of fpm.
package version

import (
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Overridden at build time:
// go build -ldflags "-X fpm/internal/version.Version=1.0.0 -X fpm/internal/version.Commit=abc123"
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, with the short commit when one is known
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// IsRelease reports whether Version is a valid semantic version without a
// pre-release suffix.
func IsRelease() bool {
	v := canonical(Version)
	return semver.IsValid(v) && semver.Prerelease(v) == ""
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Full returns the version, commit, build date and Go toolchain on
// separate lines.
func Full() string {
	header := "fpm version " + Version
	if !IsRelease() {
		header += " (development build)"
	}
	return header + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate + "\n" +
		"Go: " + goVersion()
}

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.GoVersion != "" {
		return info.GoVersion
	}
	return "unknown"
}
