// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// IsRelease reports whether v is a semver release rather than a dev build
func IsRelease(v string) bool {
	n := Normalize(v)
	return semver.IsValid(n) && semver.Prerelease(n) == ""
}

// AtLeast reports whether current is a release not older than minimum.
// Dev builds satisfy any minimum.
func AtLeast(current, minimum string) bool {
	if current == "" || current == "dev" {
		return true
	}
	c, m := Normalize(current), Normalize(minimum)
	if !semver.IsValid(c) || !semver.IsValid(m) {
		return false
	}
	return semver.Compare(c, m) >= 0
}

// String formats the build metadata for the version command
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
