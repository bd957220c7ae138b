// Package version reports the build version of the registry.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// Fallback is reported when the build did not stamp a valid version.
const Fallback = "0.0.0-dev"

// Version is set at build time:
//
//	go build -ldflags "-X github.com/reglet-dev/reglet-schema-registry/version.Version=1.2.0"
var Version = ""

// Parse validates raw as a semantic version, returning the Fallback version
// when raw is empty or invalid.
func Parse(raw string) *semver.Version {
	if raw != "" {
		if v, err := semver.NewVersion(raw); err == nil {
			return v
		}
	}
	return semver.MustParse(Fallback)
}

// String returns the normalized build version (without a leading "v").
func String() string {
	return Parse(Version).String()
}
