// Package version holds the skctl build version.
package version

import (
	"github.com/salesking/salesking-go/pkg/salesking"
)

var (
	// Version is the released version, matching the SDK.
	Version = salesking.Version

	// GitCommit is set at build time with
	// -ldflags "-X github.com/salesking/salesking-go/internal/version.GitCommit=...".
	GitCommit = ""
)

// FullVersion returns the version with the git commit, when known.
func FullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
