// Package version holds build information, set through ldflags:
//
//	go build -ldflags "-X nsprefix/internal/version.Version=1.2.0 -X nsprefix/internal/version.Commit=$(git rev-parse HEAD)"
package version

import "fmt"

var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the version with a short commit hash when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}

// Full returns the multi-line form printed by `nsprefix version`.
func Full() string {
	return fmt.Sprintf("nsprefix version %s\nCommit: %s\nBuilt: %s", Version, Commit, BuildDate)
}
