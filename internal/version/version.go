// Package version reports build metadata.
package version

import "fmt"

// These variables are set at build time using ldflags.
// Example: go build -ldflags "-X github.com/boss6825/pharmintel/internal/version.Version=v1.0.0"
var (
	// Version is the semantic version of the application.
	Version = "dev"

	// CommitSHA is the git commit SHA at build time.
	CommitSHA = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// String returns the one-line version banner, e.g. "v1.0.0 (abc1234, 2025-03-10)".
func String() string {
	sha := CommitSHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", Version, sha, BuildDate)
}
