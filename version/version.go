// Package version reports the build and schema versions of topicdb.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/topicdb/db"
)

// Build information, set at build time via ldflags:
//
//	-X github.com/teranos/topicdb/version.Version=v1.2.0
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info contains version and build information
type Info struct {
	Version       string `json:"version" yaml:"version"`
	CommitHash    string `json:"commit_hash" yaml:"commit_hash"`
	BuildTime     string `json:"build_time" yaml:"build_time"`
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
	GoVersion     string `json:"go_version" yaml:"go_version"`
	Platform      string `json:"platform" yaml:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Version:       Version,
		CommitHash:    CommitHash,
		BuildTime:     BuildTime,
		SchemaVersion: db.SchemaVersion,
		GoVersion:     runtime.Version(),
		Platform:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// IsRelease reports whether Version is a semantic version without a
// pre-release suffix.
func (i Info) IsRelease() bool {
	v, err := semver.NewVersion(i.Version)
	return err == nil && v.Prerelease() == ""
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.IsRelease() {
		return fmt.Sprintf("topicdb %s (commit %s, built %s, schema %s)", i.Version, i.Short(), i.BuildTime, i.SchemaVersion)
	}
	return fmt.Sprintf("topicdb %s (commit %s, built %s, schema %s)", i.Version, i.CommitHash, i.BuildTime, i.SchemaVersion)
}

// Short returns the commit hash cut to seven characters
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
