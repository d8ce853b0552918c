package version

import "fmt"

// Name is reported by the health endpoint and the startup log line.
const Name = "Autosource"

// Stamped at release time with -ldflags "-X <pkg>.GitCommit=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata exposed on /api/v1/health.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

func Get() Info {
	return Info{Service: Name, Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// Full is the version plus a short commit and build time once both are stamped.
func Full() string {
	if GitCommit == "unknown" || BuildTime == "unknown" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s+%s (%s)", Version, commit, BuildTime)
}
