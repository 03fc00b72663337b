package version

import "strings"

// Set via -ldflags at release build time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

func Resolve() string {
	base := strings.TrimSpace(Version)
	if base == "" {
		base = "0.0.0"
	}

	commit := strings.TrimSpace(Commit)
	if commit == "" || commit == "unknown" {
		return base
	}

	if len(commit) > 12 {
		commit = commit[:12]
	}
	return base + "+" + commit
}
