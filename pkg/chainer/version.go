package chainer

import "runtime"

// Version is the current version of the chainer package.
const Version = "0.1.0"

// VersionInfo provides detailed version information.
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
}

// GetVersionInfo returns detailed version information. commit and date
// are normally injected into the binary with -ldflags.
func GetVersionInfo(commit, date string) VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		GitCommit: commit,
		BuildDate: date,
	}
}
