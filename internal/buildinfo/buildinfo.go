// Package buildinfo identifies the kernel image in logs and the host window
// title.
package buildinfo

import "runtime/debug"

// Set at link time, e.g.
//
//	-ldflags "-X candycane/internal/buildinfo.Version=v0.1.0"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Short returns the release version, or a short VCS revision for
// development builds.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if rev := Revision(); rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		return "dev-" + rev
	}
	return "dev"
}

// Revision returns Commit, falling back to the revision the go tool
// stamped into the binary.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev != "" && dirty {
		rev += "+"
	}
	return rev
}
