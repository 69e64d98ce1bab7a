// Package buildinfo reports the creeper binary's own version, read
// from the Go build metadata stamped into it.
package buildinfo

import "runtime/debug"

// Version returns the module version for tagged builds (what `go
// install creeper@v0.2.0` stamps), or a VCS pseudo-version for builds
// out of a working tree: "dev-<short-hash>", with a "-dirty" suffix
// when the tree had uncommitted changes, degrading to plain "dev" when
// no VCS metadata was stamped and "unknown" when build info is
// unreadable altogether.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	revision, dirty := vcsState(info)
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		return "dev-" + revision + "-dirty"
	}
	return "dev-" + revision
}

func vcsState(info *debug.BuildInfo) (revision string, dirty bool) {
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return revision, dirty
}
