// Package platform detects the current OS/architecture in the vocabulary
// Mojang's version manifest rules use, and evaluates a library's rule list
// against it. Mojang rules only ever distinguish {windows, osx, linux}
// and {x86, x86_64}; there is no Linux distro family or libc flavor
// axis to detect here.
package platform

import (
	"runtime"

	"github.com/creeperpm/creeper/internal/errs"
)

// Name is the OS name for the current host that rules are compared
// against: "windows", "macos", or "linux". A rule naming Mojang's "osx"
// matches "macos". Other GOOS values report "" and never match a rule.
func Name() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	default:
		return ""
	}
}

// Arch is the Mojang-vocabulary architecture for the current host. Only
// "x86" is a recognized rule qualifier, matching both 32- and 64-bit x86;
// every other GOARCH reports "" and never matches a rule.
func Arch() string {
	switch runtime.GOARCH {
	case "386", "amd64":
		return "x86"
	default:
		return ""
	}
}

// Rule is a single entry in a Mojang library's "rules" list: an action
// gated by optional OS/feature qualifiers.
type Rule struct {
	Action   Action
	OS       *OSMatch
	Features map[string]bool
}

// Action is a rule's effect once its qualifiers are satisfied.
type Action string

const (
	Allow    Action = "allow"
	Disallow Action = "disallow"
)

// OSMatch is the "os" qualifier on a Rule: name, architecture, and
// (explicitly unsupported) version.
type OSMatch struct {
	Name    string
	Arch    string
	Version string
}

// osMatches reports whether the current host satisfies m. A nil m (no "os"
// qualifier present) always matches.
func osMatches(m *OSMatch) bool {
	if m == nil {
		return true
	}
	name := m.Name
	if name == "osx" {
		name = "macos"
	}
	if name != "" && name != Name() {
		return false
	}
	if m.Arch != "" && m.Arch != Arch() {
		return false
	}
	return true
}

// MatchesNativesClassifier reports whether a Mojang library's
// "natives-<os>" classifier targets the current host. Any classifier
// outside the three known forms is rejected as unsupported rather than
// silently treated as a non-match.
func MatchesNativesClassifier(classifier string) (bool, error) {
	switch classifier {
	case "natives-linux":
		return Name() == "linux", nil
	case "natives-windows":
		return Name() == "windows", nil
	case "natives-macos":
		return Name() == "macos", nil
	default:
		return false, &errs.UnsupportedError{What: "native classifier", Detail: classifier}
	}
}

// Allowed evaluates a Mojang-style rules list and reports whether the
// current host is allowed to use the library or argument the rules guard.
// An empty list always allows. A library is kept iff every rule in the
// list independently applies: an Allow rule applies when its qualifiers
// are satisfied, a Disallow rule applies when they are not. This folds
// all rules together rather than tracking a single running "last match
// wins" verdict.
//
// A rule that gates on a "features" qualifier is rejected outright: creeper
// has no notion of the launcher-side feature flags (demo mode, QuickPlay,
// custom resolution) those rules key off, so honoring them silently would
// risk shipping an incomplete install.
func Allowed(rules []Rule) (bool, error) {
	for _, r := range rules {
		if len(r.Features) > 0 {
			return false, &errs.UnsupportedError{What: "rule feature flag", Detail: "features-gated rules are not evaluated"}
		}
		if r.OS != nil && r.OS.Version != "" {
			return false, &errs.UnsupportedError{What: "os.version rule", Detail: r.OS.Version}
		}

		matches := osMatches(r.OS)
		switch r.Action {
		case Allow:
			if !matches {
				return false, nil
			}
		case Disallow:
			if matches {
				return false, nil
			}
		}
	}
	return true, nil
}
