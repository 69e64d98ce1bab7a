// Package resolver implements creeper's PubGrub-style dependency
// resolution: given a set of root requirements, find a single version
// per package such that every transitive dependency's range
// constraint is satisfied.
package resolver

import (
	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/id"
	"github.com/creeperpm/creeper/internal/semverrange"
)

// DependencyProvider is the three-method contract the resolver drives.
// A nil version with a nil error from ChooseVersion means no
// candidate satisfies the range; any non-nil error from ChooseVersion
// or GetDependencies aborts the whole resolution attempt.
type DependencyProvider interface {
	// ChooseVersion returns the highest version of pkg that falls
	// within set, or (nil, nil) if none qualifies.
	ChooseVersion(pkg id.Id, set semverrange.Set) (*semver.Version, error)

	// GetDependencies returns pkg's dependency ranges at version,
	// read from revision 0 of the registry entry.
	GetDependencies(pkg id.Id, version *semver.Version) (map[id.Id]semverrange.Set, error)

	// Prioritize returns the number of versions of pkg available
	// within set. The resolver decides packages with fewer candidates
	// first, so registry errors here are logged by the caller and
	// treated as zero candidates rather than aborting resolution.
	Prioritize(pkg id.Id, set semverrange.Set) int
}
