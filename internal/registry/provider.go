package registry

import (
	"errors"

	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/id"
	"github.com/creeperpm/creeper/internal/log"
	"github.com/creeperpm/creeper/internal/semverrange"
)

// revision is the fixed revision this provider queries. The registry
// can hold several revisions per version (see Registry.Revisions), but
// every lookup here reads rev 0; no other revision is consulted during
// resolution.
const revision = 0

// Provider adapts a *Registry into a resolver.DependencyProvider.
type Provider struct {
	Registry *Registry
	Log      log.Logger
}

// NewProvider returns a resolver-facing view of reg.
func NewProvider(reg *Registry) *Provider {
	return &Provider{Registry: reg, Log: log.Default()}
}

// ChooseVersion returns the highest version of pkg within set.
func (p *Provider) ChooseVersion(pkg id.Id, set semverrange.Set) (*semver.Version, error) {
	versions, err := p.Registry.GetVersions(pkg)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	for i := len(versions) - 1; i >= 0; i-- {
		if set.Contains(versions[i]) {
			return versions[i], nil
		}
	}
	return nil, nil
}

// GetDependencies returns pkg's dependency ranges at version, read from
// revision 0 of the registry entry.
func (p *Provider) GetDependencies(pkg id.Id, version *semver.Version) (map[id.Id]semverrange.Set, error) {
	pack, err := p.Registry.Get(pkg, version, revision)
	if err != nil {
		return nil, err
	}

	deps := make(map[id.Id]semverrange.Set, len(pack.Dependencies))
	for depStr, requirement := range pack.Dependencies {
		depID, err := id.Parse(depStr)
		if err != nil {
			return nil, &errs.ParseError{Path: depStr, Err: err}
		}
		set, err := semverrange.For(requirement)
		if err != nil {
			return nil, &errs.ParseError{Path: depStr, Err: err}
		}
		deps[depID] = set
	}
	return deps, nil
}

// Prioritize returns the number of versions of pkg available within
// set. Registry errors are logged and downgraded to zero candidates,
// matching the resolver contract's expectation that Prioritize never
// aborts resolution.
func (p *Provider) Prioritize(pkg id.Id, set semverrange.Set) int {
	versions, err := p.Registry.GetVersions(pkg)
	if err != nil {
		p.Log.Warn("registry error during prioritization", "package", pkg, "error", err)
		return 0
	}

	count := 0
	for _, v := range versions {
		if set.Contains(v) {
			count++
		}
	}
	return count
}
