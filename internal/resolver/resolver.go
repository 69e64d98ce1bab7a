package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/id"
	"github.com/creeperpm/creeper/internal/semverrange"
)

// state is the resolver's working assignment: versions already chosen,
// and the accumulated range constraint for every package named by a
// dependency but not yet decided.
type state struct {
	decided     map[id.Id]*semver.Version
	constraints map[id.Id]semverrange.Set
}

func (s state) clone() state {
	decided := make(map[id.Id]*semver.Version, len(s.decided))
	for k, v := range s.decided {
		decided[k] = v
	}
	constraints := make(map[id.Id]semverrange.Set, len(s.constraints))
	for k, v := range s.constraints {
		constraints[k] = v
	}
	return state{decided: decided, constraints: constraints}
}

// Resolve finds a single version for every package reachable from
// root, such that every dependency's range constraint is satisfied by
// the chosen version. Resolution failure is reported as
// *errs.ResolutionError; any other error is a fatal registry or parse
// failure that aborted the attempt outright.
func Resolve(provider DependencyProvider, root map[id.Id]semverrange.Set) (map[id.Id]*semver.Version, error) {
	initial := state{
		decided:     map[id.Id]*semver.Version{},
		constraints: map[id.Id]semverrange.Set{},
	}
	for pkg, rng := range root {
		initial.constraints[pkg] = rng
	}
	return resolveFrom(initial, provider)
}

func resolveFrom(s state, provider DependencyProvider) (map[id.Id]*semver.Version, error) {
	pkg, ok := pickNext(s, provider)
	if !ok {
		return s.decided, nil
	}

	remaining := s.constraints[pkg]
	for {
		v, err := provider.ChooseVersion(pkg, remaining)
		if err != nil {
			return nil, fmt.Errorf("resolver: choosing a version of %s: %w", pkg, err)
		}
		if v == nil {
			return nil, &errs.ResolutionError{
				Explanation: fmt.Sprintf("no version of %q satisfies the accumulated constraint", pkg),
			}
		}

		next, conflict, err := tryDecide(s, provider, pkg, v)
		if err != nil {
			return nil, err
		}

		if !conflict {
			result, resErr := resolveFrom(next, provider)
			if resErr == nil {
				return result, nil
			}
			var re *errs.ResolutionError
			if !errors.As(resErr, &re) {
				return nil, resErr
			}
		}

		remaining = remaining.Intersect(semverrange.Singleton(v).Complement())
	}
}

// tryDecide folds pkg=version's dependencies into a cloned state. It
// reports conflict=true if doing so leaves an already-decided
// dependency outside its new range, or shrinks an undecided
// dependency's range to empty.
func tryDecide(s state, provider DependencyProvider, pkg id.Id, version *semver.Version) (state, bool, error) {
	deps, err := provider.GetDependencies(pkg, version)
	if err != nil {
		return state{}, false, fmt.Errorf("resolver: fetching dependencies of %s %s: %w", pkg, version, err)
	}

	next := s.clone()
	next.decided[pkg] = version
	delete(next.constraints, pkg)

	for depID, depRange := range deps {
		if chosen, isDecided := next.decided[depID]; isDecided {
			if !depRange.Contains(chosen) {
				return next, true, nil
			}
			continue
		}
		current, exists := next.constraints[depID]
		if !exists {
			current = semverrange.Full()
		}
		merged := current.Intersect(depRange)
		if merged.IsEmpty() {
			return next, true, nil
		}
		next.constraints[depID] = merged
	}

	return next, false, nil
}

// pickNext chooses the next undecided package to assign a version to,
// preferring the one with fewest available candidates so failures
// surface as early as possible. Ties break on lexicographic Id order
// for determinism.
func pickNext(s state, provider DependencyProvider) (id.Id, bool) {
	if len(s.constraints) == 0 {
		return "", false
	}

	pending := make([]id.Id, 0, len(s.constraints))
	for pkg := range s.constraints {
		pending = append(pending, pkg)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	best := pending[0]
	bestCount := provider.Prioritize(best, s.constraints[best])
	for _, pkg := range pending[1:] {
		count := provider.Prioritize(pkg, s.constraints[pkg])
		if count < bestCount {
			best, bestCount = pkg, count
		}
	}
	return best, true
}
