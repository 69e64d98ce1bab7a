// Package app is creeper's composition root: a single struct owning
// the concrete collaborators (CAS store, registry, vanilla manager)
// that the rest of the codebase only sees through narrow interfaces,
// rather than a central handle carrying an open-ended set of
// capability extensions looked up by string key.
package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/cas"
	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/id"
	"github.com/creeperpm/creeper/internal/install"
	"github.com/creeperpm/creeper/internal/lock"
	"github.com/creeperpm/creeper/internal/log"
	"github.com/creeperpm/creeper/internal/registry"
	"github.com/creeperpm/creeper/internal/resolver"
	"github.com/creeperpm/creeper/internal/semverrange"
	"github.com/creeperpm/creeper/internal/vanilla"
)

// App owns every subsystem a creeper invocation needs: the
// content-addressed store, the package registry, and the vanilla
// install pipeline. Every field is a concrete type, constructed once
// by New and passed down explicitly; there is no global or
// package-level state to thread through a call.
type App struct {
	Config   *config.Config
	Store    *cas.Store
	Registry *registry.Registry
	Vanilla  *vanilla.Manager
	log      log.Logger
}

// New wires an App from cfg, rooting the package registry at
// registryRoot (a local filesystem tree). It opens (and, if absent,
// creates) the CAS index database under cfg.
func New(cfg *config.Config, registryRoot string, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNoop()
	}
	store, err := cas.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		Store:    store,
		Registry: registry.New(registryRoot),
		Vanilla:  vanilla.NewManager(logger),
		log:      logger,
	}, nil
}

// Close releases resources held by App's subsystems (presently just
// the CAS index's database handle).
func (a *App) Close() error {
	return a.Store.Close()
}

// Resolve runs the dependency resolver against root, a map of
// top-level package id to semver requirement string, and returns the
// chosen version for every reachable package.
func (a *App) Resolve(root map[string]string) (map[id.Id]*semver.Version, error) {
	constraints := make(map[id.Id]semverrange.Set, len(root))
	for idStr, req := range root {
		pkgID, err := id.Parse(idStr)
		if err != nil {
			return nil, &errs.ParseError{Path: idStr, Err: err}
		}
		set, err := semverrange.For(req)
		if err != nil {
			return nil, &errs.ParseError{Path: req, Err: err}
		}
		constraints[pkgID] = set
	}

	provider := registry.NewProvider(a.Registry)
	return resolver.Resolve(provider, constraints)
}

// Install produces the merged install.Install for a resolved package
// set: vanilla is installed through the vanilla pipeline, every other
// package's Install.Install field is read straight from its registry
// entry, and the results are merged in ascending package-id order so
// the same resolved set always yields the same install.
func (a *App) Install(ctx context.Context, resolved map[id.Id]*semver.Version) (install.Install, error) {
	ids := make([]id.Id, 0, len(resolved))
	for pkgID := range resolved {
		ids = append(ids, pkgID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var installs []install.Install

	for _, pkgID := range ids {
		version := resolved[pkgID]
		if pkgID == id.Vanilla || pkgID == id.Minecraft {
			in, err := a.Vanilla.Install(ctx, version, a.Store)
			if err != nil {
				return install.Install{}, fmt.Errorf("installing vanilla %s: %w", version, err)
			}
			installs = append(installs, in)
			continue
		}

		pack, err := a.Registry.Get(pkgID, version, 0)
		if err != nil {
			return install.Install{}, err
		}
		installs = append(installs, pack.Install)
	}

	return install.MergeAll(installs...), nil
}

// Plan resolves root, installs every selected package, and builds the
// final deployment list and accompanying Minecraft flags: the full
// pipeline from a package request down to something a runner can
// materialize on disk.
func (a *App) Plan(ctx context.Context, root map[string]string) ([]lock.Deployment, []string, error) {
	resolved, err := a.Resolve(root)
	if err != nil {
		return nil, nil, err
	}
	merged, err := a.Install(ctx, resolved)
	if err != nil {
		return nil, nil, err
	}
	return lock.Build(merged)
}
