package vanilla

import (
	"context"
	"sync"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/creeperpm/creeper/internal/cas"
	"github.com/creeperpm/creeper/internal/checksum"
	"github.com/creeperpm/creeper/internal/install"
	"github.com/creeperpm/creeper/internal/platform"
)

// Install fetches version's client jar, libraries, and asset index
// through store, and assembles them into an install.Install. Library
// and native downloads run concurrently; the client jar and asset
// index are fetched alongside them under the same group.
func (m *Manager) Install(ctx context.Context, version *semver.Version, store *cas.Store) (install.Install, error) {
	meta, err := m.Version(ctx, version)
	if err != nil {
		return install.Install{}, err
	}

	libs, err := filterLibraries(meta.Libraries)
	if err != nil {
		return install.Install{}, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var clientJar, assetIndex cas.Artifact
	g.Go(func() error {
		art, err := store.Download(gctx, "minecraft.jar", meta.Downloads.Client.URL, meta.Downloads.Client.Size,
			[]checksum.Checksum{checksum.New(checksum.SHA1, meta.Downloads.Client.SHA1)}, nil)
		if err != nil {
			return err
		}
		clientJar = art
		return nil
	})
	g.Go(func() error {
		art, err := store.Download(gctx, meta.AssetIndex.ID, meta.AssetIndex.URL, meta.AssetIndex.Size,
			[]checksum.Checksum{checksum.New(checksum.SHA1, meta.AssetIndex.SHA1)}, nil)
		if err != nil {
			return err
		}
		assetIndex = art
		return nil
	})

	javaLib := make([]cas.Artifact, len(libs))
	native := make(map[string]cas.Artifact)
	var nativeMu sync.Mutex

	for i, lib := range libs {
		i, lib := i, lib
		g.Go(func() error {
			art, err := store.Download(gctx, lib.name, lib.download.URL, lib.download.Size,
				[]checksum.Checksum{checksum.New(checksum.SHA1, lib.download.SHA1)}, nil)
			if err != nil {
				return err
			}
			if lib.path != "" {
				nativeMu.Lock()
				native[lib.path] = art
				nativeMu.Unlock()
				return nil
			}
			javaLib[i] = art
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return install.Install{}, err
	}

	var compactLib []cas.Artifact
	for _, art := range javaLib {
		if art.BLAKE3 != "" {
			compactLib = append(compactLib, art)
		}
	}

	return install.Install{
		JavaLib:       compactLib,
		JavaMainClass: meta.MainClass,
		Native:        native,
		McJar:         &clientJar,
		McAssetIndex:  &assetIndex,
	}, nil
}

// resolvedLib is a library entry that survived rule filtering, reduced
// to what the download step needs: the Maven name (used as a
// human-readable artifact name), its download info, and, if it's a
// native, the relative path it's filed under.
type resolvedLib struct {
	name     string
	download DownloadInfo
	path     string // non-empty for natives
}

// filterLibraries applies each library's rules against the current
// platform, keeps only the ones that survive, and picks the native
// classifier matching the current OS where present.
func filterLibraries(libs []Library) ([]resolvedLib, error) {
	var out []resolvedLib

	for _, lib := range libs {
		rules := make([]platform.Rule, len(lib.Rules))
		for i, r := range lib.Rules {
			rules[i] = platform.Rule{Action: platform.Action(r.Action), Features: r.Features}
			if r.OS != nil {
				rules[i].OS = &platform.OSMatch{Name: r.OS.Name, Arch: r.OS.Arch, Version: r.OS.Version}
			}
		}
		allowed, err := platform.Allowed(rules)
		if err != nil {
			return nil, err
		}
		if !allowed {
			continue
		}
		if lib.Downloads == nil {
			continue
		}

		if lib.Downloads.Artifact != nil {
			out = append(out, resolvedLib{name: lib.Name, download: *lib.Downloads.Artifact})
		}
		for classifier, art := range lib.Downloads.Classifiers {
			matches, err := platform.MatchesNativesClassifier(classifier)
			if err != nil {
				return nil, err
			}
			if matches {
				out = append(out, resolvedLib{name: lib.Name, download: art, path: art.Path})
			}
		}
	}
	return dedupeBySHA1(out), nil
}

// dedupeBySHA1 collapses resolvedLib entries that share an upstream
// SHA-1 into the first occurrence; some Mojang library lists repeat
// the same jar under more than one Maven coordinate. Order is
// preserved so the resulting classpath stays deterministic.
func dedupeBySHA1(libs []resolvedLib) []resolvedLib {
	seen := make(map[string]struct{}, len(libs))
	out := make([]resolvedLib, 0, len(libs))
	for _, lib := range libs {
		if _, ok := seen[lib.download.SHA1]; ok {
			continue
		}
		seen[lib.download.SHA1] = struct{}{}
		out = append(out, lib)
	}
	return out
}
