// Package lock turns a completed install.Install into the deployment
// plan a runner materializes on disk: a list of (relative path,
// artifact) pairs.
package lock

import (
	"fmt"
	"path"
	"sort"

	"github.com/creeperpm/creeper/internal/cas"
	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/install"
)

// Deployment is a single artifact's final resting place inside an
// instance directory, relative to the instance root.
type Deployment struct {
	Path     string
	Artifact cas.Artifact
}

// assetIndexFlagName is the flag Build augments McFlag with, keyed by
// the asset index's content digest for CAS determinism.
const assetIndexFlagName = "--assetIndex"

// Build produces the deployment list for in, and the flag list that
// must accompany it (McFlag with --assetIndex appended). It fails if
// in is missing a client jar or asset index, or has no main class:
// every field the lock format requires.
func Build(in install.Install) ([]Deployment, []string, error) {
	if in.McJar == nil {
		return nil, nil, &errs.NotFoundError{Kind: "artifact", Key: "mc_jar"}
	}
	if in.McAssetIndex == nil {
		return nil, nil, &errs.NotFoundError{Kind: "artifact", Key: "mc_asset_index"}
	}
	if in.JavaMainClass == "" {
		return nil, nil, &errs.NotFoundError{Kind: "field", Key: "java_main_class"}
	}

	var deployments []Deployment

	for i, lib := range in.JavaLib {
		deployments = append(deployments, Deployment{
			Path:     path.Join("libraries", fmt.Sprintf("%d", i)),
			Artifact: lib,
		})
	}

	nativePaths := make([]string, 0, len(in.Native))
	for nativePath := range in.Native {
		nativePaths = append(nativePaths, nativePath)
	}
	sort.Strings(nativePaths)
	for _, nativePath := range nativePaths {
		deployments = append(deployments, Deployment{Path: nativePath, Artifact: in.Native[nativePath]})
	}

	deployments = append(deployments, Deployment{Path: "minecraft.jar", Artifact: *in.McJar})

	for i, mod := range in.McMod {
		deployments = append(deployments, Deployment{
			Path:     path.Join("mods", fmt.Sprintf("%d", i)),
			Artifact: mod,
		})
	}

	assetIndexPath := path.Join("assets", "indexes", in.McAssetIndex.BLAKE3+".json")
	deployments = append(deployments, Deployment{Path: assetIndexPath, Artifact: *in.McAssetIndex})

	flags := append(append([]string{}, in.McFlag...), assetIndexFlagName, in.McAssetIndex.BLAKE3)

	return deployments, flags, nil
}
