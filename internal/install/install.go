// Package install defines Install, the merge-friendly aggregate of
// everything a package contributes to a Minecraft instance, and the
// field-wise merge required when combining the installs of every
// resolved package into a single plan.
package install

import (
	"github.com/creeperpm/creeper/internal/cas"
)

// Install is what a single package contributes to an instance: java
// libraries and flags, native libraries, the Minecraft client jar, game
// flags, the asset index, and mod files. Every field is independently
// mergeable: list fields concatenate, map fields union with left-hand
// wins, and single-value fields keep the first non-empty value.
type Install struct {
	// JavaLib is the ordered list of additional classpath artifacts,
	// prepended to the launch command's classpath in source order.
	JavaLib []cas.Artifact `toml:"java-lib,omitempty"`

	// JavaMainClass overrides the Java entry point. First-write-wins
	// across a merge.
	JavaMainClass string `toml:"java-main-class,omitempty"`

	// Native maps a relative path (under the instance's natives
	// directory) to the artifact that belongs there.
	Native map[string]cas.Artifact `toml:"native,omitempty"`

	// JavaFlag is additional JVM command-line flags, appended in
	// source order.
	JavaFlag []string `toml:"java-flag,omitempty"`

	// McJar is the Minecraft client jar. First-write-wins across a
	// merge; required by the lock builder.
	McJar *cas.Artifact `toml:"mc-jar,omitempty"`

	// McFlag is additional Minecraft command-line flags, appended in
	// source order.
	McFlag []string `toml:"mc-flag,omitempty"`

	// McAssetIndex is the asset index manifest. First-write-wins
	// across a merge; required by the lock builder.
	McAssetIndex *cas.Artifact `toml:"mc-asset-index,omitempty"`

	// McMod is the ordered list of mod jars to place under the
	// instance's mods directory.
	McMod []cas.Artifact `toml:"mc-mod,omitempty"`
}

// Merge combines self and next, returning a new Install. List fields
// concatenate with self's entries first; map fields union, with self's
// entries winning on key collision; single-value fields keep self's
// value if already set, otherwise take next's.
func (i Install) Merge(next Install) Install {
	out := Install{
		JavaLib:       append(append([]cas.Artifact{}, i.JavaLib...), next.JavaLib...),
		JavaMainClass: i.JavaMainClass,
		JavaFlag:      append(append([]string{}, i.JavaFlag...), next.JavaFlag...),
		McFlag:        append(append([]string{}, i.McFlag...), next.McFlag...),
		McMod:         append(append([]cas.Artifact{}, i.McMod...), next.McMod...),
	}

	if out.JavaMainClass == "" {
		out.JavaMainClass = next.JavaMainClass
	}

	out.Native = make(map[string]cas.Artifact, len(i.Native)+len(next.Native))
	for path, art := range next.Native {
		out.Native[path] = art
	}
	for path, art := range i.Native {
		out.Native[path] = art
	}

	out.McJar = i.McJar
	if out.McJar == nil {
		out.McJar = next.McJar
	}

	out.McAssetIndex = i.McAssetIndex
	if out.McAssetIndex == nil {
		out.McAssetIndex = next.McAssetIndex
	}

	return out
}

// MergeAll folds a sequence of Installs into one, in argument order. An
// empty slice returns the zero Install.
func MergeAll(installs ...Install) Install {
	var out Install
	for _, in := range installs {
		out = out.Merge(in)
	}
	return out
}
