// Package registry reads package definitions from a local filesystem
// tree shaped like a "file://" registry: one TOML file per (id,
// version, revision) triple, sharded by id.IndexedPath. Unknown
// fields are rejected by checking the decoder metadata's Undecoded
// keys, against explicit kebab-case struct tags.
package registry

import (
	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/id"
	"github.com/creeperpm/creeper/internal/install"
)

// PackNode holds only the fields the resolver needs: a package's
// dependency ranges, keyed by the dependency's id and valued by a
// semver requirement string (parsed lazily through semverrange.For,
// not at decode time, since a malformed requirement should surface as
// a resolution-time error naming the offending package).
type PackNode struct {
	Dependencies map[string]string `toml:"dependencies,omitempty"`
}

// PackMeta is the human-facing metadata of a package version: display
// name, authors, description, and license. None of it participates in
// resolution or installation.
type PackMeta struct {
	Name        string   `toml:"name"`
	Authors     []string `toml:"authors,omitempty"`
	Description string   `toml:"description,omitempty"`
	License     string   `toml:"license,omitempty"`
}

// Package is a single decoded registry entry: one version (and
// revision) of one package, together with everything it contributes
// to an instance.
type Package struct {
	ID      id.Id
	Version *semver.Version
	Rev     uint32
	PackNode
	Meta    PackMeta
	Install install.Install
}

// rawPackage is the on-disk TOML shape. ID and Version are kept as
// plain strings here and validated/parsed by the loader, rather than
// leaning on toml to unmarshal into id.Id/*semver.Version directly, so
// a malformed value produces the loader's own *errs.ParseError instead
// of whatever message the library's own scalar decoding would give.
type rawPackage struct {
	ID      string `toml:"id"`
	Version string `toml:"version"`
	Rev     uint32 `toml:"rev,omitempty"`
	PackNode
	Meta    PackMeta        `toml:"package"`
	Install install.Install `toml:"install"`
}
