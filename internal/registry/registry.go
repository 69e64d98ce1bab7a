package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/id"
)

// Registry reads package definitions from a directory tree rooted at
// Root, laid out as "<root>/<id.IndexedPath>/<version>/<rev>.toml".
// This is a purely local "file://" registry; there is no network
// fetch here, so there is no cache layer either.
type Registry struct {
	Root string
}

// New returns a Registry rooted at root.
func New(root string) *Registry {
	return &Registry{Root: root}
}

func (r *Registry) packageDir(pkg id.Id) string {
	return filepath.Join(r.Root, pkg.IndexedPath())
}

// Get loads the package definition for pkg at version, revision rev.
// It returns a *errs.NotFoundError if no such file exists, and a
// *errs.ParseError if the file exists but isn't a well-formed package
// definition.
func (r *Registry) Get(pkg id.Id, version *semver.Version, rev uint32) (*Package, error) {
	path := filepath.Join(r.packageDir(pkg), version.String(), fmt.Sprintf("%d.toml", rev))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &errs.NotFoundError{Kind: "package", Key: fmt.Sprintf("%s@%s#%d", pkg, version, rev)}
		}
		return nil, &errs.IOError{Op: "read", Path: path, Err: err}
	}

	var raw rawPackage
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, &errs.ParseError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &errs.ParseError{Path: path, Err: fmt.Errorf("unknown field %q", undecoded[0].String())}
	}

	parsedID, err := id.Parse(raw.ID)
	if err != nil {
		return nil, &errs.ParseError{Path: path, Err: err}
	}
	parsedVersion, err := semver.NewVersion(raw.Version)
	if err != nil {
		return nil, &errs.ParseError{Path: path, Err: err}
	}

	return &Package{
		ID:       parsedID,
		Version:  parsedVersion,
		Rev:      raw.Rev,
		PackNode: raw.PackNode,
		Meta:     raw.Meta,
		Install:  raw.Install,
	}, nil
}

// GetVersions lists every version of pkg present in the registry, in
// ascending order. It returns a *errs.NotFoundError if pkg has no
// entries at all, and a *errs.ParseError if any directory entry under
// pkg's directory is not itself a directory or fails to parse as
// semver. Both cases are fatal rather than entries to skip, since a
// stray file or malformed version directory signals a corrupt
// registry rather than something safe to ignore silently.
func (r *Registry) GetVersions(pkg id.Id) ([]*semver.Version, error) {
	dir := r.packageDir(pkg)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &errs.NotFoundError{Kind: "package", Key: pkg.String()}
		}
		return nil, &errs.IOError{Op: "readdir", Path: dir, Err: err}
	}

	seen := make(map[string]struct{}, len(entries))
	var versions []*semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			return nil, &errs.ParseError{Path: filepath.Join(dir, entry.Name()), Err: fmt.Errorf("non-directory entry in package version listing")}
		}
		v, err := semver.NewVersion(entry.Name())
		if err != nil {
			return nil, &errs.ParseError{Path: filepath.Join(dir, entry.Name()), Err: fmt.Errorf("version directory %q is not valid semver: %w", entry.Name(), err)}
		}
		if _, ok := seen[v.String()]; ok {
			continue
		}
		seen[v.String()] = struct{}{}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return nil, &errs.NotFoundError{Kind: "package", Key: pkg.String()}
	}

	sort.Sort(semver.Collection(versions))
	return versions, nil
}

// Revisions lists every revision number on disk for pkg at version, in
// descending order, so callers that want "the latest revision" can
// take the head. The resolver itself always reads revision 0; this
// exists for registry inspection.
func (r *Registry) Revisions(pkg id.Id, version *semver.Version) ([]uint32, error) {
	dir := filepath.Join(r.packageDir(pkg), version.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &errs.NotFoundError{Kind: "version", Key: fmt.Sprintf("%s@%s", pkg, version)}
		}
		return nil, &errs.IOError{Op: "readdir", Path: dir, Err: err}
	}

	var revs []uint32
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if name == entry.Name() {
			continue
		}
		n, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			continue
		}
		revs = append(revs, uint32(n))
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i] > revs[j] })
	return revs, nil
}
