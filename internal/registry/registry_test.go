package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/id"
)

func writePackage(t *testing.T, root string, pkg id.Id, version, rev, body string) {
	t.Helper()
	dir := filepath.Join(root, pkg.IndexedPath(), version)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, rev+".toml"), []byte(body), 0o644))
}

const samplePackage = `
id = "fabric"
version = "0.15.0"

[dependencies]
minecraft = ">=1.20,<1.21"

[package]
name = "Fabric Loader"
authors = ["FabricMC"]
license = "Apache-2.0"

[install]
java-main-class = "net.fabricmc.loader.launch.knot.KnotClient"

[[install.java-lib]]
blake3 = "abc123"
name = "fabric-loader.jar"
src = "https://maven.fabricmc.net/fabric-loader.jar"
len = 1024
`

func TestGet_ParsesFullPackage(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, id.Fabric, "0.15.0", "0", samplePackage)

	reg := New(root)
	v := mustVersion(t, "0.15.0")
	pack, err := reg.Get(id.Fabric, v, 0)
	require.NoError(t, err)

	require.Equal(t, id.Fabric, pack.ID)
	require.Equal(t, "0.15.0", pack.Version.String())
	require.Equal(t, "Fabric Loader", pack.Meta.Name)
	require.Equal(t, ">=1.20,<1.21", pack.Dependencies["minecraft"])
	require.Equal(t, "net.fabricmc.loader.launch.knot.KnotClient", pack.Install.JavaMainClass)
	require.Len(t, pack.Install.JavaLib, 1)
	require.Equal(t, "abc123", pack.Install.JavaLib[0].BLAKE3)
}

func TestGet_MissingFileIsNotFound(t *testing.T) {
	root := t.TempDir()
	reg := New(root)
	v := mustVersion(t, "1.0.0")

	_, err := reg.Get(id.Fabric, v, 0)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "package", nf.Kind)
}

func TestGet_MalformedTOMLIsParseError(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, id.Fabric, "0.15.0", "0", "this is not valid toml [[[")

	reg := New(root)
	v := mustVersion(t, "0.15.0")
	_, err := reg.Get(id.Fabric, v, 0)
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestGet_UnknownFieldIsParseError(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, id.Fabric, "0.15.0", "0", `
id = "fabric"
version = "0.15.0"
bogus-field = "oops"

[package]
name = "Fabric Loader"

[install]
`)

	reg := New(root)
	v := mustVersion(t, "0.15.0")
	_, err := reg.Get(id.Fabric, v, 0)
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestGetVersions_SortedAscending(t *testing.T) {
	root := t.TempDir()
	for _, v := range []string{"0.15.0", "0.14.0", "1.0.0"} {
		writePackage(t, root, id.Fabric, v, "0", samplePackage)
	}

	reg := New(root)
	versions, err := reg.GetVersions(id.Fabric)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, "0.14.0", versions[0].String())
	require.Equal(t, "0.15.0", versions[1].String())
	require.Equal(t, "1.0.0", versions[2].String())
}

func TestGetVersions_NoEntriesIsNotFound(t *testing.T) {
	root := t.TempDir()
	reg := New(root)
	_, err := reg.GetVersions(id.Fabric)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGetVersions_NonSemverEntryIsFatal(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, id.Fabric, "1.0.0", "0", samplePackage)
	require.NoError(t, os.MkdirAll(filepath.Join(root, id.Fabric.IndexedPath(), "not-a-version"), 0o755))

	reg := New(root)
	_, err := reg.GetVersions(id.Fabric)
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestGetVersions_NonDirectoryEntryIsFatal(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, id.Fabric, "1.0.0", "0", samplePackage)
	require.NoError(t, os.WriteFile(filepath.Join(root, id.Fabric.IndexedPath(), "README"), []byte("stray file"), 0o644))

	reg := New(root)
	_, err := reg.GetVersions(id.Fabric)
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestRevisions_DescendingLatestFirst(t *testing.T) {
	root := t.TempDir()
	for _, rev := range []string{"0", "2", "1"} {
		writePackage(t, root, id.Fabric, "1.0.0", rev, samplePackage)
	}

	reg := New(root)
	revs, err := reg.Revisions(id.Fabric, mustVersion(t, "1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []uint32{2, 1, 0}, revs)
}

func TestRevisions_MissingVersionIsNotFound(t *testing.T) {
	root := t.TempDir()
	reg := New(root)
	_, err := reg.Revisions(id.Fabric, mustVersion(t, "9.9.9"))
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	require.NoError(t, err)
	return v
}
