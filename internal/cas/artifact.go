// Package cas implements creeper's content-addressed artifact store: a
// SQLite index keyed by BLAKE3 digest over a sharded on-disk blob
// layout, guaranteeing that any artifact is fetched at most once and
// verified before reuse.
package cas

import "github.com/creeperpm/creeper/internal/checksum"

// Artifact is a single binary blob the store knows about: its BLAKE3
// identity, origin metadata, and whichever secondary checksums have
// been recorded against it. Absent secondary digests are the empty
// string.
type Artifact struct {
	BLAKE3 string `toml:"blake3"`
	Name   string `toml:"name"`
	Src    string `toml:"src"`
	Len    int64  `toml:"len"`
	SHA1   string `toml:"sha1,omitempty"`
	SHA256 string `toml:"sha256,omitempty"`
	MD5    string `toml:"md5,omitempty"`
}

// HasChecksum reports whether a has a value recorded for algo. BLAKE3
// is always considered present since it's the artifact's identity.
func (a Artifact) HasChecksum(algo checksum.Algorithm) bool {
	switch algo {
	case checksum.BLAKE3:
		return true
	case checksum.SHA1:
		return a.SHA1 != ""
	case checksum.SHA256:
		return a.SHA256 != ""
	case checksum.MD5:
		return a.MD5 != ""
	default:
		return false
	}
}

// Checksums returns every checksum recorded against a, including its
// BLAKE3 identity.
func (a Artifact) Checksums() []checksum.Checksum {
	sums := []checksum.Checksum{checksum.New(checksum.BLAKE3, a.BLAKE3)}
	if a.SHA1 != "" {
		sums = append(sums, checksum.New(checksum.SHA1, a.SHA1))
	}
	if a.SHA256 != "" {
		sums = append(sums, checksum.New(checksum.SHA256, a.SHA256))
	}
	if a.MD5 != "" {
		sums = append(sums, checksum.New(checksum.MD5, a.MD5))
	}
	return sums
}

// withChecksum returns a copy of a with the given checksum's column
// set. BLAKE3 is a no-op since it's immutable identity.
func (a Artifact) withChecksum(c checksum.Checksum) Artifact {
	switch c.Algorithm {
	case checksum.SHA1:
		a.SHA1 = c.Hex
	case checksum.SHA256:
		a.SHA256 = c.Hex
	case checksum.MD5:
		a.MD5 = c.Hex
	}
	return a
}

// blobShard is the first two characters of a BLAKE3 digest, used as
// the single-level shard directory for the blob layout
// "<store>/<blake3[0:2]>/<blake3>". This is deliberately shallower
// than id.IndexedPath's two-level scheme: the store is keyed by a
// uniformly-distributed hash rather than a human-chosen identifier, so
// one level of sharding is enough to keep directories small.
func blobShard(blake3 string) string {
	if len(blake3) < 2 {
		return "xx"
	}
	return blake3[:2]
}
