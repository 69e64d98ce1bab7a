// Package checksum computes and verifies the digests creeper uses to
// identify and validate artifacts: BLAKE3 as the primary, content-addressed
// identity, and SHA-1/SHA-256/MD5 as secondary checksums carried over from
// upstream metadata (Mojang's version manifests identify libraries by
// SHA-1, for instance).
package checksum

import (
	"bufio"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"lukechampine.com/blake3"
)

// Algorithm identifies a supported digest function.
type Algorithm string

const (
	BLAKE3 Algorithm = "blake3"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	MD5    Algorithm = "md5"
)

// Checksum is a tagged digest: an algorithm paired with its lowercase hex
// encoding. The zero value is not valid; use Parse or New.
type Checksum struct {
	Algorithm Algorithm
	Hex       string
}

// New builds a Checksum, lowercasing the hex digest.
func New(algo Algorithm, hexDigest string) Checksum {
	return Checksum{Algorithm: algo, Hex: strings.ToLower(hexDigest)}
}

// String renders the checksum as "algorithm:hexdigest".
func (c Checksum) String() string {
	return fmt.Sprintf("%s:%s", c.Algorithm, c.Hex)
}

// Parse reverses String. It returns an error if s isn't in
// "algorithm:hexdigest" form or names an unsupported algorithm.
func Parse(s string) (Checksum, error) {
	algo, hexDigest, ok := strings.Cut(s, ":")
	if !ok {
		return Checksum{}, fmt.Errorf("checksum: malformed value %q, want algorithm:hexdigest", s)
	}
	a := Algorithm(algo)
	switch a {
	case BLAKE3, SHA1, SHA256, MD5:
	default:
		return Checksum{}, fmt.Errorf("checksum: unsupported algorithm %q", algo)
	}
	return New(a, hexDigest), nil
}

func newHash(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case BLAKE3:
		return blake3.New(32, nil), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case MD5:
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("checksum: unsupported algorithm %q", algo)
	}
}

// hashChunkSize is the read granularity for streaming digests.
const hashChunkSize = 4096

// Sum streams r through algo in hashChunkSize reads and returns the
// resulting Checksum.
func Sum(r io.Reader, algo Algorithm) (Checksum, error) {
	h, err := newHash(algo)
	if err != nil {
		return Checksum{}, err
	}
	if _, err := io.Copy(h, bufio.NewReaderSize(r, hashChunkSize)); err != nil {
		return Checksum{}, fmt.Errorf("checksum: read failed: %w", err)
	}
	return New(algo, hex.EncodeToString(h.Sum(nil))), nil
}

// SumFile streams the file at path through algo.
func SumFile(path string, algo Algorithm) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Checksum{}, fmt.Errorf("checksum: open %s: %w", path, err)
	}
	defer f.Close()
	return Sum(f, algo)
}

// SumFileMulti streams the file at path once, feeding every digest in
// algos in a single pass through an io.MultiWriter, and returns one
// Checksum per algorithm in the same order. VerifyAll uses it to check
// all supplied checksums without re-reading the file per algorithm.
func SumFileMulti(path string, algos []Algorithm) ([]Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checksum: open %s: %w", path, err)
	}
	defer f.Close()

	hashes := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, algo := range algos {
		h, err := newHash(algo)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
		writers[i] = h
	}

	if _, err := io.Copy(io.MultiWriter(writers...), bufio.NewReaderSize(f, hashChunkSize)); err != nil {
		return nil, fmt.Errorf("checksum: read %s: %w", path, err)
	}

	sums := make([]Checksum, len(algos))
	for i, algo := range algos {
		sums[i] = New(algo, hex.EncodeToString(hashes[i].Sum(nil)))
	}
	return sums, nil
}

// equalDigest compares two hex digests in constant time. Undecodable
// hex never matches.
func equalDigest(a, b string) bool {
	ab, err := hex.DecodeString(strings.ToLower(a))
	if err != nil {
		return false
	}
	bb, err := hex.DecodeString(strings.ToLower(b))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(ab, bb) == 1
}

// Verify reports whether the file at path matches c. A missing or
// unreadable file is reported as a non-matching result with the
// underlying error, not a verification failure in itself.
func Verify(path string, c Checksum) (bool, error) {
	got, err := SumFile(path, c.Algorithm)
	if err != nil {
		return false, err
	}
	return equalDigest(got.Hex, c.Hex), nil
}

// VerifyAll checks every checksum in want against the file at path,
// reading the file once regardless of how many checksums are supplied.
// It returns the first checksum that fails to match, or nil if all pass.
func VerifyAll(path string, want []Checksum) (*Checksum, error) {
	if len(want) == 0 {
		return nil, nil
	}

	algos := make([]Algorithm, len(want))
	for i, c := range want {
		algos[i] = c.Algorithm
	}

	got, err := SumFileMulti(path, algos)
	if err != nil {
		return nil, err
	}

	for i, c := range want {
		if !equalDigest(got[i].Hex, c.Hex) {
			mismatch := want[i]
			return &mismatch, nil
		}
	}
	return nil, nil
}
