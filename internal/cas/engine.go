package cas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/creeperpm/creeper/internal/checksum"
	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/httputil"
	"github.com/creeperpm/creeper/internal/log"
)

// ProgressFunc is called with the cumulative byte count as a download
// streams, and once more with the final (read, total) pair on
// completion. It may be nil.
type ProgressFunc func(read, total int64)

// Store is the content-addressed artifact store: a SQLite index over
// a sharded on-disk blob layout, reachable through Retrieve, Download,
// store, and affix.
type Store struct {
	ix         *index
	storageDir string
	cacheDir   string
	client     *http.Client
	group      singleflight.Group
	log        log.Logger
}

// Open opens the store rooted at cfg's storage and cache directories,
// creating the index database if missing.
func Open(cfg *config.Config, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNoop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	ix, err := openIndex(cfg.IndexPath())
	if err != nil {
		return nil, err
	}
	return &Store{
		ix:         ix,
		storageDir: cfg.StorageDir(),
		cacheDir:   cfg.CacheDir,
		client:     httputil.NewClient(httputil.DownloadOptions()),
		log:        logger,
	}, nil
}

// Close releases the index's database handle.
func (s *Store) Close() error {
	return s.ix.Close()
}

func (s *Store) blobPath(blake3 string) string {
	return filepath.Join(s.storageDir, blobShard(blake3), blake3)
}

// Retrieve returns the local path to artifact's blob, downloading it
// if the local copy is missing or fails BLAKE3 verification.
func (s *Store) Retrieve(ctx context.Context, artifact Artifact) (string, error) {
	blake3Check := checksum.New(checksum.BLAKE3, artifact.BLAKE3)

	if found, err := s.ix.findByBLAKE3(ctx, artifact.BLAKE3); err != nil {
		return "", err
	} else if found != nil {
		path := s.blobPath(found.BLAKE3)
		ok, err := checksum.Verify(path, blake3Check)
		if err == nil && ok {
			return path, nil
		}
		// The index row is kept; only the blob is repaired. Going
		// through Download here would short-circuit on that same row
		// and hand the corrupt blob straight back.
		s.log.Warn("stored blob failed verification, re-downloading", "blake3", artifact.BLAKE3)
		if err := s.redownload(ctx, artifact); err != nil {
			return "", err
		}
		return path, nil
	}

	art, err := s.Download(ctx, artifact.Name, artifact.Src, artifact.Len, artifact.Checksums(), nil)
	if err != nil {
		return "", err
	}
	return s.blobPath(art.BLAKE3), nil
}

// redownload refetches artifact's blob from its source and replaces
// the stored copy in place, verifying the staged file against every
// checksum artifact carries before the move. The corrupt blob stays
// on disk until a verified replacement is ready to land over it.
func (s *Store) redownload(ctx context.Context, artifact Artifact) error {
	cacheKey, err := checksum.Sum(strings.NewReader(artifact.Src), checksum.BLAKE3)
	if err != nil {
		return err
	}
	stagePath := filepath.Join(s.cacheDir, cacheKey.Hex)

	if err := s.fetch(ctx, artifact.Src, stagePath, artifact.Len, nil); err != nil {
		return err
	}
	if mismatch, err := checksum.VerifyAll(stagePath, artifact.Checksums()); err != nil {
		return err
	} else if mismatch != nil {
		return &errs.CorruptionError{Path: stagePath, Expected: mismatch.Hex, Actual: "(mismatch)"}
	}
	return atomicMove(stagePath, s.blobPath(artifact.BLAKE3))
}

// Download ensures an artifact matching the supplied checksums exists
// in the store, fetching it over HTTP if no existing row already
// satisfies one of them. expectedLen of 0 means unknown.
func (s *Store) Download(ctx context.Context, name, src string, expectedLen int64, checksums []checksum.Checksum, progress ProgressFunc) (Artifact, error) {
	for _, c := range checksums {
		existing, err := s.ix.findByChecksum(ctx, c)
		if err != nil {
			return Artifact{}, err
		}
		if existing != nil {
			s.log.Debug("fingerprint found in local storage, skipping download", "name", name)
			return s.affix(ctx, *existing, checksums)
		}
	}

	cacheKey, err := checksum.Sum(strings.NewReader(src), checksum.BLAKE3)
	if err != nil {
		return Artifact{}, err
	}
	stagePath := filepath.Join(s.cacheDir, cacheKey.Hex)

	result, err, _ := s.group.Do(cacheKey.Hex, func() (any, error) {
		if err := s.fetch(ctx, src, stagePath, expectedLen, progress); err != nil {
			return nil, err
		}
		return s.store(ctx, stagePath, name, src, checksums)
	})
	if err != nil {
		return Artifact{}, err
	}
	return result.(Artifact), nil
}

// fetch streams src's body to stagePath, creating parent directories
// as needed.
func (s *Store) fetch(ctx context.Context, src, stagePath string, expectedLen int64, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(stagePath), 0755); err != nil {
		return &errs.IOError{Op: "mkdir", Path: filepath.Dir(stagePath), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("cas: build request for %s: %w", src, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &errs.IOError{Op: "GET", Path: src, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &errs.IOError{Op: "GET", Path: src, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	f, err := os.Create(stagePath)
	if err != nil {
		return &errs.IOError{Op: "create", Path: stagePath, Err: err}
	}
	defer f.Close()

	total := expectedLen
	if total == 0 {
		total = resp.ContentLength
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return &errs.IOError{Op: "write", Path: stagePath, Err: werr}
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &errs.IOError{Op: "read", Path: src, Err: readErr}
		}
	}

	if progress != nil {
		progress(written, total)
	}
	return nil
}

// store computes file's BLAKE3, verifies every supplied checksum
// against it, atomically moves it into the store, and inserts an
// index row. If the BLAKE3 digest is already indexed the new file is
// discarded and the existing row is affixed instead.
func (s *Store) store(ctx context.Context, file, name, src string, checksums []checksum.Checksum) (Artifact, error) {
	if mismatch, err := checksum.VerifyAll(file, checksums); err != nil {
		return Artifact{}, err
	} else if mismatch != nil {
		return Artifact{}, &errs.CorruptionError{Path: file, Expected: mismatch.Hex, Actual: "(mismatch)"}
	}

	blake3Sum, err := checksum.SumFile(file, checksum.BLAKE3)
	if err != nil {
		return Artifact{}, err
	}

	if existing, err := s.ix.findByBLAKE3(ctx, blake3Sum.Hex); err != nil {
		return Artifact{}, err
	} else if existing != nil {
		os.Remove(file)
		return s.affix(ctx, *existing, checksums)
	}

	info, err := os.Stat(file)
	if err != nil {
		return Artifact{}, &errs.IOError{Op: "stat", Path: file, Err: err}
	}

	art := Artifact{BLAKE3: blake3Sum.Hex, Name: name, Src: src, Len: info.Size()}
	for _, c := range checksums {
		art = art.withChecksum(c)
	}

	dest := s.blobPath(art.BLAKE3)
	if err := atomicMove(file, dest); err != nil {
		return Artifact{}, err
	}

	if err := s.ix.insert(ctx, art); err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// affix verifies each checksum in want whose column is currently NULL
// on existing, against the already-stored blob, and persists any new
// columns. A checksum mismatch against a believed-matching artifact is
// corruption, not a silent skip.
func (s *Store) affix(ctx context.Context, existing Artifact, want []checksum.Checksum) (Artifact, error) {
	path := s.blobPath(existing.BLAKE3)
	art := existing
	changed := false

	for _, c := range want {
		if art.HasChecksum(c.Algorithm) {
			continue
		}
		ok, err := checksum.Verify(path, c)
		if err != nil {
			return Artifact{}, err
		}
		if !ok {
			return Artifact{}, &errs.CorruptionError{Path: path, Expected: c.Hex, Actual: "(mismatch)"}
		}
		art = art.withChecksum(c)
		changed = true
	}

	if !changed {
		return art, nil
	}
	if err := s.ix.updateChecksums(ctx, art); err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// atomicMove relocates src to dest, creating dest's parent directory
// if needed. It tries os.Rename first; if the rename fails because
// src and dest are on different filesystems, it falls back to a
// copy-then-remove.
func atomicMove(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &errs.IOError{Op: "mkdir", Path: filepath.Dir(dest), Err: err}
	}

	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return &errs.IOError{Op: "rename", Path: dest, Err: err}
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return &errs.IOError{Op: "remove", Path: src, Err: err}
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err != nil && isEXDEV(linkErr.Err)
	}
	return false
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return &errs.IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return &errs.IOError{Op: "create", Path: tmp, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return &errs.IOError{Op: "copy", Path: dest, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return &errs.IOError{Op: "close", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return &errs.IOError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}
