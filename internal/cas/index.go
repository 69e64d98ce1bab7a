package cas

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/creeperpm/creeper/internal/checksum"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// index is the SQLite-backed durable record of every artifact the
// store has ingested, keyed by BLAKE3 and additionally indexed by
// each secondary checksum column.
type index struct {
	db *sql.DB
}

// openIndex opens (creating if missing) the SQLite index at path and
// applies the schema. SQLite only supports one writer at a time, so
// the connection pool is capped at a single connection; callers that
// need concurrent readers during a write will serialize on it, which
// is the correct tradeoff for an index this small.
func openIndex(path string) (*index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cas: open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cas: apply schema: %w", err)
	}

	return &index{db: db}, nil
}

func (ix *index) Close() error {
	return ix.db.Close()
}

func scanArtifact(row *sql.Row) (*Artifact, error) {
	var a Artifact
	var sha1, sha256, md5 sql.NullString
	if err := row.Scan(&a.BLAKE3, &a.Name, &a.Src, &a.Len, &sha1, &sha256, &md5); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.SHA1 = sha1.String
	a.SHA256 = sha256.String
	a.MD5 = md5.String
	return &a, nil
}

// findByBLAKE3 looks up an artifact row by its primary key.
func (ix *index) findByBLAKE3(ctx context.Context, blake3 string) (*Artifact, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT blake3, name, src, len, sha1, sha256, md5 FROM artifact WHERE blake3 = ?`, blake3)
	a, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("cas: query index: %w", err)
	}
	return a, nil
}

// findByChecksum looks up an artifact row by a secondary checksum
// column. BLAKE3 checksums are routed to findByBLAKE3 instead.
func (ix *index) findByChecksum(ctx context.Context, c checksum.Checksum) (*Artifact, error) {
	var column string
	switch c.Algorithm {
	case checksum.BLAKE3:
		return ix.findByBLAKE3(ctx, c.Hex)
	case checksum.SHA1:
		column = "sha1"
	case checksum.SHA256:
		column = "sha256"
	case checksum.MD5:
		column = "md5"
	default:
		return nil, fmt.Errorf("cas: unsupported checksum algorithm %q", c.Algorithm)
	}

	// Column names can't be bound as query parameters; column is one
	// of a fixed, non-user-controlled set chosen above.
	query := fmt.Sprintf(`SELECT blake3, name, src, len, sha1, sha256, md5 FROM artifact WHERE %s = ?`, column)
	row := ix.db.QueryRowContext(ctx, query, c.Hex)
	a, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("cas: query index: %w", err)
	}
	return a, nil
}

// insert adds a new artifact row. Callers must have already confirmed
// no row exists for this BLAKE3.
func (ix *index) insert(ctx context.Context, a Artifact) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO artifact (blake3, name, src, len, sha1, sha256, md5) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.BLAKE3, a.Name, a.Src, a.Len,
		nullIfEmpty(a.SHA1), nullIfEmpty(a.SHA256), nullIfEmpty(a.MD5))
	if err != nil {
		return fmt.Errorf("cas: insert artifact: %w", err)
	}
	return nil
}

// updateChecksums persists a's current secondary checksum columns for
// the row identified by a.BLAKE3.
func (ix *index) updateChecksums(ctx context.Context, a Artifact) error {
	_, err := ix.db.ExecContext(ctx,
		`UPDATE artifact SET sha1 = ?, sha256 = ?, md5 = ? WHERE blake3 = ?`,
		nullIfEmpty(a.SHA1), nullIfEmpty(a.SHA256), nullIfEmpty(a.MD5), a.BLAKE3)
	if err != nil {
		return fmt.Errorf("cas: update artifact checksums: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
