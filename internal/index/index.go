// Package index records carved chunks in SQLite so that a later run with the
// same seed and preset can be checked block for block.
package index

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

// ErrNoBaseline is returned by Verify when no earlier run used the same seed
// and preset.
var ErrNoBaseline = errors.New("index: no baseline run")

// Index is a carve index backed by one SQLite file. It is safe for
// concurrent use.
type Index struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Run identifies one generation pass.
type Run struct {
	ID      string
	Seed    int64
	Preset  string
	Digest  string // hash of the preset source
	Started time.Time
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("index: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			preset TEXT NOT NULL,
			preset_digest TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			digest TEXT NOT NULL,
			carved INTEGER NOT NULL,
			decorated INTEGER NOT NULL,
			abandoned INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (run_id, x, z)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_by_preset ON runs(seed, preset_digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database and codecs.
func (ix *Index) Close() error {
	ix.dec.Close()
	if err := ix.enc.Close(); err != nil {
		_ = ix.db.Close()
		return err
	}
	return ix.db.Close()
}

// BeginRun registers a new run.
func (ix *Index) BeginRun(ctx context.Context, seed int64, preset, digest string) (Run, error) {
	r := Run{
		ID:      uuid.NewString(),
		Seed:    seed,
		Preset:  preset,
		Digest:  digest,
		Started: time.Now().UTC(),
	}
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO runs(id, seed, preset, preset_digest, started_at) VALUES(?,?,?,?,?)`,
		r.ID, r.Seed, r.Preset, r.Digest, r.Started.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return r, nil
}

// Runs lists every run, oldest first.
func (ix *Index) Runs(ctx context.Context) ([]Run, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, seed, preset, preset_digest, started_at FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Seed, &r.Preset, &r.Digest, &started); err != nil {
			return nil, err
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordChunk stores the carved chunk (x, z) of run, replacing an earlier
// record of the same chunk.
func (ix *Index) RecordChunk(ctx context.Context, runID string, x, z int, c *gen.ChunkData, st carve.Stats) error {
	raw, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	sum := c.Digest()
	blob := ix.enc.EncodeAll(raw, make([]byte, 0, len(raw)/8))

	_, err = ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks(run_id, x, z, digest, carved, decorated, abandoned, data)
		 VALUES(?,?,?,?,?,?,?,?)`,
		runID, x, z, hex.EncodeToString(sum[:]), st.Carved, st.Decorated, st.Abandoned, blob)
	if err != nil {
		return fmt.Errorf("record chunk (%d,%d): %w", x, z, err)
	}
	return nil
}

// Chunk loads the recorded chunk (x, z) of run. It returns sql.ErrNoRows
// when the chunk was never recorded.
func (ix *Index) Chunk(ctx context.Context, runID string, x, z int) (*gen.ChunkData, error) {
	var blob []byte
	err := ix.db.QueryRowContext(ctx,
		`SELECT data FROM chunks WHERE run_id = ? AND x = ? AND z = ?`, runID, x, z).Scan(&blob)
	if err != nil {
		return nil, err
	}
	raw, err := ix.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk (%d,%d): %w", x, z, err)
	}
	c := &gen.ChunkData{}
	if err := c.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("decode chunk (%d,%d): %w", x, z, err)
	}
	return c, nil
}

// Report is the outcome of Verify.
type Report struct {
	Baseline   string
	Checked    int
	Unmatched  int // chunks the baseline never recorded
	Mismatches []gen.ChunkPos
}

// OK reports whether every checked chunk matched the baseline.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify compares every chunk of run against the oldest other run with the
// same seed and preset digest.
func (ix *Index) Verify(ctx context.Context, runID string) (Report, error) {
	var rep Report
	err := ix.db.QueryRowContext(ctx,
		`SELECT b.id FROM runs b JOIN runs r ON r.id = ?
		 WHERE b.id <> r.id AND b.seed = r.seed AND b.preset_digest = r.preset_digest
		 ORDER BY b.rowid LIMIT 1`, runID).Scan(&rep.Baseline)
	if errors.Is(err, sql.ErrNoRows) {
		return rep, ErrNoBaseline
	}
	if err != nil {
		return rep, err
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT c.x, c.z, c.digest, b.digest FROM chunks c
		 LEFT JOIN chunks b ON b.run_id = ? AND b.x = c.x AND b.z = c.z
		 WHERE c.run_id = ? ORDER BY c.x, c.z`, rep.Baseline, runID)
	if err != nil {
		return rep, err
	}
	defer rows.Close()

	for rows.Next() {
		var x, z int
		var got string
		var want sql.NullString
		if err := rows.Scan(&x, &z, &got, &want); err != nil {
			return rep, err
		}
		if !want.Valid {
			rep.Unmatched++
			continue
		}
		rep.Checked++
		if got != want.String {
			rep.Mismatches = append(rep.Mismatches, gen.ChunkPos{X: x, Z: z})
		}
	}
	return rep, rows.Err()
}
