// Package store archives extracted heart-rate samples in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	fittrack "github.com/lucasjlepore/fit-tracker"
	_ "modernc.org/sqlite"
)

// ErrImportNotFound is returned when an import id is unknown.
var ErrImportNotFound = errors.New("import not found")

// Store is a SQLite sample archive.
type Store struct {
	db *sql.DB
}

// Record is an archived sample together with where it came from.
type Record struct {
	Source string
	Group  fittrack.FileType
	fittrack.HeartRateSample
}

// Import describes one batch of imported files.
type Import struct {
	ID         string
	Device     string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      []string
	Failed     []string
}

// Open opens the archive at path, creating it and its directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		device TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		files TEXT NOT NULL DEFAULT '',
		failed TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS samples (
		source TEXT NOT NULL,
		ts INTEGER NOT NULL,
		heart_rate INTEGER NOT NULL,
		grp TEXT NOT NULL,
		import_id TEXT REFERENCES imports(id),
		PRIMARY KEY (source, ts)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(ts);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginImport records the start of an import batch and returns its id.
func (s *Store) BeginImport(ctx context.Context, device string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, device, started_at) VALUES (?, ?, ?)`,
		id, device, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("begin import: %w", err)
	}
	return id, nil
}

// FinishImport stamps an import batch with its outcome.
func (s *Store) FinishImport(ctx context.Context, id string, files, failed []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE imports SET finished_at = ?, files = ?, failed = ? WHERE id = ?`,
		time.Now().Unix(), strings.Join(files, "\n"), strings.Join(failed, "\n"), id,
	)
	if err != nil {
		return fmt.Errorf("finish import: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish import: %w", err)
	}
	if n == 0 {
		return ErrImportNotFound
	}
	return nil
}

// GetImport loads an import batch.
func (s *Store) GetImport(ctx context.Context, id string) (*Import, error) {
	var (
		imp      Import
		started  int64
		finished sql.NullInt64
		files    string
		failed   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, device, started_at, finished_at, files, failed FROM imports WHERE id = ?`, id,
	).Scan(&imp.ID, &imp.Device, &started, &finished, &files, &failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	imp.StartedAt = time.Unix(started, 0).UTC()
	if finished.Valid {
		imp.FinishedAt = time.Unix(finished.Int64, 0).UTC()
	}
	imp.Files = splitLines(files)
	imp.Failed = splitLines(failed)
	return &imp, nil
}

// SaveSamples archives samples from source. Samples already stored for the
// same source and second are left untouched. It returns the number of rows
// inserted.
func (s *Store) SaveSamples(ctx context.Context, importID, source string, group fittrack.FileType, samples []fittrack.HeartRateSample) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO samples (source, ts, heart_rate, grp, import_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var ref any
	if importID != "" {
		ref = importID
	}

	inserted := 0
	for _, sample := range samples {
		res, err := stmt.ExecContext(ctx, source, sample.Timestamp.Unix(), sample.HeartRate, string(group), ref)
		if err != nil {
			return 0, fmt.Errorf("insert sample: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert sample: %w", err)
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit samples: %w", err)
	}
	return inserted, nil
}

// Samples returns archived samples with from <= timestamp < to, ordered by
// time. A zero bound is open.
func (s *Store) Samples(ctx context.Context, from, to time.Time) ([]Record, error) {
	query := `SELECT source, ts, heart_rate, grp FROM samples`
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		where = append(where, "ts < ?")
		args = append(args, to.Unix())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts, source"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r     Record
			ts    int64
			group string
		)
		if err := rows.Scan(&r.Source, &ts, &r.HeartRate, &group); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0).UTC()
		r.Group = fittrack.FileType(group)
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasSource reports whether any sample from source is archived.
func (s *Store) HasSource(ctx context.Context, source string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM samples WHERE source = ?`, source).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count samples: %w", err)
	}
	return n > 0, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
