// Package history persists result records in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/repograde/repograde/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	kind        TEXT    NOT NULL,
	tool        TEXT    NOT NULL,
	repository  TEXT    NOT NULL,
	status      TEXT    NOT NULL,
	score       INTEGER NOT NULL,
	grade       TEXT    NOT NULL,
	created_at  INTEGER NOT NULL,
	payload     TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_repository ON records (repository, created_at DESC);
`

var _ domain.ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements domain.ResultStore. Records are insert-only.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is accepted for tests.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec domain.Record) error {
	if rec.ID == "" {
		return errors.New("record has no id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, tool, repository, status, score, grade, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Tool, rec.Repository, string(rec.Status), rec.Score, string(rec.Grade),
		rec.CreatedAt.UTC().UnixNano(), string(rec.Payload),
	)
	if err != nil {
		return fmt.Errorf("saving record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns records newest first. An empty repository lists every
// repository; a non-positive limit returns all rows.
func (s *SQLiteStore) List(ctx context.Context, repository string, limit int) ([]domain.Record, error) {
	query := `SELECT id, kind, tool, repository, status, score, grade, created_at, payload FROM records`
	var args []any
	if repository != "" {
		query += ` WHERE repository = ?`
		args = append(args, repository)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, tool, repository, status, score, grade, created_at, payload FROM records WHERE id = ?`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Record, error) {
	var (
		rec     domain.Record
		status  string
		grade   string
		created int64
		payload string
	)
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Tool, &rec.Repository, &status, &rec.Score, &grade, &created, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, err
		}
		return domain.Record{}, fmt.Errorf("reading record: %w", err)
	}
	rec.Status = domain.RecordStatus(status)
	rec.Grade = domain.Grade(grade)
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}
