// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sigil-dev/sparqlboard/internal/store"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Compile-time interface check.
var _ store.HistoryStore = (*HistoryStore)(nil)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// HistoryStore implements store.HistoryStore backed by SQLite.
type HistoryStore struct {
	db    *sql.DB
	limit int
}

// NewHistoryStore opens (or creates) the database at dsn and initialises
// the history table. An empty dsn is in-memory. limit caps the number of
// retained entries; 0 keeps everything.
func NewHistoryStore(dsn string, limit int) (*HistoryStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite3", withParams(dsn))
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "opening sqlite db")
	}
	// One connection: an in-memory database lives and dies with it, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "pinging sqlite db")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "migrating sqlite db")
	}

	return &HistoryStore{db: db, limit: limit}, nil
}

func withParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	params := "_busy_timeout=5000"
	if dsn != MemoryDSN && !strings.Contains(dsn, "mode=memory") {
		params += "&_journal_mode=WAL"
	}
	return dsn + sep + params
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS history (
	pk          INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	seq         INTEGER NOT NULL DEFAULT 0,
	query       TEXT NOT NULL,
	endpoint    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	node_count  INTEGER NOT NULL DEFAULT 0,
	edge_count  INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_status ON history(status);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) Record(ctx context.Context, entry *store.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	store.Fill(entry)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO history (id, seq, query, endpoint, status, row_count, node_count, edge_count, skipped, error, duration_ns, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, q,
		entry.ID,
		int64(entry.Seq),
		entry.Query,
		entry.Endpoint,
		string(entry.Status),
		entry.Rows,
		entry.Nodes,
		entry.Edges,
		entry.Skipped,
		entry.Error,
		int64(entry.Duration),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "recording history entry", sberr.Field("id", entry.ID))
	}

	if s.limit > 0 {
		const trim = `DELETE FROM history WHERE pk NOT IN (
	SELECT pk FROM history ORDER BY pk DESC LIMIT ?
)`
		if _, err := tx.ExecContext(ctx, trim, s.limit); err != nil {
			return sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "trimming history")
		}
	}

	if err := tx.Commit(); err != nil {
		return sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "committing history entry")
	}
	return nil
}

const selectColumns = `id, seq, query, endpoint, status, row_count, node_count, edge_count, skipped, error, duration_ns, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*store.Entry, error) {
	var (
		e         store.Entry
		seq       int64
		status    string
		duration  int64
		createdAt string
	)
	if err := row.Scan(
		&e.ID,
		&seq,
		&e.Query,
		&e.Endpoint,
		&status,
		&e.Rows,
		&e.Nodes,
		&e.Edges,
		&e.Skipped,
		&e.Error,
		&duration,
		&createdAt,
	); err != nil {
		return nil, err
	}
	e.Seq = uint64(seq)
	e.Status = store.Status(status)
	e.Duration = time.Duration(duration)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func (s *HistoryStore) Get(ctx context.Context, id string) (*store.Entry, error) {
	q := `SELECT ` + selectColumns + ` FROM history WHERE id = ?`

	e, err := scanEntry(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sberr.New(sberr.CodeStoreEntityNotFound, "history entry not found", sberr.Field("id", id))
	}
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "getting history entry", sberr.Field("id", id))
	}
	return e, nil
}

func (s *HistoryStore) List(ctx context.Context, opts store.ListOpts) ([]*store.Entry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit == 0 {
		limit = -1
	}

	q := `SELECT ` + selectColumns + ` FROM history ORDER BY pk DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, limit, opts.Offset)
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "listing history")
	}
	defer rows.Close()

	var out []*store.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "scanning history entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "iterating history")
	}
	if out == nil {
		out = []*store.Entry{}
	}
	return out, nil
}

func (s *HistoryStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "counting history")
	}
	return n, nil
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return sberr.Wrap(err, sberr.CodeStoreDatabaseFailure, "clearing history")
	}
	return nil
}

// formatTime serialises a time value for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
