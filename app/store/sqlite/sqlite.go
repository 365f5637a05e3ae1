// Package sqlite stores documents as JSON rows in a single sqlite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lysyi3m/radio-site/app/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

	// One connection serializes writers, which is what makes Transact atomic.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type snapshot struct {
	id   string
	data []byte
}

func (s *snapshot) ID() string {
	return s.id
}

func (s *snapshot) DataTo(v any) error {
	return json.Unmarshal(s.data, v)
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &snapshot{id: id, data: []byte(data)}, nil
}

func (s *Store) Create(ctx context.Context, collection string, v any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, v); err != nil {
		return "", err
	}
	return id, nil
}

const upsertSQL = `
	INSERT INTO documents (collection, id, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (collection, id) DO UPDATE SET
		data = excluded.data,
		updated_at = excluded.updated_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func write(ctx context.Context, ex execer, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := ex.ExecContext(ctx, upsertSQL, collection, id, string(data), now, now); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, v any) error {
	return write(ctx, s.db, collection, id, v)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	if err := store.ValidateQuery(q); err != nil {
		return nil, err
	}

	var sb strings.Builder
	args := []any{collection}
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	for _, f := range q.Where {
		// field names are validated identifiers, so they can be inlined
		sb.WriteString(` AND json_extract(data, '$.` + f.Field + `') = ?`)
		args = append(args, f.Value)
	}
	if q.OrderBy != "" {
		sb.WriteString(` ORDER BY json_extract(data, '$.` + q.OrderBy + `')`)
		if q.Dir == store.Desc {
			sb.WriteString(` DESC`)
		}
		sb.WriteString(`, id`)
	} else {
		sb.WriteString(` ORDER BY created_at, id`)
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var snaps []store.Snapshot
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		snaps = append(snaps, &snapshot{id: id, data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return snaps, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (s *Store) Transact(ctx context.Context, collection, id string, fn store.TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cur store.Snapshot
	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to read document: %w", err)
	default:
		cur = &snapshot{id: id, data: []byte(data)}
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	if next != nil {
		if err := write(ctx, tx, collection, id, next); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
