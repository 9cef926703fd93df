// Package sqlite stores workshop documents in a SQLite database.
//
// Each workshop is one row holding the summary columns used by List and the
// full JSON document. The database runs in WAL mode with a single writer
// connection.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store implements ports.WorkshopStore on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// pragmas and schema. It is safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the workshop row inside a transaction.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.Metadata.ID == "" {
		return domain.Validation("workshop id cannot be empty")
	}
	out := doc.Clone()
	out.Normalize()

	data, err := json.Marshal(out)
	if err != nil {
		return domain.Storage("save", fmt.Errorf("failed to marshal workshop: %w", err))
	}
	sum := out.Summarize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Storage("save", fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workshops (id, name, domain, created_at, updated_at, element_count, context_count, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			domain = excluded.domain,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			element_count = excluded.element_count,
			context_count = excluded.context_count,
			document = excluded.document`,
		sum.ID, sum.Name, sum.Domain,
		formatTime(sum.CreatedAt), formatTime(sum.UpdatedAt),
		sum.ElementCount, sum.ContextCount, data,
	)
	if err != nil {
		return domain.Storage("save", fmt.Errorf("upsert workshop %s: %w", sum.ID, err))
	}
	if err := tx.Commit(); err != nil {
		return domain.Storage("save", fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Load reads the document column of the workshop row.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM workshops WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("workshop", id)
	}
	if err != nil {
		return nil, domain.Storage("load", fmt.Errorf("query workshop %s: %w", id, err))
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.Storage("load", fmt.Errorf("failed to unmarshal workshop %s: %w", id, err))
	}
	doc.Normalize()
	return &doc, nil
}

// Delete removes the workshop row.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workshops WHERE id = ?`, id)
	if err != nil {
		return domain.Storage("delete", fmt.Errorf("delete workshop %s: %w", id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Storage("delete", err)
	}
	if n == 0 {
		return domain.NotFound("workshop", id)
	}
	return nil
}

// List reads only the summary columns.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, domain, created_at, updated_at, element_count, context_count
		FROM workshops`)
	if err != nil {
		return nil, domain.Storage("list", fmt.Errorf("query workshops: %w", err))
	}
	defer rows.Close()

	summaries := []domain.Summary{}
	for rows.Next() {
		var (
			sum              domain.Summary
			created, updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Domain, &created, &updated, &sum.ElementCount, &sum.ContextCount); err != nil {
			return nil, domain.Storage("list", fmt.Errorf("scan workshop: %w", err))
		}
		if sum.CreatedAt, err = parseTime(created); err != nil {
			return nil, domain.Storage("list", err)
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, domain.Storage("list", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list", err)
	}

	// Sorted in Go: RFC 3339 text does not order correctly across offsets.
	domain.SortSummaries(summaries)
	return summaries, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
