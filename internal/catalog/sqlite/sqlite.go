package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chatbot/internal/catalog"
	"chatbot/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS services (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	cost         REAL NOT NULL DEFAULT 0,
	link         TEXT NOT NULL DEFAULT '',
	img_src      TEXT NOT NULL DEFAULT '',
	embedding    TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
`

// Storage keeps service records in a SQLite table.
type Storage struct {
	db *sql.DB
}

// NewStorage opens a SQLite database at path and applies the schema.
func NewStorage(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

// Services returns the embedded records in insertion order.
func (s *Storage) Services(ctx context.Context) ([]domain.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, cost, link, img_src, embedding, created_at, updated_at
		FROM services
		WHERE embedding != ''
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query services: %w", domain.ErrCatalog, err)
	}
	defer rows.Close()

	var records []domain.ServiceRecord
	for rows.Next() {
		var (
			r                  domain.ServiceRecord
			emb                string
			createdAt, updated string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Cost, &r.Link, &r.ImageURL, &emb, &createdAt, &updated); err != nil {
			return nil, fmt.Errorf("%w: scan service: %w", domain.ErrCatalog, err)
		}
		if r.Embedding, err = catalog.DecodeEmbedding(emb); err != nil {
			return nil, fmt.Errorf("%w: service %s: %w", domain.ErrCatalog, r.ID, err)
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updated)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalog, err)
	}
	return records, nil
}

// Insert stores a new record. Ids must be unique.
func (s *Storage) Insert(ctx context.Context, record domain.ServiceRecord) error {
	if err := catalog.Validate(record); err != nil {
		return err
	}
	emb, err := catalog.EncodeEmbedding(record.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO services (id, title, description, cost, link, img_src, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Title, record.Description, record.Cost, record.Link, record.ImageURL, emb,
		formatTime(record.CreatedAt), formatTime(record.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("service %s already exists", record.ID)
		}
		return fmt.Errorf("insert service %s: %w", record.ID, err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
