package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/pkg/database"
)

var schema = map[string][]string{
	database.DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS threads (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_threads_updated_at (updated_at)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS thread_messages (
			id VARCHAR(36) PRIMARY KEY,
			thread_id VARCHAR(36) NOT NULL,
			role VARCHAR(16) NOT NULL,
			text MEDIUMTEXT NOT NULL,
			images TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_thread_messages_thread (thread_id, created_at)
		) CHARACTER SET utf8mb4`,
	},
	database.DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS threads (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_updated_at ON threads (updated_at)`,
		`CREATE TABLE IF NOT EXISTS thread_messages (
			id VARCHAR(36) PRIMARY KEY,
			thread_id VARCHAR(36) NOT NULL REFERENCES threads (id) ON DELETE CASCADE,
			role VARCHAR(16) NOT NULL,
			text TEXT NOT NULL,
			images TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_thread_messages_thread ON thread_messages (thread_id, created_at)`,
	},
}

// EnsureSchema creates the thread tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schema[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// threadRepository is the SQL implementation of domain.ThreadRepository.
// Queries are written with ? placeholders and rebound for postgres.
type threadRepository struct {
	db     *sql.DB
	driver string
}

// NewThreadRepository creates a repository over an open pool.
func NewThreadRepository(db *sql.DB, driver string) domain.ThreadRepository {
	return &threadRepository{
		db:     db,
		driver: driver,
	}
}

func (r *threadRepository) q(query string) string {
	if r.driver != database.DriverPostgres {
		return query
	}
	return rebind(query)
}

// rebind rewrites ? placeholders as $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// CreateThread inserts a thread.
func (r *threadRepository) CreateThread(ctx context.Context, thread *entity.Thread) error {
	_, err := r.db.ExecContext(ctx,
		r.q(`INSERT INTO threads (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`),
		thread.ID, thread.Title, thread.CreatedAt.UTC(), thread.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert thread: %w", err)
	}
	return nil
}

// GetThread gets a thread by ID
func (r *threadRepository) GetThread(ctx context.Context, id string) (*entity.Thread, error) {
	row := r.db.QueryRowContext(ctx,
		r.q(`SELECT id, title, created_at, updated_at FROM threads WHERE id = ?`), id)

	thread, err := scanThread(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Thread", id)
		}
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return thread, nil
}

// ListThreads lists threads, most recently updated first
func (r *threadRepository) ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT id, title, created_at, updated_at FROM threads ORDER BY updated_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	threads := make([]*entity.Thread, 0)
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}

// AppendMessages inserts messages and touches the thread in one transaction.
func (r *threadRepository) AppendMessages(ctx context.Context, threadID string, messages []*entity.StoredMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := messages[len(messages)-1].CreatedAt.UTC()
	res, err := tx.ExecContext(ctx, r.q(`UPDATE threads SET updated_at = ? WHERE id = ?`), updatedAt, threadID)
	if err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("Thread", threadID)
	}

	insert := r.q(`INSERT INTO thread_messages (id, thread_id, role, text, images, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, m := range messages {
		images, err := encodeImages(m.Images)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, m.ID, threadID, m.Role, m.Text, images, m.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListMessages lists a thread's messages, oldest first
func (r *threadRepository) ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT id, thread_id, role, text, images, created_at FROM thread_messages WHERE thread_id = ? ORDER BY created_at ASC`),
		threadID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*entity.StoredMessage, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// normalizeTime keeps timestamps comparable across drivers.
func normalizeTime(t time.Time) time.Time {
	return t.UTC()
}
