package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/news-sentiment/pkg/models"
)

// Repository handles the append-only logs table
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates new audit log repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Add appends one log line and returns its id
func (r *Repository) Add(ctx context.Context, source, text string) (int64, error) {
	query := r.db.Rebind(`INSERT INTO logs (ts, source, text) VALUES (?, ?, ?) RETURNING id`)

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, r.now().Unix(), source, text).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert log entry: %w", err)
	}

	return id, nil
}

// Recent returns the newest log lines first
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	query := r.db.Rebind(`
		SELECT id, ts, source, text
		FROM logs
		ORDER BY id DESC
		LIMIT ?
	`)

	entries := make([]models.LogEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}

	return entries, nil
}
