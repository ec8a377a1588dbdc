package news

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/news-sentiment/pkg/models"
)

// SnippetLength is the number of characters kept in an article preview
const SnippetLength = 300

// Recorder receives audit lines for failures the store swallows
type Recorder interface {
	Record(ctx context.Context, source, text string)
}

// Repository handles database operations for articles
type Repository struct {
	db       *sqlx.DB
	recorder Recorder
	now      func() time.Time
}

// NewRepository creates new article repository. recorder may be nil.
func NewRepository(db *sqlx.DB, recorder Recorder) *Repository {
	return &Repository{db: db, recorder: recorder, now: time.Now}
}

// InsertIfAbsent stores the article unless its link is already known.
// Returns 1 when a row was written and 0 for a duplicate.
func (r *Repository) InsertIfAbsent(ctx context.Context, a *models.Article) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO articles (
			title, link, source, published_ts, published_str,
			description, content, content_encoded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (link) DO NOTHING
	`)

	res, err := r.db.ExecContext(ctx, query,
		a.Title,
		a.Link,
		a.Source,
		a.PublishedTS,
		a.PublishedStr,
		a.Description,
		a.Content,
		a.ContentEncoded,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article %s: %w", a.Link, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return 1, nil
	}
	return 0, nil
}

// SaveArticles inserts each article independently and returns how many were
// new. A failing row is recorded and skipped; the batch is never aborted.
func (r *Repository) SaveArticles(ctx context.Context, articles []models.Article) int {
	inserted := 0
	for i := range articles {
		n, err := r.InsertIfAbsent(ctx, &articles[i])
		if err != nil {
			if r.recorder != nil {
				r.recorder.Record(ctx, "db", fmt.Sprintf("error inserting article: %v", err))
			}
			continue
		}
		inserted += n
	}
	return inserted
}

// LatestPublishedTime returns the newest published_ts stored for a source.
// found is false when the source has no articles yet.
func (r *Repository) LatestPublishedTime(ctx context.Context, source string) (int64, bool, error) {
	query := r.db.Rebind(`SELECT MAX(published_ts) FROM articles WHERE source = ?`)

	var latest sql.NullInt64
	if err := r.db.QueryRowxContext(ctx, query, source).Scan(&latest); err != nil {
		return 0, false, fmt.Errorf("failed to get latest publish time for %s: %w", source, err)
	}

	return latest.Int64, latest.Valid, nil
}

// RecentArticles returns previews published within the last hours, newest first
func (r *Repository) RecentArticles(ctx context.Context, hours, limit int) ([]models.ArticlePreview, error) {
	since := r.now().Unix() - int64(hours)*3600

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT
			title, link, source, published_ts, published_str,
			substr(coalesce(nullif(description, ''), nullif(content, ''), nullif(content_encoded, ''), ''), 1, %d) AS snippet
		FROM articles
		WHERE published_ts >= ?
		ORDER BY published_ts DESC
		LIMIT ?
	`, SnippetLength))

	previews := make([]models.ArticlePreview, 0)
	if err := r.db.SelectContext(ctx, &previews, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}

	return previews, nil
}
