package predictions

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/news-sentiment/pkg/models"
)

// Repository handles predictions, prediction_items and llm_queries
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates new prediction repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) stamp(ts int64) int64 {
	if ts == 0 {
		return r.now().Unix()
	}
	return ts
}

func (r *Repository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// AddPrediction stores the raw record of a run. A zero TS means now.
func (r *Repository) AddPrediction(ctx context.Context, p *models.Prediction) (int64, error) {
	p.TS = r.stamp(p.TS)

	id, err := r.insert(ctx, `
		INSERT INTO predictions (ts, horizon_minutes, model, raw_json, text)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, p.TS, p.HorizonMinutes, p.Model, p.RawJSON, p.Text)
	if err != nil {
		return 0, fmt.Errorf("failed to insert prediction: %w", err)
	}

	p.ID = id
	return id, nil
}

// AddPredictionItem stores one per-asset claim. A zero TS means now.
func (r *Repository) AddPredictionItem(ctx context.Context, item *models.PredictionItem) (int64, error) {
	item.TS = r.stamp(item.TS)

	id, err := r.insert(ctx, `
		INSERT INTO prediction_items (ts, horizon_minutes, model, asset, stance, text)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, item.TS, item.HorizonMinutes, item.Model, item.Asset, string(item.Stance), item.Text)
	if err != nil {
		return 0, fmt.Errorf("failed to insert prediction item: %w", err)
	}

	item.ID = id
	return id, nil
}

// AddLLMQuery stores the audit record of one model call. A zero TS means now.
func (r *Repository) AddLLMQuery(ctx context.Context, q *models.LLMQuery) (int64, error) {
	q.TS = r.stamp(q.TS)

	id, err := r.insert(ctx, `
		INSERT INTO llm_queries (ts, model, prompt, response, tokens_used, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, q.TS, q.Model, q.Prompt, q.Response, q.TokensUsed, q.DurationMS)
	if err != nil {
		return 0, fmt.Errorf("failed to insert llm query: %w", err)
	}

	q.ID = id
	return id, nil
}

// RecentPredictionItems returns the newest items first
func (r *Repository) RecentPredictionItems(ctx context.Context, limit int) ([]models.PredictionItem, error) {
	query := r.db.Rebind(`
		SELECT id, ts, horizon_minutes, model, asset, stance, text
		FROM prediction_items
		ORDER BY id DESC
		LIMIT ?
	`)

	items := make([]models.PredictionItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query prediction items: %w", err)
	}

	return items, nil
}

// RecentLLMQueries returns the newest model calls first
func (r *Repository) RecentLLMQueries(ctx context.Context, limit int) ([]models.LLMQuery, error) {
	query := r.db.Rebind(`
		SELECT id, ts, model, prompt, response, tokens_used, duration_ms
		FROM llm_queries
		ORDER BY id DESC
		LIMIT ?
	`)

	queries := make([]models.LLMQuery, 0)
	if err := r.db.SelectContext(ctx, &queries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query llm queries: %w", err)
	}

	return queries, nil
}

// RecentPredictions returns the newest raw prediction records first
func (r *Repository) RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error) {
	query := r.db.Rebind(`
		SELECT id, ts, horizon_minutes, model, raw_json, text
		FROM predictions
		ORDER BY id DESC
		LIMIT ?
	`)

	predictions := make([]models.Prediction, 0)
	if err := r.db.SelectContext(ctx, &predictions, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}

	return predictions, nil
}
