package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/news"
	"github.com/selivandex/news-sentiment/pkg/logger"
	"github.com/selivandex/news-sentiment/pkg/models"
)

const (
	// ColdStartWindow bounds how far back a source is read when it has no
	// stored articles, or when its newest article is older than this
	ColdStartWindow = 24 * time.Hour

	// DefaultFetchTimeout is the hard limit for one feed fetch
	DefaultFetchTimeout = 10 * time.Second

	auditSource = "rss"

	publishedLayout = "2006-01-02 15:04:05"
)

// Fetcher downloads and parses one feed
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]news.Entry, error)
}

// ArticleStore is the subset of the article repository used by ingestion
type ArticleStore interface {
	LatestPublishedTime(ctx context.Context, source string) (int64, bool, error)
	SaveArticles(ctx context.Context, articles []models.Article) int
}

// Recorder receives audit lines
type Recorder interface {
	Record(ctx context.Context, source, text string)
}

// SourceResult describes what happened to one feed during a run
type SourceResult struct {
	Source    string `json:"source"`
	Watermark int64  `json:"watermark"`
	Fetched   int    `json:"fetched"`
	Eligible  int    `json:"eligible"`
	Inserted  int    `json:"inserted"`
	Error     string `json:"error,omitempty"`
}

// RunSummary is the result of one collection run
type RunSummary struct {
	RunID   string         `json:"run_id"`
	Sources []SourceResult `json:"sources"`
	Total   int            `json:"inserted"`
}

// Collector pulls new entries from every configured feed into the store
type Collector struct {
	feeds    []string
	fetcher  Fetcher
	store    ArticleStore
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time
}

// NewCollector creates new collector. A non-positive timeout falls back to
// DefaultFetchTimeout.
func NewCollector(feeds []string, fetcher Fetcher, store ArticleStore, recorder Recorder, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Collector{
		feeds:    feeds,
		fetcher:  fetcher,
		store:    store,
		recorder: recorder,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Collect processes every feed sequentially and never fails as a whole:
// per-source faults are recorded and the run moves on.
func (c *Collector) Collect(ctx context.Context) RunSummary {
	summary := RunSummary{
		RunID:   uuid.NewString(),
		Sources: make([]SourceResult, 0, len(c.feeds)),
	}
	log := logger.With(zap.String("run_id", summary.RunID))

	log.Info("rss collection started", zap.Int("feeds", len(c.feeds)))
	startTime := time.Now()

	for _, url := range c.feeds {
		if ctx.Err() != nil {
			c.record(ctx, fmt.Sprintf("collection cancelled before %s", url))
			break
		}

		result := c.collectSource(ctx, url)
		summary.Sources = append(summary.Sources, result)
		summary.Total += result.Inserted
	}

	log.Info("rss collection finished",
		zap.Int("inserted", summary.Total),
		zap.Int("sources", len(summary.Sources)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return summary
}

func (c *Collector) collectSource(ctx context.Context, url string) SourceResult {
	result := SourceResult{Source: url}

	watermark := c.watermark(ctx, url)
	result.Watermark = watermark
	c.record(ctx, fmt.Sprintf("using threshold for %s: %sZ", url, time.Unix(watermark, 0).UTC().Format(publishedLayout)))

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	entries, err := c.fetcher.Fetch(fetchCtx, url)
	timedOut := errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		if timedOut || errors.Is(err, context.DeadlineExceeded) {
			result.Error = "timeout"
			c.record(ctx, fmt.Sprintf("timeout parsing %s", url))
		} else {
			result.Error = err.Error()
			c.record(ctx, fmt.Sprintf("feed error for %s: %v", url, err))
		}
		return result
	}
	result.Fetched = len(entries)

	articles := Normalize(url, entries, watermark)
	result.Eligible = len(articles)

	if len(articles) == 0 {
		c.record(ctx, fmt.Sprintf("%s -> no new articles", url))
		return result
	}

	result.Inserted = c.store.SaveArticles(ctx, articles)
	c.record(ctx, fmt.Sprintf("%s -> saved %d new articles", url, result.Inserted))

	return result
}

// watermark is the newest stored publish time for the source, never older
// than ColdStartWindow before now.
func (c *Collector) watermark(ctx context.Context, url string) int64 {
	floor := c.now().Add(-ColdStartWindow).Unix()

	latest, found, err := c.store.LatestPublishedTime(ctx, url)
	if err != nil {
		c.record(ctx, fmt.Sprintf("error reading latest article time for %s: %v", url, err))
		return floor
	}
	if !found || latest < floor {
		return floor
	}
	return latest
}

func (c *Collector) record(ctx context.Context, text string) {
	if c.recorder == nil {
		logger.Info(text, zap.String("source", auditSource))
		return
	}
	c.recorder.Record(ctx, auditSource, text)
}

// Normalize turns feed entries into articles for source, keeping only
// entries with a link and a publish time strictly after watermark.
func Normalize(source string, entries []news.Entry, watermark int64) []models.Article {
	articles := make([]models.Article, 0, len(entries))

	for _, e := range entries {
		if e.Published == nil || e.Link == "" {
			continue
		}

		published := e.Published.UTC()
		ts := published.Unix()
		if ts <= watermark {
			continue
		}

		articles = append(articles, models.Article{
			Title:          news.Sanitize(e.Title),
			Link:           e.Link,
			Source:         source,
			PublishedTS:    ts,
			PublishedStr:   published.Format(publishedLayout),
			Description:    news.Sanitize(e.Description),
			Content:        news.Sanitize(e.Content),
			ContentEncoded: news.Sanitize(e.ContentEncoded),
		})
	}

	return articles
}
