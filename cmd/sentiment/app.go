package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/ai"
	"github.com/selivandex/news-sentiment/internal/adapters/audit"
	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/internal/adapters/database"
	"github.com/selivandex/news-sentiment/internal/adapters/news"
	"github.com/selivandex/news-sentiment/internal/adapters/predictions"
	"github.com/selivandex/news-sentiment/internal/ingestion"
	"github.com/selivandex/news-sentiment/internal/prediction"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

// app holds the wired components shared by every command
type app struct {
	cfg         *config.Config
	db          *database.DB
	logs        *audit.Repository
	journal     *audit.Journal
	articles    *news.Repository
	predictions *predictions.Repository
	llm         *ai.OpenRouterClient
	collector   *ingestion.Collector
	predictor   *prediction.Predictor
}

// newApp opens the database, applies migrations and builds both pipelines
func newApp(cfg *config.Config) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	prompts, err := ai.NewPromptBuilder()
	if err != nil {
		db.Close()
		return nil, err
	}

	conn := db.DB()
	logs := audit.NewRepository(conn)
	journal := audit.NewJournal(logs)
	articles := news.NewRepository(conn, journal)
	store := predictions.NewRepository(conn)
	llm := ai.NewOpenRouterClient(&cfg.LLM)

	feeds := news.FeedsOrDefault(cfg.Feeds.URLs)
	fetcher := news.NewRSSFetcher(nil, cfg.Feeds.UserAgent)

	a := &app{
		cfg:         cfg,
		db:          db,
		logs:        logs,
		journal:     journal,
		articles:    articles,
		predictions: store,
		llm:         llm,
		collector:   ingestion.NewCollector(feeds, fetcher, articles, journal, cfg.Feeds.FetchTimeout),
		predictor:   prediction.NewPredictor(articles, store, llm, prompts, journal, cfg.LLM.ResolveModel),
	}

	logger.Info("application initialized",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("feeds", len(feeds)),
		zap.Bool("llm_enabled", llm.IsEnabled()),
	)

	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
