package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/selivandex/news-sentiment/internal/ingestion"
	"github.com/selivandex/news-sentiment/internal/prediction"
	"github.com/selivandex/news-sentiment/pkg/models"
	"github.com/selivandex/news-sentiment/pkg/templates"
)

const listLimit = 10

// Collector triggers one ingestion run
type Collector interface {
	Collect(ctx context.Context) ingestion.RunSummary
}

// Predictor triggers one prediction run
type Predictor interface {
	Run(ctx context.Context, model, systemPrompt string) prediction.Result
}

// Reader reads stored run output
type Reader interface {
	RecentPredictionItems(ctx context.Context, limit int) ([]models.PredictionItem, error)
	RecentLLMQueries(ctx context.Context, limit int) ([]models.LLMQuery, error)
}

// Commands maps chat commands onto pipeline runs and reads
type Commands struct {
	collector Collector
	predictor Predictor
	reader    Reader
	renderer  templates.Renderer
}

// NewCommands creates new command handler
func NewCommands(collector Collector, predictor Predictor, reader Reader, renderer templates.Renderer) *Commands {
	return &Commands{
		collector: collector,
		predictor: predictor,
		reader:    reader,
		renderer:  renderer,
	}
}

// Handle executes one command and renders the reply text
func (c *Commands) Handle(ctx context.Context, command, args string) (string, error) {
	switch command {
	case "start", "help":
		return c.renderer.ExecuteTemplate("help.tmpl", nil)

	case "collect":
		summary := c.collector.Collect(ctx)
		return c.renderer.ExecuteTemplate("collect.tmpl", summary)

	case "predict":
		model := strings.TrimSpace(args)
		res := c.predictor.Run(ctx, model, "")
		return c.renderer.ExecuteTemplate("predict.tmpl", res)

	case "predictions":
		items, err := c.reader.RecentPredictionItems(ctx, listLimit)
		if err != nil {
			return "", fmt.Errorf("failed to load predictions: %w", err)
		}
		return c.renderer.ExecuteTemplate("predictions.tmpl", items)

	case "llm":
		queries, err := c.reader.RecentLLMQueries(ctx, 3)
		if err != nil {
			return "", fmt.Errorf("failed to load llm queries: %w", err)
		}
		return c.renderer.ExecuteTemplate("llm.tmpl", queries)

	default:
		return fmt.Sprintf("Unknown command: /%s\nUse /help to see available commands", command), nil
	}
}
