package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/ai"
	"github.com/selivandex/news-sentiment/pkg/logger"
	"github.com/selivandex/news-sentiment/pkg/models"
)

const (
	// WindowHours is how far back articles are read for a run
	WindowHours = 24

	// MaxArticles caps the number of articles placed in the prompt
	MaxArticles = 300

	// MaxAssetLength is the stored asset label limit in characters
	MaxAssetLength = 64

	auditSource = "predictor"
)

// Outcome classifies how a run ended
type Outcome string

const (
	OutcomeNoCredential   Outcome = "no_credential"
	OutcomeNoArticles     Outcome = "no_articles"
	OutcomePromptError    Outcome = "prompt_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeInvalidJSON    Outcome = "invalid_json"
	OutcomeStoreError     Outcome = "store_error"
	OutcomeSaved          Outcome = "saved"
)

// Result is returned by every run; Err carries the underlying fault, if any
type Result struct {
	RunID      string
	Model      string
	ItemsSaved int
	Outcome    Outcome
	Err        error
}

// ArticleSource supplies the recent article window
type ArticleSource interface {
	RecentArticles(ctx context.Context, hours, limit int) ([]models.ArticlePreview, error)
}

// Store persists run output
type Store interface {
	AddPrediction(ctx context.Context, p *models.Prediction) (int64, error)
	AddPredictionItem(ctx context.Context, item *models.PredictionItem) (int64, error)
	AddLLMQuery(ctx context.Context, q *models.LLMQuery) (int64, error)
}

// PromptBuilder renders the user prompt
type PromptBuilder interface {
	Build(articles []models.ArticlePreview) (string, error)
}

// Recorder receives audit lines
type Recorder interface {
	Record(ctx context.Context, source, text string)
}

// ModelResolver picks the effective model for a requested one
type ModelResolver func(requested string) string

// Predictor runs one sentiment forecast against the recent article window
type Predictor struct {
	articles ArticleSource
	store    Store
	llm      ai.Provider
	prompts  PromptBuilder
	recorder Recorder
	resolve  ModelResolver
	clock    func() time.Time
}

// NewPredictor creates new predictor
func NewPredictor(
	articles ArticleSource,
	store Store,
	llm ai.Provider,
	prompts PromptBuilder,
	recorder Recorder,
	resolve ModelResolver,
) *Predictor {
	return &Predictor{
		articles: articles,
		store:    store,
		llm:      llm,
		prompts:  prompts,
		recorder: recorder,
		resolve:  resolve,
		clock:    time.Now,
	}
}

// Run executes one forecast. It never panics or returns an error of its
// own; every failure is recorded and reported through Result.
func (p *Predictor) Run(ctx context.Context, model, systemPrompt string) Result {
	res := Result{RunID: uuid.NewString(), Model: p.resolveModel(model)}
	log := logger.With(zap.String("run_id", res.RunID), zap.String("model", res.Model))

	if p.llm == nil || !p.llm.IsEnabled() {
		p.record(ctx, "OPENROUTER_API_KEY missing; cannot call LLM.")
		res.Outcome = OutcomeNoCredential
		return res
	}

	articles, err := p.articles.RecentArticles(ctx, WindowHours, MaxArticles)
	if err != nil {
		p.record(ctx, fmt.Sprintf("failed to load recent articles: %v", err))
		res.Outcome, res.Err = OutcomeStoreError, err
		return res
	}
	if len(articles) == 0 {
		p.record(ctx, "No articles in last 24h; collect RSS first.")
		res.Outcome = OutcomeNoArticles
		return res
	}

	prompt, err := p.prompts.Build(articles)
	if err != nil {
		p.record(ctx, fmt.Sprintf("failed to build prompt: %v", err))
		res.Outcome, res.Err = OutcomePromptError, err
		return res
	}

	p.record(ctx, fmt.Sprintf("Calling LLM model=%s with %d articles (24h horizon)", res.Model, len(articles)))

	start := p.clock()
	completion, err := p.llm.Complete(ctx, ai.CompletionRequest{
		Model:        res.Model,
		SystemPrompt: ai.SystemPromptOrDefault(systemPrompt),
		UserPrompt:   prompt,
	})
	elapsedMS := p.clock().Sub(start).Milliseconds()

	if err != nil {
		p.record(ctx, fmt.Sprintf("LLM API call failed: %v", err))
		p.saveQuery(ctx, &models.LLMQuery{
			Model:      res.Model,
			Prompt:     prompt,
			Response:   fmt.Sprintf("ERROR: %v", err),
			DurationMS: elapsedMS,
		})
		res.Outcome, res.Err = OutcomeTransportError, err
		return res
	}

	p.saveQuery(ctx, &models.LLMQuery{
		Model:      res.Model,
		Prompt:     prompt,
		Response:   completion.Content,
		TokensUsed: completion.TotalTokens,
		DurationMS: elapsedMS,
	})

	data, err := decodeObject(completion.Content)
	if err != nil {
		_, storeErr := p.store.AddPrediction(ctx, &models.Prediction{
			HorizonMinutes: models.HorizonMinutes,
			Model:          res.Model,
			RawJSON:        string(completion.Envelope),
		})
		if storeErr != nil {
			log.Warn("failed to store unparsed prediction", zap.Error(storeErr))
		}
		p.record(ctx, fmt.Sprintf("Model did not return valid JSON: %v", err))
		res.Outcome, res.Err = OutcomeInvalidJSON, err
		return res
	}

	saved, err := p.persist(ctx, res.Model, data)
	res.ItemsSaved = saved
	if err != nil {
		p.record(ctx, fmt.Sprintf("failed to store prediction: %v", err))
		res.Outcome, res.Err = OutcomeStoreError, err
		return res
	}

	p.record(ctx, fmt.Sprintf("Saved %d prediction items in %dms", saved, elapsedMS))
	res.Outcome = OutcomeSaved

	log.Info("prediction run finished",
		zap.Int("items", saved),
		zap.Int64("duration_ms", elapsedMS),
	)

	return res
}

// persist writes the parsed prediction and its items in model order
func (p *Predictor) persist(ctx context.Context, model string, data map[string]any) (int, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to re-encode prediction: %w", err)
	}

	if _, err := p.store.AddPrediction(ctx, &models.Prediction{
		HorizonMinutes: models.HorizonMinutes,
		Model:          model,
		RawJSON:        string(raw),
		Text:           "Overall sentiment: " + overallSentiment(data),
	}); err != nil {
		return 0, err
	}

	saved := 0
	for _, item := range ExtractItems(data) {
		item.HorizonMinutes = models.HorizonMinutes
		item.Model = model
		if _, err := p.store.AddPredictionItem(ctx, &item); err != nil {
			return saved, err
		}
		saved++
	}

	return saved, nil
}

func (p *Predictor) saveQuery(ctx context.Context, q *models.LLMQuery) {
	if _, err := p.store.AddLLMQuery(ctx, q); err != nil {
		p.record(ctx, fmt.Sprintf("failed to store llm query: %v", err))
	}
}

func (p *Predictor) resolveModel(requested string) string {
	if p.resolve != nil {
		return p.resolve(requested)
	}
	return requested
}

func (p *Predictor) record(ctx context.Context, text string) {
	if p.recorder == nil {
		logger.Info(text, zap.String("source", auditSource))
		return
	}
	p.recorder.Record(ctx, auditSource, text)
}

// decodeObject parses model output, accepting only a JSON object
func decodeObject(content string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return data, nil
}

// ExtractItems reads bullish then bearish entries in model order. Missing
// fields become "?"; assets are trimmed and cut to MaxAssetLength characters.
func ExtractItems(data map[string]any) []models.PredictionItem {
	var items []models.PredictionItem

	for _, stance := range models.Stances {
		list, ok := data[string(stance)].([]any)
		if !ok {
			continue
		}

		for _, raw := range list {
			entry, _ := raw.(map[string]any)
			items = append(items, models.PredictionItem{
				Asset:  truncateRunes(strings.TrimSpace(field(entry, "asset")), MaxAssetLength),
				Stance: stance,
				Text:   strings.TrimSpace(field(entry, "prediction")),
			})
		}
	}

	return items
}

func overallSentiment(data map[string]any) string {
	if s := stringify(data["overall_sentiment"]); s != "" {
		return s
	}
	return "unknown"
}

// field returns the stringified value or "?" when absent or null
func field(entry map[string]any, key string) string {
	v, ok := entry[key]
	if !ok || v == nil {
		return "?"
	}
	return stringify(v)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
