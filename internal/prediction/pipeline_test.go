package prediction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/selivandex/news-sentiment/internal/adapters/ai"
	"github.com/selivandex/news-sentiment/internal/adapters/audit"
	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/internal/adapters/news"
	"github.com/selivandex/news-sentiment/internal/adapters/predictions"
	"github.com/selivandex/news-sentiment/internal/prediction"
	"github.com/selivandex/news-sentiment/pkg/models"
	"github.com/selivandex/news-sentiment/test/testdb"
)

func TestPipeline_EndToEnd(t *testing.T) {
	db := testdb.Setup(t)
	conn := db.DB.DB()
	ctx := context.Background()

	journal := audit.NewJournal(audit.NewRepository(conn))
	articles := news.NewRepository(conn, journal)
	store := predictions.NewRepository(conn)

	published := time.Now().Add(-time.Hour).UTC()
	articles.SaveArticles(ctx, []models.Article{{
		Title:        "Bitcoin ETF inflows surge",
		Link:         "https://news.example/btc-etf",
		Source:       "https://news.example/rss",
		PublishedTS:  published.Unix(),
		PublishedStr: published.Format("2006-01-02 15:04:05"),
		Description:  "Record inflows",
	}})

	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) == 2 {
			gotPrompt = body.Messages[1].Content
		}

		content, _ := json.Marshal(`{"horizon_minutes":1440,"overall_sentiment":"bullish","bullish":[{"asset":"BTC","prediction":"ETF demand lifts price."}],"bearish":[]}`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + string(content) + `}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	llmCfg := &config.LLMConfig{
		APIKey:    "sk-or-test",
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		MaxTokens: 2000,
	}
	builder, err := ai.NewPromptBuilder()
	if err != nil {
		t.Fatalf("NewPromptBuilder failed: %v", err)
	}

	p := prediction.NewPredictor(articles, store, ai.NewOpenRouterClient(llmCfg), builder, journal, llmCfg.ResolveModel)
	res := p.Run(ctx, "", "")

	if res.Outcome != prediction.OutcomeSaved || res.ItemsSaved != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Model != config.DefaultModel {
		t.Errorf("expected default model, got %q", res.Model)
	}
	if !strings.Contains(gotPrompt, "Bitcoin ETF inflows surge | Record inflows [https://news.example/btc-etf]") {
		t.Errorf("article missing from prompt: %q", gotPrompt)
	}

	db.AssertCount(t, "predictions", 1)
	db.AssertCount(t, "prediction_items", 1)
	db.AssertCount(t, "llm_queries", 1)

	queries, err := store.RecentLLMQueries(ctx, 10)
	if err != nil {
		t.Fatalf("RecentLLMQueries failed: %v", err)
	}
	if queries[0].TokensUsed == nil || *queries[0].TokensUsed != 42 {
		t.Errorf("tokens not stored: %+v", queries[0])
	}

	logs, err := audit.NewRepository(conn).Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent logs failed: %v", err)
	}
	if len(logs) < 2 || !strings.HasPrefix(logs[0].Text, "Saved 1 prediction items in ") {
		t.Errorf("unexpected audit trail: %+v", logs)
	}
}
