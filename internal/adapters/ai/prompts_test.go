package ai

import (
	"testing"

	"github.com/selivandex/news-sentiment/pkg/models"
)

func TestPromptBuilder_Build(t *testing.T) {
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatalf("NewPromptBuilder failed: %v", err)
	}

	got, err := b.Build([]models.ArticlePreview{
		{Title: "ETH upgrade ships", Link: "https://n/eth", PublishedStr: "2025-10-14 11:00:00", Snippet: "Devs confirm"},
		{Title: "BTC dips", Link: "https://n/btc", PublishedStr: "2025-10-14 09:30:00", Snippet: ""},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "HORIZON_MINUTES=1440\n\n" +
		"DATA_TIMESPAN: News articles from the past 24 hours.\n\n" +
		"PREDICTION_HORIZON: Predict market movements for the next 24 hours (1440 minutes).\n\n" +
		"Recent market context (most recent first):\n" +
		"- 2025-10-14 11:00:00 ETH upgrade ships | Devs confirm [https://n/eth]\n" +
		"- 2025-10-14 09:30:00 BTC dips |  [https://n/btc]"

	if got != want {
		t.Errorf("prompt mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestPromptBuilder_NoArticles(t *testing.T) {
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatalf("NewPromptBuilder failed: %v", err)
	}

	got, err := b.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got != "No recent articles found; respond with neutral sentiment and empty lists." {
		t.Errorf("unexpected empty-window prompt: %q", got)
	}
}

func TestPromptBuilder_DoesNotEscapeText(t *testing.T) {
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatalf("NewPromptBuilder failed: %v", err)
	}

	got, err := b.Build([]models.ArticlePreview{
		{Title: `S&P <rally> "now"`, Link: "https://n/x?a=1&b=2", PublishedStr: "2025-10-14 00:00:00"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	const line = `- 2025-10-14 00:00:00 S&P <rally> "now" |  [https://n/x?a=1&b=2]`
	if got[len(got)-len(line):] != line {
		t.Errorf("expected raw text in prompt, got %q", got)
	}
}

func TestSystemPromptOrDefault(t *testing.T) {
	if SystemPromptOrDefault("") != DefaultSystemPrompt {
		t.Error("empty prompt should fall back to default")
	}
	if SystemPromptOrDefault("custom") != "custom" {
		t.Error("custom prompt should be kept")
	}
}
