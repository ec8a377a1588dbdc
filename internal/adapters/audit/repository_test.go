package audit_test

import (
	"context"
	"testing"

	"github.com/selivandex/news-sentiment/internal/adapters/audit"
	"github.com/selivandex/news-sentiment/test/testdb"
)

func TestRepository_AddAndRecent(t *testing.T) {
	db := testdb.Setup(t)
	repo := audit.NewRepository(db.DB.DB())
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := repo.Add(ctx, "rss", text); err != nil {
			t.Fatalf("Add(%q) failed: %v", text, err)
		}
	}

	entries, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "third" || entries[1].Text != "second" {
		t.Errorf("expected newest first, got %q then %q", entries[0].Text, entries[1].Text)
	}
	if entries[0].Source != "rss" || entries[0].TS == 0 {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestJournal_RecordPersists(t *testing.T) {
	db := testdb.Setup(t)
	journal := audit.NewJournal(audit.NewRepository(db.DB.DB()))
	ctx := context.Background()

	journal.Record(ctx, "predictor", "OPENROUTER_API_KEY missing; cannot call LLM.")
	journal.Recordf(ctx, "rss", "%s -> saved %d new articles", "https://example.com/rss", 3)

	db.AssertCount(t, "logs", 2)
}

func TestJournal_NilRepositoryDoesNotPanic(t *testing.T) {
	journal := audit.NewJournal(nil)
	journal.Record(context.Background(), "web", "no table configured")

	var nilJournal *audit.Journal
	nilJournal.Record(context.Background(), "web", "nil journal")
}
