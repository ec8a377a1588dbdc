package news

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/selivandex/news-sentiment/pkg/models"
	"github.com/selivandex/news-sentiment/test/testdb"
)

type recordedLine struct {
	source string
	text   string
}

type memoryRecorder struct {
	lines []recordedLine
}

func (m *memoryRecorder) Record(_ context.Context, source, text string) {
	m.lines = append(m.lines, recordedLine{source: source, text: text})
}

func newTestRepository(t *testing.T, now time.Time) (*Repository, *testdb.TestDB, *memoryRecorder) {
	t.Helper()
	db := testdb.Setup(t)
	rec := &memoryRecorder{}
	repo := NewRepository(db.DB.DB(), rec)
	repo.now = func() time.Time { return now }
	return repo, db, rec
}

func article(source, link string, ts int64) models.Article {
	return models.Article{
		Title:        "title " + link,
		Link:         link,
		Source:       source,
		PublishedTS:  ts,
		PublishedStr: time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05"),
		Description:  "desc " + link,
	}
}

func TestInsertIfAbsent_Dedup(t *testing.T) {
	repo, db, _ := newTestRepository(t, time.Now())
	ctx := context.Background()

	a := article("https://feed.example/rss", "https://feed.example/a", 1000)

	n, err := repo.InsertIfAbsent(ctx, &a)
	if err != nil || n != 1 {
		t.Fatalf("first insert: n=%d err=%v", n, err)
	}

	dup := a
	dup.Title = "changed title"
	n, err = repo.InsertIfAbsent(ctx, &dup)
	if err != nil || n != 0 {
		t.Fatalf("duplicate insert: n=%d err=%v", n, err)
	}

	db.AssertCount(t, "articles", 1)

	var title string
	if err := db.DB.DB().Get(&title, "SELECT title FROM articles WHERE link = ?", a.Link); err != nil {
		t.Fatalf("query title: %v", err)
	}
	if title != a.Title {
		t.Errorf("duplicate must not overwrite, got title %q", title)
	}
}

func TestSaveArticles_CountsOnlyNew(t *testing.T) {
	repo, db, rec := newTestRepository(t, time.Now())
	ctx := context.Background()

	batch := []models.Article{
		article("s", "https://x/1", 1),
		article("s", "https://x/2", 2),
		article("s", "https://x/1", 3),
	}

	if got := repo.SaveArticles(ctx, batch); got != 2 {
		t.Errorf("SaveArticles() = %d, want 2", got)
	}
	if got := repo.SaveArticles(ctx, batch); got != 0 {
		t.Errorf("second SaveArticles() = %d, want 0", got)
	}

	db.AssertCount(t, "articles", 2)
	if len(rec.lines) != 0 {
		t.Errorf("duplicates must not be recorded as failures: %v", rec.lines)
	}
}

func TestSaveArticles_FailedRowIsRecordedAndSkipped(t *testing.T) {
	repo, db, rec := newTestRepository(t, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := repo.SaveArticles(ctx, []models.Article{article("s", "https://x/1", 1)})
	if got != 0 {
		t.Errorf("SaveArticles() = %d, want 0", got)
	}
	db.AssertCount(t, "articles", 0)

	if len(rec.lines) != 1 {
		t.Fatalf("expected one recorded failure, got %d", len(rec.lines))
	}
	if rec.lines[0].source != "db" || !strings.HasPrefix(rec.lines[0].text, "error inserting article:") {
		t.Errorf("unexpected failure line: %+v", rec.lines[0])
	}
}

func TestLatestPublishedTime(t *testing.T) {
	repo, _, _ := newTestRepository(t, time.Now())
	ctx := context.Background()

	_, found, err := repo.LatestPublishedTime(ctx, "empty")
	if err != nil {
		t.Fatalf("LatestPublishedTime failed: %v", err)
	}
	if found {
		t.Error("expected no watermark for unknown source")
	}

	repo.SaveArticles(ctx, []models.Article{
		article("a", "https://a/1", 100),
		article("a", "https://a/2", 300),
		article("b", "https://b/1", 900),
	})

	ts, found, err := repo.LatestPublishedTime(ctx, "a")
	if err != nil {
		t.Fatalf("LatestPublishedTime failed: %v", err)
	}
	if !found || ts != 300 {
		t.Errorf("LatestPublishedTime(a) = %d, %v; want 300, true", ts, found)
	}
}

func TestRecentArticles_WindowOrderAndLimit(t *testing.T) {
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	repo, _, _ := newTestRepository(t, now)
	ctx := context.Background()

	base := now.Unix()
	repo.SaveArticles(ctx, []models.Article{
		article("s", "https://x/old", base-25*3600),
		article("s", "https://x/edge", base-24*3600),
		article("s", "https://x/mid", base-3600),
		article("s", "https://x/new", base-60),
	})

	got, err := repo.RecentArticles(ctx, 24, 300)
	if err != nil {
		t.Fatalf("RecentArticles failed: %v", err)
	}

	links := make([]string, 0, len(got))
	for _, p := range got {
		links = append(links, p.Link)
	}
	want := []string{"https://x/new", "https://x/mid", "https://x/edge"}
	if fmt.Sprint(links) != fmt.Sprint(want) {
		t.Errorf("RecentArticles links = %v, want %v", links, want)
	}

	limited, err := repo.RecentArticles(ctx, 24, 1)
	if err != nil {
		t.Fatalf("RecentArticles failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Link != "https://x/new" {
		t.Errorf("limit not honoured: %+v", limited)
	}
}

func TestRecentArticles_SnippetFallback(t *testing.T) {
	now := time.Now()
	repo, _, _ := newTestRepository(t, now)
	ctx := context.Background()
	ts := now.Unix() - 60

	withContent := article("s", "https://x/content", ts)
	withContent.Description = ""
	withContent.Content = "from content"

	withEncoded := article("s", "https://x/encoded", ts-1)
	withEncoded.Description = ""
	withEncoded.ContentEncoded = "from encoded"

	empty := article("s", "https://x/empty", ts-2)
	empty.Description = ""

	long := article("s", "https://x/long", ts-3)
	long.Description = strings.Repeat("é", 400)

	repo.SaveArticles(ctx, []models.Article{withContent, withEncoded, empty, long})

	got, err := repo.RecentArticles(ctx, 24, 10)
	if err != nil {
		t.Fatalf("RecentArticles failed: %v", err)
	}

	snippets := map[string]string{}
	for _, p := range got {
		snippets[p.Link] = p.Snippet
	}

	if snippets["https://x/content"] != "from content" {
		t.Errorf("content fallback: %q", snippets["https://x/content"])
	}
	if snippets["https://x/encoded"] != "from encoded" {
		t.Errorf("content_encoded fallback: %q", snippets["https://x/encoded"])
	}
	if snippets["https://x/empty"] != "" {
		t.Errorf("expected empty snippet, got %q", snippets["https://x/empty"])
	}
	if n := len([]rune(snippets["https://x/long"])); n != SnippetLength {
		t.Errorf("snippet length = %d characters, want %d", n, SnippetLength)
	}
}
