package news

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/pkg/logger"
)

// Entry is one syndication item reduced to the fields ingestion needs.
// Published is nil when the feed gave no parseable publish time.
type Entry struct {
	Title          string
	Link           string
	Description    string
	Content        string
	ContentEncoded string
	Published      *time.Time
}

// RSSFetcher fetches RSS/Atom/JSON feeds with gofeed
type RSSFetcher struct {
	parser *gofeed.Parser
}

// NewRSSFetcher creates new feed fetcher. The caller bounds each fetch with
// its context; client is optional.
func NewRSSFetcher(client *http.Client, userAgent string) *RSSFetcher {
	parser := gofeed.NewParser()
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &RSSFetcher{parser: parser}
}

// Fetch downloads and parses one feed document
func (f *RSSFetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		entries = append(entries, Entry{
			Title:          item.Title,
			Link:           item.Link,
			Description:    item.Description,
			Content:        item.Content,
			ContentEncoded: extensionValue(item, "content", "encoded"),
			Published:      item.PublishedParsed,
		})
	}

	logger.Debug("fetched feed",
		zap.String("url", url),
		zap.String("title", feed.Title),
		zap.Int("items", len(entries)),
	)

	return entries, nil
}

// extensionValue returns the first value of a namespaced element, if any
func extensionValue(item *gofeed.Item, namespace, name string) string {
	values := item.Extensions[namespace][name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}
