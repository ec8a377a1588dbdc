package models

// Article is a deduplicated feed entry. Link is the unique key; rows are
// written once and never updated.
type Article struct {
	ID             int64  `json:"id" db:"id"`
	Title          string `json:"title" db:"title"`
	Link           string `json:"link" db:"link"`
	Source         string `json:"source" db:"source"`
	PublishedTS    int64  `json:"published_ts" db:"published_ts"`
	PublishedStr   string `json:"published_str" db:"published_str"`
	Description    string `json:"description" db:"description"`
	Content        string `json:"content" db:"content"`
	ContentEncoded string `json:"content_encoded" db:"content_encoded"`
}

// ArticlePreview is the read model used for prompts and display
type ArticlePreview struct {
	Title        string `json:"title" db:"title"`
	Link         string `json:"link" db:"link"`
	Source       string `json:"source" db:"source"`
	PublishedTS  int64  `json:"published_ts" db:"published_ts"`
	PublishedStr string `json:"published_str" db:"published_str"`
	Snippet      string `json:"snippet" db:"snippet"`
}
