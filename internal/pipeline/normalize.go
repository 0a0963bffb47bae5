package pipeline

import (
	"time"

	"github.com/google/uuid"

	"bionews/internal/model"
	"bionews/pkg/sources"
)

// maxFeedBodyLen bounds the body of feed-sourced items, whose full-content
// fields can carry entire articles. Structured sources (literature index,
// trial registry) return naturally short bodies and are left alone.
const maxFeedBodyLen = 1000

// Normalize maps a raw item to an article skeleton: identifier assigned,
// headline/summary/category/keywords still unset, CreatedAt set at
// persistence time by the orchestrator.
func Normalize(raw sources.RawItem) model.Article {
	content := raw.Content
	if raw.FromFeed {
		content = truncateRunes(content, maxFeedBodyLen)
	}

	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	return model.Article{
		ID:          uuid.NewString(),
		Title:       raw.Title,
		Content:     content,
		Source:      raw.Source,
		URL:         raw.URL,
		ImageURL:    raw.ImageURL,
		PublishedAt: publishedAt,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
