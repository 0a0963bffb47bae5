package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPISource queries a general news-search API for each of a small fixed
// keyword list, restricted to a domain allowlist.
type NewsAPISource struct {
	apiKey        string
	keywords      []string
	domains       []string
	client        *http.Client
	perKeywordCap int
}

func NewNewsAPISource(apiKey string, keywords, domains []string) *NewsAPISource {
	return &NewsAPISource{
		apiKey:        apiKey,
		keywords:      keywords,
		domains:       domains,
		client:        &http.Client{Timeout: requestTimeout},
		perKeywordCap: 5,
	}
}

func (s *NewsAPISource) Name() string {
	return "NewsAPI"
}

func (s *NewsAPISource) Fetch(ctx context.Context, limit int) ([]RawItem, error) {
	var items []RawItem
	var lastErr error

	for i, keyword := range s.keywords {
		if i > 0 {
			pause(ctx)
		}
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		keywordItems, err := s.fetchKeyword(ctx, keyword)
		if err != nil {
			slog.Warn("newsapi keyword skipped", "keyword", keyword, "error", err)
			lastErr = err
			continue
		}
		items = append(items, keywordItems...)

		if limit > 0 && len(items) >= limit {
			items = items[:limit]
			break
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("newsapi: %w", lastErr)
	}
	return items, nil
}

func (s *NewsAPISource) fetchKeyword(ctx context.Context, keyword string) ([]RawItem, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("domains", strings.Join(s.domains, ","))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(s.perKeywordCap))
	params.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned %s", resp.Status)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	items := make([]RawItem, 0, len(raw.Articles))
	for _, entry := range raw.Articles {
		if entry.Title == "" || entry.URL == "" {
			continue
		}

		// Full content is often truncated or absent on the free tier;
		// the description stands in for it.
		content := entry.Content
		if content == "" {
			content = entry.Description
		}

		items = append(items, RawItem{
			Title:       entry.Title,
			Content:     content,
			Source:      entry.Source.Name,
			URL:         entry.URL,
			ImageURL:    entry.ImageURL,
			PublishedAt: ParseOrDefaultNow(time.RFC3339, entry.PublishedAt),
		})
	}
	return items, nil
}

type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		ImageURL    string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}
