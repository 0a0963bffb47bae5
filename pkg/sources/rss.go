package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FeedEndpoint is one syndication URL. Category, when set, overrides the
// keyword categorizer for every entry pulled from this endpoint.
type FeedEndpoint struct {
	Name     string
	URL      string
	Category string
}

// FeedSource pulls a small fixed list of RSS endpoints.
type FeedSource struct {
	endpoints  []FeedEndpoint
	client     *http.Client
	perFeedCap int
	staleness  time.Duration
}

func NewFeedSource(endpoints []FeedEndpoint, perFeedCap, stalenessDays int) *FeedSource {
	if perFeedCap <= 0 {
		perFeedCap = 5
	}
	if stalenessDays <= 0 {
		stalenessDays = 7
	}
	return &FeedSource{
		endpoints:  endpoints,
		client:     &http.Client{Timeout: requestTimeout},
		perFeedCap: perFeedCap,
		staleness:  time.Duration(stalenessDays) * 24 * time.Hour,
	}
}

func (s *FeedSource) Name() string {
	return "RSS"
}

// Fetch walks each endpoint in order with a short pause in between. A
// single endpoint failing is logged and skipped; the adapter as a whole
// fails only when every endpoint failed.
func (s *FeedSource) Fetch(ctx context.Context, limit int) ([]RawItem, error) {
	var items []RawItem
	var lastErr error

	for i, ep := range s.endpoints {
		if i > 0 {
			pause(ctx)
		}
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		feedItems, err := s.fetchFeed(ctx, ep)
		if err != nil {
			slog.Warn("rss endpoint skipped", "feed", ep.Name, "error", err)
			lastErr = err
			continue
		}
		items = append(items, feedItems...)

		if limit > 0 && len(items) >= limit {
			items = items[:limit]
			break
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all feed endpoints failed: %w", lastErr)
	}
	return items, nil
}

func (s *FeedSource) fetchFeed(ctx context.Context, ep FeedEndpoint) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss request: %w", err)
	}
	req.Header.Set("User-Agent", "bionews/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss fetch: %s returned %s", ep.Name, resp.Status)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("rss decode: %w", err)
	}

	cutoff := time.Now().UTC().Add(-s.staleness)

	items := make([]RawItem, 0, s.perFeedCap)
	for _, entry := range feed.Channel.Items {
		if len(items) >= s.perFeedCap {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		publishedAt := parseFeedDate(entry)
		if publishedAt.Before(cutoff) {
			continue
		}

		content := entry.Encoded
		if content == "" {
			content = entry.Description
		}

		items = append(items, RawItem{
			Title:        strings.TrimSpace(entry.Title),
			Content:      StripMarkup(content),
			CategoryHint: ep.Category,
			Source:       ep.Name,
			URL:          strings.TrimSpace(entry.Link),
			ImageURL:     entry.Enclosure.URL,
			PublishedAt:  publishedAt,
			FromFeed:     true,
		})
	}

	return items, nil
}

var feedDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// parseFeedDate tries pubDate then dc:date across the common feed layouts,
// defaulting to now when nothing parses.
func parseFeedDate(entry rssItem) time.Time {
	for _, value := range []string{entry.PubDate, entry.DCDate} {
		if value == "" {
			continue
		}
		for _, layout := range feedDateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
				return t
			}
		}
	}
	return time.Now().UTC()
}

// StripMarkup reduces an HTML fragment to its text content.
func StripMarkup(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Encoded     string `xml:"encoded"`
	PubDate     string `xml:"pubDate"`
	DCDate      string `xml:"date"`
	Enclosure   struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}
