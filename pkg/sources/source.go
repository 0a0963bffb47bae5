package sources

import (
	"context"
	"time"
)

// RawItem is one unnormalized entry as returned by a single source adapter,
// before the pipeline shapes it into a canonical article.
type RawItem struct {
	Title        string
	Content      string
	CategoryHint string
	Source       string
	URL          string
	ImageURL     string
	PublishedAt  time.Time
	FromFeed     bool
}

// Source is the single capability every news adapter implements. Fetch
// returns at most limit items; an irrecoverable failure is reported through
// the error, never by panicking, so one adapter cannot abort a cycle.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]RawItem, error)
}

// FetchResult carries one adapter's outcome through the concurrent fan-out
// step. The orchestrator collects these instead of unwinding on failure.
type FetchResult struct {
	Source string
	Items  []RawItem
	Err    error
}

const (
	requestTimeout = 15 * time.Second

	// politePause separates repeated calls to the same external endpoint
	// within one adapter invocation.
	politePause = time.Second
)

// ParseOrDefaultNow parses value with layout and falls back to the current
// UTC time when the value is empty or malformed. Silent "now" fallback is
// the ingestion-wide date policy, kept in one named place.
func ParseOrDefaultNow(layout, value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// pause sleeps for politePause unless the context ends first.
func pause(ctx context.Context) {
	select {
	case <-time.After(politePause):
	case <-ctx.Done():
	}
}
