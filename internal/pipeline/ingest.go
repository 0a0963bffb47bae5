package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bionews/internal/model"
	"bionews/pkg/llm"
	"bionews/pkg/sources"
)

// ErrCycleRunning is returned when a cycle is triggered while the previous
// run of the same pipeline has not finished. The trigger is skipped, never
// queued.
var ErrCycleRunning = errors.New("cycle already running")

const defaultFetchTimeout = 2 * time.Minute

// ArticleStore is the persistence surface the ingestion pipeline needs.
type ArticleStore interface {
	// ExistsSimilar reports whether a record with the given URL or a title
	// starting with titlePrefix (case-insensitive) is already stored.
	ExistsSimilar(ctx context.Context, url, titlePrefix string) (bool, error)
	// InsertIfAbsent persists the article unless its URL is already taken,
	// returning false when the key existed.
	InsertIfAbsent(ctx context.Context, article model.Article) (bool, error)
	// ListUnannotated returns stored articles still missing a headline.
	ListUnannotated(ctx context.Context, limit int) ([]model.Article, error)
	// UpdateAnnotation backfills headline and summary on one record.
	UpdateAnnotation(ctx context.Context, id, headline, summary string) error
}

// Annotator produces the headline/summary pair; it never fails.
type Annotator interface {
	Summarize(ctx context.Context, title, body string) llm.Annotation
}

// CycleReport is what a completed ingestion cycle tells its caller.
type CycleReport struct {
	Fetched     int
	Stored      int
	Duplicated  int
	SourcesDown int
	CompletedAt time.Time
}

// Ingestor runs the fetch-merge-dedup-annotate-persist cycle. Sources are
// fanned out concurrently and merged in the order given at construction,
// which therefore defines the dedup tie-break priority.
type Ingestor struct {
	sources      []sources.Source
	store        ArticleStore
	annotator    Annotator
	cursors      *Cursors
	cycleCap     int
	fetchTimeout time.Duration
	running      atomic.Bool
}

func NewIngestor(srcs []sources.Source, store ArticleStore, annotator Annotator, cursors *Cursors, cycleCap int) *Ingestor {
	if cycleCap <= 0 {
		cycleCap = 25
	}
	return &Ingestor{
		sources:      srcs,
		store:        store,
		annotator:    annotator,
		cursors:      cursors,
		cycleCap:     cycleCap,
		fetchTimeout: defaultFetchTimeout,
	}
}

// RunCycle executes one full ingestion cycle. Source failures cost only
// their own items; store failures abort the cycle and leave the news
// cursor untouched, so the next run retries naturally.
func (in *Ingestor) RunCycle(ctx context.Context) (CycleReport, error) {
	if !in.running.CompareAndSwap(false, true) {
		return CycleReport{}, ErrCycleRunning
	}
	defer in.running.Store(false)

	var report CycleReport

	merged := make([]sources.RawItem, 0, in.cycleCap*len(in.sources))
	for _, result := range in.fetchAll(ctx) {
		if result.Err != nil {
			slog.Error("source failed, contributing no items", "source", result.Source, "error", result.Err)
			report.SourcesDown++
			continue
		}
		slog.Info("source fetched", "source", result.Source, "items", len(result.Items))
		merged = append(merged, result.Items...)
	}
	report.Fetched = len(merged)

	dedup := NewDeduplicator()
	for _, raw := range merged {
		if report.Stored >= in.cycleCap {
			break
		}

		article := Normalize(raw)
		article.Category = Categorize(raw.CategoryHint, article.Title, article.Content)
		article.Keywords = ExtractKeywords(article.Title + " " + article.Content)

		fingerprint := Fingerprint(article.Title)
		if !dedup.Admit(fingerprint) {
			report.Duplicated++
			continue
		}

		exists, err := in.store.ExistsSimilar(ctx, article.URL, fingerprint)
		if err != nil {
			return report, fmt.Errorf("dedup lookup: %w", err)
		}
		if exists {
			report.Duplicated++
			continue
		}

		annotation := in.annotator.Summarize(ctx, article.Title, article.Content)
		article.Headline = annotation.Headline
		article.Summary = annotation.Summary
		article.CreatedAt = time.Now().UTC()

		inserted, err := in.store.InsertIfAbsent(ctx, article)
		if err != nil {
			return report, fmt.Errorf("persist article: %w", err)
		}
		if !inserted {
			// Lost the race to a concurrent writer for the same URL.
			report.Duplicated++
			continue
		}
		report.Stored++
	}

	report.CompletedAt = time.Now().UTC()
	in.cursors.AdvanceNews(report.CompletedAt)

	slog.Info("ingestion cycle complete",
		"fetched", report.Fetched,
		"stored", report.Stored,
		"duplicated", report.Duplicated,
		"sources_down", report.SourcesDown)
	return report, nil
}

// fetchAll invokes every source concurrently, each under its own timeout so
// a slow source cannot stall or cancel its siblings. Results come back in
// source order.
func (in *Ingestor) fetchAll(ctx context.Context) []sources.FetchResult {
	results := make([]sources.FetchResult, len(in.sources))

	var wg sync.WaitGroup
	for i, src := range in.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, in.fetchTimeout)
			defer cancel()

			items, err := src.Fetch(fetchCtx, in.cycleCap)
			results[i] = sources.FetchResult{Source: src.Name(), Items: items, Err: err}
		}(i, src)
	}
	wg.Wait()

	return results
}

// Backfill annotates stored records that predate headline generation. It is
// a one-time migration helper exposed through the same pipeline so limits
// and fallbacks match the regular path.
func (in *Ingestor) Backfill(ctx context.Context, limit int) (int, error) {
	articles, err := in.store.ListUnannotated(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unannotated: %w", err)
	}

	updated := 0
	for _, article := range articles {
		annotation := in.annotator.Summarize(ctx, article.Title, article.Content)
		if err := in.store.UpdateAnnotation(ctx, article.ID, annotation.Headline, annotation.Summary); err != nil {
			return updated, fmt.Errorf("backfill %s: %w", article.ID, err)
		}
		updated++
	}

	slog.Info("backfill complete", "updated", updated)
	return updated, nil
}
