package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"bionews/internal/model"
	"bionews/pkg/llm"
	"bionews/pkg/sources"
)

type fakeSource struct {
	name  string
	items []sources.RawItem
	err   error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context, limit int) ([]sources.RawItem, error) {
	return s.items, s.err
}

type fakeArticleStore struct {
	mu          sync.Mutex
	existing    map[string]bool
	inserted    []model.Article
	unannotated []model.Article
	annotations map[string]llm.Annotation
	existsErr   error
	insertErr   error
	annotateErr error
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{
		existing:    map[string]bool{},
		annotations: map[string]llm.Annotation{},
	}
}

func (s *fakeArticleStore) ExistsSimilar(ctx context.Context, url, titlePrefix string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing[url] || s.existing[titlePrefix], nil
}

func (s *fakeArticleStore) InsertIfAbsent(ctx context.Context, article model.Article) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existing[article.URL] {
		return false, nil
	}
	s.existing[article.URL] = true
	s.existing[Fingerprint(article.Title)] = true
	s.inserted = append(s.inserted, article)
	return true, nil
}

func (s *fakeArticleStore) ListUnannotated(ctx context.Context, limit int) ([]model.Article, error) {
	return s.unannotated, nil
}

func (s *fakeArticleStore) UpdateAnnotation(ctx context.Context, id, headline, summary string) error {
	if s.annotateErr != nil {
		return s.annotateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[id] = llm.Annotation{Headline: headline, Summary: summary}
	return nil
}

type fakeAnnotator struct{}

func (fakeAnnotator) Summarize(ctx context.Context, title, body string) llm.Annotation {
	return llm.Annotation{Headline: "h: " + title, Summary: "s: " + title}
}

func item(title, url string) sources.RawItem {
	return sources.RawItem{Title: title, Content: "body of " + title, Source: "Test", URL: url}
}

func TestRunCycleStoresMergedItems(t *testing.T) {
	store := newFakeArticleStore()
	srcs := []sources.Source{
		&fakeSource{name: "a", items: []sources.RawItem{item("First story", "https://a/1")}},
		&fakeSource{name: "b", items: []sources.RawItem{item("Second story", "https://b/1")}},
	}
	in := NewIngestor(srcs, store, fakeAnnotator{}, NewCursors(), 25)

	report, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 0, report.Duplicated)
	assert.Equal(t, "h: First story", store.inserted[0].Headline)
	assert.NotEqual(t, "", store.inserted[0].ID)
	assert.NotEqual(t, "", store.inserted[0].Category)
}

func TestRunCycleSourceOrderWinsDedup(t *testing.T) {
	store := newFakeArticleStore()
	srcs := []sources.Source{
		&fakeSource{name: "priority", items: []sources.RawItem{item("Shared headline for the same story", "https://priority/1")}},
		&fakeSource{name: "secondary", items: []sources.RawItem{item("Shared Headline For The Same Story", "https://secondary/1")}},
	}
	in := NewIngestor(srcs, store, fakeAnnotator{}, NewCursors(), 25)

	report, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Duplicated)
	assert.Equal(t, "https://priority/1", store.inserted[0].URL)
}

func TestRunCycleSourceFailureIsIsolated(t *testing.T) {
	store := newFakeArticleStore()
	srcs := []sources.Source{
		&fakeSource{name: "down", err: errors.New("connection refused")},
		&fakeSource{name: "up", items: []sources.RawItem{item("Working story", "https://up/1")}},
	}
	in := NewIngestor(srcs, store, fakeAnnotator{}, NewCursors(), 25)

	report, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	assert.Equal(t, 1, report.SourcesDown)
	assert.Equal(t, 1, report.Stored)
}

func TestRunCycleRespectsCap(t *testing.T) {
	items := make([]sources.RawItem, 10)
	for i := range items {
		items[i] = item("Story number "+string(rune('A'+i)), "https://cap/"+string(rune('A'+i)))
	}
	store := newFakeArticleStore()
	in := NewIngestor([]sources.Source{&fakeSource{name: "bulk", items: items}}, store, fakeAnnotator{}, NewCursors(), 3)

	report, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	assert.Equal(t, 10, report.Fetched)
	assert.Equal(t, 3, report.Stored)
}

func TestRunCycleIsIdempotentAcrossRuns(t *testing.T) {
	store := newFakeArticleStore()
	srcs := []sources.Source{&fakeSource{name: "a", items: []sources.RawItem{item("Repeat story", "https://a/1")}}}
	in := NewIngestor(srcs, store, fakeAnnotator{}, NewCursors(), 25)

	first, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("first RunCycle: %v", err)
	}
	second, err := in.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle: %v", err)
	}

	assert.Equal(t, 1, first.Stored)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 1, second.Duplicated)
	assert.Equal(t, 1, len(store.inserted))
}

func TestRunCycleStoreErrorAbortsAndKeepsCursor(t *testing.T) {
	store := newFakeArticleStore()
	store.insertErr = errors.New("db down")
	cursors := NewCursors()
	srcs := []sources.Source{&fakeSource{name: "a", items: []sources.RawItem{item("Story", "https://a/1")}}}
	in := NewIngestor(srcs, store, fakeAnnotator{}, cursors, 25)

	_, err := in.RunCycle(context.Background())

	assert.NotEqual(t, err, nil)
	assert.Equal(t, true, cursors.News().IsZero())
}

func TestRunCycleAdvancesCursorOnSuccess(t *testing.T) {
	cursors := NewCursors()
	in := NewIngestor([]sources.Source{&fakeSource{name: "a"}}, newFakeArticleStore(), fakeAnnotator{}, cursors, 25)

	if _, err := in.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	assert.Equal(t, false, cursors.News().IsZero())
}

func TestRunCycleRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingSource{release: release, started: started}
	in := NewIngestor([]sources.Source{blocking}, newFakeArticleStore(), fakeAnnotator{}, NewCursors(), 25)

	done := make(chan error, 1)
	go func() {
		_, err := in.RunCycle(context.Background())
		done <- err
	}()

	<-started
	_, err := in.RunCycle(context.Background())
	assert.Equal(t, true, errors.Is(err, ErrCycleRunning))

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first RunCycle: %v", err)
	}

	// Guard is released once the first run finishes.
	if _, err := in.RunCycle(context.Background()); err != nil {
		t.Fatalf("third RunCycle: %v", err)
	}
}

type blockingSource struct {
	release <-chan struct{}
	started chan<- struct{}
	once    sync.Once
}

func (s *blockingSource) Name() string { return "blocking" }

func (s *blockingSource) Fetch(ctx context.Context, limit int) ([]sources.RawItem, error) {
	s.once.Do(func() {
		close(s.started)
		<-s.release
	})
	return nil, nil
}

func TestBackfillAnnotatesStoredRecords(t *testing.T) {
	store := newFakeArticleStore()
	store.unannotated = []model.Article{
		{ID: "one", Title: "First", Content: "body"},
		{ID: "two", Title: "Second", Content: "body"},
	}
	in := NewIngestor(nil, store, fakeAnnotator{}, NewCursors(), 25)

	updated, err := in.Backfill(context.Background(), 100)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}

	assert.Equal(t, 2, updated)
	assert.Equal(t, "h: First", store.annotations["one"].Headline)
	assert.Equal(t, "s: Second", store.annotations["two"].Summary)
}
