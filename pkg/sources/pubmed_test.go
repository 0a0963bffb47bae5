package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const pubmedFetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345678</PMID>
      <Article>
        <Journal>
          <Title>Nature Biotechnology</Title>
          <JournalIssue>
            <PubDate><Year>2025</Year><Month>Mar</Month><Day>15</Day></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>CRISPR base editing in vivo</ArticleTitle>
        <Abstract>
          <AbstractText>Part one.</AbstractText>
          <AbstractText>Part two.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>87654321</PMID>
      <Article>
        <Journal><Title>Cell</Title></Journal>
        <ArticleTitle>Record without an abstract</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func newPubMedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			fmt.Fprint(w, `{"esearchresult":{"idlist":["12345678","87654321"]}}`)
		case strings.Contains(r.URL.Path, "efetch"):
			fmt.Fprint(w, pubmedFetchXML)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPubMedSourceFetch(t *testing.T) {
	srv := newPubMedServer(t)

	s := NewPubMedSource([]string{"CRISPR"})
	s.client = testClient(srv.URL, t)

	items, err := s.Fetch(context.Background(), 25)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// The abstract-less record is dropped.
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "CRISPR base editing in vivo", items[0].Title)
	assert.Equal(t, "Part one. Part two.", items[0].Content)
	assert.Equal(t, "Nature Biotechnology", items[0].Source)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/12345678/", items[0].URL)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), items[0].PublishedAt)
}

func TestPubMedSourceEmptySearchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"idlist":[]}}`)
	}))
	t.Cleanup(srv.Close)

	s := NewPubMedSource([]string{"obscure term"})
	s.client = testClient(srv.URL, t)

	items, err := s.Fetch(context.Background(), 25)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	assert.Equal(t, 0, len(items))
}

func TestPubMedSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	s := NewPubMedSource([]string{"CRISPR"})
	s.client = testClient(srv.URL, t)

	_, err := s.Fetch(context.Background(), 25)

	assert.NotEqual(t, err, nil)
}

func TestParsePubMedDate(t *testing.T) {
	tests := []struct {
		name string
		date pubmedDate
		want time.Time
	}{
		{"full numeric", pubmedDate{Year: "2025", Month: "3", Day: "15"}, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"month name", pubmedDate{Year: "2025", Month: "Mar", Day: "15"}, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"year only", pubmedDate{Year: "2024"}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"year and month", pubmedDate{Year: "2024", Month: "12"}, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePubMedDate(tt.date)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePubMedDateMissingYearDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	got := parsePubMedDate(pubmedDate{Month: "3"})
	if got.Before(before) || got.After(time.Now().UTC()) {
		t.Errorf("got %v, want a current timestamp", got)
	}
}
