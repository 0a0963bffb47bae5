package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pubmedSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedSource issues a search-then-fetch against the PubMed index for a
// small fixed list of query terms.
type PubMedSource struct {
	terms      []string
	client     *http.Client
	perTermCap int
}

func NewPubMedSource(terms []string) *PubMedSource {
	return &PubMedSource{
		terms:      terms,
		client:     &http.Client{Timeout: requestTimeout},
		perTermCap: 5,
	}
}

func (s *PubMedSource) Name() string {
	return "PubMed"
}

func (s *PubMedSource) Fetch(ctx context.Context, limit int) ([]RawItem, error) {
	var items []RawItem
	var lastErr error

	for i, term := range s.terms {
		if i > 0 {
			pause(ctx)
		}
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		ids, err := s.search(ctx, term)
		if err != nil {
			slog.Warn("pubmed search skipped", "term", term, "error", err)
			lastErr = err
			continue
		}
		if len(ids) == 0 {
			continue
		}

		pause(ctx)
		termItems, err := s.fetchArticles(ctx, ids)
		if err != nil {
			slog.Warn("pubmed fetch skipped", "term", term, "error", err)
			lastErr = err
			continue
		}
		items = append(items, termItems...)

		if limit > 0 && len(items) >= limit {
			items = items[:limit]
			break
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("pubmed: %w", lastErr)
	}
	return items, nil
}

func (s *PubMedSource) search(ctx context.Context, term string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(s.perTermCap))
	params.Set("retmode", "json")
	params.Set("sort", "pub+date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esearch returned %s", resp.Status)
	}

	var raw struct {
		Result struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("esearch decode: %w", err)
	}
	return raw.Result.IDList, nil
}

func (s *PubMedSource) fetchArticles(ctx context.Context, ids []string) ([]RawItem, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned %s", resp.Status)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("efetch decode: %w", err)
	}

	var items []RawItem
	for _, entry := range set.Articles {
		article := entry.Citation.Article

		title := strings.TrimSpace(article.Title)
		abstract := strings.TrimSpace(strings.Join(article.Abstract.Text, " "))
		if title == "" || abstract == "" {
			continue
		}

		source := article.Journal.Title
		if source == "" {
			source = "PubMed"
		}

		items = append(items, RawItem{
			Title:       title,
			Content:     abstract,
			Source:      source,
			URL:         "https://pubmed.ncbi.nlm.nih.gov/" + entry.Citation.PMID + "/",
			PublishedAt: parsePubMedDate(article.Journal.Issue.PubDate),
		})
	}
	return items, nil
}

// parsePubMedDate reconstructs a partial journal date. Year is required;
// a missing month or day defaults to 1. Anything unparseable defaults to
// now, matching the rest of the ingestion date policy.
func parsePubMedDate(d pubmedDate) time.Time {
	year, err := strconv.Atoi(d.Year)
	if err != nil {
		return time.Now().UTC()
	}

	month := time.January
	if d.Month != "" {
		if m, err := strconv.Atoi(d.Month); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		} else if t, err := time.Parse("Jan", d.Month); err == nil {
			month = t.Month()
		}
	}

	day := 1
	if d.Day != "" {
		if v, err := strconv.Atoi(d.Day); err == nil && v >= 1 && v <= 31 {
			day = v
		}
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type pubmedDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type pubmedArticleSet struct {
	Articles []struct {
		Citation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Text []string `xml:"AbstractText"`
				} `xml:"Abstract"`
				Journal struct {
					Title string `xml:"Title"`
					Issue struct {
						PubDate pubmedDate `xml:"PubDate"`
					} `xml:"JournalIssue"`
				} `xml:"Journal"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}
