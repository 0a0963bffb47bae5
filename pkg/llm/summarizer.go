package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	maxHeadlineLen = 60
	maxSummaryLen  = 400
)

const summarizePrompt = `You are an expert biotech and pharmaceutical research summarizer.

Write a short headline (at most 60 characters) and a flowing summary of
300-400 characters for the article below. Highlight key findings,
mechanisms, clinical phases, or policy changes. Focus on compound names,
outcomes, and significance.

Reply with exactly two lines, no other text:
HEADLINE: <headline>
SUMMARY: <summary>

Title: %s

Article:
%s`

// Annotation is the generated headline/summary pair for one article.
type Annotation struct {
	Headline string
	Summary  string
}

// Summarizer produces headline and summary annotations via a text
// generation provider, falling back to deterministic truncation whenever
// the provider fails or replies in an unexpected shape. A nil generator
// means the fallback is used for every item.
type Summarizer struct {
	generator Generator
}

func NewSummarizer(generator Generator) *Summarizer {
	return &Summarizer{generator: generator}
}

// Summarize never fails: the worst outcome is a truncation-derived
// annotation for the one affected item. No retries are attempted; the next
// ingestion cycle is the retry mechanism.
func (s *Summarizer) Summarize(ctx context.Context, title, body string) Annotation {
	fallback := fallbackAnnotation(title, body)
	if s.generator == nil {
		return fallback
	}

	reply, err := s.generator.Generate(ctx, fmt.Sprintf(summarizePrompt, title, body))
	if err != nil {
		slog.Warn("summarization failed, using fallback", "title", title, "error", err)
		return fallback
	}

	headline, summary := parseReply(reply)
	if headline == "" {
		headline = fallback.Headline
	}
	if summary == "" {
		summary = fallback.Summary
	}

	return Annotation{
		Headline: Truncate(headline, maxHeadlineLen),
		Summary:  Truncate(summary, maxSummaryLen),
	}
}

// parseReply extracts the HEADLINE and SUMMARY fields line by line. Lines
// following SUMMARY are treated as summary continuation, since models
// occasionally wrap long summaries.
func parseReply(reply string) (headline, summary string) {
	inSummary := false
	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "HEADLINE:"):
			headline = strings.TrimSpace(trimmed[len("HEADLINE:"):])
			inSummary = false
		case strings.HasPrefix(upper, "SUMMARY:"):
			summary = strings.TrimSpace(trimmed[len("SUMMARY:"):])
			inSummary = true
		case inSummary && trimmed != "":
			summary += " " + trimmed
		}
	}
	return headline, summary
}

// fallbackAnnotation derives the annotation from the raw text: headline is
// the title cut to 60 characters, summary is the body cut to 400 with an
// ellipsis marker when the cut dropped anything.
func fallbackAnnotation(title, body string) Annotation {
	summary := Truncate(body, maxSummaryLen)
	if len([]rune(body)) > maxSummaryLen {
		summary += "..."
	}
	return Annotation{
		Headline: Truncate(title, maxHeadlineLen),
		Summary:  summary,
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
