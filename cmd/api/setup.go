package main

import (
	"log/slog"

	"bionews/internal/config"
	"bionews/internal/pipeline"
	"bionews/internal/repository"
	"bionews/pkg/llm"
	"bionews/pkg/sources"
)

// newSources assembles the adapters in fixed priority order: the primary
// content feeds first, supplementary providers after. Merge order in the
// pipeline follows this order.
func newSources(cfg config.Config) []sources.Source {
	endpoints := make([]sources.FeedEndpoint, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		endpoints = append(endpoints, sources.FeedEndpoint{Name: f.Name, URL: f.URL, Category: f.Category})
	}

	srcs := []sources.Source{
		sources.NewFeedSource(endpoints, cfg.Ingest.PerFeedCap, cfg.Ingest.StalenessDays),
		sources.NewPubMedSource(cfg.PubMed.Terms),
		sources.NewTrialsSource(cfg.Trials.Expression),
	}

	if cfg.NewsAPI.APIKey != "" {
		srcs = append(srcs, sources.NewNewsAPISource(cfg.NewsAPI.APIKey, cfg.NewsAPI.Keywords, cfg.NewsAPI.Domains))
	} else {
		slog.Info("NEWS_API_KEY not set, aggregator source disabled")
	}

	return srcs
}

func newGenerator(cfg config.Config) llm.Generator {
	switch {
	case cfg.LLM.OpenAIKey != "":
		return llm.NewOpenAIClient(cfg.LLM.OpenAIKey)
	case cfg.LLM.AnthropicKey != "":
		return llm.NewAnthropicClient(cfg.LLM.AnthropicKey)
	default:
		slog.Info("no LLM API key set, using truncation summaries")
		return nil
	}
}

func newIngestor(cfg config.Config, repo *repository.ArticleRepository, cursors *pipeline.Cursors) *pipeline.Ingestor {
	summarizer := llm.NewSummarizer(newGenerator(cfg))
	return pipeline.NewIngestor(newSources(cfg), repo, summarizer, cursors, cfg.Ingest.CycleCap)
}

func newMarket(cfg config.Config, repo *repository.QuoteRepository, cursors *pipeline.Cursors) *pipeline.Market {
	tickers := make([]sources.TickerSpec, 0, len(cfg.Market.Tickers))
	for _, t := range cfg.Market.Tickers {
		tickers = append(tickers, sources.TickerSpec{Symbol: t.Symbol, Name: t.Name, Sector: t.Sector})
	}
	return pipeline.NewMarket(sources.NewFinnhubSource(cfg.Market.FinnhubKey), tickers, repo, cursors)
}
