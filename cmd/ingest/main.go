package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"bionews/db"
	"bionews/internal/config"
	"bionews/internal/pipeline"
	"bionews/internal/repository"
	"bionews/pkg/llm"
	"bionews/pkg/sources"
)

// One-shot runner for the ingestion pipelines. Uses the exact same
// orchestrators as the scheduled runs, so a manual run is idempotent
// against them.
func main() {
	runMarket := flag.Bool("market", false, "run the market snapshot cycle instead of news ingestion")
	runBackfill := flag.Bool("backfill", false, "backfill headline/summary on records missing them")
	flag.Parse()

	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := db.Connect(cfg.Database.URL); err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	cursors := pipeline.NewCursors()

	if *runMarket {
		tickers := make([]sources.TickerSpec, 0, len(cfg.Market.Tickers))
		for _, t := range cfg.Market.Tickers {
			tickers = append(tickers, sources.TickerSpec{Symbol: t.Symbol, Name: t.Name, Sector: t.Sector})
		}

		market := pipeline.NewMarket(
			sources.NewFinnhubSource(cfg.Market.FinnhubKey),
			tickers,
			repository.NewQuoteRepository(db.DB),
			cursors,
		)

		report, err := market.RunCycle(ctx)
		if err != nil {
			log.Fatalf("market cycle failed: %v", err)
		}
		slog.Info("done", "requested", report.Requested, "stored", report.Stored)
		return
	}

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
	}

	var generator llm.Generator
	if cfg.LLM.OpenAIKey != "" {
		generator = llm.NewOpenAIClient(cfg.LLM.OpenAIKey)
	} else if cfg.LLM.AnthropicKey != "" {
		generator = llm.NewAnthropicClient(cfg.LLM.AnthropicKey)
	}

	ingestor := pipeline.NewIngestor(
		srcs,
		repository.NewArticleRepository(db.DB),
		llm.NewSummarizer(generator),
		cursors,
		cfg.Ingest.CycleCap,
	)

	if *runBackfill {
		updated, err := ingestor.Backfill(ctx, 100)
		if err != nil {
			log.Fatalf("backfill failed: %v", err)
		}
		slog.Info("done", "updated", updated)
		return
	}

	report, err := ingestor.RunCycle(ctx)
	if err != nil {
		log.Fatalf("ingestion cycle failed: %v", err)
	}
	slog.Info("done", "fetched", report.Fetched, "stored", report.Stored, "duplicated", report.Duplicated)
}
