package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bionews/db"
	"bionews/internal/pipeline"
)

// NewsRunner is the manual-trigger surface of the ingestion pipeline. The
// handler shares the orchestrator with the scheduler, so manual and
// scheduled runs follow identical dedup and upsert rules.
type NewsRunner interface {
	RunCycle(ctx context.Context) (pipeline.CycleReport, error)
	Backfill(ctx context.Context, limit int) (int, error)
}

type MarketRunner interface {
	RunCycle(ctx context.Context) (pipeline.MarketReport, error)
}

// CursorReader exposes the per-pipeline last-update timestamps.
type CursorReader interface {
	News() time.Time
	Market() time.Time
}

type IngestHandler struct {
	news    NewsRunner
	market  MarketRunner
	cursors CursorReader
	counter ArticleStore
}

func NewIngestHandler(news NewsRunner, market MarketRunner, cursors CursorReader, counter ArticleStore) *IngestHandler {
	return &IngestHandler{news: news, market: market, cursors: cursors, counter: counter}
}

func (h *IngestHandler) RefreshArticles(c *gin.Context) {
	report, err := h.news.RunCycle(c.Request.Context())
	if errors.Is(err, pipeline.ErrCycleRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
		return
	}
	if err != nil {
		slog.Error("manual ingestion cycle failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error refreshing articles"})
		return
	}

	db.CacheInvalidate()
	c.JSON(http.StatusOK, RefreshResponse{
		Fetched:    report.Fetched,
		Stored:     report.Stored,
		Duplicated: report.Duplicated,
		Message:    fmt.Sprintf("Refreshed %d articles", report.Stored),
	})
}

func (h *IngestHandler) RefreshMarket(c *gin.Context) {
	report, err := h.market.RunCycle(c.Request.Context())
	if errors.Is(err, pipeline.ErrCycleRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
		return
	}
	if err != nil {
		slog.Error("manual market cycle failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error refreshing market data"})
		return
	}

	db.CacheInvalidate()
	c.JSON(http.StatusOK, MarketRefreshResponse{
		Requested: report.Requested,
		Stored:    report.Stored,
		Message:   fmt.Sprintf("Refreshed %d quotes", report.Stored),
	})
}

func (h *IngestHandler) BackfillAnnotations(c *gin.Context) {
	updated, err := h.news.Backfill(c.Request.Context(), maxListLimit)
	if err != nil {
		slog.Error("backfill failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error backfilling annotations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *IngestHandler) GetStatus(c *gin.Context) {
	count, err := h.counter.CountAll(c.Request.Context())
	if err != nil {
		slog.Error("error counting articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := StatusResponse{ArticleCount: count}
	if t := h.cursors.News(); !t.IsZero() {
		res.NewsLastUpdate = t.Format(time.RFC3339)
	}
	if t := h.cursors.Market(); !t.IsZero() {
		res.MarketLastUpdate = t.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, res)
}
