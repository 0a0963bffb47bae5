package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"bionews/internal/model"
	"bionews/pkg/sources"
)

// QuoteStore is the persistence surface of the market pipeline. Writes are
// keyed by symbol so refetching replaces rather than duplicates.
type QuoteStore interface {
	Upsert(ctx context.Context, quote model.Quote) error
}

// MarketReport summarizes one market snapshot cycle.
type MarketReport struct {
	Requested   int
	Stored      int
	CompletedAt time.Time
}

// Market refreshes quote snapshots for the fixed ticker list. Unlike the
// news pipeline there is no dedup or annotation: the symbol is already the
// unique key.
type Market struct {
	source       sources.MarketSource
	tickers      []sources.TickerSpec
	store        QuoteStore
	cursors      *Cursors
	fetchTimeout time.Duration
	running      atomic.Bool
}

func NewMarket(source sources.MarketSource, tickers []sources.TickerSpec, store QuoteStore, cursors *Cursors) *Market {
	return &Market{
		source:       source,
		tickers:      tickers,
		store:        store,
		cursors:      cursors,
		fetchTimeout: defaultFetchTimeout,
	}
}

// RunCycle fetches and upserts all symbols that succeed. Per-symbol fetch
// failures are already absorbed by the source; a partially successful cycle
// still advances the market cursor. Store failures are fatal to the cycle.
func (m *Market) RunCycle(ctx context.Context) (MarketReport, error) {
	if !m.running.CompareAndSwap(false, true) {
		return MarketReport{}, ErrCycleRunning
	}
	defer m.running.Store(false)

	report := MarketReport{Requested: len(m.tickers)}

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	snapshots, err := m.source.FetchQuotes(fetchCtx, m.tickers)
	if err != nil && len(snapshots) == 0 {
		return report, fmt.Errorf("fetch quotes: %w", err)
	}

	for _, snap := range snapshots {
		quote := model.Quote{
			Symbol:        snap.Symbol,
			Name:          snap.Name,
			CurrentPrice:  snap.Price,
			PriceChange:   snap.Change,
			PercentChange: snap.PercentChange,
			Volume:        snap.Volume,
			Sector:        snap.Sector,
			UpdatedAt:     snap.FetchedAt,
		}
		if err := m.store.Upsert(ctx, quote); err != nil {
			return report, fmt.Errorf("persist quote %s: %w", snap.Symbol, err)
		}
		report.Stored++
	}

	report.CompletedAt = time.Now().UTC()
	m.cursors.AdvanceMarket(report.CompletedAt)

	slog.Info("market cycle complete", "requested", report.Requested, "stored", report.Stored)
	return report, nil
}
