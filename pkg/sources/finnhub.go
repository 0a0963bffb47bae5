package sources

import (
	"context"
	"log/slog"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

const quoteBatchSize = 10

// TickerSpec pins the static labels for one watched symbol.
type TickerSpec struct {
	Symbol string
	Name   string
	Sector string
}

// QuoteSnapshot is one symbol's state derived from its two most recent
// trading sessions.
type QuoteSnapshot struct {
	Symbol        string
	Name          string
	Sector        string
	Price         float64
	Change        float64
	PercentChange float64
	Volume        int64
	FetchedAt     time.Time
}

// MarketSource feeds the market snapshot pipeline.
type MarketSource interface {
	FetchQuotes(ctx context.Context, tickers []TickerSpec) ([]QuoteSnapshot, error)
}

// FinnhubSource pulls daily candles from Finnhub and derives price and
// volume deltas from the last two sessions.
type FinnhubSource struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubSource(apiKey string) *FinnhubSource {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubSource{client: client}
}

// FetchQuotes processes tickers in batches of quoteBatchSize with a pause
// between batches. A failing symbol is skipped, never retried within the
// call; the error return is reserved for cancellation.
func (s *FinnhubSource) FetchQuotes(ctx context.Context, tickers []TickerSpec) ([]QuoteSnapshot, error) {
	snapshots := make([]QuoteSnapshot, 0, len(tickers))

	for start := 0; start < len(tickers); start += quoteBatchSize {
		if start > 0 {
			pause(ctx)
		}
		if ctx.Err() != nil {
			return snapshots, ctx.Err()
		}

		end := start + quoteBatchSize
		if end > len(tickers) {
			end = len(tickers)
		}

		for _, spec := range tickers[start:end] {
			snap, ok := s.fetchSymbol(ctx, spec)
			if !ok {
				continue
			}
			snapshots = append(snapshots, snap)
		}
	}

	return snapshots, nil
}

func (s *FinnhubSource) fetchSymbol(ctx context.Context, spec TickerSpec) (QuoteSnapshot, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -10)

	res, _, err := s.client.StockCandles(ctx).
		Symbol(spec.Symbol).
		Resolution("D").
		From(from.Unix()).
		To(now.Unix()).
		Execute()
	if err != nil {
		slog.Warn("quote skipped", "symbol", spec.Symbol, "error", err)
		return QuoteSnapshot{}, false
	}
	if res.GetS() != "ok" {
		slog.Warn("quote skipped", "symbol", spec.Symbol, "status", res.GetS())
		return QuoteSnapshot{}, false
	}

	snap, ok := snapshotFromSessions(spec, res.GetC(), res.GetV(), now)
	if !ok {
		slog.Warn("quote skipped, not enough session history", "symbol", spec.Symbol)
	}
	return snap, ok
}

// snapshotFromSessions derives the delta fields from daily closes and
// volumes. Fewer than two sessions means no delta can be computed and the
// symbol is skipped for this cycle.
func snapshotFromSessions(spec TickerSpec, closes, volumes []float32, at time.Time) (QuoteSnapshot, bool) {
	if len(closes) < 2 {
		return QuoteSnapshot{}, false
	}

	price := float64(closes[len(closes)-1])
	prev := float64(closes[len(closes)-2])
	change := price - prev

	var pct float64
	if prev != 0 {
		pct = change / prev * 100
	}

	var volume int64
	if len(volumes) > 0 {
		volume = int64(volumes[len(volumes)-1])
	}

	return QuoteSnapshot{
		Symbol:        spec.Symbol,
		Name:          spec.Name,
		Sector:        spec.Sector,
		Price:         price,
		Change:        change,
		PercentChange: pct,
		Volume:        volume,
		FetchedAt:     at,
	}, true
}
