package model

import "time"

// Quote is a per-symbol market snapshot. Writes are keyed by symbol, so at
// most one live record exists per ticker; a symbol whose fetch failed keeps
// its last stored snapshot.
type Quote struct {
	Symbol        string
	Name          string
	CurrentPrice  float64
	PriceChange   float64
	PercentChange float64
	Volume        int64
	MarketCap     *float64
	Sector        string
	UpdatedAt     time.Time
}
