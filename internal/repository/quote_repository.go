package repository

import (
	"context"
	"database/sql"

	"bionews/internal/model"
)

type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Upsert replaces the snapshot for a symbol wholesale. Symbols that fail to
// fetch simply keep their previous row.
func (r *QuoteRepository) Upsert(ctx context.Context, q model.Quote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quote(symbol, name, current_price, price_change, percent_change, volume, market_cap, sector, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			current_price = EXCLUDED.current_price,
			price_change = EXCLUDED.price_change,
			percent_change = EXCLUDED.percent_change,
			volume = EXCLUDED.volume,
			market_cap = EXCLUDED.market_cap,
			sector = EXCLUDED.sector,
			updated_at = EXCLUDED.updated_at
	`, q.Symbol, q.Name, q.CurrentPrice, q.PriceChange, q.PercentChange, q.Volume, q.MarketCap, q.Sector, q.UpdatedAt)
	return err
}

func (r *QuoteRepository) List(ctx context.Context) ([]model.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, name, current_price, price_change, percent_change, volume, market_cap, sector, updated_at
		FROM quote
		ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		var q model.Quote
		var marketCap sql.NullFloat64
		err := rows.Scan(&q.Symbol, &q.Name, &q.CurrentPrice, &q.PriceChange, &q.PercentChange, &q.Volume, &marketCap, &q.Sector, &q.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if marketCap.Valid {
			q.MarketCap = &marketCap.Float64
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}
