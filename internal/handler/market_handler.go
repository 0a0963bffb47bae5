package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bionews/internal/model"
)

type QuoteStore interface {
	List(ctx context.Context) ([]model.Quote, error)
}

type MarketHandler struct {
	store QuoteStore
}

func NewMarketHandler(store QuoteStore) *MarketHandler {
	return &MarketHandler{store: store}
}

func (h *MarketHandler) GetMarket(c *gin.Context) {
	quotes, err := h.store.List(c.Request.Context())
	if err != nil {
		slog.Error("error listing quotes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		res = append(res, QuoteResponse{
			Symbol:        q.Symbol,
			Name:          q.Name,
			CurrentPrice:  q.CurrentPrice,
			PriceChange:   q.PriceChange,
			PercentChange: q.PercentChange,
			Volume:        q.Volume,
			MarketCap:     q.MarketCap,
			Sector:        q.Sector,
			UpdatedAt:     q.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}
