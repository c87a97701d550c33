package service

import (
	"context"

	"CoinBoard/internal/domain/models"
)

// MarketData serves cached market data to the refresh controller and API.
type MarketData interface {
	// Quotes returns quotes for sel, served from cache while valid.
	Quotes(ctx context.Context, sel models.Selection) ([]models.Quote, error)
	// RefreshQuotes always asks the upstream; a failure keeps the cached entry.
	RefreshQuotes(ctx context.Context, sel models.Selection) ([]models.Quote, error)
	History(ctx context.Context, id models.AssetID, lookbackDays int) (models.HistoricalSeries, error)
	// LastQuotes returns the last stored quotes for sel, expired or not.
	LastQuotes(sel models.Selection) (models.CacheEntry[[]models.Quote], bool)
}
