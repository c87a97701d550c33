package repository

import (
	"context"

	"CoinBoard/internal/domain/models"
)

// MarketSource fetches market data from the upstream API. Every call is a
// single attempt; failures come back as *models.FetchError values.
type MarketSource interface {
	FetchQuotes(ctx context.Context, ids []models.AssetID) ([]models.Quote, error)
	FetchHistory(ctx context.Context, id models.AssetID, lookbackDays int) (models.HistoricalSeries, error)
}

// Metrics records fetch, cache and refresh activity.
type Metrics interface {
	RecordFetch(op string, seconds float64, err error)
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordRefreshCycle(trigger, outcome string)
	RecordLastPrice(asset string, price float64)
	RecordError(kind string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordFetch(string, float64, error) {}
func (NopMetrics) RecordCacheHit(string)              {}
func (NopMetrics) RecordCacheMiss(string)             {}
func (NopMetrics) RecordRefreshCycle(string, string)  {}
func (NopMetrics) RecordLastPrice(string, float64)    {}
func (NopMetrics) RecordError(string)                 {}

