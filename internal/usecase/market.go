package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinBoard/internal/domain/models"
	drepo "CoinBoard/internal/domain/repository"
	dservice "CoinBoard/internal/domain/service"
	icache "CoinBoard/internal/service/cache"
)

// TTL classes for cached upstream data.
const (
	DefaultQuotesTTL  = 300 * time.Second
	DefaultHistoryTTL = 3600 * time.Second
)

// MarketDataService puts the TTL cache in front of a MarketSource.
type MarketDataService struct {
	source     drepo.MarketSource
	cache      *icache.TTLCache
	currency   string
	quotesTTL  time.Duration
	historyTTL time.Duration
}

// MarketOption configures MarketDataService.
type MarketOption func(*MarketDataService)

// WithCurrency sets the quote currency used in cache keys.
func WithCurrency(cur string) MarketOption {
	return func(s *MarketDataService) {
		if cur != "" {
			s.currency = cur
		}
	}
}

// WithTTLs overrides the quotes and history TTLs. Non-positive values keep the defaults.
func WithTTLs(quotes, history time.Duration) MarketOption {
	return func(s *MarketDataService) {
		if quotes > 0 {
			s.quotesTTL = quotes
		}
		if history > 0 {
			s.historyTTL = history
		}
	}
}

func NewMarketDataService(source drepo.MarketSource, cache *icache.TTLCache, opts ...MarketOption) *MarketDataService {
	s := &MarketDataService{
		source:     source,
		cache:      cache,
		currency:   "usd",
		quotesTTL:  DefaultQuotesTTL,
		historyTTL: DefaultHistoryTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ dservice.MarketData = (*MarketDataService)(nil)

func (s *MarketDataService) Quotes(ctx context.Context, sel models.Selection) ([]models.Quote, error) {
	if len(sel) == 0 {
		return nil, models.ErrEmptySelection
	}
	ids := sel.Clone()
	return icache.GetOrFetch(ctx, s.cache, icache.QuotesKey(s.currency, ids), s.quotesTTL,
		func(ctx context.Context) ([]models.Quote, error) {
			return s.source.FetchQuotes(ctx, ids)
		})
}

func (s *MarketDataService) RefreshQuotes(ctx context.Context, sel models.Selection) ([]models.Quote, error) {
	if len(sel) == 0 {
		return nil, models.ErrEmptySelection
	}
	ids := sel.Clone()
	return icache.Revalidate(ctx, s.cache, icache.QuotesKey(s.currency, ids), s.quotesTTL,
		func(ctx context.Context) ([]models.Quote, error) {
			return s.source.FetchQuotes(ctx, ids)
		})
}

func (s *MarketDataService) LastQuotes(sel models.Selection) (models.CacheEntry[[]models.Quote], bool) {
	if len(sel) == 0 {
		return models.CacheEntry[[]models.Quote]{}, false
	}
	return icache.PeekAs[[]models.Quote](s.cache, icache.QuotesKey(s.currency, sel))
}

// History returns the price series for id; out-of-range windows fall back to the default.
func (s *MarketDataService) History(ctx context.Context, id models.AssetID, lookbackDays int) (models.HistoricalSeries, error) {
	if id == "" {
		return models.HistoricalSeries{}, fmt.Errorf("asset id required")
	}
	days := drepo.NormalizeLookback(lookbackDays)
	return icache.GetOrFetch(ctx, s.cache, icache.HistoryKey(s.currency, id, days), s.historyTTL,
		func(ctx context.Context) (models.HistoricalSeries, error) {
			return s.source.FetchHistory(ctx, id, days)
		})
}
