package coingecko

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinBoard/internal/domain/models"
	drepo "CoinBoard/internal/domain/repository"
	"CoinBoard/internal/service/ratelimit"
	xhttp "CoinBoard/pkg/http"
	"CoinBoard/pkg/util"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	opMarkets     = "coingecko.markets"
	opMarketChart = "coingecko.market_chart"

	changeWindows = "1h,24h,7d,30d"
	limiterKey    = "coingecko"
)

// Client implements MarketSource against the CoinGecko REST API.
type Client struct {
	http         *xhttp.Client
	baseURL      string
	currency     string
	apiKey       string
	apiKeyHeader string
	limiter      *ratelimit.Limiter
	metrics      drepo.Metrics
	clock        clockwork.Clock
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithCurrency sets the quote currency (vs_currency).
func WithCurrency(cur string) Option {
	return func(cl *Client) {
		if cur != "" {
			cl.currency = strings.ToLower(cur)
		}
	}
}

// WithAPIKey sends key in header on every request.
func WithAPIKey(header, key string) Option {
	return func(cl *Client) {
		cl.apiKeyHeader = header
		cl.apiKey = key
	}
}

// WithLimiter guards the upstream with a local request budget.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// WithMetrics records per-request latency and failures.
func WithMetrics(m drepo.Metrics) Option {
	return func(cl *Client) {
		if m != nil {
			cl.metrics = m
		}
	}
}

// WithClock injects the clock used for latency measurement.
func WithClock(c clockwork.Clock) Option {
	return func(cl *Client) { cl.clock = c }
}

// New creates a CoinGecko client.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:     xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: "usd",
		metrics:  drepo.NopMetrics{},
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.MarketSource = (*Client)(nil)

// Currency returns the configured quote currency.
func (c *Client) Currency() string { return c.currency }

type marketRow struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	TotalVolume  *float64 `json:"total_volume"`
	Change1h     *float64 `json:"price_change_percentage_1h_in_currency"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	LastUpdated  string   `json:"last_updated"`
}

// FetchQuotes returns market snapshots for ids, ordered by market cap.
// Rows the upstream returns without an id or price are dropped; callers
// detect absent assets by id.
func (c *Client) FetchQuotes(ctx context.Context, ids []models.AssetID) ([]models.Quote, error) {
	if len(ids) == 0 {
		return nil, models.ErrEmptySelection
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	var rows []marketRow
	err := c.get(ctx, opMarkets, "/coins/markets", map[string][]string{
		"vs_currency":             {c.currency},
		"ids":                     {strings.Join(raw, ",")},
		"order":                   {"market_cap_desc"},
		"per_page":                {"100"},
		"page":                    {"1"},
		"sparkline":               {"false"},
		"price_change_percentage": {changeWindows},
	}, &rows)
	if err != nil {
		return nil, err
	}

	quotes := make([]models.Quote, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" || r.CurrentPrice == nil {
			continue
		}
		quotes = append(quotes, r.toQuote())
	}
	return quotes, nil
}

func (r marketRow) toQuote() models.Quote {
	q := models.Quote{
		ID:        models.AssetID(r.ID),
		Name:      r.Name,
		Symbol:    r.Symbol,
		Price:     *r.CurrentPrice,
		Change1h:  r.Change1h,
		Change24h: r.Change24h,
		Change7d:  r.Change7d,
		Change30d: r.Change30d,
		Image:     r.Image,
	}
	if r.MarketCap != nil {
		q.MarketCap = *r.MarketCap
	}
	if r.TotalVolume != nil {
		q.Volume = *r.TotalVolume
	}
	if t, ok := util.ParseTime(r.LastUpdated); ok {
		q.UpdatedAt = t
	}
	return q
}

type chartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// FetchHistory returns the price series for id over lookbackDays.
func (c *Client) FetchHistory(ctx context.Context, id models.AssetID, lookbackDays int) (models.HistoricalSeries, error) {
	gran := models.GranularityFor(lookbackDays)

	var resp chartResponse
	err := c.get(ctx, opMarketChart, "/coins/"+url.PathEscape(string(id))+"/market_chart", map[string][]string{
		"vs_currency": {c.currency},
		"days":        {strconv.Itoa(lookbackDays)},
		"interval":    {string(gran)},
	}, &resp)
	if err != nil {
		return models.HistoricalSeries{}, err
	}
	if resp.Prices == nil {
		return models.HistoricalSeries{}, &models.MissingFieldError{AssetID: id, Field: "prices"}
	}

	points := make([]models.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, models.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	return models.HistoricalSeries{
		AssetID:     id,
		Days:        lookbackDays,
		Granularity: gran,
		Points:      points,
	}, nil
}

func (c *Client) get(ctx context.Context, op, path string, query map[string][]string, dest interface{}) error {
	if !c.limiter.Allow(limiterKey) {
		err := models.NewRateLimitedError(op)
		c.metrics.RecordFetch(op, 0, err)
		return err
	}

	headers := map[string]string{}
	if c.apiKey != "" && c.apiKeyHeader != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	start := c.clock.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     headers,
		QueryParams: query,
	}, dest)
	if err != nil {
		err = classify(op, err)
	}
	c.metrics.RecordFetch(op, c.clock.Since(start).Seconds(), err)
	return err
}

// classify maps transport-level errors onto the FetchError taxonomy.
func classify(op string, err error) error {
	var se *xhttp.StatusError
	switch {
	case errors.As(err, &se):
		return models.NewHTTPStatusError(op, se.Code, se.Body)
	case errors.Is(err, xhttp.ErrDecode):
		return models.NewDecodeError(op, err)
	default:
		return models.NewTransportError(op, err)
	}
}
