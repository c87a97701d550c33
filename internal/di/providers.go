package di

import (
	"context"
	"fmt"

	"CoinBoard/internal/domain/models"
	"CoinBoard/internal/handler/api"
	"CoinBoard/internal/scheduler"
	icache "CoinBoard/internal/service/cache"
	"CoinBoard/internal/service/coingecko"
	"CoinBoard/internal/service/ratelimit"
	"CoinBoard/internal/usecase"
	"CoinBoard/internal/usecase/refresh"
	"CoinBoard/pkg/config"
	xhttp "CoinBoard/pkg/http"
	applogger "CoinBoard/pkg/logger"
	"CoinBoard/pkg/metrics"
	"CoinBoard/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(nil)
}

// ProvideRateLimiter creates the local upstream request budget.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.CoinGecko.RateLimit.Burst, cfg.CoinGecko.RateLimit.PerMinute)
}

// ProvideMarketSource creates the CoinGecko client.
func ProvideMarketSource(cfg *config.Config, limiter *ratelimit.Limiter, rec *metrics.Recorder) *coingecko.Client {
	return coingecko.New(cfg.CoinGecko.BaseURL,
		coingecko.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.CoinGecko.Timeout))),
		coingecko.WithCurrency(cfg.CoinGecko.Currency),
		coingecko.WithAPIKey(cfg.CoinGecko.APIKeyHeader, cfg.CoinGecko.APIKey),
		coingecko.WithLimiter(limiter),
		coingecko.WithMetrics(rec),
	)
}

// ProvideSecondTier connects the optional Redis cache tier. It returns a
// nil tier when Redis is disabled.
func ProvideSecondTier(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return nil, func() {}, nil
	}
	cli, err := icache.NewRedisClient(context.Background(), icache.RedisConfig{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		Prefix:   rc.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	tier := icache.NewRedisCache(cli, rc.Prefix)
	l.Info("redis cache tier enabled", applogger.String("addr", rc.Addr))
	cleanup := func() {
		if err := tier.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return tier, cleanup, nil
}

// ProvideTTLCache creates the shared TTL cache.
func ProvideTTLCache(cfg *config.Config, tier icache.BytesCache, rec *metrics.Recorder, l *applogger.Logger) *icache.TTLCache {
	opts := []icache.Option{
		icache.WithMetrics(rec),
		icache.WithLogger(l),
		icache.WithFetchTimeout(cfg.Refresh.FetchTimeout),
	}
	if tier != nil {
		opts = append(opts, icache.WithSecondTier(tier))
	}
	return icache.NewTTLCache(opts...)
}

// ProvideMarketData creates the cached market data use case.
func ProvideMarketData(source *coingecko.Client, cache *icache.TTLCache, cfg *config.Config) *usecase.MarketDataService {
	return usecase.NewMarketDataService(source, cache,
		usecase.WithCurrency(source.Currency()),
		usecase.WithTTLs(cfg.Cache.QuotesTTL, cfg.Cache.HistoryTTL),
	)
}

// ProvideController creates the refresh controller with the configured selection and policy.
func ProvideController(market *usecase.MarketDataService, cfg *config.Config, l *applogger.Logger, rec *metrics.Recorder) *refresh.Controller {
	return refresh.NewController(market,
		models.NewSelection(cfg.Refresh.Assets...),
		models.RefreshPolicy{Interval: cfg.Refresh.Interval, Enabled: cfg.Refresh.AutoRefresh},
		refresh.WithLogger(l.With(applogger.String("component", "refresh"))),
		refresh.WithMetrics(rec),
		refresh.WithFetchTimeout(cfg.Refresh.FetchTimeout),
		refresh.WithHistoryDays(cfg.Refresh.HistoryDays),
		refresh.WithHistoryWorkers(cfg.Refresh.HistoryWorkers),
		refresh.WithForceOnManual(cfg.Refresh.ForceOnManual),
	)
}

// ProvideScheduler registers cache housekeeping jobs.
func ProvideScheduler(cache *icache.TTLCache, cfg *config.Config, l *applogger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.NewScheduler(cache, l.With(applogger.String("component", "scheduler")))
	if err := s.RegisterAll(cfg.Cache.SweepCron, cfg.Cache.StatsCron); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideDashboardHandler creates the dashboard API handler.
func ProvideDashboardHandler(l *applogger.Logger, ctl *refresh.Controller, market *usecase.MarketDataService) *api.DashboardHandler {
	return api.NewDashboardHandler(l, ctl, market)
}

// ProvideHTTPServer creates the echo server with the dashboard routes.
func ProvideHTTPServer(cfg *config.Config, h *api.DashboardHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLongPollRoutes(api.RouteSnapshot, api.RouteStream),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	ctl *refresh.Controller,
	sched *scheduler.Scheduler,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, l, ctl, sched, srv)
}
