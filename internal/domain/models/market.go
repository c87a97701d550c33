package models

import (
	"strings"
	"time"
)

// AssetID is the upstream token for a tracked asset (e.g. "bitcoin").
type AssetID string

// Granularity of a historical series.
type Granularity string

const (
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

// GranularityFor picks the series resolution for a lookback window.
// Anything longer than one day is requested as daily points.
func GranularityFor(lookbackDays int) Granularity {
	if lookbackDays > 1 {
		return GranularityDaily
	}
	return GranularityHourly
}

// Quote is a market snapshot for one asset. Change fields are nil when
// the upstream did not report that window.
type Quote struct {
	ID        AssetID
	Name      string
	Symbol    string
	Price     float64
	Change1h  *float64
	Change24h *float64
	Change7d  *float64
	Change30d *float64
	MarketCap float64
	Volume    float64
	Image     string
	UpdatedAt time.Time
}

// PricePoint is one sample of a historical series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// HistoricalSeries is an ordered price series for one asset.
type HistoricalSeries struct {
	AssetID     AssetID
	Days        int
	Granularity Granularity
	Points      []PricePoint
}

// CacheEntry wraps a cached value with its creation time and TTL.
type CacheEntry[T any] struct {
	Value     T
	CreatedAt time.Time
	TTL       time.Duration
}

// ValidAt reports whether the entry is still fresh at now.
func (e CacheEntry[T]) ValidAt(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.CreatedAt) < e.TTL
}

// ExpiresAt is the first instant at which the entry is stale.
func (e CacheEntry[T]) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}

// Refresh interval bounds accepted from the user input surface.
const (
	MinRefreshInterval     = 30 * time.Second
	MaxRefreshInterval     = 300 * time.Second
	RefreshIntervalStep    = 30 * time.Second
	DefaultRefreshInterval = 60 * time.Second
)

// RefreshPolicy governs automatic refresh cycles.
type RefreshPolicy struct {
	Interval time.Duration
	Enabled  bool
}

// DefaultRefreshPolicy returns auto-refresh every minute.
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{Interval: DefaultRefreshInterval, Enabled: true}
}

// ClampInterval snaps d onto the accepted interval grid.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinRefreshInterval {
		return MinRefreshInterval
	}
	if d > MaxRefreshInterval {
		return MaxRefreshInterval
	}
	return d.Round(RefreshIntervalStep)
}

// Selection is an ordered set of assets.
type Selection []AssetID

// NewSelection trims, lower-cases and de-duplicates ids, keeping order.
func NewSelection(ids ...string) Selection {
	seen := make(map[AssetID]struct{}, len(ids))
	sel := make(Selection, 0, len(ids))
	for _, raw := range ids {
		id := AssetID(strings.ToLower(strings.TrimSpace(raw)))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sel = append(sel, id)
	}
	return sel
}

// Strings returns the ids as plain strings.
func (s Selection) Strings() []string {
	out := make([]string, len(s))
	for i, id := range s {
		out[i] = string(id)
	}
	return out
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	return append(Selection(nil), s...)
}
