package cache

import (
	"fmt"
	"sort"
	"strings"

	"CoinBoard/internal/domain/models"
)

// Key prefixes double as the cache "kind" label in metrics.
const (
	KindQuotes  = "quotes"
	KindHistory = "history"
)

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		fmt.Fprintf(&b, ":%v", param)
	}
	return b.String()
}

// QuotesKey identifies a quotes fetch. The id set is order-insensitive.
func QuotesKey(currency string, ids []models.AssetID) string {
	sorted := make([]string, len(ids))
	for i, id := range ids {
		sorted[i] = string(id)
	}
	sort.Strings(sorted)
	return GenerateKeyWithParams(KindQuotes, currency, strings.Join(sorted, ","))
}

// HistoryKey identifies a history fetch for one asset and window.
func HistoryKey(currency string, id models.AssetID, lookbackDays int) string {
	return GenerateKeyWithParams(KindHistory, currency, id, lookbackDays)
}

func kindOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
