package metrics

import (
	"errors"
	"net/http"
	"testing"

	"CoinBoard/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordCacheHit("quotes")
	r.RecordCacheHit("quotes")
	r.RecordCacheMiss("history")
	r.RecordRefreshCycle("timer", "ok")
	r.RecordLastPrice("bitcoin", 50000)

	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("quotes", "hit")); got != 2 {
		t.Fatalf("quotes hits = %v", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("history", "miss")); got != 1 {
		t.Fatalf("history misses = %v", got)
	}
	if got := testutil.ToFloat64(r.refreshCycles.WithLabelValues("timer", "ok")); got != 1 {
		t.Fatalf("refresh cycles = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("bitcoin")); got != 50000 {
		t.Fatalf("last price = %v", got)
	}
}

func TestRecordFetchLabelsErrorKind(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("coingecko.markets", 0.2, nil)
	r.RecordFetch("coingecko.markets", 0.1, models.NewHTTPStatusError("coingecko.markets", http.StatusInternalServerError, ""))
	r.RecordFetch("coingecko.markets", 0.1, errors.New("plain"))

	if got := testutil.ToFloat64(r.fetchErrors.WithLabelValues("coingecko.markets", "http_status")); got != 1 {
		t.Fatalf("http_status errors = %v", got)
	}
	if got := testutil.ToFloat64(r.fetchErrors.WithLabelValues("coingecko.markets", "unknown")); got != 1 {
		t.Fatalf("unknown errors = %v", got)
	}
}
