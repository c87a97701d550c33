package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CoinBoard/internal/domain/models"
	"CoinBoard/internal/service/ratelimit"
)

const marketsPayload = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png",
   "current_price":50000.0,"market_cap":980000000000,"total_volume":25000000000,
   "price_change_percentage_24h":2.5,"price_change_percentage_1h_in_currency":-0.1,
   "price_change_percentage_7d_in_currency":4.0,"price_change_percentage_30d_in_currency":null,
   "last_updated":"2024-10-10T10:10:10Z"},
  {"id":"ghost","symbol":"gst","name":"Ghost","current_price":null}
]`

func newTestServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, WithAPIKey("x-cg-demo-api-key", "secret"))
}

func TestFetchQuotes(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("ids") != "bitcoin,ghost" || q.Get("vs_currency") != "usd" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Get("price_change_percentage") != "1h,24h,7d,30d" {
			t.Errorf("unexpected windows %s", q.Get("price_change_percentage"))
		}
		if r.Header.Get("x-cg-demo-api-key") != "secret" {
			t.Errorf("api key header missing")
		}
		_, _ = w.Write([]byte(marketsPayload))
	})

	quotes, err := c.FetchQuotes(context.Background(), []models.AssetID{"bitcoin", "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected priceless row to be dropped, got %d quotes", len(quotes))
	}
	q := quotes[0]
	if q.ID != "bitcoin" || q.Price != 50000 || q.Symbol != "btc" {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Change24h == nil || *q.Change24h != 2.5 {
		t.Fatalf("unexpected 24h change %v", q.Change24h)
	}
	if q.Change30d != nil {
		t.Fatalf("null 30d change must stay nil")
	}
	if q.UpdatedAt.IsZero() {
		t.Fatalf("expected last_updated to be parsed")
	}
}

func TestFetchQuotesEmptySelection(t *testing.T) {
	c := New("http://127.0.0.1:1")
	if _, err := c.FetchQuotes(context.Background(), nil); !errors.Is(err, models.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestFetchHistoryGranularity(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{days: 1, want: "hourly"},
		{days: 30, want: "daily"},
	}
	for _, tt := range tests {
		var gotInterval, gotDays string
		_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/coins/bitcoin/market_chart" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			gotInterval = r.URL.Query().Get("interval")
			gotDays = r.URL.Query().Get("days")
			_, _ = w.Write([]byte(`{"prices":[[1700000360000,101.5],[1700000000000,100.0],[1]]}`))
		})

		series, err := c.FetchHistory(context.Background(), "bitcoin", tt.days)
		if err != nil {
			t.Fatalf("days=%d: unexpected error %v", tt.days, err)
		}
		if gotInterval != tt.want {
			t.Fatalf("days=%d: interval=%s want %s", tt.days, gotInterval, tt.want)
		}
		if string(series.Granularity) != tt.want {
			t.Fatalf("days=%d: series granularity=%s", tt.days, series.Granularity)
		}
		if gotDays == "" || series.Days != tt.days {
			t.Fatalf("days not propagated")
		}
		if len(series.Points) != 2 {
			t.Fatalf("expected malformed point to be skipped, got %d", len(series.Points))
		}
		if !series.Points[0].Time.Before(series.Points[1].Time) {
			t.Fatalf("points must be ordered by time")
		}
	}
}

func TestFetchHistoryMissingPrices(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"market_caps":[]}`))
	})
	_, err := c.FetchHistory(context.Background(), "bitcoin", 30)
	if !errors.Is(err, models.ErrMissingField) {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestFetchErrorsAreClassified(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.FetchQuotes(context.Background(), []models.AssetID{"bitcoin"})
	fe, ok := models.AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != models.KindHTTPStatus || fe.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected fetch error %+v", fe)
	}

	_, c = newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":`))
	})
	_, err = c.FetchQuotes(context.Background(), []models.AssetID{"bitcoin"})
	if fe, ok = models.AsFetchError(err); !ok || fe.Kind != models.KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err = New(url).FetchQuotes(context.Background(), []models.AssetID{"bitcoin"})
	if fe, ok = models.AsFetchError(err); !ok || fe.Kind != models.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFetchRateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithLimiter(ratelimit.New(1, 1)))
	if _, err := c.FetchQuotes(context.Background(), []models.AssetID{"bitcoin"}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := c.FetchQuotes(context.Background(), []models.AssetID{"bitcoin"})
	fe, ok := models.AsFetchError(err)
	if !ok || fe.Kind != models.KindRateLimited || fe.Status != http.StatusTooManyRequests {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rate limited call must not reach upstream, calls=%d", calls)
	}
}
