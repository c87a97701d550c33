package view

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"CoinBoard/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestBuildRowFormatting(t *testing.T) {
	q := models.Quote{
		ID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
		Price: 50000, Change1h: f(-0.1234), Change24h: f(2.5), Change7d: nil, Change30d: f(0),
		MarketCap: 987654321012.4, Volume: 1234567.6,
	}
	row := BuildRow(q)

	tests := []struct {
		name, got, want string
	}{
		{"price", row.Price, "$50,000.00"},
		{"label", row.Label, "Bitcoin (BTC)"},
		{"symbol", row.Symbol, "BTC"},
		{"market cap", row.MarketCap, "$987,654,321,012"},
		{"volume", row.Volume, "$1,234,568"},
		{"1h", row.Change1h.Value, "-0.12%"},
		{"24h", row.Change24h.Value, "2.50%"},
		{"7d", row.Change7d.Value, "N/A"},
		{"30d", row.Change30d.Value, "0.00%"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q want %q", tt.name, tt.got, tt.want)
		}
	}

	if row.Change1h.Category != models.ChangeNegative ||
		row.Change24h.Category != models.ChangePositive ||
		row.Change7d.Category != models.ChangeUnavailable ||
		row.Change30d.Category != models.ChangePositive {
		t.Fatalf("unexpected categories %+v", row)
	}
}

func TestNegativeAmountsShareSignPlacement(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"price", FormatPrice(-5), "-$5.00"},
		{"whole", FormatWhole(-5), "-$5"},
		{"whole grouped", FormatWhole(-1234567.4), "-$1,234,567"},
		{"whole rounds to zero", FormatWhole(-0.4), "$0"},
		{"whole positive", FormatWhole(5), "$5"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuildRowIdempotent(t *testing.T) {
	q := models.Quote{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Price: 3123.456, Change24h: f(-1.2)}
	a, b := BuildRow(q), BuildRow(q)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("BuildRow not idempotent:\n%+v\n%+v", a, b)
	}
	if a.Price != "$3,123.46" {
		t.Fatalf("price = %q", a.Price)
	}
}

func TestBuildRowFallsBackToCatalogLabel(t *testing.T) {
	row := BuildRow(models.Quote{ID: "solana", Price: 1})
	if row.Label != "Solana (SOL)" {
		t.Fatalf("label = %q", row.Label)
	}
}

func TestBuildDetailMissingAsset(t *testing.T) {
	d := BuildDetail("dogecoin", nil, nil, nil)
	if d.Available {
		t.Fatal("missing asset must be unavailable")
	}
	if d.Label != "Dogecoin (DOGE)" || d.Error == "" {
		t.Fatalf("unexpected detail %+v", d)
	}
}

func TestBuildDetailReturnsAndChart(t *testing.T) {
	q := models.Quote{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: 50000,
		Change24h: f(2.5), Change7d: f(-8), Change30d: nil}
	t0 := time.Unix(1700000000, 0).UTC()
	series := &models.HistoricalSeries{AssetID: "bitcoin", Days: 30, Granularity: models.GranularityDaily,
		Points: []models.PricePoint{{Time: t0, Price: 1}, {Time: t0.Add(24 * time.Hour), Price: 2}}}

	d := BuildDetail("bitcoin", &q, series, nil)
	if !d.Available || d.Row == nil {
		t.Fatalf("expected available detail %+v", d)
	}
	if len(d.Returns) != 2 || d.Returns[0].Period != "24h" || d.Returns[1].Category != models.ChangeNegative {
		t.Fatalf("unexpected returns %+v", d.Returns)
	}
	if d.ColorRange != [2]float64{-8, 8} {
		t.Fatalf("color range = %v", d.ColorRange)
	}
	if len(d.Chart) != 2 || d.Granularity != models.GranularityDaily || d.Days != 30 {
		t.Fatalf("unexpected chart %+v", d)
	}
}

func TestBuildDetailHistoryErrorKeepsQuote(t *testing.T) {
	q := models.Quote{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: 1}
	d := BuildDetail("bitcoin", &q, nil, errors.New("history down"))
	if !d.Available || d.Error != "history down" || d.Chart != nil {
		t.Fatalf("unexpected detail %+v", d)
	}
}

func TestErrorBanner(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{"empty", models.ErrEmptySelection, KindEmptySelection, 0},
		{"status", models.NewHTTPStatusError("op", 500, ""), string(models.KindHTTPStatus), 500},
		{"rate", models.NewRateLimitedError("op"), string(models.KindRateLimited), 429},
		{"missing", &models.MissingFieldError{AssetID: "x", Field: "prices"}, KindMissingField, 0},
		{"timeout", models.NewTransportError("op", context.DeadlineExceeded), KindTimeout, 0},
		{"other", errors.New("x"), KindInternal, 0},
	}
	for _, tt := range tests {
		b := ErrorBanner(tt.err)
		if b.Kind != tt.kind || b.Status != tt.status || b.Message == "" {
			t.Errorf("%s: unexpected banner %+v", tt.name, b)
		}
	}
	if ErrorBanner(nil) != nil {
		t.Error("nil error must give nil banner")
	}
}
