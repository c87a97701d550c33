package view

import (
	"fmt"
	"math"
	"strings"

	"CoinBoard/internal/domain/models"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unavailable = "N/A"

var printer = message.NewPrinter(language.English)

// BuildRow turns a quote into a table row. It is pure: the same quote
// always yields the same row.
func BuildRow(q models.Quote) models.DisplayRow {
	return models.DisplayRow{
		ID:        q.ID,
		Name:      q.Name,
		Symbol:    strings.ToUpper(q.Symbol),
		Label:     label(q),
		Price:     FormatPrice(q.Price),
		Change1h:  BuildChange(q.Change1h),
		Change24h: BuildChange(q.Change24h),
		Change7d:  BuildChange(q.Change7d),
		Change30d: BuildChange(q.Change30d),
		MarketCap: FormatWhole(q.MarketCap),
		Volume:    FormatWhole(q.Volume),
		Image:     q.Image,
	}
}

// BuildRows maps quotes to rows, keeping upstream order.
func BuildRows(quotes []models.Quote) []models.DisplayRow {
	rows := make([]models.DisplayRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, BuildRow(q))
	}
	return rows
}

func label(q models.Quote) string {
	if q.Name == "" {
		return models.AssetLabel(q.ID)
	}
	if q.Symbol == "" {
		return q.Name
	}
	return fmt.Sprintf("%s (%s)", q.Name, strings.ToUpper(q.Symbol))
}

// FormatPrice renders a price with grouping and two decimals, e.g. "$50,000.00".
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable
	}
	if v < 0 {
		return "-" + printer.Sprintf("$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatWhole renders a rounded dollar amount, e.g. "$1,234,567".
func FormatWhole(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable
	}
	n := int64(math.Round(v))
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// FormatPercent renders a change as "2.50%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// BuildChange formats a change field; nil means the upstream did not report it.
func BuildChange(v *float64) models.Change {
	if v == nil || math.IsNaN(*v) {
		return models.Change{Value: unavailable, Category: models.ChangeUnavailable}
	}
	raw := *v
	return models.Change{Value: FormatPercent(raw), Raw: &raw, Category: category(raw)}
}

func category(v float64) models.ChangeCategory {
	if v >= 0 {
		return models.ChangePositive
	}
	return models.ChangeNegative
}
