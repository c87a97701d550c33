package view

import (
	"math"

	"CoinBoard/internal/domain/models"
)

// BuildDetail assembles the per-asset view. q is nil when the asset was
// absent from the quotes payload; series and histErr describe the price
// chart fetch, either of which may be empty.
func BuildDetail(id models.AssetID, q *models.Quote, series *models.HistoricalSeries, histErr error) models.AssetDetail {
	d := models.AssetDetail{ID: id, Label: models.AssetLabel(id)}

	if q == nil {
		d.Error = (&models.MissingFieldError{AssetID: id, Field: "quote"}).Error()
		return d
	}

	row := BuildRow(*q)
	d.Available = true
	d.Label = row.Label
	d.Row = &row
	d.Returns = returnBars(*q)
	d.ColorRange = colorRange(d.Returns)

	switch {
	case histErr != nil:
		d.Error = histErr.Error()
	case series != nil:
		d.Days = series.Days
		d.Granularity = series.Granularity
		d.Chart = make([]models.ChartPoint, len(series.Points))
		for i, p := range series.Points {
			d.Chart[i] = models.ChartPoint{Time: p.Time, Price: p.Price}
		}
	}
	return d
}

func returnBars(q models.Quote) []models.ReturnBar {
	windows := []struct {
		period string
		v      *float64
	}{
		{"24h", q.Change24h},
		{"7d", q.Change7d},
		{"30d", q.Change30d},
	}
	bars := make([]models.ReturnBar, 0, len(windows))
	for _, w := range windows {
		if w.v == nil || math.IsNaN(*w.v) {
			continue
		}
		bars = append(bars, models.ReturnBar{
			Period:   w.period,
			Value:    *w.v,
			Label:    FormatPercent(*w.v),
			Category: category(*w.v),
		})
	}
	return bars
}

// colorRange is symmetric around zero so green and red stay balanced.
func colorRange(bars []models.ReturnBar) [2]float64 {
	m := 0.0
	for _, b := range bars {
		m = math.Max(m, math.Abs(b.Value))
	}
	return [2]float64{-m, m}
}

// IndexQuotes maps quotes by asset id.
func IndexQuotes(quotes []models.Quote) map[models.AssetID]*models.Quote {
	idx := make(map[models.AssetID]*models.Quote, len(quotes))
	for i := range quotes {
		idx[quotes[i].ID] = &quotes[i]
	}
	return idx
}
