package models

import "time"

// ChangeCategory drives green/red colouring in the renderer.
type ChangeCategory string

const (
	ChangePositive    ChangeCategory = "positive"
	ChangeNegative    ChangeCategory = "negative"
	ChangeUnavailable ChangeCategory = "unavailable"
)

// Change is a formatted percentage change.
type Change struct {
	Value    string         `json:"value"`
	Raw      *float64       `json:"raw,omitempty"`
	Category ChangeCategory `json:"category"`
}

// DisplayRow is one table row, fully formatted.
type DisplayRow struct {
	ID        AssetID `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Label     string  `json:"label"`
	Price     string  `json:"price"`
	Change1h  Change  `json:"change_1h"`
	Change24h Change  `json:"change_24h"`
	Change7d  Change  `json:"change_7d"`
	Change30d Change  `json:"change_30d"`
	MarketCap string  `json:"market_cap"`
	Volume    string  `json:"volume"`
	Image     string  `json:"image,omitempty"`
}

// ReturnBar is one bar of the per-asset returns chart.
type ReturnBar struct {
	Period   string         `json:"period"`
	Value    float64        `json:"value"`
	Label    string         `json:"label"`
	Category ChangeCategory `json:"category"`
}

// ChartPoint is one sample of the price chart.
type ChartPoint struct {
	Time  time.Time `json:"t"`
	Price float64   `json:"p"`
}

// AssetDetail is the per-asset detail view.
type AssetDetail struct {
	ID          AssetID      `json:"id"`
	Label       string       `json:"label"`
	Available   bool         `json:"available"`
	Row         *DisplayRow  `json:"row,omitempty"`
	Returns     []ReturnBar  `json:"returns,omitempty"`
	ColorRange  [2]float64   `json:"color_range"`
	Days        int          `json:"days,omitempty"`
	Granularity Granularity  `json:"granularity,omitempty"`
	Chart       []ChartPoint `json:"chart,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// ErrorView is a user-facing error banner.
type ErrorView struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// Snapshot is what the controller publishes to renderers.
type Snapshot struct {
	Seq           uint64        `json:"seq"`
	State         string        `json:"state"`
	Selection     []AssetID     `json:"selection"`
	Policy        PolicyView    `json:"policy"`
	Rows          []DisplayRow  `json:"rows"`
	Details       []AssetDetail `json:"details"`
	Banner        *ErrorView    `json:"banner,omitempty"`
	Stale         bool          `json:"stale"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastSuccessAt time.Time     `json:"last_success_at,omitempty"`
	NextRefreshAt *time.Time    `json:"next_refresh_at,omitempty"`
}

// PolicyView is the JSON form of RefreshPolicy.
type PolicyView struct {
	IntervalSeconds int  `json:"interval_seconds"`
	Enabled         bool `json:"enabled"`
}

// View converts the policy for publishing.
func (p RefreshPolicy) View() PolicyView {
	return PolicyView{IntervalSeconds: int(p.Interval / time.Second), Enabled: p.Enabled}
}
