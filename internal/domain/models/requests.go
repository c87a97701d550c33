package models

// Requests for dashboard HTTP endpoints.

type PolicyRequest struct {
	IntervalSeconds int   `json:"interval_seconds" default:"60" validate:"gte=30,lte=300"`
	Enabled         *bool `json:"enabled"`
}

type SelectionRequest struct {
	Assets []string `json:"assets" validate:"required,min=1,max=25,dive,required"`
}

type HistoryRequest struct {
	ID   string `param:"id" validate:"required"`
	Days int    `query:"days" default:"30" validate:"gte=1,lte=365"`
}

type DetailRequest struct {
	ID string `param:"id" validate:"required"`
}

type SnapshotRequest struct {
	After       uint64 `query:"after"`
	WaitSeconds int    `query:"wait" validate:"gte=0,lte=60"`
}
