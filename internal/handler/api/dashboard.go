package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"CoinBoard/internal/domain/models"
	dservice "CoinBoard/internal/domain/service"
	"CoinBoard/internal/usecase/refresh"
	"CoinBoard/internal/view"
	xhttp "CoinBoard/pkg/http"
	xlogger "CoinBoard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RefreshController is the controller surface the API drives.
type RefreshController interface {
	Mailbox() *refresh.Mailbox
	State() refresh.State
	Policy() models.RefreshPolicy
	Selection() models.Selection
	Refresh() (bool, error)
	SetPolicy(models.RefreshPolicy) models.RefreshPolicy
	SetSelection(models.Selection) error
}

// DashboardHandler serves snapshots and user input for the rendering layer.
type DashboardHandler struct {
	logger *xlogger.Logger
	ctl    RefreshController
	market dservice.MarketData
	stream *StreamHandler
}

func NewDashboardHandler(logger *xlogger.Logger, ctl RefreshController, market dservice.MarketData) *DashboardHandler {
	return &DashboardHandler{
		logger: logger,
		ctl:    ctl,
		market: market,
		stream: NewStreamHandler(logger, ctl.Mailbox()),
	}
}

// Long-poll routes block by design.
const (
	RouteSnapshot = "/api/snapshot"
	RouteStream   = "/api/stream"
)

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/rows", h.Rows)
	g.GET("/assets", h.Assets)
	g.GET("/assets/:id", h.Asset)
	g.GET("/history/:id", h.History)
	g.POST("/refresh", h.Refresh)
	g.PUT("/policy", h.SetPolicy)
	g.PUT("/selection", h.SetSelection)
	g.GET("/stream", h.stream.Serve)
}

type healthView struct {
	Status        string    `json:"status"`
	State         string    `json:"state"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
}

func (h *DashboardHandler) Health(c echo.Context) error {
	res := healthView{Status: "ok", State: string(h.ctl.State())}
	if s, ok := h.ctl.Mailbox().Latest(); ok {
		res.LastSuccessAt = s.LastSuccessAt
	}
	return c.JSON(http.StatusOK, res)
}

// Snapshot returns the latest snapshot. With after and wait it long-polls
// until a newer snapshot appears or wait elapses, then returns the latest.
func (h *DashboardHandler) Snapshot(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	mb := h.ctl.Mailbox()
	if req.WaitSeconds > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Duration(req.WaitSeconds)*time.Second)
		defer cancel()
		_, _ = mb.Wait(ctx, req.After)
	}

	s, ok := mb.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_NOT_READY", "", "no snapshot published yet", http.StatusServiceUnavailable))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, s)
}

func (h *DashboardHandler) Rows(c echo.Context) error {
	s, _ := h.ctl.Mailbox().Latest()
	rows := s.Rows
	if rows == nil {
		rows = []models.DisplayRow{}
	}
	return xhttp.ListResponse(c, rows, len(rows))
}

type assetView struct {
	models.Asset
	Selected bool `json:"selected"`
}

// Assets lists the catalog with the current selection marked.
func (h *DashboardHandler) Assets(c echo.Context) error {
	selected := make(map[models.AssetID]bool)
	for _, id := range h.ctl.Selection() {
		selected[id] = true
	}
	out := make([]assetView, 0, len(models.Catalog))
	for _, a := range models.Catalog {
		out = append(out, assetView{Asset: a, Selected: selected[a.ID]})
	}
	return xhttp.ListResponse(c, out, len(out))
}

// Asset returns the detail view of a selected asset from the latest snapshot.
func (h *DashboardHandler) Asset(c echo.Context) error {
	req := &models.DetailRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := models.AssetID(req.ID)

	s, _ := h.ctl.Mailbox().Latest()
	for _, d := range s.Details {
		if d.ID == id {
			return xhttp.SuccessResponse(c, d)
		}
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("asset %q is not in the current view", req.ID))
}

type historyView struct {
	ID          models.AssetID      `json:"id"`
	Days        int                 `json:"days"`
	Granularity models.Granularity  `json:"granularity"`
	Points      []models.ChartPoint `json:"points"`
}

// History serves a cached price series for any catalog asset.
func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := models.AssetID(req.ID)

	series, err := h.market.History(c.Request().Context(), id, req.Days)
	if err != nil {
		h.logger.Error("history fetch error", xlogger.String("asset", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	points := make([]models.ChartPoint, len(series.Points))
	for i, p := range series.Points {
		points[i] = models.ChartPoint{Time: p.Time, Price: p.Price}
	}
	return xhttp.SuccessResponse(c, historyView{
		ID:          series.AssetID,
		Days:        series.Days,
		Granularity: series.Granularity,
		Points:      points,
	})
}

type refreshView struct {
	Accepted bool   `json:"accepted"`
	State    string `json:"state"`
}

// Refresh triggers a manual cycle. A trigger that coalesces with running
// or pending work is still answered with 202 and accepted=false.
func (h *DashboardHandler) Refresh(c echo.Context) error {
	ok, err := h.ctl.Refresh()
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.AcceptedResponse(c, refreshView{Accepted: ok, State: string(h.ctl.State())})
}

func (h *DashboardHandler) SetPolicy(c echo.Context) error {
	req := &models.PolicyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p := h.ctl.Policy()
	p.Interval = time.Duration(req.IntervalSeconds) * time.Second
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}
	p = h.ctl.SetPolicy(p)
	h.logger.Info("refresh policy updated",
		xlogger.Duration("interval", p.Interval),
		xlogger.Bool("enabled", p.Enabled),
	)
	return xhttp.SuccessResponse(c, p.View())
}

func (h *DashboardHandler) SetSelection(c echo.Context) error {
	req := &models.SelectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sel := models.NewSelection(req.Assets...)
	for _, id := range sel {
		if _, ok := models.LookupAsset(id); !ok {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_UNKNOWN_ASSET",
				Field:   "assets",
				Message: "unknown asset " + string(id),
			}})
		}
	}
	if err := h.ctl.SetSelection(sel); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	h.logger.Info("selection updated", xlogger.Strings("assets", sel.Strings()))
	return xhttp.AcceptedResponse(c, sel)
}

// toAppError maps domain and fetch errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	if errors.Is(err, models.ErrEmptySelection) {
		return xhttp.UnprocessableError("ERR_EMPTY_SELECTION", err.Error()).WithError(err)
	}
	banner := view.ErrorBanner(err)
	switch banner.Kind {
	case string(models.KindRateLimited):
		return xhttp.UpstreamError("ERR_RATE_LIMITED", banner.Message, http.StatusTooManyRequests).WithError(err)
	case view.KindTimeout:
		return xhttp.UpstreamError("ERR_UPSTREAM_TIMEOUT", banner.Message, http.StatusGatewayTimeout).WithError(err)
	case string(models.KindHTTPStatus):
		return xhttp.UpstreamError("ERR_UPSTREAM_STATUS", banner.Message, http.StatusBadGateway).
			WithParam("upstream_status", banner.Status).WithError(err)
	case string(models.KindTransport), string(models.KindDecode), view.KindMissingField:
		return xhttp.UpstreamError("ERR_UPSTREAM", banner.Message, http.StatusBadGateway).WithError(err)
	}
	return xhttp.InternalError("Something went wrong").WithError(err)
}
