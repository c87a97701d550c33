package refresh

import (
	"context"
	"sync"
	"time"

	"CoinBoard/internal/domain/models"
	drepo "CoinBoard/internal/domain/repository"
	dservice "CoinBoard/internal/domain/service"
	"CoinBoard/internal/view"
	applogger "CoinBoard/pkg/logger"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// State of the refresh cycle.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateDisplayed State = "displayed"
	StateWaiting   State = "waiting"
)

// Trigger names what started a cycle.
type Trigger string

const (
	TriggerInitial   Trigger = "initial"
	TriggerManual    Trigger = "manual"
	TriggerTimer     Trigger = "timer"
	TriggerSelection Trigger = "selection"
)

// Cycle outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeFailed   = "failed"
	outcomeEmpty    = "empty_selection"
)

const (
	defaultFetchTimeout   = 10 * time.Second
	defaultHistoryWorkers = 3
)

// Controller drives the fetch, display, wait cycle in a background
// goroutine and publishes every result into its Mailbox.
type Controller struct {
	market  dservice.MarketData
	mailbox *Mailbox
	clock   clockwork.Clock
	log     *applogger.Logger
	metrics drepo.Metrics

	fetchTimeout   time.Duration
	historyDays    int
	historyWorkers int
	forceOnManual  bool

	triggers chan Trigger
	rearm    chan struct{}

	mu          sync.Mutex
	state       State
	policy      models.RefreshPolicy
	selection   models.Selection
	pending     bool
	current     models.Snapshot
	lastSuccess time.Time
	nextRefresh *time.Time
}

// Option configures Controller.
type Option func(*Controller)

func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithLogger(l *applogger.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.log = l
		}
	}
}

func WithMetrics(m drepo.Metrics) Option {
	return func(ctl *Controller) {
		if m != nil {
			ctl.metrics = m
		}
	}
}

// WithFetchTimeout bounds each cycle's upstream work.
func WithFetchTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.fetchTimeout = d
		}
	}
}

// WithHistoryDays sets the detail chart window.
func WithHistoryDays(days int) Option {
	return func(ctl *Controller) { ctl.historyDays = drepo.NormalizeLookback(days) }
}

// WithHistoryWorkers caps concurrent history fetches per cycle.
func WithHistoryWorkers(n int) Option {
	return func(ctl *Controller) {
		if n > 0 {
			ctl.historyWorkers = n
		}
	}
}

// WithForceOnManual makes manual refreshes bypass still-valid quote entries.
func WithForceOnManual(v bool) Option {
	return func(ctl *Controller) { ctl.forceOnManual = v }
}

func NewController(market dservice.MarketData, sel models.Selection, policy models.RefreshPolicy, opts ...Option) *Controller {
	c := &Controller{
		market:         market,
		mailbox:        NewMailbox(),
		clock:          clockwork.NewRealClock(),
		log:            applogger.Nop(),
		metrics:        drepo.NopMetrics{},
		fetchTimeout:   defaultFetchTimeout,
		historyDays:    drepo.DefaultLookback(),
		historyWorkers: defaultHistoryWorkers,
		triggers:       make(chan Trigger, 1),
		rearm:          make(chan struct{}, 1),
		state:          StateIdle,
		policy:         normalizePolicy(policy),
		selection:      sel.Clone(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizePolicy(p models.RefreshPolicy) models.RefreshPolicy {
	p.Interval = models.ClampInterval(p.Interval)
	return p
}

// Mailbox returns the snapshot mailbox renderers read from.
func (c *Controller) Mailbox() *Mailbox { return c.mailbox }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Policy() models.RefreshPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

func (c *Controller) Selection() models.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Clone()
}

// Refresh requests an immediate cycle. It reports false without queuing
// anything when a fetch is running or a trigger is already pending.
func (c *Controller) Refresh() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.selection) == 0 {
		return false, models.ErrEmptySelection
	}
	if c.state == StateFetching || c.pending {
		return false, nil
	}
	return c.enqueueLocked(TriggerManual), nil
}

// SetPolicy replaces the refresh policy and restarts the wait timer.
func (c *Controller) SetPolicy(p models.RefreshPolicy) models.RefreshPolicy {
	c.mu.Lock()
	c.policy = normalizePolicy(p)
	p = c.policy
	c.mu.Unlock()

	select {
	case c.rearm <- struct{}{}:
	default:
	}
	return p
}

// SetSelection replaces the tracked assets and schedules a cycle for them.
// An empty selection is stored and reported as ErrEmptySelection.
func (c *Controller) SetSelection(sel models.Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = sel.Clone()
	c.enqueueLocked(TriggerSelection)
	if len(sel) == 0 {
		return models.ErrEmptySelection
	}
	return nil
}

func (c *Controller) enqueueLocked(t Trigger) bool {
	select {
	case c.triggers <- t:
		c.pending = true
		return true
	default:
		return false
	}
}

// Run performs the initial load and then loops until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.enqueueLocked(TriggerInitial)
	c.mu.Unlock()

	var timer clockwork.Timer
	var timerC <-chan time.Time
	stop := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	arm := func() {
		stop()
		if d, ok := c.enterWaiting(); ok {
			timer = c.clock.NewTimer(d)
			timerC = timer.Chan()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("refresh.controller stopped")
			return nil
		case t := <-c.triggers:
			stop()
			c.cycle(ctx, t)
			arm()
		case <-timerC:
			timer, timerC = nil, nil
			c.cycle(ctx, TriggerTimer)
			arm()
		case <-c.rearm:
			arm()
		}
	}
}

// enterWaiting moves Displayed to Waiting and returns the wait duration
// when auto refresh is on. Idle and Waiting are re-evaluated in place.
func (c *Controller) enterWaiting() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle || c.state == StateFetching {
		c.nextRefresh = nil
		c.publishLocked(nil)
		return 0, false
	}
	c.state = StateWaiting
	if !c.policy.Enabled {
		c.nextRefresh = nil
		c.publishLocked(nil)
		return 0, false
	}
	next := c.clock.Now().Add(c.policy.Interval)
	c.nextRefresh = &next
	c.publishLocked(nil)
	return c.policy.Interval, true
}

func (c *Controller) cycle(ctx context.Context, trigger Trigger) {
	c.mu.Lock()
	c.pending = false
	sel := c.selection.Clone()
	if len(sel) == 0 {
		c.state = StateIdle
		c.nextRefresh = nil
		c.publishLocked(func(s *models.Snapshot) {
			s.Rows, s.Details = nil, nil
			s.Stale = false
			s.Banner = view.ErrorBanner(models.ErrEmptySelection)
		})
		c.mu.Unlock()
		c.metrics.RecordRefreshCycle(string(trigger), outcomeEmpty)
		c.log.Warn("refresh.cycle skipped", applogger.String("trigger", string(trigger)), applogger.Error(models.ErrEmptySelection))
		return
	}
	c.state = StateFetching
	c.nextRefresh = nil
	c.publishLocked(nil)
	c.mu.Unlock()

	start := c.clock.Now()
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	quotes, err := c.fetchQuotes(fctx, sel, trigger)
	if err != nil {
		c.fail(trigger, sel, err)
		return
	}

	details, degraded := c.buildDetails(fctx, sel, quotes)
	rows := view.BuildRows(quotes)
	for _, q := range quotes {
		c.metrics.RecordLastPrice(string(q.ID), q.Price)
	}

	now := c.clock.Now()
	c.mu.Lock()
	c.state = StateDisplayed
	c.lastSuccess = now
	c.publishLocked(func(s *models.Snapshot) {
		s.Rows = rows
		s.Details = details
		s.Banner = nil
		s.Stale = false
	})
	c.mu.Unlock()

	outcome := outcomeOK
	if degraded {
		outcome = outcomeDegraded
	}
	c.metrics.RecordRefreshCycle(string(trigger), outcome)
	c.log.Info("refresh.cycle done",
		applogger.String("trigger", string(trigger)),
		applogger.String("outcome", outcome),
		applogger.Int("assets", len(sel)),
		applogger.Int("quotes", len(quotes)),
		applogger.Duration("took", c.clock.Since(start)),
	)
}

func (c *Controller) fetchQuotes(ctx context.Context, sel models.Selection, trigger Trigger) ([]models.Quote, error) {
	if trigger == TriggerManual && c.forceOnManual {
		return c.market.RefreshQuotes(ctx, sel)
	}
	return c.market.Quotes(ctx, sel)
}

// fail adds a banner and keeps stale rows on screen. Quotes last stored for
// sel win over whatever was displayed before.
func (c *Controller) fail(trigger Trigger, sel models.Selection, err error) {
	banner := view.ErrorBanner(err)

	var rows []models.DisplayRow
	last, cached := c.market.LastQuotes(sel)
	if cached {
		rows = view.BuildRows(last.Value)
		c.log.Debug("refresh.stale rows from cache",
			applogger.Int("quotes", len(last.Value)),
			applogger.Bool("expired", !last.ValidAt(c.clock.Now())),
		)
	}

	c.mu.Lock()
	c.state = StateDisplayed
	c.publishLocked(func(s *models.Snapshot) {
		if cached {
			s.Rows = rows
		}
		s.Banner = banner
		s.Stale = len(s.Rows) > 0
	})
	c.mu.Unlock()

	c.metrics.RecordRefreshCycle(string(trigger), outcomeFailed)
	c.metrics.RecordError(banner.Kind)
	c.log.Error("refresh.cycle failed", applogger.String("trigger", string(trigger)), applogger.Error(err))
}

// buildDetails fetches price history for every selected asset present in
// quotes. Missing assets and history failures only affect their own detail.
func (c *Controller) buildDetails(ctx context.Context, sel models.Selection, quotes []models.Quote) ([]models.AssetDetail, bool) {
	idx := view.IndexQuotes(quotes)
	details := make([]models.AssetDetail, len(sel))

	degraded := false
	g := new(errgroup.Group)
	g.SetLimit(c.historyWorkers)
	for i, id := range sel {
		i, id := i, id
		q, ok := idx[id]
		if !ok {
			details[i] = view.BuildDetail(id, nil, nil, nil)
			degraded = true
			c.metrics.RecordError(view.KindMissingField)
			c.log.Warn("refresh.asset missing", applogger.String("asset", string(id)))
			continue
		}
		g.Go(func() error {
			series, err := c.market.History(ctx, id, c.historyDays)
			if err != nil {
				details[i] = view.BuildDetail(id, q, nil, err)
				c.metrics.RecordError(view.ErrorBanner(err).Kind)
				c.log.Warn("refresh.history failed", applogger.String("asset", string(id)), applogger.Error(err))
				return err
			}
			details[i] = view.BuildDetail(id, q, &series, nil)
			return nil
		})
	}
	// errgroup.Group without a context: one failure does not stop the others.
	if err := g.Wait(); err != nil {
		degraded = true
	}
	return details, degraded
}

// publishLocked derives the next snapshot from the current one. c.mu must be held.
func (c *Controller) publishLocked(mutate func(*models.Snapshot)) {
	s := c.current
	if mutate != nil {
		mutate(&s)
	}
	s.State = string(c.state)
	s.Selection = c.selection.Clone()
	s.Policy = c.policy.View()
	s.UpdatedAt = c.clock.Now()
	s.LastSuccessAt = c.lastSuccess
	if c.nextRefresh != nil {
		next := *c.nextRefresh
		s.NextRefreshAt = &next
	} else {
		s.NextRefreshAt = nil
	}
	c.current = c.mailbox.Publish(s)
}
