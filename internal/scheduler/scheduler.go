package scheduler

import (
	"context"
	"fmt"

	icache "CoinBoard/internal/service/cache"
	applogger "CoinBoard/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CacheMaintainer is the part of the TTL cache housekeeping needs.
type CacheMaintainer interface {
	Sweep() int
	Stats() icache.Stats
}

// Scheduler runs cache housekeeping on cron specs.
type Scheduler struct {
	Cron  *cron.Cron
	Cache CacheMaintainer
	Log   *applogger.Logger
}

func NewScheduler(c CacheMaintainer, l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	return &Scheduler{
		Cron:  cron.New(),
		Cache: c,
		Log:   l,
	}
}

// RegisterAll registers the sweep and stats tasks. An empty expression disables a task.
func (s *Scheduler) RegisterAll(sweepCron, statsCron string) error {
	if sweepCron != "" {
		if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
			return fmt.Errorf("register sweep task: %w", err)
		}
	}
	if statsCron != "" {
		if _, err := s.Cron.AddFunc(statsCron, s.statsTask); err != nil {
			return fmt.Errorf("register stats task: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", applogger.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.Cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) sweepTask() { s.sweep() }

func (s *Scheduler) sweep() int {
	n := s.Cache.Sweep()
	if n > 0 {
		s.Log.Debug("cache.sweep", applogger.Int("removed", n))
	}
	return n
}

func (s *Scheduler) statsTask() {
	st := s.Cache.Stats()
	s.Log.Info("cache.stats", applogger.Int("entries", st.Entries), applogger.Int("valid", st.Valid))
}
