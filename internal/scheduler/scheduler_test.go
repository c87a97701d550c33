package scheduler

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	icache "CoinBoard/internal/service/cache"
	applogger "CoinBoard/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(icache.NewTTLCache(), nil)
	if err := s.RegisterAll("@every 1m", "@every 5m"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Fatalf("expected 2 jobs, got %d", n)
	}

	s = NewScheduler(icache.NewTTLCache(), nil)
	if err := s.RegisterAll("", ""); err != nil || len(s.Cron.Entries()) != 0 {
		t.Fatalf("empty specs should register nothing: %v", err)
	}
	if err := s.RegisterAll("every tuesday-ish", ""); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestSweepAndStats(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := icache.NewTTLCache(icache.WithClock(clk))
	c.Set("quotes:usd:bitcoin", 1, time.Minute)
	c.Set("history:usd:bitcoin:30", 2, time.Hour)
	clk.Advance(2 * time.Minute)

	var buf bytes.Buffer
	s := NewScheduler(c, applogger.NewWriter(&buf, zerolog.InfoLevel))

	if n := s.sweep(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	s.statsTask()
	if !strings.Contains(buf.String(), `"entries":1`) {
		t.Fatalf("stats not logged: %s", buf.String())
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(icache.NewTTLCache(), nil)
	if err := s.RegisterAll("@every 1h", ""); err != nil {
		t.Fatal(err)
	}
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
