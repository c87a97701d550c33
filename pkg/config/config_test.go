package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Cache.QuotesTTL != 300*time.Second {
		t.Errorf("QuotesTTL = %s; want 5m", cfg.Cache.QuotesTTL)
	}
	if cfg.Cache.HistoryTTL != time.Hour {
		t.Errorf("HistoryTTL = %s; want 1h", cfg.Cache.HistoryTTL)
	}
	if cfg.Refresh.Interval != time.Minute || !cfg.Refresh.AutoRefresh {
		t.Errorf("unexpected refresh defaults: %s %v", cfg.Refresh.Interval, cfg.Refresh.AutoRefresh)
	}
	want := []string{"bitcoin", "ethereum", "solana"}
	if !reflect.DeepEqual(cfg.Refresh.Assets, want) {
		t.Errorf("Assets = %v; want %v", cfg.Refresh.Assets, want)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
environment: production
refresh:
  assets: [dogecoin]
  interval: 120s
  auto_refresh: false
cache:
  redis:
    enabled: true
    addr: redis:6379
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Refresh.AutoRefresh {
		t.Errorf("auto_refresh false in yaml must win over default")
	}
	if cfg.Refresh.Interval != 2*time.Minute {
		t.Errorf("Interval = %s", cfg.Refresh.Interval)
	}
	if !reflect.DeepEqual(cfg.Refresh.Assets, []string{"dogecoin"}) {
		t.Errorf("Assets = %v", cfg.Refresh.Assets)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port default lost: %d", cfg.Server.Port)
	}
}

func TestLoadRejectsInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("refresh:\n  interval: 5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for 5s interval")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"ASSETS":           " cardano , ,ripple",
		"REFRESH_INTERVAL": "90",
		"AUTO_REFRESH":     "false",
		"REDIS_ADDR":       "cache:6379",
		"HTTP_PORT":        "9090",
	}
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if !reflect.DeepEqual(cfg.Refresh.Assets, []string{"cardano", "ripple"}) {
		t.Errorf("Assets = %v", cfg.Refresh.Assets)
	}
	if cfg.Refresh.Interval != 90*time.Second {
		t.Errorf("Interval = %s", cfg.Refresh.Interval)
	}
	if cfg.Refresh.AutoRefresh {
		t.Errorf("AutoRefresh should be false")
	}
	if !cfg.Cache.Redis.Enabled || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Errorf("redis not enabled by REDIS_ADDR")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	cfg, _ := Default()
	err := cfg.applyEnv(func(k string) string {
		if k == "AUTO_REFRESH" {
			return "maybe"
		}
		return ""
	})
	if err == nil {
		t.Fatal("expected error for AUTO_REFRESH=maybe")
	}
}
