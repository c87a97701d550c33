package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel)

	l.Info("cycle done",
		String("trigger", "manual"),
		Int("rows", 3),
		Bool("stale", false),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if got["message"] != "cycle done" {
		t.Fatalf("unexpected message %v", got["message"])
	}
	if got["trigger"] != "manual" {
		t.Fatalf("unexpected trigger %v", got["trigger"])
	}
	if got["rows"] != float64(3) {
		t.Fatalf("unexpected rows %v", got["rows"])
	}
	if got["error"] != "boom" {
		t.Fatalf("unexpected error field %v", got["error"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn output")
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("component", "refresh"))
	l.Info("tick")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["component"] != "refresh" {
		t.Fatalf("expected component field, got %v", got)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
