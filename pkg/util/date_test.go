package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeFractional(t *testing.T) {
	got, ok := ParseTime("2024-10-10T10:10:10.123Z")
	if !ok || got.Nanosecond() != 123000000 {
		t.Fatalf("unexpected time %v %v", got, ok)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"90", 90 * time.Second, false},
		{" 120 ", 120 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeconds(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseSeconds(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" bitcoin, ,ethereum ,", ",")
	if len(got) != 2 || got[0] != "bitcoin" || got[1] != "ethereum" {
		t.Fatalf("unexpected %v", got)
	}
}
