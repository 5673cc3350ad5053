package engine

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseOutTime(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{
			name: "out_time_us",
			line: "out_time_us=90000000",
			want: 90,
			ok:   true,
		},
		{
			// Despite the name, ffmpeg reports out_time_ms in microseconds
			name: "out_time_ms is actually microseconds",
			line: "out_time_ms=90000000",
			want: 90,
			ok:   true,
		},
		{
			name: "out_time clock format",
			line: "out_time=00:01:30.000000",
			want: 90,
			ok:   true,
		},
		{
			name: "hours component",
			line: "out_time=01:00:00.000000",
			want: 3600,
			ok:   true,
		},
		{
			name: "unrelated progress key",
			line: "frame=120",
			ok:   false,
		},
		{
			name: "negative timestamp rejected",
			line: "out_time_us=-1",
			ok:   false,
		},
		{
			name: "garbage value rejected",
			line: "out_time_ms=banana",
			ok:   false,
		},
		{
			name: "no key-value separator",
			line: "progress continue",
			ok:   false,
		},
		{
			name: "malformed clock",
			line: "out_time=90",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseOutTime(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseOutTime(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseOutTime(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDefaultSyntheticProgress(t *testing.T) {
	cfg := DefaultSyntheticProgress()
	if cfg.Start <= 0 || cfg.Start > 10 {
		t.Errorf("Start = %d, want near 10%%", cfg.Start)
	}
	if cfg.Ceiling != 90 {
		t.Errorf("Ceiling = %d, want 90", cfg.Ceiling)
	}
	if cfg.Step <= 0 || cfg.Interval <= 0 {
		t.Errorf("Step/Interval must be positive: %+v", cfg)
	}
}

func TestStderrTail(t *testing.T) {
	short := bytes.NewBufferString("error: no such codec")
	if got := stderrTail(short); got != "error: no such codec" {
		t.Errorf("stderrTail(short) = %q", got)
	}

	long := bytes.NewBufferString(strings.Repeat("x", 2000))
	got := stderrTail(long)
	if len(got) > 515 {
		t.Errorf("stderrTail(long) length = %d, want <= 515", len(got))
	}
	if got[:3] != "..." {
		t.Errorf("truncated tail missing ellipsis prefix: %q", got[:10])
	}
}
