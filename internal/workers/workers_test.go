package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	os.Unsetenv("CONVERT_WORKERS")
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{
			name:       "CPU-bound with no limit",
			multiplier: 1.0,
			limit:      0,
			want:       available,
		},
		{
			name:       "limit caps the count",
			multiplier: 1.0,
			limit:      1,
			want:       1,
		},
		{
			name:       "tiny multiplier floors at one",
			multiplier: 0.01,
			limit:      0,
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("CONVERT_WORKERS", "3")
	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count with CONVERT_WORKERS=3 = %d, want 3", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with CONVERT_WORKERS=3 and limit 2 = %d, want 2", got)
	}

	t.Setenv("CONVERT_WORKERS", "garbage")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("Count with invalid override = %d, want >= 1", got)
	}
}

func TestForIO(t *testing.T) {
	os.Unsetenv("CONVERT_WORKERS")
	cpu := ForCPU(0)
	io := ForIO(0)
	if io < cpu {
		t.Errorf("ForIO(0) = %d, want >= ForCPU(0) = %d", io, cpu)
	}
}
