package rastercodec

// NOTE: govips cannot be restarted in the same process. Once
// ShutdownVips runs, Startup cannot run again, so nothing here calls
// ShutdownVips; the shutdown path is exercised by process teardown.

import (
	"testing"
)

func TestIsVipsAvailable(t *testing.T) {
	// Must not panic regardless of environment
	available := IsVipsAvailable()
	t.Logf("libvips available: %v", available)
}

func TestInitVipsIdempotency(t *testing.T) {
	if err := InitVips(); err != nil {
		t.Logf("libvips not available in test environment: %v", err)
		return
	}

	if err := InitVips(); err != nil {
		t.Errorf("second InitVips() call failed: %v", err)
	}
	if !IsVipsAvailable() {
		t.Error("IsVipsAvailable() = false after successful InitVips")
	}
}
