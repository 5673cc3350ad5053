package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of conversion contexts to keep in the pool.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks (encoding, transcoding)
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the CONVERT_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("CONVERT_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForCPU returns the context count for CPU-bound conversion work (1 per CPU).
// The limit parameter caps the maximum.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the context count for I/O-bound work (2 per CPU).
// The limit parameter caps the maximum.
func ForIO(limit int) int {
	return Count(2.0, limit)
}
