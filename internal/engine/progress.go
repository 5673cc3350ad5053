package engine

import (
	"bufio"
	"bytes"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
)

// SyntheticProgress tunes the timer-driven progress estimate that keeps
// the interface moving while the engine's own reporting is absent or
// stalled. The cadence is a tunable, not a contract; only monotonicity
// and "100 exactly once at completion" are guaranteed, and those are
// enforced elsewhere.
type SyntheticProgress struct {
	Start    int
	Step     int
	Ceiling  int
	Interval time.Duration
}

// DefaultSyntheticProgress returns the tuned defaults: start near 10%,
// step on a fixed interval, stop synthesizing at 90%.
func DefaultSyntheticProgress() SyntheticProgress {
	return SyntheticProgress{
		Start:    8,
		Step:     3,
		Ceiling:  90,
		Interval: 500 * time.Millisecond,
	}
}

// probeDuration asks ffprobe for the source duration in seconds, used to
// turn engine timestamps into percentages. Zero means unknown; real
// progress is then skipped and only the synthetic estimate reports.
func (e *Engine) probeDuration(input string) float64 {
	cmd := exec.Command(e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)

	out, err := cmd.Output()
	if err != nil {
		logging.Debug("ffprobe duration failed: %v", err)
		return 0
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		return 0
	}
	return duration
}

// execute runs one ffmpeg invocation, feeding both progress producers
// (engine timestamps and the synthetic timer) into the callback. The
// caller's monotonic guard decides which candidates are forwarded.
func (e *Engine) execute(args []string, duration float64, progress func(int)) error {
	full := append([]string{"-y", "-progress", "pipe:1", "-nostats"}, args[1:]...)

	cmd := exec.Command(e.ffmpegPath, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return dispatch.NewError(dispatch.KindEngineExecutionFailed, "creating stdout pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		return dispatch.NewError(dispatch.KindEngineExecutionFailed, "starting engine: %v", err)
	}

	done := make(chan struct{})
	go e.synthesize(done, progress)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if sec, ok := parseOutTime(scanner.Text()); ok && duration > 0 {
			percent := int(sec / duration * 100)
			if percent > 99 {
				percent = 99
			}
			progress(percent)
		}
	}

	waitErr := cmd.Wait()
	close(done)

	if waitErr != nil {
		return dispatch.NewError(dispatch.KindEngineExecutionFailed, "engine exited abnormally: %v: %s", waitErr, stderrTail(&stderr))
	}
	return nil
}

// synthesize emits the timer-driven estimate until the run finishes or
// the ceiling is reached.
func (e *Engine) synthesize(done <-chan struct{}, progress func(int)) {
	cfg := e.progressCfg
	current := cfg.Start
	progress(current)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			current += cfg.Step
			if current > cfg.Ceiling {
				return
			}
			progress(current)
		}
	}
}

// parseOutTime extracts seconds of processed media from one line of
// ffmpeg -progress output. The out_time_ms key is microseconds despite
// its name; out_time carries HH:MM:SS.micro.
func parseOutTime(line string) (float64, bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return 0, false
	}

	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return float64(us) / 1e6, true
	case "out_time":
		return parseClockTime(strings.TrimSpace(value))
	default:
		return 0, false
	}
}

func parseClockTime(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}

// stderrTail keeps failure messages readable: engine stderr can run to
// hundreds of lines.
func stderrTail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	const max = 512
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
