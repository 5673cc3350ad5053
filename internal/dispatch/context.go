package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"

	"media-convert/internal/logging"
)

// ErrContextClosed is returned when submitting to a closed context.
var ErrContextClosed = errors.New("conversion context closed")

// RasterConverter converts between two raster encodings.
type RasterConverter interface {
	Convert(sourceFormat, targetFormat string, quality float64, payload []byte) ([]byte, error)
}

// DocumentRenderer renders a paged document into raster images.
// page == 0 renders all pages ascending; page >= 1 renders that page only.
type DocumentRenderer interface {
	RenderPages(payload []byte, targetFormat string, page int) ([][]byte, error)
}

// Transcoder converts audio/video containers and codecs. It reports
// fractional progress in 0..100 through the callback.
type Transcoder interface {
	Transcode(sourceFormat, targetFormat string, payload []byte, progress func(int)) ([]byte, error)
}

// Recompressor reduces payload size while keeping its encoding.
type Recompressor interface {
	Recompress(format string, quality float64, payload []byte) ([]byte, error)
}

// Adapters bundles the pipeline implementations a context routes jobs to.
type Adapters struct {
	Raster     RasterConverter
	Document   DocumentRenderer
	Engine     Transcoder
	Recompress Recompressor
}

type submission struct {
	job Job
	out chan Message
}

// Context is one isolated conversion context: a single worker goroutine
// that processes jobs strictly one at a time. All messages for job N are
// emitted (and sequenced) before any message for job N+1.
type Context struct {
	adapters  Adapters
	jobs      chan submission
	quit      chan struct{}
	closeOnce sync.Once
	seq       atomic.Int64
}

// NewContext starts a context's worker goroutine.
func NewContext(adapters Adapters) *Context {
	c := &Context{
		adapters: adapters,
		jobs:     make(chan submission, 4),
		quit:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit hands one job to the context. Ownership of job.Payload moves
// with the call. The returned channel carries zero or more progress
// messages followed by exactly one terminal message, then closes.
// A context torn down mid-job closes the channel without a terminal
// message; callers treat that as an implicit failure.
func (c *Context) Submit(job Job) (<-chan Message, error) {
	out := make(chan Message, 16)
	select {
	case <-c.quit:
		return nil, ErrContextClosed
	case c.jobs <- submission{job: job, out: out}:
		return out, nil
	}
}

// Close tears the context down. In-flight jobs are abandoned.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
}

func (c *Context) run() {
	for {
		select {
		case <-c.quit:
			return
		case sub := <-c.jobs:
			c.process(sub)
		}
	}
}

// process executes one job and emits its frames. The terminal result is
// a pure mapping from the adapter's tagged return; nothing panics or
// throws across this boundary.
func (c *Context) process(sub submission) {
	defer close(sub.out)

	guard := &progressGuard{}
	emit := func(phase string, percent int) {
		// The lock spans the send so frames accepted by concurrent
		// producers cannot reach the channel out of order. Progress
		// sends never block (slow consumers drop them), so holding the
		// lock here is safe.
		guard.mu.Lock()
		defer guard.mu.Unlock()
		if p, ok := guard.offerLocked(percent); ok {
			c.send(sub.out, Message{Progress: &Progress{Phase: phase, Percent: p}})
		}
	}

	result := c.execute(sub.job, emit)
	if result.OK {
		emit(PhaseProcessing, 100)
	}
	c.send(sub.out, Message{Result: result})
}

func (c *Context) execute(job Job, emit func(string, int)) *Result {
	switch job.Op {
	case OpRasterConvert:
		emit(PhaseLoading, 10)
		payload, err := c.adapters.Raster.Convert(job.SourceFormat, job.TargetFormat, job.Quality, job.Payload)
		if err != nil {
			return failure(err, KindDecodeFailed)
		}
		return success(payload)

	case OpDocumentPages:
		emit(PhaseLoading, 10)
		pages, err := c.adapters.Document.RenderPages(job.Payload, job.TargetFormat, job.Page)
		if err != nil {
			return failure(err, KindDecodeFailed)
		}
		for _, page := range pages {
			if len(page) == 0 {
				return &Result{OK: false, ErrKind: KindEmptyOutput, Message: "document renderer produced an empty page"}
			}
		}
		return &Result{OK: true, Payloads: pages}

	case OpTranscode:
		emit(PhaseLoading, 5)
		payload, err := c.adapters.Engine.Transcode(job.SourceFormat, job.TargetFormat, job.Payload, func(percent int) {
			emit(PhaseProcessing, percent)
		})
		if err != nil {
			return failure(err, KindEngineExecutionFailed)
		}
		return success(payload)

	case OpRecompress:
		emit(PhaseLoading, 10)
		payload, err := c.adapters.Recompress.Recompress(job.SourceFormat, job.Quality, job.Payload)
		if err != nil {
			return failure(err, KindDecodeFailed)
		}
		return success(payload)

	default:
		return &Result{
			OK:      false,
			ErrKind: KindUnsupportedOperation,
			Message: "unknown operation: " + string(job.Op),
		}
	}
}

func success(payload []byte) *Result {
	if len(payload) == 0 {
		return &Result{OK: false, ErrKind: KindEmptyOutput, Message: "conversion produced an empty payload"}
	}
	return &Result{OK: true, Payload: payload}
}

// send sequences a message and delivers it without blocking the worker
// forever: a caller that stopped draining drops progress frames, but the
// buffered channel guarantees room for the terminal frame.
func (c *Context) send(out chan Message, msg Message) {
	msg.Seq = c.seq.Add(1)
	select {
	case out <- msg:
	default:
		if msg.Result != nil {
			// Terminal frames must not be dropped; block until the
			// consumer drains or the context is torn down
			select {
			case out <- msg:
			case <-c.quit:
			}
		} else {
			logging.Debug("dropping progress frame seq=%d (slow consumer)", msg.Seq)
		}
	}
}

// progressGuard is the single monotonic gate both progress producers
// feed through: it forwards a candidate only when it exceeds the last
// reported percent. Producers run on separate goroutines (the engine's
// synthetic ticker and its timestamp scanner), so the gate is locked.
type progressGuard struct {
	mu   sync.Mutex
	last int
	seen bool
}

func (g *progressGuard) offer(percent int) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.offerLocked(percent)
}

func (g *progressGuard) offerLocked(percent int) (int, bool) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if g.seen && percent <= g.last {
		return 0, false
	}
	g.last = percent
	g.seen = true
	return percent, true
}
