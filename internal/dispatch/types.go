package dispatch

import "fmt"

// Operation identifies which pipeline a job is routed to.
type Operation string

const (
	// OpRasterConvert converts between raster image encodings.
	OpRasterConvert Operation = "raster-convert"
	// OpDocumentPages renders a paged document into one image per page.
	OpDocumentPages Operation = "document-pages"
	// OpTranscode converts audio/video containers and codecs.
	OpTranscode Operation = "transcode"
	// OpRecompress reduces the size of an image within its own format.
	OpRecompress Operation = "recompress"
)

// ErrKind classifies job failures at the protocol boundary.
type ErrKind string

const (
	// KindUnsupportedOperation is returned for unknown job shapes.
	KindUnsupportedOperation ErrKind = "UnsupportedOperation"
	// KindDecodeFailed means the source payload was malformed or unsupported.
	KindDecodeFailed ErrKind = "DecodeFailed"
	// KindEncodeFailed means the target encoder rejected the pixel buffer.
	KindEncodeFailed ErrKind = "EncodeFailed"
	// KindUnsupportedEnvironment means a transcode was requested where the
	// engine cannot run.
	KindUnsupportedEnvironment ErrKind = "UnsupportedEnvironment"
	// KindEngineExecutionFailed means the engine ran but exited abnormally
	// or produced invalid output.
	KindEngineExecutionFailed ErrKind = "EngineExecutionFailed"
	// KindEmptyOutput means a success path produced a zero-byte payload.
	KindEmptyOutput ErrKind = "EmptyOutput"
)

// Error is the tagged failure adapters return instead of letting raw
// errors cross the dispatcher boundary.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a tagged adapter error.
func NewError(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Job describes exactly one conversion unit. Immutable once submitted;
// ownership of Payload moves to the context with the submission.
type Job struct {
	Op           Operation
	SourceFormat string
	TargetFormat string
	// Quality is the lossy-encode hint in 0..1; zero means default.
	Quality float64
	// Page selects a single 1-based document page; zero means all pages.
	Page    int
	Payload []byte
}

// Progress phases.
const (
	PhaseLoading    = "loading"
	PhaseProcessing = "processing"
)

// Progress is a purely informational mid-job event. Percent is
// monotonically non-decreasing within a job.
type Progress struct {
	Phase   string `json:"phase"`
	Percent int    `json:"percent"`
}

// Result is the terminal outcome of a job: exactly one per submission.
type Result struct {
	OK       bool     `json:"ok"`
	Payload  []byte   `json:"-"`
	Payloads [][]byte `json:"-"`
	ErrKind  ErrKind  `json:"errorKind,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Message is one protocol frame: either a progress event or the
// terminal result, never both. Seq increases across all messages a
// context emits, so frames of consecutive jobs are totally ordered.
type Message struct {
	Seq      int64
	Progress *Progress
	Result   *Result
}

// failure builds a terminal failure result from a tagged error, mapping
// untagged errors to the fallback kind.
func failure(err error, fallback ErrKind) *Result {
	if tagged, ok := err.(*Error); ok {
		return &Result{OK: false, ErrKind: tagged.Kind, Message: tagged.Message}
	}
	return &Result{OK: false, ErrKind: fallback, Message: err.Error()}
}
