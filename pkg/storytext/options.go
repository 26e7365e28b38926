package storytext

import (
	"github.com/bft-labs/storytext/internal/app"
	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
	"github.com/bft-labs/storytext/pkg/log"
)

// Re-exported types, so callers need only this package.
type (
	Logger       = log.Logger
	Region       = domain.Region
	Selection    = domain.Selection
	SelectionMap = domain.SelectionMap
	Paragraphs   = domain.Paragraphs
	PDFSource    = domain.PDFSource
	Invocation   = domain.Invocation
	Outcome      = domain.Outcome
	Result       = domain.Result
	StoryText    = domain.StoryText
	TagRequest   = domain.TagRequest
	Keyword      = domain.Keyword
	Job          = domain.Job
	JobResult    = domain.JobResult

	// Runner starts one external script per invocation.
	Runner = ports.ProcessRunner
	// Recorder observes how every script invocation ended.
	Recorder = ports.OutcomeRecorder

	// Spool watches an inbox directory for extraction jobs.
	Spool = app.Spool
	// State is the lifecycle state of a Spool.
	State = app.State
	// StateObserver is notified of spool state changes.
	StateObserver = app.StateObserver
)

// Outcome kinds and results.
const (
	OutcomeSuccess     = domain.OutcomeSuccess
	OutcomeTimedOut    = domain.OutcomeTimedOut
	OutcomeSpawnFailed = domain.OutcomeSpawnFailed

	ResultOK              = domain.ResultOK
	ResultTimeout         = domain.ResultTimeout
	ResultNonZeroExit     = domain.ResultNonZeroExit
	ResultMalformedOutput = domain.ResultMalformedOutput
	ResultSpawnFailure    = domain.ResultSpawnFailure
)

// Errors returned for invalid input and configuration.
var (
	ErrInvalidRegion    = domain.ErrInvalidRegion
	ErrInvalidSelection = domain.ErrInvalidSelection
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrNotPDF           = domain.ErrNotPDF
	ErrPageOutOfRange   = domain.ErrPageOutOfRange
)

// Constructors re-exported from the domain.
var (
	NewRegion       = domain.NewRegion
	MustRegion      = domain.MustRegion
	NewSelectionMap = domain.NewSelectionMap
	NewInvocation   = domain.NewInvocation
)

// Option configures optional behavior of a Pipeline.
type Option func(*options)

type options struct {
	logger   ports.Logger
	recorder ports.OutcomeRecorder
	runner   ports.ProcessRunner
	observer app.StateObserver
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder sets the recorder notified of every script invocation.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithRunner replaces the process runner. Mostly useful in tests.
func WithRunner(runner Runner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// WithStateObserver sets an observer for spool lifecycle changes.
func WithStateObserver(observer StateObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}
