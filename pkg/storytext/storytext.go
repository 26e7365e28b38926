package storytext

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/storytext/internal/adapters/fs"
	"github.com/bft-labs/storytext/internal/adapters/pdf"
	"github.com/bft-labs/storytext/internal/adapters/process"
	"github.com/bft-labs/storytext/internal/app"
	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
	"github.com/bft-labs/storytext/pkg/log"
)

// Config describes where the scripts live and how long they may run.
type Config struct {
	// ScriptDir is the base directory relative script names resolve against.
	ScriptDir string
	// Interpreter runs the scripts, e.g. "python3". Empty runs them directly.
	Interpreter string

	ExtractScript string
	TagScript     string

	// Deadlines per invocation. Zero means no limit.
	ExtractTimeout time.Duration
	TagTimeout     time.Duration

	// KillGrace is the time between the termination request and the kill
	// of a script that overran its deadline.
	KillGrace time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Interpreter:    "python3",
		ExtractScript:  "pdf_ext/pdf_ext.py",
		TagScript:      "txt_tag/txt_tag.py",
		ExtractTimeout: app.DefaultExtractTimeout,
		TagTimeout:     app.DefaultTagTimeout,
		KillGrace:      process.DefaultKillGrace,
	}
}

// SetDefaults fills in the script names if they are empty.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.ExtractScript == "" {
		c.ExtractScript = d.ExtractScript
	}
	if c.TagScript == "" {
		c.TagScript = d.TagScript
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.ExtractTimeout < 0:
		return fmt.Errorf("%w: negative extract timeout", ErrInvalidConfig)
	case c.TagTimeout < 0:
		return fmt.Errorf("%w: negative tag timeout", ErrInvalidConfig)
	case c.KillGrace < 0:
		return fmt.Errorf("%w: negative kill grace", ErrInvalidConfig)
	}
	return nil
}

// Pipeline runs extraction and tagging scripts. It holds only immutable
// configuration and is safe for concurrent use.
type Pipeline struct {
	config   Config
	opts     options
	locator  domain.ScriptLocator
	runner   ports.ProcessRunner
	logger   ports.Logger
	recorder ports.OutcomeRecorder
	tagger   *app.Tagger
}

// New creates a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	recorder := o.recorder
	if recorder == nil {
		recorder = ports.NoopRecorder{}
	}
	runner := o.runner
	if runner == nil {
		runner = process.NewRunner(
			process.WithKillGrace(cfg.KillGrace),
			process.WithLogger(logger),
		)
	}

	locator := domain.NewScriptLocator(cfg.ScriptDir, cfg.Interpreter)
	return &Pipeline{
		config:   cfg,
		opts:     o,
		locator:  locator,
		runner:   runner,
		logger:   logger,
		recorder: recorder,
		tagger: app.NewTagger(
			app.TaggerConfig{Script: cfg.TagScript, Timeout: cfg.TagTimeout},
			runner, locator, logger, recorder,
		),
	}, nil
}

// Extractor returns the region extractor for one document.
func (p *Pipeline) Extractor(source PDFSource) *app.Extractor {
	return app.NewExtractor(
		app.ExtractorConfig{Script: p.config.ExtractScript, Timeout: p.config.ExtractTimeout},
		p.runner, p.locator, source, p.logger, p.recorder,
	)
}

// Extract returns the paragraphs inside regions on one page, in the order
// the regions are given. Failures yield an empty result.
func (p *Pipeline) Extract(ctx context.Context, source PDFSource, page int, regions []Region) Paragraphs {
	return p.Extractor(source).Extract(ctx, page, regions)
}

// Sequence extracts all selections in reading order.
func (p *Pipeline) Sequence(ctx context.Context, source PDFSource, selections SelectionMap) Paragraphs {
	return app.NewSequencer(p.Extractor(source), p.logger).Sequence(ctx, selections)
}

// ExtractSelections validates raw selections and sequences them. Invalid
// selections fail before any script runs.
func (p *Pipeline) ExtractSelections(ctx context.Context, source PDFSource, selections []Selection) (Paragraphs, error) {
	m, err := domain.NewSelectionMap(selections)
	if err != nil {
		return nil, err
	}
	return p.Sequence(ctx, source, m), nil
}

// Tag returns the keywords of an edition. Failures yield an empty result.
func (p *Pipeline) Tag(ctx context.Context, req TagRequest) []Keyword {
	return p.tagger.Tag(ctx, req)
}

// SpoolConfig configures a Spool created by NewSpool.
type SpoolConfig struct {
	InboxDir  string
	OutboxDir string
	// Inline sends the PDF bytes on stdin instead of passing the path.
	Inline bool
}

// NewSpool creates a spool that runs inbox jobs through the pipeline.
func (p *Pipeline) NewSpool(cfg SpoolConfig) (*Spool, error) {
	if cfg.InboxDir == "" {
		return nil, fmt.Errorf("%w: inbox directory is required", ErrInvalidConfig)
	}
	if cfg.OutboxDir == "" {
		cfg.OutboxDir = cfg.InboxDir
	}
	return app.NewSpool(
		app.SpoolConfig{InboxDir: cfg.InboxDir},
		pdf.NewOpener(pdf.WithInline(cfg.Inline)),
		fs.NewResultFileRepository(cfg.OutboxDir),
		func(source domain.PDFSource) ports.TextExtractor { return p.Extractor(source) },
		p.logger,
		p.opts.observer,
	), nil
}
