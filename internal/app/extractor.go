package app

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

// DefaultExtractTimeout is the deadline of one extraction invocation.
const DefaultExtractTimeout = 10 * time.Second

// ExtractorConfig contains configuration for region text extraction.
type ExtractorConfig struct {
	// Script is the extraction script, resolved through the locator.
	Script string
	// Timeout is the per-invocation deadline. Zero or less means no limit.
	Timeout time.Duration
}

// Extractor runs the extraction script for one page of one document.
// It is bound to a single PDF source and is safe for concurrent use.
type Extractor struct {
	config   ExtractorConfig
	locator  domain.ScriptLocator
	source   domain.PDFSource
	call     scriptCall
	recorder ports.OutcomeRecorder
}

// NewExtractor creates an extractor for source.
func NewExtractor(
	config ExtractorConfig,
	runner ports.ProcessRunner,
	locator domain.ScriptLocator,
	source domain.PDFSource,
	logger ports.Logger,
	recorder ports.OutcomeRecorder,
) *Extractor {
	if recorder == nil {
		recorder = ports.NoopRecorder{}
	}
	return &Extractor{
		config:   config,
		locator:  locator,
		source:   source,
		call:     scriptCall{runner: runner, logger: orNoop(logger)},
		recorder: recorder,
	}
}

// extractOutput is the document printed by the extraction script.
type extractOutput struct {
	Paragraphs *[]string `json:"paragraphs"`
}

// Extract returns the paragraphs found inside regions on page, in order.
// Any failure is logged and yields an empty, non-nil result.
func (e *Extractor) Extract(ctx context.Context, page int, regions []domain.Region) domain.Paragraphs {
	inv := e.Invocation(page, regions)

	stdout, result, elapsed := e.call.run(ctx, inv)
	paragraphs := domain.Paragraphs{}
	if result == domain.ResultOK {
		var out extractOutput
		if err := json.Unmarshal(stdout, &out); err != nil || out.Paragraphs == nil {
			e.call.logger.Warn("malformed extraction output",
				ports.String("script", inv.Script()),
				ports.Int("page", page),
				ports.Int("bytes", len(stdout)),
				ports.Err(err),
			)
			result = domain.ResultMalformedOutput
		} else {
			paragraphs = domain.Paragraphs(*out.Paragraphs)
		}
	}

	e.recorder.Record(inv.Script(), result, elapsed)
	e.call.logger.Debug("extraction finished",
		ports.Int("page", page),
		ports.Int("regions", len(regions)),
		ports.String("result", string(result)),
		ports.Int("paragraphs", len(paragraphs)),
	)
	return paragraphs
}

// Invocation builds the script invocation for page and regions.
func (e *Extractor) Invocation(page int, regions []domain.Region) domain.Invocation {
	args := make([]string, 0, 5+len(regions))
	var payload []byte
	if e.source.FromFile() {
		args = append(args, "--file-path", e.source.Path)
	} else {
		args = append(args, "--stdin")
		payload = e.source.Data
		if payload == nil {
			payload = []byte{}
		}
	}
	args = append(args, "--page-number", strconv.Itoa(page))
	if len(regions) > 0 {
		args = append(args, "--clip")
		for _, r := range regions {
			args = append(args, r.ClipArg())
		}
	}
	return e.locator.Invocation(e.config.Script, args, payload, e.config.Timeout)
}
