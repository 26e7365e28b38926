package app

import (
	"context"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

// Sequencer turns a page-keyed selection map into paragraphs in reading
// order, calling the extractor once per same-page run.
type Sequencer struct {
	extractor ports.TextExtractor
	logger    ports.Logger
}

// NewSequencer creates a sequencer on top of extractor.
func NewSequencer(extractor ports.TextExtractor, logger ports.Logger) *Sequencer {
	return &Sequencer{extractor: extractor, logger: orNoop(logger)}
}

// Sequence extracts every run in order and concatenates the results.
// An empty map returns an empty result without running anything.
func (s *Sequencer) Sequence(ctx context.Context, selections domain.SelectionMap) domain.Paragraphs {
	result := domain.Paragraphs{}
	if selections.Len() == 0 {
		return result
	}

	if dups := selections.DuplicateSequences(); len(dups) > 0 {
		s.logger.Warn("duplicate sequence numbers, ordering by page",
			ports.Any("sequence_numbers", dups),
		)
	}

	runs := selections.Runs()
	for i, run := range runs {
		paragraphs := s.extractor.Extract(ctx, run.Page, run.Regions)
		s.logger.Debug("run extracted",
			ports.Int("run", i),
			ports.Int("page", run.Page),
			ports.Int("regions", len(run.Regions)),
			ports.Int("paragraphs", len(paragraphs)),
		)
		result = append(result, paragraphs...)
	}

	s.logger.Info("selections sequenced",
		ports.Int("regions", selections.Len()),
		ports.Int("runs", len(runs)),
		ports.Int("paragraphs", len(result)),
	)
	return result
}
