package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

// DefaultTagTimeout is the deadline of one tagging invocation.
const DefaultTagTimeout = 5 * time.Second

// TaggerConfig contains configuration for keyword tagging.
type TaggerConfig struct {
	Script  string
	Timeout time.Duration
}

// Tagger runs the keyword tagging script over the stories of an edition.
type Tagger struct {
	config   TaggerConfig
	locator  domain.ScriptLocator
	call     scriptCall
	recorder ports.OutcomeRecorder
}

// NewTagger creates a tagger.
func NewTagger(
	config TaggerConfig,
	runner ports.ProcessRunner,
	locator domain.ScriptLocator,
	logger ports.Logger,
	recorder ports.OutcomeRecorder,
) *Tagger {
	if recorder == nil {
		recorder = ports.NoopRecorder{}
	}
	return &Tagger{
		config:   config,
		locator:  locator,
		call:     scriptCall{runner: runner, logger: orNoop(logger)},
		recorder: recorder,
	}
}

// Tag returns the keywords the script emits for req, filtered and merged by
// domain.MergeKeywords. Any failure is logged and yields an empty, non-nil
// result.
func (t *Tagger) Tag(ctx context.Context, req domain.TagRequest) []domain.Keyword {
	keywords := []domain.Keyword{}

	payload, err := json.Marshal(req)
	if err != nil {
		t.call.logger.Error("failed to encode tagging request",
			ports.Int64("edition_id", req.EditionID),
			ports.Err(err),
		)
		return keywords
	}

	inv := t.locator.Invocation(t.config.Script, []string{"--stdin"}, payload, t.config.Timeout)
	stdout, result, elapsed := t.call.run(ctx, inv)
	if result == domain.ResultOK {
		parsed, err := ParseKeywords(stdout)
		if err != nil {
			t.call.logger.Warn("malformed tagging output",
				ports.String("script", inv.Script()),
				ports.Int64("edition_id", req.EditionID),
				ports.Err(err),
			)
			result = domain.ResultMalformedOutput
		} else {
			keywords = domain.MergeKeywords(parsed)
		}
	}

	t.recorder.Record(inv.Script(), result, elapsed)
	t.call.logger.Info("edition tagged",
		ports.Int64("edition_id", req.EditionID),
		ports.String("result", string(result)),
		ports.Int("keywords", len(keywords)),
	)
	return keywords
}

// ParseKeywords parses the tagging script output: one "word,id,ratio"
// record per line. Blank lines are skipped. A bad record fails the whole
// output.
func ParseKeywords(data []byte) ([]domain.Keyword, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	keywords := []domain.Keyword{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return keywords, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)

		word := strings.TrimSpace(rec[0])
		if word == "" {
			return nil, fmt.Errorf("line %d: empty word", line)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: edition id: %w", line, err)
		}
		ratio, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: ratio: %w", line, err)
		}
		keywords = append(keywords, domain.Keyword{Word: word, EditionID: id, Ratio: ratio})
	}
}
