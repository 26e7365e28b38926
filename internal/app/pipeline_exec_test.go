//go:build unix

package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bft-labs/storytext/internal/adapters/process"
	"github.com/bft-labs/storytext/internal/domain"
)

// writeExtractScript installs an extraction script under a temp script dir
// and returns the locator for it.
func writeExtractScript(t *testing.T, body string) domain.ScriptLocator {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "extract.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return domain.NewScriptLocator(dir, "/bin/sh")
}

// echoClips prints one paragraph per --clip token, prefixed by the page.
const echoClips = `
page=""
clips=""
while [ $# -gt 0 ]; do
  case "$1" in
    --page-number) page="$2"; shift 2 ;;
    --file-path) shift 2 ;;
    --stdin) cat >/dev/null; shift ;;
    --clip) shift; while [ $# -gt 0 ]; do clips="$clips $1"; shift; done ;;
    *) shift ;;
  esac
done
printf '{"paragraphs":['
sep=""
for c in $clips; do printf '%s"%s:%s"' "$sep" "$page" "$c"; sep=","; done
printf ']}\n'
`

func TestPipeline_EndToEnd(t *testing.T) {
	locator := writeExtractScript(t, echoClips)
	ext := NewExtractor(
		ExtractorConfig{Script: "extract.sh", Timeout: 5 * time.Second},
		process.NewRunner(),
		locator,
		domain.PDFSource{Data: []byte("%PDF-1.4 fake")},
		nil,
		nil,
	)
	m, err := domain.NewSelectionMap([]domain.Selection{
		{X: 0, Y: 0, Width: 10, Height: 10, PageNumber: 1, SequenceNumber: 3},
		{X: 0, Y: 20, Width: 10, Height: 10, PageNumber: 2, SequenceNumber: 2},
		{X: 0, Y: 40, Width: 10, Height: 10, PageNumber: 1, SequenceNumber: 1},
		{X: 0, Y: 60, Width: 10, Height: 10, PageNumber: 1, SequenceNumber: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewSequencer(ext, nil)

	first := s.Sequence(context.Background(), m)
	second := s.Sequence(context.Background(), m)

	want := domain.Paragraphs{"1:0,60,10,70", "1:0,40,10,50", "2:0,20,10,30", "1:0,0,10,10"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Sequence() = %q, want %q", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Sequence() differs: %q vs %q", first, second)
	}
}

func TestPipeline_NonJSONOutputIsEmpty(t *testing.T) {
	locator := writeExtractScript(t, `echo "hello, world"`)
	recorder := &mockRecorder{}
	ext := NewExtractor(
		ExtractorConfig{Script: "extract.sh", Timeout: 5 * time.Second},
		process.NewRunner(),
		locator,
		domain.PDFSource{Path: "/nonexistent.pdf"},
		nil,
		recorder,
	)

	got := ext.Extract(context.Background(), 0, []domain.Region{domain.MustRegion(0, 0, 1, 1, 0)})

	if got == nil || len(got) != 0 {
		t.Errorf("Extract() = %#v, want empty non-nil", got)
	}
	if r := recorder.Results(); len(r) != 1 || r[0] != domain.ResultMalformedOutput {
		t.Errorf("recorded %v, want [malformed_output]", r)
	}
}

func TestPipeline_SlowScriptTimesOut(t *testing.T) {
	locator := writeExtractScript(t, `exec sleep 30`)
	recorder := &mockRecorder{}
	ext := NewExtractor(
		ExtractorConfig{Script: "extract.sh", Timeout: 200 * time.Millisecond},
		process.NewRunner(process.WithKillGrace(100*time.Millisecond)),
		locator,
		domain.PDFSource{Path: "a.pdf"},
		nil,
		recorder,
	)

	start := time.Now()
	got := ext.Extract(context.Background(), 0, nil)

	if len(got) != 0 {
		t.Errorf("Extract() = %q, want empty", got)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Extract() took %v", elapsed)
	}
	if r := recorder.Results(); len(r) != 1 || r[0] != domain.ResultTimeout {
		t.Errorf("recorded %v, want [timeout]", r)
	}
}

func TestPipeline_OversizedOutputIsMalformed(t *testing.T) {
	locator := writeExtractScript(t, `printf '{"paragraphs":["'; dd if=/dev/zero bs=1024 count=8 2>/dev/null | tr '\0' a; printf '"]}'`)
	recorder := &mockRecorder{}
	ext := NewExtractor(
		ExtractorConfig{Script: "extract.sh", Timeout: 5 * time.Second},
		process.NewRunner(process.WithOutputLimit(1024)),
		locator,
		domain.PDFSource{Path: "a.pdf"},
		nil,
		recorder,
	)

	got := ext.Extract(context.Background(), 0, nil)

	if got == nil || len(got) != 0 {
		t.Errorf("Extract() = %q, want empty non-nil", got)
	}
	if r := recorder.Results(); len(r) != 1 || r[0] != domain.ResultMalformedOutput {
		t.Errorf("recorded %v, want [malformed_output]", r)
	}
}
