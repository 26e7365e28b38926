package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf))

	logger.Error("extraction failed",
		String("script", "pdf_ext/pdf_ext.py"),
		Strings("args", []string{"--page-number", "2"}),
		Int("page", 2),
		Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"script":"pdf_ext/pdf_ext.py"`, `"args":["--page-number","2"]`, `"page":2`, `"error":"boom"`, `"message":"extraction failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn level, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message not written: %q", buf.String())
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf)).With("run_id", "abc")

	logger.Info("job done")
	if !strings.Contains(buf.String(), `"run_id":"abc"`) {
		t.Errorf("child field missing: %q", buf.String())
	}
}

var (
	_ Logger = (*ZerologAdapter)(nil)
	_ Logger = NoopLogger{}
)

func TestZerologAdapter_EachLevel(t *testing.T) {
	var buf bytes.Buffer
	var logger Logger = NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.Debug("d", Int64("edition_id", 7))
	logger.Info("i", Bool("stdin", true))
	logger.Warn("w", Any("job", map[string]int{"pages": 3}))
	logger.Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), buf.String())
	}
	for i, want := range []string{
		`"level":"debug"`, `"level":"info"`, `"level":"warn"`, `"level":"error"`,
	} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %s, want %s", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[0], `"edition_id":7`) || !strings.Contains(lines[2], `"job":{"pages":3}`) {
		t.Errorf("fields missing: %q", buf.String())
	}

	NoopLogger{}.Error("discarded")
}
