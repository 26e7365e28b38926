package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*mockLogger) Debug(msg string, fields ...ports.Field) {}
func (*mockLogger) Info(msg string, fields ...ports.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
func (*mockLogger) Error(msg string, fields ...ports.Field) {}

func (m *mockLogger) Warns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.warns...)
}

// trackingCloser records whether Close was called.
type trackingCloser struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (c *trackingCloser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *trackingCloser) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// mockRunner returns a canned outcome and records every invocation.
type mockRunner struct {
	mu      sync.Mutex
	calls   []domain.Invocation
	outcome func(inv domain.Invocation) domain.Outcome

	lastStdout *trackingCloser
	lastStderr *trackingCloser
}

func (m *mockRunner) Run(_ context.Context, inv domain.Invocation) domain.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, inv)
	out := m.outcome(inv)
	if out.Stdout != nil {
		m.lastStdout = &trackingCloser{Reader: out.Stdout}
		out.Stdout = m.lastStdout
	}
	if out.Stderr != nil {
		m.lastStderr = &trackingCloser{Reader: out.Stderr}
		out.Stderr = m.lastStderr
	}
	return out
}

func (m *mockRunner) Calls() []domain.Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Invocation{}, m.calls...)
}

func exitWith(code int, stdout, stderr string) func(domain.Invocation) domain.Outcome {
	return func(domain.Invocation) domain.Outcome {
		return domain.Outcome{
			Kind:     domain.OutcomeSuccess,
			ExitCode: code,
			Stdout:   io.NopCloser(strings.NewReader(stdout)),
			Stderr:   io.NopCloser(strings.NewReader(stderr)),
			PID:      4242,
			Elapsed:  10 * time.Millisecond,
		}
	}
}

func timedOut(domain.Invocation) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeTimedOut, PID: 4242, Elapsed: time.Second}
}

func spawnFailed(domain.Invocation) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeSpawnFailed, Cause: io.ErrUnexpectedEOF}
}

// mockRecorder collects recorded results.
type mockRecorder struct {
	mu      sync.Mutex
	results []domain.Result
}

func (m *mockRecorder) Record(_ string, result domain.Result, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *mockRecorder) Results() []domain.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Result{}, m.results...)
}

// extractCall is one call seen by mockExtractor.
type extractCall struct {
	page      int
	sequences []int
}

// mockExtractor returns one paragraph per region, named after its sequence
// number, and records the calls it receives.
type mockExtractor struct {
	mu    sync.Mutex
	calls []extractCall
}

func (m *mockExtractor) Extract(_ context.Context, page int, regions []domain.Region) domain.Paragraphs {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := extractCall{page: page}
	out := domain.Paragraphs{}
	for _, r := range regions {
		call.sequences = append(call.sequences, r.SequenceNumber())
		out = append(out, fmt.Sprintf("p%d#%d", page, r.SequenceNumber()))
	}
	m.calls = append(m.calls, call)
	return out
}

func (m *mockExtractor) Calls() []extractCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]extractCall{}, m.calls...)
}
