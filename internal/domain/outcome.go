package domain

import (
	"fmt"
	"io"
	"time"
)

// OutcomeKind discriminates the variants of Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTimedOut
	OutcomeSpawnFailed
)

// String returns a human-readable representation of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "Success"
	case OutcomeTimedOut:
		return "TimedOut"
	case OutcomeSpawnFailed:
		return "SpawnFailed"
	default:
		return "Unknown"
	}
}

// Outcome is the result of one script invocation.
//
// For OutcomeSuccess, Stdout and Stderr are owned by the caller and must be
// closed. For the other kinds they are nil.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Stdout   io.ReadCloser
	Stderr   io.ReadCloser
	Cause    error

	// PID of the started process, 0 when it never started.
	PID     int
	Elapsed time.Duration
}

// Succeeded reports whether the script ran to completion with exit code 0.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess && o.ExitCode == 0
}

// Close releases the output handles, if any.
func (o Outcome) Close() error {
	var first error
	for _, c := range []io.Closer{o.Stdout, o.Stderr} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Outcome[%s exit=%d pid=%d]", o.Kind, o.ExitCode, o.PID)
	case OutcomeSpawnFailed:
		return fmt.Sprintf("Outcome[%s cause=%v]", o.Kind, o.Cause)
	default:
		return fmt.Sprintf("Outcome[%s pid=%d]", o.Kind, o.PID)
	}
}

// Result classifies how an invocation ended from the caller's point of
// view. Every value except ResultOK is a soft failure.
type Result string

const (
	ResultOK              Result = "ok"
	ResultTimeout         Result = "timeout"
	ResultNonZeroExit     Result = "nonzero_exit"
	ResultMalformedOutput Result = "malformed_output"
	ResultSpawnFailure    Result = "spawn_failure"
)

// Paragraphs is an ordered list of extracted paragraphs.
type Paragraphs []string
