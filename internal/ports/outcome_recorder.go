package ports

import (
	"time"

	"github.com/bft-labs/storytext/internal/domain"
)

// OutcomeRecorder observes the classified result of every script invocation.
type OutcomeRecorder interface {
	Record(script string, result domain.Result, elapsed time.Duration)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

// Record does nothing.
func (NoopRecorder) Record(string, domain.Result, time.Duration) {}
