package ports

import (
	"context"

	"github.com/bft-labs/storytext/internal/domain"
)

// ProcessRunner executes one external script per call.
//
// Run never returns an error: start failures and timeouts are variants of
// domain.Outcome. On domain.OutcomeSuccess the caller owns Stdout and
// Stderr and must close them. Runners do not retry.
type ProcessRunner interface {
	Run(ctx context.Context, inv domain.Invocation) domain.Outcome
}
