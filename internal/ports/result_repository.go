package ports

import (
	"context"

	"github.com/bft-labs/storytext/internal/domain"
)

// ResultRepository persists the output of one spooled extraction job.
// Implementations must write atomically so readers never observe a
// partially written result.
type ResultRepository interface {
	Save(ctx context.Context, result domain.JobResult) error
}
