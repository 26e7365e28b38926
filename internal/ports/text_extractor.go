package ports

import (
	"context"

	"github.com/bft-labs/storytext/internal/domain"
)

// TextExtractor extracts paragraphs from a list of regions on one page.
// Regions are used in the order given. Implementations are total: any
// failure yields an empty, non-nil result.
type TextExtractor interface {
	Extract(ctx context.Context, page int, regions []domain.Region) domain.Paragraphs
}
