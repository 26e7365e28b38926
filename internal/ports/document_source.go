package ports

import (
	"context"

	"github.com/bft-labs/storytext/internal/domain"
)

// DocumentSource opens the PDF a job refers to.
type DocumentSource interface {
	// Open validates the document at path and reports its page count.
	// It returns an error wrapping domain.ErrNotPDF for non-PDF data.
	Open(ctx context.Context, path string) (domain.Document, error)
}
