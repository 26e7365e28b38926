// Package pdf opens PDF documents for extraction and checks them with pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/bft-labs/storytext/internal/domain"
)

var (
	header  = []byte("%PDF-")
	trailer = []byte("%%EOF")
)

// trailerWindow is how far from the end of the data the trailer may sit.
const trailerWindow = 1024

// Opener implements ports.DocumentSource.
type Opener struct {
	inline bool
}

// Option configures an Opener.
type Option func(*Opener)

// WithInline makes opened documents carry their bytes, so the extraction
// script reads them from stdin instead of the file path.
func WithInline(inline bool) Option {
	return func(o *Opener) {
		o.inline = inline
	}
}

// NewOpener creates an Opener.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open reads and checks the PDF at path.
func (o *Opener) Open(ctx context.Context, path string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := FromBytes(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if !o.inline {
		abs, err := filepath.Abs(path)
		if err != nil {
			return domain.Document{}, err
		}
		doc.Source = domain.PDFSource{Path: abs}
	}
	return doc, nil
}

// FromBytes checks data and returns a document that is fed to the script
// on stdin.
func FromBytes(data []byte) (domain.Document, error) {
	pages, err := PageCount(data)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{
		Source:    domain.PDFSource{Data: data},
		PageCount: pages,
	}, nil
}

// Validate checks the PDF header and end-of-file marker.
func Validate(data []byte) error {
	if !bytes.HasPrefix(data, header) {
		return fmt.Errorf("%w: missing %s header", domain.ErrNotPDF, header)
	}
	tail := data
	if len(tail) > trailerWindow {
		tail = tail[len(tail)-trailerWindow:]
	}
	if !bytes.Contains(tail, trailer) {
		return fmt.Errorf("%w: missing %s marker", domain.ErrNotPDF, trailer)
	}
	return nil
}

// PageCount validates data and returns its number of pages.
func PageCount(data []byte) (int, error) {
	if err := Validate(data); err != nil {
		return 0, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}
	return n, nil
}
