package domain

import "fmt"

// Document is a PDF that has been located and checked before extraction.
type Document struct {
	Source    PDFSource
	PageCount int
}

// CheckPages fails with ErrPageOutOfRange if any page of m is not in the
// document. A zero PageCount means the count is unknown and nothing is checked.
func (d Document) CheckPages(m SelectionMap) error {
	if d.PageCount <= 0 {
		return nil
	}
	for _, p := range m.Pages() {
		if p >= d.PageCount {
			return fmt.Errorf("%w: page %d, document has %d", ErrPageOutOfRange, p, d.PageCount)
		}
	}
	return nil
}
