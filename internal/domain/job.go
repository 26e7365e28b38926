package domain

import (
	"fmt"
	"strings"
)

// Job is one extraction request dropped into the spool inbox.
type Job struct {
	ID         string      `json:"id"`
	PDFPath    string      `json:"pdfPath"`
	Selections []Selection `json:"selections"`
}

// JobResult is written to the outbox once a job has been processed.
// Error is set only for hard failures (invalid input, unreadable PDF);
// script failures still produce a result with whatever text was extracted.
type JobResult struct {
	ID         string     `json:"id"`
	RunID      string     `json:"runId"`
	Paragraphs Paragraphs `json:"paragraphs"`
	Error      string     `json:"error,omitempty"`
}

// ValidateJobID reports whether id can name a result file: it must be
// non-empty, not "." or "..", and free of path separators.
func ValidateJobID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: id %q cannot name a result file", ErrInvalidJob, id)
	}
	return nil
}
