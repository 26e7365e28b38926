package domain

import "errors"

// Domain errors represent hard failures in the storytext domain.
// Script execution failures are never reported through these; they degrade
// to empty output instead. Check with errors.Is.
var (
	// ErrInvalidRegion is returned when a region has a negative coordinate,
	// a non-positive size or a negative sequence number.
	ErrInvalidRegion = errors.New("storytext: invalid region")

	// ErrInvalidSelection is returned when a caller selection cannot be
	// turned into a region (including a negative page number).
	ErrInvalidSelection = errors.New("storytext: invalid selection")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("storytext: invalid configuration")

	// ErrNotPDF is returned when a byte source does not look like a PDF document.
	ErrNotPDF = errors.New("storytext: not a PDF document")

	// ErrPageOutOfRange is returned when a selection references a page the
	// document does not have.
	ErrPageOutOfRange = errors.New("storytext: page out of range")

	// ErrOutputLimit is returned when reading script output that was cut
	// off at the runner's output limit.
	ErrOutputLimit = errors.New("storytext: script output exceeds limit")

	// ErrInvalidJob is returned for a spool job whose id cannot name a
	// result file.
	ErrInvalidJob = errors.New("storytext: invalid job")

	// ErrAlreadyRunning is returned when starting a spool that is not stopped.
	ErrAlreadyRunning = errors.New("storytext: already running")

	// ErrNotRunning is returned for a lifecycle transition that requires a
	// running spool.
	ErrNotRunning = errors.New("storytext: not running")

	// ErrShutdownTimeout is returned when in-flight jobs do not finish
	// within the shutdown timeout.
	ErrShutdownTimeout = errors.New("storytext: shutdown timeout")
)
