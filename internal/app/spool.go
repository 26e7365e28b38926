package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

const (
	// JobSuffix marks job files in the inbox.
	JobSuffix = ".job.json"
	// DoneSuffix replaces JobSuffix once a job's result has been saved.
	DoneSuffix = ".job.done"
	// FailedSuffix replaces JobSuffix for a job no result can be saved for.
	FailedSuffix = ".job.failed"

	DefaultDebounce     = 100 * time.Millisecond
	DefaultReadAttempts = 5
	DefaultReadDelay    = 200 * time.Millisecond
)

// SpoolConfig contains configuration for the inbox spool.
type SpoolConfig struct {
	InboxDir        string
	Debounce        time.Duration
	ReadAttempts    uint
	ReadDelay       time.Duration
	ShutdownTimeout time.Duration
}

func (c SpoolConfig) withDefaults() SpoolConfig {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.ReadAttempts == 0 {
		c.ReadAttempts = DefaultReadAttempts
	}
	if c.ReadDelay <= 0 {
		c.ReadDelay = DefaultReadDelay
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = ShutdownTimeout
	}
	return c
}

// ExtractorFactory builds the extractor for one document.
type ExtractorFactory func(source domain.PDFSource) ports.TextExtractor

// Spool watches an inbox directory for job files and processes them one at
// a time.
type Spool struct {
	config       SpoolConfig
	documents    ports.DocumentSource
	results      ports.ResultRepository
	newExtractor ExtractorFactory
	logger       ports.Logger
	lifecycle    *Lifecycle

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewSpool creates a spool.
func NewSpool(
	config SpoolConfig,
	documents ports.DocumentSource,
	results ports.ResultRepository,
	newExtractor ExtractorFactory,
	logger ports.Logger,
	observer StateObserver,
) *Spool {
	logger = orNoop(logger)
	return &Spool{
		config:       config.withDefaults(),
		documents:    documents,
		results:      results,
		newExtractor: newExtractor,
		logger:       logger,
		lifecycle:    NewLifecycle(logger, observer),
		pending:      make(map[string]*time.Timer),
	}
}

// State returns the spool's lifecycle state.
func (s *Spool) State() State {
	return s.lifecycle.State()
}

// Stop asks a running spool to shut down. Run returns once the in-flight
// job has finished.
func (s *Spool) Stop() {
	if s.lifecycle.CanStop() {
		s.lifecycle.Cancel()
	}
}

// Run processes the jobs already in the inbox, then watches it until ctx
// is done or Stop is called.
func (s *Spool) Run(ctx context.Context) error {
	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.lifecycle.SetCancel(cancel)

	if err := s.lifecycle.TransitionTo(StateStarting, "run called"); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.crash("watcher failed")
		return fmt.Errorf("create inbox watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.InboxDir); err != nil {
		s.crash("inbox not watchable")
		return fmt.Errorf("watch inbox %s: %w", s.config.InboxDir, err)
	}

	queue := make(chan string, 64)
	s.lifecycle.AddWorker()
	go s.work(ctx, queue)

	if err := s.lifecycle.TransitionTo(StateRunning, "watching inbox"); err != nil {
		cancel()
		if waitErr := s.shutdown("start aborted"); waitErr != nil {
			return errors.Join(err, waitErr)
		}
		return err
	}
	s.enqueueExisting(ctx, queue)

	s.watch(ctx, watcher, queue)

	cancel()
	return s.shutdown("context done")
}

// shutdown stops pending debounce timers and waits for the worker. The
// caller must have cancelled the worker's context.
func (s *Spool) shutdown(reason string) error {
	_ = s.lifecycle.TransitionTo(StateStopping, reason)
	s.stopTimers()
	waitErr := s.lifecycle.WaitWithTimeout(s.config.ShutdownTimeout)
	_ = s.lifecycle.TransitionTo(StateStopped, "workers finished")
	return waitErr
}

func (s *Spool) crash(reason string) {
	_ = s.lifecycle.TransitionTo(StateCrashed, reason)
}

func (s *Spool) watch(ctx context.Context, watcher *fsnotify.Watcher, queue chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !IsJobFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.debounce(ctx, event.Name, queue)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("inbox watcher error", ports.Err(err))
		}
	}
}

// debounce delays a job until its file has been quiet for the debounce
// interval, so a job written in several chunks is queued once.
func (s *Spool) debounce(ctx context.Context, path string, queue chan<- string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[path]; ok {
		t.Stop()
	}
	s.pending[path] = time.AfterFunc(s.config.Debounce, func() {
		s.mu.Lock()
		delete(s.pending, path)
		s.mu.Unlock()

		select {
		case queue <- path:
		case <-ctx.Done():
		}
	})
}

func (s *Spool) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, t := range s.pending {
		t.Stop()
		delete(s.pending, path)
	}
}

func (s *Spool) enqueueExisting(ctx context.Context, queue chan<- string) {
	entries, err := os.ReadDir(s.config.InboxDir)
	if err != nil {
		s.logger.Warn("failed to list inbox", ports.String("inbox", s.config.InboxDir), ports.Err(err))
		return
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsJobFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		s.logger.Info("processing queued jobs", ports.Int("jobs", len(names)))
	}
	for _, name := range names {
		select {
		case queue <- filepath.Join(s.config.InboxDir, name):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Spool) work(ctx context.Context, queue <-chan string) {
	defer s.lifecycle.WorkerDone()

	// A job that has started runs to completion even if the spool is stopping.
	jobCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-queue:
			if err := s.ProcessFile(jobCtx, path); err != nil {
				s.logger.Error("job not completed",
					ports.String("path", path),
					ports.Err(err),
				)
			}
		}
	}
}

// IsJobFile reports whether name is an inbox job file.
func IsJobFile(name string) bool {
	return strings.HasSuffix(filepath.Base(name), JobSuffix)
}

// ProcessFile runs the job stored at path, saves its result and marks the
// job done. A job file that no longer exists is skipped. Problems with the
// job itself (bad selections, missing PDF, an id that cannot name a result
// file) are reported in the saved result, under the file name when the id
// is unusable. Only failures to save or mark the job are returned.
func (s *Spool) ProcessFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	runID := uuid.New().String()
	start := time.Now()

	job, err := s.readJob(ctx, path)
	id, idErr := jobID(path, job)
	if err == nil {
		err = idErr
	}
	if domain.ValidateJobID(id) != nil {
		return s.markFailed(path, id)
	}

	result := domain.JobResult{
		ID:         id,
		RunID:      runID,
		Paragraphs: domain.Paragraphs{},
	}
	if err == nil {
		var paragraphs domain.Paragraphs
		paragraphs, err = s.runJob(ctx, job)
		if err == nil {
			result.Paragraphs = paragraphs
		}
	}
	if err != nil {
		result.Error = err.Error()
		s.logger.Warn("job rejected",
			ports.String("job_id", result.ID),
			ports.String("run_id", runID),
			ports.Err(err),
		)
	}

	if err := s.results.Save(ctx, result); err != nil {
		return fmt.Errorf("save result of job %s: %w", result.ID, err)
	}
	done := strings.TrimSuffix(path, JobSuffix) + DoneSuffix
	if err := os.Rename(path, done); err != nil {
		return fmt.Errorf("mark job %s done: %w", result.ID, err)
	}

	s.logger.Info("job processed",
		ports.String("job_id", result.ID),
		ports.String("run_id", runID),
		ports.Int("paragraphs", len(result.Paragraphs)),
		ports.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// readJob reads and decodes a job file, retrying while it may still be
// being written.
func (s *Spool) readJob(ctx context.Context, path string) (domain.Job, error) {
	var job domain.Job
	err := retry.Do(
		func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return errors.New("empty job file")
			}
			job = domain.Job{}
			return json.Unmarshal(data, &job)
		},
		retry.Context(ctx),
		retry.Attempts(s.config.ReadAttempts),
		retry.Delay(s.config.ReadDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("job file not readable yet",
				ports.String("path", path),
				ports.Int("attempt", int(n)+1),
				ports.Err(err),
			)
		}),
	)
	if err != nil {
		return domain.Job{}, fmt.Errorf("read job: %w", err)
	}
	return job, nil
}

func (s *Spool) runJob(ctx context.Context, job domain.Job) (domain.Paragraphs, error) {
	selections, err := domain.NewSelectionMap(job.Selections)
	if err != nil {
		return nil, err
	}

	pdfPath := job.PDFPath
	if pdfPath == "" {
		return nil, fmt.Errorf("%w: job has no pdfPath", domain.ErrInvalidSelection)
	}
	if !filepath.IsAbs(pdfPath) {
		pdfPath = filepath.Join(s.config.InboxDir, pdfPath)
	}

	doc, err := s.documents.Open(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	if err := doc.CheckPages(selections); err != nil {
		return nil, err
	}

	return NewSequencer(s.newExtractor(doc.Source), s.logger).Sequence(ctx, selections), nil
}

// jobID returns the id results are saved under. An unusable job.ID falls
// back to the file name and is reported as an error.
func jobID(path string, job domain.Job) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), JobSuffix)
	if job.ID == "" {
		return stem, nil
	}
	if err := domain.ValidateJobID(job.ID); err != nil {
		return stem, err
	}
	return job.ID, nil
}

// markFailed renames a job whose result has nowhere to go, so it is not
// picked up again.
func (s *Spool) markFailed(path, id string) error {
	failed := strings.TrimSuffix(path, JobSuffix) + FailedSuffix
	s.logger.Error("job has no usable id",
		ports.String("path", path),
		ports.String("job_id", id),
	)
	if err := os.Rename(path, failed); err != nil {
		return fmt.Errorf("mark job %s failed: %w", path, err)
	}
	return fmt.Errorf("%w: no result name for %s", domain.ErrInvalidJob, filepath.Base(path))
}
