// Package process implements ports.ProcessRunner on top of os/exec.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
	"github.com/bft-labs/storytext/pkg/log"
)

const (
	// DefaultKillGrace is how long a process may take to exit after SIGTERM
	// before it is killed.
	DefaultKillGrace = 500 * time.Millisecond

	// DefaultOutputLimit caps how much of each output stream is kept.
	DefaultOutputLimit = 32 << 20

	// pipeDrain bounds how long Wait keeps copying output after the process
	// is gone (a grandchild may still hold the pipes open).
	pipeDrain = 250 * time.Millisecond

	// reapSlack is the extra time allowed for the kernel to reap a killed process.
	reapSlack = time.Second
)

// Runner starts one process per Run call. It holds only immutable settings
// and is safe for concurrent use.
type Runner struct {
	killGrace   time.Duration
	outputLimit int64
	baseDir     string
	env         []string
	logger      ports.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithKillGrace sets the delay between the termination request and the
// forced kill. Zero kills immediately after the request; negative values
// select DefaultKillGrace.
func WithKillGrace(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d < 0 {
			d = DefaultKillGrace
		}
		r.killGrace = d
	}
}

// WithOutputLimit caps the bytes kept per output stream. Output beyond the
// limit is discarded and reading stdout then fails with
// domain.ErrOutputLimit. Zero or less means no limit.
func WithOutputLimit(n int64) RunnerOption {
	return func(r *Runner) {
		r.outputLimit = n
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithLogger sets the logger used for process lifecycle messages.
func WithLogger(logger ports.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		killGrace:   DefaultKillGrace,
		outputLimit: DefaultOutputLimit,
		logger:      log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the invocation and blocks until the process exits, the
// invocation deadline elapses or ctx is done.
//
// stdin is fed from a separate goroutine while stdout and stderr are
// drained into memory, so a script that writes before it has consumed its
// whole input cannot deadlock the runner.
func (r *Runner) Run(ctx context.Context, inv domain.Invocation) domain.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	cmd := exec.Command(inv.Executable(), inv.Args()...)
	cmd.Dir = r.baseDir
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}
	setProcessGroup(cmd)

	stdout := &cappedBuffer{limit: r.outputLimit}
	stderr := &cappedBuffer{limit: r.outputLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if inv.HasPayload() {
		cmd.Stdin = bytes.NewReader(inv.Payload())
	}
	cmd.WaitDelay = r.killGrace + pipeDrain

	if err := cmd.Start(); err != nil {
		r.logger.Error("script failed to start",
			ports.String("script", inv.Script()),
			ports.String("executable", inv.Executable()),
			ports.Err(err),
		)
		return domain.Outcome{
			Kind:    domain.OutcomeSpawnFailed,
			Cause:   err,
			Elapsed: time.Since(start),
		}
	}

	pid := cmd.Process.Pid
	r.logger.Debug("script started",
		ports.String("script", inv.Script()),
		ports.Strings("args", inv.Args()),
		ports.Int("pid", pid),
		ports.Bool("stdin", inv.HasPayload()),
	)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	deadline := time.NewTimer(inv.Deadline())
	defer deadline.Stop()

	select {
	case err := <-done:
		return r.exited(inv, cmd, err, stdout, stderr, start)
	case <-deadline.C:
		r.logger.Warn("script exceeded deadline",
			ports.String("script", inv.Script()),
			ports.Int("pid", pid),
			ports.Duration("deadline", inv.Deadline()),
		)
	case <-ctx.Done():
		r.logger.Warn("script cancelled",
			ports.String("script", inv.Script()),
			ports.Int("pid", pid),
			ports.Err(ctx.Err()),
		)
	}

	r.stop(inv, cmd, done)
	return domain.Outcome{
		Kind:    domain.OutcomeTimedOut,
		PID:     pid,
		Elapsed: time.Since(start),
	}
}

// exited builds the outcome of a process that finished on its own.
func (r *Runner) exited(inv domain.Invocation, cmd *exec.Cmd, waitErr error, stdout, stderr *cappedBuffer, start time.Time) domain.Outcome {
	exitCode := 0
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		exitCode = exitErr.ExitCode()
	case cmd.ProcessState != nil:
		// exec.ErrWaitDelay or a stdin copy error: the process itself
		// finished, report its status.
		exitCode = cmd.ProcessState.ExitCode()
		r.logger.Debug("script pipes not cleanly closed",
			ports.String("script", inv.Script()),
			ports.Err(waitErr),
		)
	}

	elapsed := time.Since(start)
	r.logger.Debug("script exited",
		ports.String("script", inv.Script()),
		ports.Int("pid", cmd.Process.Pid),
		ports.Int("exit_code", exitCode),
		ports.Duration("elapsed", elapsed),
	)
	if stdout.truncated || stderr.truncated {
		r.logger.Warn("script output exceeded limit",
			ports.String("script", inv.Script()),
			ports.Int64("limit", r.outputLimit),
			ports.Bool("stdout", stdout.truncated),
			ports.Bool("stderr", stderr.truncated),
		)
	}

	return domain.Outcome{
		Kind:     domain.OutcomeSuccess,
		ExitCode: exitCode,
		Stdout:   stdout.reader(),
		Stderr:   io.NopCloser(bytes.NewReader(stderr.buf.Bytes())),
		PID:      cmd.Process.Pid,
		Elapsed:  elapsed,
	}
}

// stop asks the process to terminate, then kills it if it is still alive
// after the kill grace. Both steps are best effort.
func (r *Runner) stop(inv domain.Invocation, cmd *exec.Cmd, done <-chan error) {
	if err := terminate(cmd.Process); err != nil {
		r.logger.Debug("termination request failed",
			ports.String("script", inv.Script()),
			ports.Err(err),
		)
	}

	grace := time.NewTimer(r.killGrace)
	defer grace.Stop()
	select {
	case <-done:
		return
	case <-grace.C:
	}

	if err := kill(cmd.Process); err != nil {
		r.logger.Debug("kill failed",
			ports.String("script", inv.Script()),
			ports.Err(err),
		)
	}

	reap := time.NewTimer(pipeDrain + reapSlack)
	defer reap.Stop()
	select {
	case <-done:
	case <-reap.C:
		r.logger.Warn("killed script not yet reaped",
			ports.String("script", inv.Script()),
			ports.Int("pid", cmd.Process.Pid),
		)
	}
}

// cappedBuffer keeps the first limit bytes written to it and drops the
// rest. Writes always report success so the script is not sent SIGPIPE.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.limit > 0 {
		room := b.limit - int64(b.buf.Len())
		if int64(n) > room {
			b.truncated = true
			if room <= 0 {
				return n, nil
			}
			p = p[:room]
		}
	}
	b.buf.Write(p)
	return n, nil
}

// reader returns the kept bytes. If output was dropped, reading ends with
// domain.ErrOutputLimit instead of io.EOF.
func (b *cappedBuffer) reader() io.ReadCloser {
	var r io.Reader = bytes.NewReader(b.buf.Bytes())
	if b.truncated {
		r = io.MultiReader(r, failingReader{domain.ErrOutputLimit})
	}
	return io.NopCloser(r)
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
