package app

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
	"github.com/bft-labs/storytext/pkg/log"
)

// maxLoggedStderr caps how much script diagnostics end up in a log line.
const maxLoggedStderr = 4 << 10

// scriptCall runs one invocation and turns its outcome into stdout bytes
// plus a classification. Callers parse the bytes and may downgrade a
// ResultOK to ResultMalformedOutput before recording it.
type scriptCall struct {
	runner ports.ProcessRunner
	logger ports.Logger
}

func (c scriptCall) run(ctx context.Context, inv domain.Invocation) ([]byte, domain.Result, time.Duration) {
	out := c.runner.Run(ctx, inv)
	defer out.Close()

	switch out.Kind {
	case domain.OutcomeTimedOut:
		c.logger.Warn("script timed out",
			ports.String("script", inv.Script()),
			ports.Duration("deadline", inv.Deadline()),
			ports.Duration("elapsed", out.Elapsed),
		)
		return nil, domain.ResultTimeout, out.Elapsed

	case domain.OutcomeSpawnFailed:
		c.logger.Error("script could not be started",
			ports.String("script", inv.Script()),
			ports.String("executable", inv.Executable()),
			ports.Err(out.Cause),
		)
		return nil, domain.ResultSpawnFailure, out.Elapsed
	}

	if out.ExitCode != 0 {
		c.logger.Warn("script failed",
			ports.String("script", inv.Script()),
			ports.Int("exit_code", out.ExitCode),
			ports.String("stderr", readStderr(out.Stderr)),
		)
		return nil, domain.ResultNonZeroExit, out.Elapsed
	}

	stdout, err := io.ReadAll(out.Stdout)
	if err != nil {
		c.logger.Warn("failed to read script output",
			ports.String("script", inv.Script()),
			ports.Err(err),
		)
		return nil, domain.ResultMalformedOutput, out.Elapsed
	}
	return stdout, domain.ResultOK, out.Elapsed
}

func readStderr(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, maxLoggedStderr))
	return strings.TrimSpace(string(b))
}

func orNoop(logger ports.Logger) ports.Logger {
	if logger == nil {
		return log.NewNoopLogger()
	}
	return logger
}
