package toolexec

import (
	"PDFReduce/internal/pkgerror"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long a killed tool's children may hold its output open.
const waitDelay = 5 * time.Second

// Runner runs an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec, bounded by Timeout when it is set.
type ExecRunner struct {
	Timeout time.Duration
}

func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	output, err := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, pkgerror.NewTool(name, fmt.Errorf("timed out after %v", r.Timeout), output)
	}
	if ctx.Err() != nil {
		return output, pkgerror.NewTool(name, ctx.Err(), output)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return output, pkgerror.NewToolMissing(name, err)
		}
		return output, pkgerror.NewTool(name, err, output)
	}
	return output, nil
}

// Available reports whether name resolves to an executable on PATH.
func Available(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return pkgerror.NewToolMissing(name, err)
	}
	return nil
}
