package codeexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agent-proxy/pkg/logger"
)

// LocalExecutor runs blocks with os/exec on the host. It does not provide
// an actual sandbox: when a request asks for one it logs a warning and runs
// on the host anyway, which keeps development setups working without a
// container runtime.
//
// The context handle names a scratch directory under the work dir. The
// first execution mints a handle and creates the directory; later
// executions with the same handle run in the same directory, so files
// written by one block are visible to the next.
type LocalExecutor struct {
	logger *zap.Logger
}

// NewLocalExecutor creates a host-local executor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{logger: logger.Named("codeexec")}
}

// Execute runs a single block and reports its exit code and combined
// stdout/stderr. Failures to launch the block at all surface as exit code 1
// with the error text in the logs, never as a raised error.
func (e *LocalExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	handle := req.Handle
	if handle == "" {
		handle = uuid.New().String()
	}

	workDir := req.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	sessionDir := filepath.Join(workDir, "sessions", handle)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
	}

	if req.Sandbox {
		e.logger.Warn("sandbox requested but LocalExecutor runs on the host",
			zap.String("lang", req.Lang),
		)
	}

	var cmd *exec.Cmd
	switch {
	case shellLangs[req.Lang]:
		cmd = exec.CommandContext(ctx, "sh", "-c", req.Code)
	case req.Lang == "python":
		filename := req.Filename
		if filename == "" {
			filename = fmt.Sprintf("block_%s.py", uuid.New().String()[:8])
		}
		path := filepath.Join(sessionDir, filename)
		if err := os.WriteFile(path, []byte(req.Code), 0o644); err != nil {
			return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
		}
		cmd = exec.CommandContext(ctx, "python3", filename)
	default:
		return Result{
			ExitCode: 1,
			Logs:     []byte(fmt.Sprintf("unknown language %s", req.Lang)),
			Handle:   handle,
		}, nil
	}
	cmd.Dir = sessionDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
	}

	var outBuf, errBuf bytes.Buffer
	g := new(errgroup.Group)
	g.Go(func() error {
		_, copyErr := io.Copy(&outBuf, stdout)
		return copyErr
	})
	g.Go(func() error {
		_, copyErr := io.Copy(&errBuf, stderr)
		return copyErr
	})
	if err := g.Wait(); err != nil {
		e.logger.Debug("draining block output failed", zap.Error(err))
	}

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{ExitCode: 1, Logs: []byte(err.Error()), Handle: handle}, nil
		}
	}

	logs := append(outBuf.Bytes(), errBuf.Bytes()...)
	e.logger.Debug("block executed",
		zap.String("lang", req.Lang),
		zap.Int("exit_code", exitCode),
		zap.String("handle", handle),
	)
	return Result{ExitCode: exitCode, Logs: logs, Handle: handle}, nil
}
