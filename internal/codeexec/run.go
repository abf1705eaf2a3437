package codeexec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "agent-proxy/pkg/errors"
)

const filenameDirective = "# filename: "

var shellLangs = map[string]bool{
	"bash":  true,
	"shell": true,
	"sh":    true,
}

// RunOptions configure one run of a sequence of blocks.
type RunOptions struct {
	WorkDir string
	Sandbox bool
	Handle  string // execution-context handle carried over from the previous turn
}

// RunResult aggregates a block sequence: the exit code of the last block
// attempted, the combined logs up to and including that block, and the
// context handle to carry into the next run.
type RunResult struct {
	ExitCode int
	Logs     string
	Handle   string
}

// Run executes blocks in order, short-circuiting at the first non-zero exit
// code. Blocks run strictly sequentially: later blocks may depend on files
// and session state produced by earlier ones, and the short-circuit contract
// requires observing each exit code before issuing the next block. The
// handle returned by each execution is threaded into the next request.
func Run(ctx context.Context, exec Executor, blocks []Block, opts RunOptions) RunResult {
	if exec == nil {
		exec = unavailableExecutor{}
	}
	res := RunResult{Handle: opts.Handle}
	var logs strings.Builder

	for _, block := range blocks {
		lang := block.Lang
		if lang == "" {
			lang = InferLang(block.Code)
		}

		var (
			out Result
			err error
		)
		switch {
		case shellLangs[lang]:
			out, err = exec.Execute(ctx, Request{
				Code:    block.Code,
				Lang:    lang,
				WorkDir: opts.WorkDir,
				Sandbox: opts.Sandbox,
				Handle:  res.Handle,
			})
		case lang == "python":
			out, err = exec.Execute(ctx, Request{
				Code:     block.Code,
				Lang:     lang,
				Filename: filenameFromDirective(block.Code),
				WorkDir:  opts.WorkDir,
				Sandbox:  opts.Sandbox,
				Handle:   res.Handle,
			})
		default:
			// never reaches the execution service
			out = Result{
				ExitCode: 1,
				Logs:     []byte(fmt.Sprintf("unknown language %s", lang)),
				Handle:   res.Handle,
			}
		}
		if err != nil {
			out = Result{
				ExitCode: 1,
				Logs:     []byte(err.Error()),
				Handle:   res.Handle,
			}
		}

		res.Handle = out.Handle
		res.ExitCode = out.ExitCode
		logs.WriteString("\n")
		logs.Write(out.Logs)
		if out.ExitCode != 0 {
			break
		}
	}

	res.Logs = logs.String()
	return res
}

// unavailableExecutor stands in when no execution service was configured,
// so block-carrying messages still produce a well-formed failure reply.
type unavailableExecutor struct{}

func (unavailableExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	return Result{}, apperrors.NewExecFailed(req.Lang, errors.New("no execution service configured"))
}

// filenameFromDirective reads a "# filename: <name>" directive off the first
// line of a source block. Empty means no directive.
func filenameFromDirective(code string) string {
	if !strings.HasPrefix(code, filenameDirective) {
		return ""
	}
	line := code
	if i := strings.IndexByte(code, '\n'); i >= 0 {
		line = code[:i]
	}
	return strings.TrimSpace(strings.TrimPrefix(line, filenameDirective))
}
