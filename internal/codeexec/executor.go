package codeexec

import "context"

// Request describes one block handed to the execution service.
type Request struct {
	Code     string
	Lang     string
	Filename string // target filename for the source, empty lets the service choose
	WorkDir  string
	Sandbox  bool
	Handle   string // execution-context handle from the previous call, empty on first use
}

// Result is what the execution service reports back. Handle identifies the
// session/container the service used; callers thread it into their next
// Request so execution state carries across blocks and turns.
type Result struct {
	ExitCode int
	Logs     []byte
	Handle   string
}

// Executor is the boundary to the code-execution service.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}
