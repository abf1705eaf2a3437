package codeexec

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func newLocalForTest(t *testing.T) *LocalExecutor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("LocalExecutor shells out to sh")
	}
	return NewLocalExecutor()
}

func TestLocalExecutor_ShellSuccess(t *testing.T) {
	e := newLocalForTest(t)

	res, err := e.Execute(context.Background(), Request{
		Lang:    "sh",
		Code:    "echo 'hello world'",
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit 0, got %d (logs: %s)", res.ExitCode, res.Logs)
	}
	if !strings.Contains(string(res.Logs), "hello world") {
		t.Errorf("Expected output in logs, got %q", res.Logs)
	}
	if res.Handle == "" {
		t.Error("Expected a minted context handle")
	}
}

func TestLocalExecutor_ShellFailure(t *testing.T) {
	e := newLocalForTest(t)

	res, err := e.Execute(context.Background(), Request{
		Lang:    "sh",
		Code:    "exit 3",
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("Expected exit 3, got %d", res.ExitCode)
	}
}

func TestLocalExecutor_SessionStateCarriesAcrossCalls(t *testing.T) {
	e := newLocalForTest(t)
	workDir := t.TempDir()

	first, err := e.Execute(context.Background(), Request{
		Lang:    "sh",
		Code:    "echo carried > note.txt",
		WorkDir: workDir,
	})
	if err != nil || first.ExitCode != 0 {
		t.Fatalf("First block failed: err=%v exit=%d", err, first.ExitCode)
	}

	second, err := e.Execute(context.Background(), Request{
		Lang:    "sh",
		Code:    "cat note.txt",
		WorkDir: workDir,
		Handle:  first.Handle,
	})
	if err != nil {
		t.Fatalf("Second block failed: %v", err)
	}
	if second.ExitCode != 0 || !strings.Contains(string(second.Logs), "carried") {
		t.Errorf("Expected file from first block to be visible, exit=%d logs=%q", second.ExitCode, second.Logs)
	}
	if second.Handle != first.Handle {
		t.Errorf("Handle should be stable across calls, got %q then %q", first.Handle, second.Handle)
	}
}

func TestLocalExecutor_UnknownLanguage(t *testing.T) {
	e := newLocalForTest(t)

	res, err := e.Execute(context.Background(), Request{
		Lang:    "ruby",
		Code:    "puts 1",
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ExitCode != 1 || !strings.Contains(string(res.Logs), "unknown language ruby") {
		t.Errorf("Expected unknown-language failure, got exit=%d logs=%q", res.ExitCode, res.Logs)
	}
}
