package utils

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"testing"
	"time"
)

func shellEnv() []string {
	return []string{"PATH=" + os.Getenv("PATH")}
}

func TestRunCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
		wantExit   bool
	}{
		{"success", []string{"-c", "echo out; echo err >&2"}, "out\n", "err\n", false},
		{"failure", []string{"-c", "echo out; echo err >&2; exit 3"}, "out\n", "err\n", true},
		{"no-output", []string{"-c", "true"}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := RunCommand(t.Context(), slog.Default(), shellEnv(), "sh", tt.args...)

			var exitErr *exec.ExitError
			if tt.wantExit {
				if !errors.As(err, &exitErr) {
					t.Fatalf("expected exit error got: %v", err)
				}
				if exitErr.ExitCode() != 3 {
					t.Errorf("unexpected exit code got:%d want:3", exitErr.ExitCode())
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if string(stdout) != tt.wantStdout {
				t.Errorf("stdout mismatch got:%q want:%q", stdout, tt.wantStdout)
			}
			if string(stderr) != tt.wantStderr {
				t.Errorf("stderr mismatch got:%q want:%q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestRunCommand_envNotInherited(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	t.Setenv("PUSHMIRROR_TEST_PARENT", "leaked")

	stdout, _, err := RunCommand(t.Context(), slog.Default(),
		append(shellEnv(), "PUSHMIRROR_TEST_CHILD=given"),
		"sh", "-c", `echo "$PUSHMIRROR_TEST_PARENT|$PUSHMIRROR_TEST_CHILD"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(stdout); got != "|given\n" {
		t.Errorf("unexpected env in child process got:%q", got)
	}
}

func TestRunCommand_missingBinary(t *testing.T) {
	_, _, err := RunCommand(t.Context(), slog.Default(), nil, "/does/not/exist/git")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("missing binary must not be reported as exit error: %v", err)
	}
}

func TestRunCommand_timeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep is not available")
	}
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	_, _, err := RunCommand(ctx, slog.Default(), shellEnv(), "sleep", "5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded got: %v", err)
	}
}

// doneAfterRunCtx reports cancellation without ever signalling the command,
// like a context cancelled right after the command exited
type doneAfterRunCtx struct{ context.Context }

func (doneAfterRunCtx) Err() error { return context.Canceled }

func TestRunCommand_successWithCancelledContext(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	stdout, _, err := RunCommand(doneAfterRunCtx{context.Background()}, slog.Default(), shellEnv(), "sh", "-c", "echo out")
	if err != nil {
		t.Fatalf("successful command must not report context error got: %v", err)
	}
	if string(stdout) != "out\n" {
		t.Errorf("stdout mismatch got:%q want:%q", stdout, "out\n")
	}
}

func TestRunCommand_failureWithCancelledContext(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	_, _, err := RunCommand(doneAfterRunCtx{context.Background()}, slog.Default(), shellEnv(), "sh", "-c", "exit 1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error for failed command got: %v", err)
	}
}
