package utils

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// RunCommand runs given command with given arguments and returns captured
// stdout and stderr. If the command started but exited with non-zero status
// returned error will be *exec.ExitError, any other error means command could
// not be run at all.
// Command is started with only the given envs, the current process's environment
// is not inherited.
func RunCommand(ctx context.Context, log *slog.Logger, envs []string, command string, args ...string) ([]byte, []byte, error) {
	cmdStr := command + " " + strings.Join(args, " ")
	log.Log(ctx, -8, "running command", "cmd", cmdStr)

	cmd := exec.CommandContext(ctx, command, args...)
	// force kill git & child process 5 seconds after sending it sigterm (when ctx is cancelled/timed out)
	cmd.WaitDelay = 5 * time.Second

	outbuf := bytes.NewBuffer(nil)
	errbuf := bytes.NewBuffer(nil)
	cmd.Stdout = outbuf
	cmd.Stderr = errbuf

	// If Env is nil, the new process uses the current process's environment.
	cmd.Env = append([]string{}, envs...)

	start := time.Now()
	err := cmd.Run()
	runTime := time.Since(start)

	// killed by context, report it as a failure to run
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	}

	log.Log(ctx, -8, "command result", "stdout", outbuf.String(), "stderr", errbuf.String(), "time", runTime, "err", err)

	return outbuf.Bytes(), errbuf.Bytes(), err
}
