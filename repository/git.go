package repository

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/utilitywarehouse/git-pushmirror/internal/utils"
)

// CmdResult is the result of a single git invocation
type CmdResult struct {
	// Success is true only if git exited with status 0
	Success bool
	// Output is trimmed stdout on success and trimmed stderr on failure
	Output string
	// Captured is false if output was not valid UTF-8 or git could not be run
	Captured bool
}

// Runner runs git commands with the given working directory.
// envs are passed to git in addition to the runner's own environment.
type Runner interface {
	Run(ctx context.Context, envs []string, dir string, args ...string) CmdResult
}

// GitRunner runs the git executable. Working directory is always given
// to git using `-C <dir>` and never by changing cwd.
type GitRunner struct {
	cmd  string
	envs []string
	log  *slog.Logger
}

// NewGitRunner returns runner for the given git executable, commonENVs are
// the only environment git commands will see apart from per call envs.
func NewGitRunner(gitExec string, commonENVs []string, log *slog.Logger) *GitRunner {
	if gitExec == "" {
		gitExec = exec.Command("git").String()
	}
	if log == nil {
		log = slog.Default()
	}
	return &GitRunner{cmd: gitExec, envs: commonENVs, log: log}
}

// Run runs git in given dir. If git can't be started failure is logged and
// result with no output is returned.
func (g *GitRunner) Run(ctx context.Context, envs []string, dir string, args ...string) CmdResult {
	fullArgs := append([]string{"-C", dir}, args...)

	env := make([]string, 0, len(g.envs)+len(envs))
	env = append(env, g.envs...)
	env = append(env, envs...)

	stdout, stderr, err := utils.RunCommand(ctx, g.log, env, g.cmd, fullArgs...)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return newCmdResult(true, stdout)
	case errors.As(err, &exitErr):
		return newCmdResult(false, stderr)
	default:
		g.log.Error("failed to run git", "cmd", g.cmd, "args", strings.Join(args, " "), "err", err)
		return CmdResult{}
	}
}

func newCmdResult(success bool, out []byte) CmdResult {
	if !utf8.Valid(out) {
		return CmdResult{Success: success}
	}
	return CmdResult{
		Success:  success,
		Output:   strings.TrimSpace(string(out)),
		Captured: true,
	}
}
