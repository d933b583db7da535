package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"github.com/utilitywarehouse/git-pushmirror/repository"
	"github.com/utilitywarehouse/git-pushmirror/workspace"
)

const metricsNamespace = "git_pushmirror"

var (
	loggerLevel = new(slog.LevelVar)
	logger      *slog.Logger

	levelStrings = map[string]slog.Level{
		"trace": slog.Level(-8),
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Sources:  cli.EnvVars("GIT_PUSHMIRROR_CONFIG"),
			Required: true,
			Usage:    "Path to the config file (.json, .yaml, .yml or .toml).",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
			Usage:   "Log level",
		},
		&cli.StringFlag{
			Name:    "git-exec",
			Sources: cli.EnvVars("GIT_PUSHMIRROR_GIT"),
			Usage:   "git executable to use, git from PATH if not set.",
		},
		&cli.DurationFlag{
			Name:  "mirror-timeout",
			Usage: "Maximum time allowed for a single mirror to clone/fetch and push, 0 means no timeout.",
		},
		&cli.StringFlag{
			Name:  "lock-file",
			Usage: "Path to the lock file used to prevent concurrent runs on the same workspace.",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Path to write prometheus metrics to after the run, in textfile collector format.",
		},
	}
)

func init() {
	loggerLevel.Set(slog.LevelInfo)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loggerLevel,
	}))
}

// gitEnvs returns envs from the current process which git needs to find
// helpers, user config and ssh agent
func gitEnvs() []string {
	var envs []string
	for _, name := range []string{"PATH", "HOME", "SSH_AUTH_SOCK"} {
		if v, ok := os.LookupEnv(name); ok {
			envs = append(envs, fmt.Sprintf("%s=%s", name, v))
		}
	}
	return envs
}

// run mirrors everything in the config file and returns the process exit code
func run(ctx context.Context, c *cli.Command) int {
	conf, err := parseConfigFile(c.String("config"))
	if err != nil {
		logger.Error("unable to parse config file", "path", c.String("config"), "err", err)
		return 1
	}

	if lockFile := c.String("lock-file"); lockFile != "" {
		unlock, err := acquireLock(lockFile)
		if err != nil {
			logger.Error("unable to acquire lock", "path", lockFile, "err", err)
			return 1
		}
		defer unlock()
	}

	var registry *prometheus.Registry
	if metricsFile := c.String("metrics-file"); metricsFile != "" {
		registry = prometheus.NewRegistry()
		workspace.EnableMetrics(metricsNamespace, registry)
		defer func() {
			if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
				logger.Error("unable to write metrics file", "path", metricsFile, "err", err)
			}
		}()
	}

	runner := repository.NewGitRunner(c.String("git-exec"), gitEnvs(), logger)

	ws, err := workspace.New(*conf, runner, c.Duration("mirror-timeout"), logger.With("logger", "git-pushmirror"))
	if err != nil {
		logger.Error("invalid config", "err", err)
		return 1
	}

	if !ws.MirrorAll(ctx) {
		logger.Error("mirroring finished with failures", "workspace", ws.Root())
		return 1
	}

	logger.Info("all mirrors mirrored successfully", "workspace", ws.Root())
	return 0
}

func main() {
	cmd := &cli.Command{
		Name:  "git-pushmirror",
		Usage: "git-pushmirror keeps local bare mirrors of remote repositories and mirror-pushes them to their destinations.",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// set log level according to argument
			if v, ok := levelStrings[strings.ToLower(c.String("log-level"))]; ok {
				loggerLevel.Set(v)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			code := run(ctx, c)
			stop()

			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("failed to run app", "err", err)
		os.Exit(1)
	}
}
