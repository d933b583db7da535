// Package workspace mirrors (bare clones) groups of remote repositories into a
// workspace directory and mirror-pushes every one of them to its destination.
//
// A workspace is laid out as `<workspace>/<configuration>/<mirror>` where every
// mirror directory is a `git clone --mirror` of its source. Mirrors are processed
// sequentially in declaration order and a failing mirror never stops the others.
//
// # Usages
//
// please see examples below
//
// # Logging:
//
// package takes slog reference for logging and prints logs up to 'trace' level
//
// Example:
//
//	loggerLevel  = new(slog.LevelVar)
//	levelStrings = map[string]slog.Level{
//		"trace": slog.Level(-8),
//		"debug": slog.LevelDebug,
//		"info":  slog.LevelInfo,
//		"warn":  slog.LevelWarn,
//		"error": slog.LevelError,
//	}
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: loggerLevel,
//	}))
//	loggerLevel.Set(levelStrings["trace"])
//
//	runner := repository.NewGitRunner("git", nil, logger)
//	ws, err := workspace.New(conf, runner, 0, logger.With("logger", "git-pushmirror"))
//	if err != nil {
//		panic(err)
//	}
//	if !ws.MirrorAll(ctx) {
//		os.Exit(1)
//	}
package workspace
