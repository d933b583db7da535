// Package repository keeps a local bare mirror of a remote repository and
// mirror-pushes it to a destination remote.
//
// Each call to [Repository.Mirror] runs the sequence
//
//	clone --mirror <source> (or fetch if the mirror directory exists)
//	remote                   (discover remotes)
//	remote add mirror <dest> (only if the "mirror" remote is missing)
//	remote set-url mirror <dest> (only if the existing remote points elsewhere)
//	config --unset-all remote.mirror.fetch (mirror remote is push only)
//	update-ref -d refs/remotes/mirror/* (tracking refs left by older runs)
//	push --mirror mirror
//
// and reports the first failing stage as an [Outcome]. Failures never
// escape as errors and git's error output is logged where it is detected.
//
// All git commands go through a [Runner]. [GitRunner] runs the git binary
// with an explicit `-C <dir>` so the process working directory is never changed.
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
//	runner := repository.NewGitRunner("git", []string{"PATH=" + os.Getenv("PATH")}, logger)
//	repo, err := repository.New(conf, "/var/lib/mirrors/team", runner, logger)
//	if err != nil {
//		panic(err)
//	}
//	outcome := repo.Mirror(ctx)
package repository
