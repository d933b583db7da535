package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/utilitywarehouse/git-pushmirror/repository"
)

// Workspace represents the workspace directory and all the configurations
// mirrored into it. A Workspace runs everything sequentially and is not
// safe for concurrent use.
type Workspace struct {
	root           string
	configurations []Configuration
	runner         repository.Runner
	mirrorTimeout  time.Duration
	log            *slog.Logger
}

// New will validate given config and create workspace. mirrorTimeout bounds every
// single mirror sequence, 0 means no timeout.
// Nothing is created on disk and no git command is run until MirrorAll() is called.
func New(conf Config, runner repository.Runner, mirrorTimeout time.Duration, log *slog.Logger) (*Workspace, error) {
	if err := conf.ValidateAndApplyDefaults(); err != nil {
		return nil, err
	}

	if runner == nil {
		return nil, fmt.Errorf("git runner is required")
	}

	if mirrorTimeout < 0 {
		return nil, fmt.Errorf("mirror timeout cannot be negative (%s)", mirrorTimeout)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Workspace{
		root:           conf.Workspace,
		configurations: conf.Configurations,
		runner:         runner,
		mirrorTimeout:  mirrorTimeout,
		log:            log,
	}, nil
}

// Root returns path of the workspace directory
func (w *Workspace) Root() string {
	return w.root
}

// MirrorAll creates the workspace directory and processes every configuration
// in order. It returns true only if every mirror of every configuration was
// mirrored successfully.
func (w *Workspace) MirrorAll(ctx context.Context) bool {
	success := w.mirrorAll(ctx)
	recordRun(success)
	return success
}

func (w *Workspace) mirrorAll(ctx context.Context) bool {
	if err := os.MkdirAll(w.root, 0755); err != nil {
		w.log.Error("unable to create workspace directory", "path", w.root, "err", err)
		return false
	}

	success := true
	for _, c := range w.configurations {
		ok, err := w.ProcessConfiguration(ctx, c)
		if err != nil {
			w.log.Error("unable to process configuration", "config", c.Name, "err", err)
			success = false
			continue
		}
		if !ok {
			success = false
		}
	}

	return success
}

// ProcessConfiguration creates the configuration directory and runs mirror
// sequence on all of its mirrors in order. A failed mirror does not stop
// the remaining mirrors. Error is only returned if configuration directory
// could not be created.
func (w *Workspace) ProcessConfiguration(ctx context.Context, c Configuration) (bool, error) {
	dir := filepath.Join(w.root, c.Name)

	log := w.log.With("config", c.Name)
	log.Info("processing configuration", "path", dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("unable to create configuration directory %s: %w", dir, err)
	}

	success := true
	for _, mc := range c.Mirrors {
		repo, err := repository.New(mc, dir, w.runner, log)
		if err != nil {
			log.Error("invalid mirror config", "mirror", mc.Name, "err", err)
			success = false
			continue
		}

		outcome := w.mirror(ctx, c.Name, repo)

		switch outcome {
		case repository.Success:
			log.Info("mirrored successfully", "mirror", repo.Name(), "outcome", outcome)
		case repository.CloneFailed:
			log.Error("failed to clone", "mirror", repo.Name(), "outcome", outcome)
		case repository.FetchFailed:
			log.Error("failed to fetch changes", "mirror", repo.Name(), "outcome", outcome)
		case repository.RemotesError:
			log.Error("failed to process remotes", "mirror", repo.Name(), "outcome", outcome)
		case repository.PushFailed:
			log.Error("failed to push", "mirror", repo.Name(), "outcome", outcome)
		}

		if outcome != repository.Success {
			success = false
		}
	}

	return success, nil
}

// mirror runs mirror sequence of the repo with configured timeout
func (w *Workspace) mirror(ctx context.Context, config string, repo *repository.Repository) repository.Outcome {
	start := time.Now()

	mCtx, cancel := ctx, context.CancelFunc(func() {})
	if w.mirrorTimeout > 0 {
		mCtx, cancel = context.WithTimeout(ctx, w.mirrorTimeout)
	}
	defer cancel()

	outcome := repo.Mirror(mCtx)
	recordMirror(config, repo.Name(), outcome, start)

	return outcome
}
