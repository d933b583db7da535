package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/utilitywarehouse/git-pushmirror/giturl"
)

// MirrorRemoteName is the name of the remote pointing at the destination.
// it is added once to the local mirror and reused for every push.
const MirrorRemoteName = "mirror"

const (
	mirrorFetchKey     = "remote." + MirrorRemoteName + ".fetch"
	mirrorTrackingRefs = "refs/remotes/" + MirrorRemoteName + "/"
)

// Repository represents the local mirror of the given source and its destination.
// A Repository is not safe for concurrent use, mirrors sharing a directory must
// not be run at the same time.
type Repository struct {
	name        string // name of the mirror dir under root
	source      string // remote repo to mirror
	destination string // remote to push mirror to
	root        string // path to the dir where mirror dir is created
	dir         string // path to the mirror dir
	auth        Auth   // credentials for source and destination
	runner      Runner
	log         *slog.Logger
}

// New creates new repository from the given config. root is the directory
// the mirror clone will be created in, it must exist before Mirror is called.
// Nothing is run until Mirror() is called.
func New(conf Config, root string, runner Runner, log *slog.Logger) (*Repository, error) {
	var errs []error

	if conf.Name == "" {
		errs = append(errs, fmt.Errorf("mirror name cannot be empty"))
	}
	if strings.TrimSpace(conf.Source) == "" {
		errs = append(errs, fmt.Errorf("mirror '%s' source url cannot be empty", conf.Name))
	}
	if strings.TrimSpace(conf.Destination) == "" {
		errs = append(errs, fmt.Errorf("mirror '%s' destination url cannot be empty", conf.Name))
	}
	if root == "" {
		errs = append(errs, fmt.Errorf("mirror '%s' root cannot be empty", conf.Name))
	}
	if runner == nil {
		errs = append(errs, fmt.Errorf("git runner is required"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Repository{
		name:        conf.Name,
		source:      conf.Source,
		destination: conf.Destination,
		root:        root,
		dir:         filepath.Join(root, conf.Name),
		auth:        conf.Auth,
		runner:      runner,
		log:         log.With("mirror", conf.Name),
	}, nil
}

// Name returns name of the mirror
func (r *Repository) Name() string {
	return r.name
}

// Directory returns path of the local mirror clone
func (r *Repository) Directory() string {
	return r.dir
}

// Mirror will run mirror sequence of the repository
//  1. clone source if mirror dir doesn't exists or fetch if it does
//  2. ensure push only "mirror" remote pointing at destination
//  3. push --mirror to destination
//
// The first failing stage is returned, later stages are not run.
func (r *Repository) Mirror(ctx context.Context) Outcome {
	if r.exists() {
		r.log.Log(ctx, -8, "mirror directory exists, fetching", "path", r.dir)
		// git fetch
		if !r.check(r.runner.Run(ctx, r.authEnv(r.source), r.dir, "fetch")) {
			return FetchFailed
		}
	} else {
		r.log.Info("mirror directory does not exist, cloning", "path", r.dir, "src", giturl.Redact(r.source))
		// git clone --mirror <src> <name>
		if !r.check(r.runner.Run(ctx, r.authEnv(r.source), r.root, "clone", "--mirror", r.source, r.name)) {
			return CloneFailed
		}
	}

	if !r.ensureMirrorRemote(ctx) {
		return RemotesError
	}

	// git push --mirror mirror
	if !r.check(r.runner.Run(ctx, r.authEnv(r.destination), r.dir, "push", "--mirror", MirrorRemoteName)) {
		return PushFailed
	}

	return Success
}

// exists returns true if mirror dir exists. its existence is the only
// signal used to decide between clone and fetch
func (r *Repository) exists() bool {
	fi, err := os.Stat(r.dir)
	return err == nil && fi.IsDir()
}

// remotes returns names of the configured remotes
func (r *Repository) remotes(ctx context.Context) ([]string, bool) {
	// git remote
	res := r.runner.Run(ctx, nil, r.dir, "remote")
	if !r.check(res) || !res.Captured {
		return nil, false
	}
	return strings.Fields(res.Output), true
}

// ensureMirrorRemote makes sure "mirror" remote exists, points at the
// destination and is push only. existing remote is never re-added.
func (r *Repository) ensureMirrorRemote(ctx context.Context) bool {
	remotes, ok := r.remotes(ctx)
	if !ok {
		return false
	}

	if !slices.Contains(remotes, MirrorRemoteName) {
		r.log.Info("adding mirror remote", "dest", giturl.Redact(r.destination))
		// git remote add mirror <dest>
		if !r.check(r.runner.Run(ctx, nil, r.dir, "remote", "add", MirrorRemoteName, r.destination)) {
			return false
		}
		// without fetch refspec push doesn't create refs/remotes/mirror/* tracking
		// refs, which would otherwise be pushed to destination on next run
		// git config --unset-all remote.mirror.fetch
		return r.check(r.runner.Run(ctx, nil, r.dir, "config", "--unset-all", mirrorFetchKey))
	}

	// destination might have changed since remote was added
	// git remote get-url mirror
	res := r.runner.Run(ctx, nil, r.dir, "remote", "get-url", MirrorRemoteName)
	if !r.check(res) {
		return false
	}
	if !res.Captured || res.Output != r.destination {
		r.log.Info("updating mirror remote url", "dest", giturl.Redact(r.destination))
		// git remote set-url mirror <dest>
		if !r.check(r.runner.Run(ctx, nil, r.dir, "remote", "set-url", MirrorRemoteName, r.destination)) {
			return false
		}
	}

	return r.removeTrackingRefs(ctx)
}

// removeTrackingRefs removes fetch refspec of the mirror remote and all
// refs/remotes/mirror/* refs left behind by it so that they are not pushed
func (r *Repository) removeTrackingRefs(ctx context.Context) bool {
	// git config --get-all remote.mirror.fetch
	// exits non-zero if key doesn't exist
	res := r.runner.Run(ctx, nil, r.dir, "config", "--get-all", mirrorFetchKey)
	if res.Success && res.Output != "" {
		r.log.Info("removing fetch refspec of mirror remote", "refspec", res.Output)
		// git config --unset-all remote.mirror.fetch
		if !r.check(r.runner.Run(ctx, nil, r.dir, "config", "--unset-all", mirrorFetchKey)) {
			return false
		}
	}

	// git for-each-ref --format=%(refname) refs/remotes/mirror/
	res = r.runner.Run(ctx, nil, r.dir, "for-each-ref", "--format=%(refname)", mirrorTrackingRefs)
	if !r.check(res) || !res.Captured {
		return false
	}

	for _, ref := range strings.Fields(res.Output) {
		r.log.Log(ctx, -8, "removing mirror tracking ref", "ref", ref)
		// git update-ref -d <ref>
		if !r.check(r.runner.Run(ctx, nil, r.dir, "update-ref", "-d", ref)) {
			return false
		}
	}

	return true
}

// check logs git output if command failed and returns result's success
func (r *Repository) check(res CmdResult) bool {
	if res.Success {
		return true
	}
	if res.Captured && res.Output != "" {
		r.log.Error("git command failed", "output", res.Output)
	}
	return false
}
