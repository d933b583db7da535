// Package gittest provides a scripted in-memory git Runner for tests.
package gittest

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/utilitywarehouse/git-pushmirror/repository"
)

// Call is a recorded git invocation
type Call struct {
	Envs []string
	Dir  string
	Args []string
}

// HasPrefix returns true if call's args start with given args
func (c Call) HasPrefix(args ...string) bool {
	return len(c.Args) >= len(args) && slices.Equal(c.Args[:len(args)], args)
}

func (c Call) String() string {
	return c.Dir + ": git " + strings.Join(c.Args, " ")
}

// Runner pretends to be git. Successful clones create the mirror directory
// on disk, remotes, their fetch refspecs and remote tracking refs are kept
// in memory per repository directory. Like git, a push to a remote with a
// fetch refspec creates tracking refs of that remote.
// Fail can be set to make any call fail.
type Runner struct {
	Calls []Call
	Fail  func(c Call) bool

	remotes    map[string]map[string]string
	fetchSpecs map[string]map[string]string
	refs       map[string]map[string]bool
}

// NewRunner returns Runner where every command succeeds
func NewRunner() *Runner {
	return &Runner{}
}

// TrackedBranch is the branch a push creates tracking ref for
const TrackedBranch = "main"

// FailureOutput is the stderr returned by scripted failures
const FailureOutput = "fatal: scripted failure"

func (f *Runner) Run(_ context.Context, envs []string, dir string, args ...string) repository.CmdResult {
	c := Call{Envs: envs, Dir: dir, Args: args}
	f.Calls = append(f.Calls, c)

	if f.Fail != nil && f.Fail(c) {
		return failed(FailureOutput)
	}

	switch {
	case c.HasPrefix("clone", "--mirror") && len(args) == 4:
		if err := os.MkdirAll(filepath.Join(dir, args[3]), 0755); err != nil {
			return failed(err.Error())
		}
		return ok("")

	case c.HasPrefix("remote", "add") && len(args) == 4:
		if _, exists := f.remotes[dir][args[2]]; exists {
			return failed("error: remote " + args[2] + " already exists.")
		}
		f.SetRemote(dir, args[2], args[3])
		f.SetFetchRefspec(dir, args[2])
		return ok("")

	case c.HasPrefix("remote", "get-url") && len(args) == 3:
		url, exists := f.remotes[dir][args[2]]
		if !exists {
			return failed("error: No such remote '" + args[2] + "'")
		}
		return ok(url)

	case c.HasPrefix("remote", "set-url") && len(args) == 4:
		if _, exists := f.remotes[dir][args[2]]; !exists {
			return failed("error: No such remote '" + args[2] + "'")
		}
		f.SetRemote(dir, args[2], args[3])
		return ok("")

	case c.HasPrefix("remote") && len(args) == 1:
		var names []string
		for name := range f.remotes[dir] {
			names = append(names, name)
		}
		sort.Strings(names)
		return ok(strings.Join(names, "\n"))

	case c.HasPrefix("config", "--get-all") && len(args) == 3:
		spec, exists := f.fetchSpecs[dir][fetchKeyRemote(args[2])]
		if !exists {
			return failed("")
		}
		return ok(spec)

	case c.HasPrefix("config", "--unset-all") && len(args) == 3:
		remote := fetchKeyRemote(args[2])
		if _, exists := f.fetchSpecs[dir][remote]; !exists {
			return failed("")
		}
		delete(f.fetchSpecs[dir], remote)
		return ok("")

	case c.HasPrefix("for-each-ref", "--format=%(refname)") && len(args) == 3:
		return ok(strings.Join(f.refsWithPrefix(dir, args[2]), "\n"))

	case c.HasPrefix("update-ref", "-d") && len(args) == 3:
		delete(f.refs[dir], args[2])
		return ok("")

	case c.HasPrefix("push", "--mirror") && len(args) == 3:
		if _, exists := f.fetchSpecs[dir][args[2]]; exists {
			f.SetRef(dir, "refs/remotes/"+args[2]+"/"+TrackedBranch)
		}
		return ok("")
	}

	return ok("")
}

// SetRemote sets remote of the repository in given dir
func (f *Runner) SetRemote(dir, name, url string) {
	if f.remotes == nil {
		f.remotes = make(map[string]map[string]string)
	}
	if f.remotes[dir] == nil {
		f.remotes[dir] = make(map[string]string)
	}
	f.remotes[dir][name] = url
}

// SetFetchRefspec sets default fetch refspec on the remote of the repository in given dir
func (f *Runner) SetFetchRefspec(dir, name string) {
	if f.fetchSpecs == nil {
		f.fetchSpecs = make(map[string]map[string]string)
	}
	if f.fetchSpecs[dir] == nil {
		f.fetchSpecs[dir] = make(map[string]string)
	}
	f.fetchSpecs[dir][name] = "+refs/heads/*:refs/remotes/" + name + "/*"
}

// HasFetchRefspec returns true if remote of the repository in given dir has fetch refspec
func (f *Runner) HasFetchRefspec(dir, name string) bool {
	_, exists := f.fetchSpecs[dir][name]
	return exists
}

// SetRef creates ref in the repository in given dir
func (f *Runner) SetRef(dir, ref string) {
	if f.refs == nil {
		f.refs = make(map[string]map[string]bool)
	}
	if f.refs[dir] == nil {
		f.refs[dir] = make(map[string]bool)
	}
	f.refs[dir][ref] = true
}

// Refs returns sorted refs of the repository in given dir
func (f *Runner) Refs(dir string) []string {
	return f.refsWithPrefix(dir, "")
}

func (f *Runner) refsWithPrefix(dir, prefix string) []string {
	var refs []string
	for ref := range f.refs[dir] {
		if strings.HasPrefix(ref, prefix) {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}

// fetchKeyRemote returns remote name from `remote.<name>.fetch` config key
func fetchKeyRemote(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, "remote."), ".fetch")
}

// Count returns number of calls whose args start with given args
func (f *Runner) Count(args ...string) int {
	var n int
	for _, c := range f.Calls {
		if c.HasPrefix(args...) {
			n++
		}
	}
	return n
}

// Commands returns dir and args of every call as strings
func (f *Runner) Commands() []string {
	var cmds []string
	for _, c := range f.Calls {
		cmds = append(cmds, c.String())
	}
	return cmds
}

// Reset forgets recorded calls, remotes are kept
func (f *Runner) Reset() {
	f.Calls = nil
}

func ok(out string) repository.CmdResult {
	return repository.CmdResult{Success: true, Output: out, Captured: true}
}

func failed(out string) repository.CmdResult {
	return repository.CmdResult{Success: false, Output: out, Captured: true}
}
