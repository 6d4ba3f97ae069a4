package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/pages_deploy/gitops/exec"
)

// Repo is a local working tree driven through the git
// binary. It implements VCS.
type Repo struct {
	// Dir is the filesystem location of the working
	// tree.
	Dir string
	// GitCmd is the git binary name or path; empty
	// means "git".
	GitCmd string
}

var _ VCS = (*Repo)(nil)

// Open returns a Repo for dir. No command is run.
func Open(dir string) *Repo {
	return &Repo{Dir: dir}
}

// HasRepository reports whether dir already holds a .git
// directory or file.
func (r *Repo) HasRepository() (bool, error) {
	const errCtx = "checking for repository"

	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("%s: %w", errCtx, err)
}

// Init creates an empty repository in Dir.
func (r *Repo) Init(ctx context.Context) error {
	const errCtx = "initializing repository"

	if _, err := r.run(ctx, nil, "init"); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Status returns the pending working-tree changes. An
// empty slice means the tree is clean.
func (r *Repo) Status(
	ctx context.Context,
) ([]StatusEntry, error) {
	const errCtx = "querying status"

	out, err := r.run(ctx, nil, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return ParseStatus(out), nil
}

// SetConfig sets a repository-local config value.
func (r *Repo) SetConfig(
	ctx context.Context,
	key string,
	value string,
) error {
	const errCtx = "setting config"

	if _, err := r.run(
		ctx, nil, "config", key, value,
	); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, key, err)
	}

	return nil
}

// AddAll stages every file in the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	const errCtx = "staging files"

	if _, err := r.run(ctx, nil, "add", "."); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Commit records the staged changes.
func (r *Repo) Commit(
	ctx context.Context,
	message string,
) error {
	const errCtx = "committing"

	if _, err := r.run(
		ctx, nil, "commit", "-m", message,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Remotes lists the configured remote names.
func (r *Repo) Remotes(
	ctx context.Context,
) ([]string, error) {
	const errCtx = "listing remotes"

	out, err := r.run(ctx, nil, "remote")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var names []string

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return names, nil
}

// AddRemote registers a new remote.
func (r *Repo) AddRemote(
	ctx context.Context,
	name string,
	url string,
) error {
	const errCtx = "adding remote"

	if _, err := r.run(
		ctx, nil, "remote", "add", name, url,
	); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, name, err)
	}

	return nil
}

// SetRemoteURL points an existing remote at url.
func (r *Repo) SetRemoteURL(
	ctx context.Context,
	name string,
	url string,
) error {
	const errCtx = "updating remote"

	if _, err := r.run(
		ctx, nil, "remote", "set-url", name, url,
	); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, name, err)
	}

	return nil
}

// RenameBranch renames the current branch, overwriting
// any existing branch with that name.
func (r *Repo) RenameBranch(
	ctx context.Context,
	name string,
) error {
	const errCtx = "renaming branch"

	if _, err := r.run(
		ctx, nil, "branch", "-M", name,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Push sends opts.Branch to opts.Remote. Credentials in
// opts.Auth are handed to git through its environment.
func (r *Repo) Push(
	ctx context.Context,
	opts PushOptions,
) error {
	const errCtx = "pushing"

	args := []string{"push"}

	if opts.Force {
		args = append(args, "-f")
	}

	if opts.SetUpstream {
		args = append(args, "-u")
	}

	args = append(args, opts.Remote, opts.Branch)

	if _, err := r.run(
		ctx, opts.Auth.env(), args...,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// run executes git in Dir with terminal prompts
// disabled.
func (r *Repo) run(
	ctx context.Context,
	env []string,
	args ...string,
) (string, error) {
	gitCmd := r.GitCmd
	if gitCmd == "" {
		gitCmd = "git"
	}

	env = append([]string{"GIT_TERMINAL_PROMPT=0"}, env...)

	return exec.ExEnv(ctx, r.Dir, env, gitCmd, args...)
}
