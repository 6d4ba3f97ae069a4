package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/byte4ever/pages_deploy/gitops/commitmsg"
	"github.com/byte4ever/pages_deploy/gitops/git"
)

// Defaults applied by New to an empty Config field.
const (
	DefaultRepo       = "dashboard-suv"
	DefaultMarkerFile = "index.html"
	DefaultBranch     = "main"
	DefaultRemoteName = "origin"
)

// Config holds the settings shared by every deployment
// a Sequencer runs.
type Config struct {
	// Repo is the remote repository name.
	Repo string

	// MarkerFile must exist in the site folder
	// before anything else happens.
	MarkerFile string

	// Branch is the published branch.
	Branch string

	// RemoteName is the git remote pushed to.
	RemoteName string

	// CommitMessage is a commitmsg template; empty
	// means commitmsg.Default.
	CommitMessage string

	// Force overwrites the remote branch on push.
	Force bool

	// Platform locates the git host and pages host.
	Platform git.Platform

	// Owner is the organisation the Provisioner
	// creates the repository under. Empty means the
	// requesting account owns it.
	Owner string

	// Provisioner ensures the remote repository
	// exists.
	Provisioner git.Provisioner

	// NewVCS opens the working tree of a site
	// folder. Nil means git.Open.
	NewVCS func(dir string) git.VCS
}

// Sequencer runs deployments. It is safe for concurrent
// use; deployments of the same folder are serialised by
// rejection.
type Sequencer struct {
	cfg Config

	mu     sync.Mutex
	active map[string]struct{}
}

// New validates cfg, fills defaults and returns a
// Sequencer.
func New(cfg Config) (*Sequencer, error) {
	const errCtx = "creating sequencer"

	if cfg.Provisioner == nil {
		return nil, fmt.Errorf(
			"%s: provisioner must be set", errCtx,
		)
	}

	if cfg.Platform.GitHost == "" ||
		cfg.Platform.PagesHost == "" {
		return nil, fmt.Errorf(
			"%s: platform hosts must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}

	if cfg.MarkerFile == "" {
		cfg.MarkerFile = DefaultMarkerFile
	}

	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}

	if cfg.RemoteName == "" {
		cfg.RemoteName = DefaultRemoteName
	}

	if cfg.NewVCS == nil {
		cfg.NewVCS = func(dir string) git.VCS {
			return git.Open(dir)
		}
	}

	return &Sequencer{
		cfg:    cfg,
		active: make(map[string]struct{}),
	}, nil
}

// Start runs the deployment on a new goroutine. The
// returned channel yields exactly one Outcome and is then
// closed.
func (s *Sequencer) Start(
	ctx context.Context,
	req Request,
) <-chan Outcome {
	ch := make(chan Outcome, 1)

	go func() {
		defer close(ch)

		ch <- s.Run(ctx, req)
	}()

	return ch
}

// Run executes one deployment and reports its Outcome.
// It never panics; every failure ends in an Outcome with
// Success false and a message fit for the user.
func (s *Sequencer) Run(
	ctx context.Context,
	req Request,
) (out Outcome) {
	var prov git.Provisioned

	defer func() {
		if r := recover(); r != nil {
			slog.Error("deployment panicked", "panic", r)

			out = failure(
				fmt.Errorf("%w: %v", ErrUnexpected, r),
				prov,
			)
		}

		out.Message = redact(out.Message, req.Token)

		if out.Success {
			slog.Info(
				"deployment finished",
				"status", out.Status,
				"url", out.URL,
			)
		} else {
			slog.Error(
				"deployment failed",
				"error", redact(fmt.Sprint(out.Err), req.Token),
			)
		}
	}()

	slog.Info("deploying", "request", req)

	if err := req.Validate(s.cfg.MarkerFile); err != nil {
		return failure(err, 0)
	}

	release, err := s.acquire(req.Dir)
	if err != nil {
		return failure(err, 0)
	}
	defer release()

	return s.deploy(ctx, req, &prov)
}

// acquire marks dir as busy. The returned func releases
// it.
func (s *Sequencer) acquire(dir string) (func(), error) {
	key := folderKey(dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[key]; ok {
		return nil, fmt.Errorf("%w for %s", ErrBusy, dir)
	}

	s.active[key] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
	}, nil
}

// owner returns the namespace holding the repository.
func (s *Sequencer) owner(account string) string {
	if s.cfg.Owner != "" {
		return s.cfg.Owner
	}

	return account
}

// folderKey normalises dir so different spellings of the
// same folder share one lock.
func folderKey(dir string) string {
	if p, err := filepath.EvalSymlinks(dir); err == nil {
		dir = p
	}

	if p, err := filepath.Abs(dir); err == nil {
		return p
	}

	return filepath.Clean(dir)
}

// deploy runs the ordered steps. Any failure stops the
// sequence; nothing is rolled back. The provisioning
// result is stored in provisioned as soon as it is known.
func (s *Sequencer) deploy(
	ctx context.Context,
	req Request,
	provisioned *git.Provisioned,
) Outcome {
	// Step 1: Ensure the remote repository exists.
	prov, err := s.cfg.Provisioner.Provision(ctx, req.Account)
	if err != nil {
		return failure(
			fmt.Errorf("%w: %w", ErrProvisioning, err), 0,
		)
	}

	*provisioned = prov

	slog.Info(
		"repository ready",
		"result", prov,
		"owner", s.owner(req.Account),
		"repo", s.cfg.Repo,
	)

	vcs := s.cfg.NewVCS(req.Dir)

	// Step 2: Ensure a local repository.
	if err := s.ensureRepository(ctx, vcs); err != nil {
		return failure(err, prov)
	}

	// Step 3: Stop early when nothing changed.
	changes, err := vcs.Status(ctx)
	if err != nil {
		return failure(err, prov)
	}

	if len(changes) == 0 {
		slog.Info("working tree clean, nothing to publish")

		return Outcome{
			Success:     true,
			Status:      StatusUpToDate,
			Message:     "No changes. Everything is up to date.",
			Provisioned: prov,
		}
	}

	slog.Info("pending changes", "count", len(changes))

	for _, c := range changes {
		slog.Debug(
			"changed",
			"path", c.Path,
			"code", c.Code,
			"untracked", c.Untracked(),
		)
	}

	// Steps 4-7.
	if err := s.publish(ctx, vcs, req); err != nil {
		return failure(err, prov)
	}

	url := s.cfg.Platform.PagesURL(
		s.owner(req.Account), s.cfg.Repo,
	)

	return Outcome{
		Success: true,
		Status:  StatusPublished,
		Message: fmt.Sprintf(
			"Published successfully (%s).\nURL: %s", prov, url,
		),
		URL:         url,
		Provisioned: prov,
	}
}

// ensureRepository initialises the folder when it has no
// version-control metadata yet.
func (s *Sequencer) ensureRepository(
	ctx context.Context,
	vcs git.VCS,
) error {
	const errCtx = "ensuring local repository"

	ok, err := vcs.HasRepository()
	if err != nil {
		return fmt.Errorf(
			"%s: %w", errCtx, errors.Join(ErrUnexpected, err),
		)
	}

	if ok {
		return nil
	}

	if err := vcs.Init(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// publish configures the committer, commits everything,
// points the remote at the platform and pushes.
func (s *Sequencer) publish(
	ctx context.Context,
	vcs git.VCS,
	req Request,
) error {
	const errCtx = "publishing"

	// Step 4: Committer identity.
	if err := vcs.SetConfig(
		ctx, "user.name", req.Account,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := vcs.SetConfig(
		ctx, "user.email",
		s.cfg.Platform.CommitterEmail(req.Account),
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 5: Stage and commit.
	if err := vcs.AddAll(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	msg := commitmsg.Generate(
		s.cfg.CommitMessage,
		commitmsg.Vars{
			Account: req.Account,
			Repo:    s.cfg.Repo,
			Branch:  s.cfg.Branch,
		},
	)

	if err := vcs.Commit(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 6: Remote.
	if err := s.configureRemote(ctx, vcs, req); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 7: Branch and push.
	if err := vcs.RenameBranch(ctx, s.cfg.Branch); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := vcs.Push(ctx, git.PushOptions{
		Remote:      s.cfg.RemoteName,
		Branch:      s.cfg.Branch,
		SetUpstream: true,
		Force:       s.cfg.Force,
		Auth:        req.auth(),
	}); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// configureRemote adds the remote or updates its URL when
// it is already configured.
func (s *Sequencer) configureRemote(
	ctx context.Context,
	vcs git.VCS,
	req Request,
) error {
	const errCtx = "configuring remote"

	url := s.cfg.Platform.RemoteURL(
		s.owner(req.Account), s.cfg.Repo,
	)

	remotes, err := vcs.Remotes(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if slices.Contains(remotes, s.cfg.RemoteName) {
		err = vcs.SetRemoteURL(ctx, s.cfg.RemoteName, url)
	} else {
		err = vcs.AddRemote(ctx, s.cfg.RemoteName, url)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
