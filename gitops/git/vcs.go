package git

import "context"

// VCS is the set of working-tree operations a deployment
// runs. Every method returns a non-nil error when the
// underlying command fails; the error wraps an
// *exec.CommandError carrying the command output.
type VCS interface {
	// HasRepository reports whether version-control
	// metadata already exists.
	HasRepository() (bool, error)
	Init(ctx context.Context) error
	Status(ctx context.Context) ([]StatusEntry, error)
	SetConfig(ctx context.Context, key, value string) error
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Remotes(ctx context.Context) ([]string, error)
	AddRemote(ctx context.Context, name, url string) error
	SetRemoteURL(ctx context.Context, name, url string) error
	RenameBranch(ctx context.Context, name string) error
	Push(ctx context.Context, opts PushOptions) error
}

// PushOptions controls a single push.
type PushOptions struct {
	Remote string
	Branch string
	// SetUpstream records Remote/Branch as the
	// tracking branch (-u).
	SetUpstream bool
	// Force overwrites the remote branch (-f).
	Force bool
	// Auth is presented to the remote for this push
	// only. The zero value pushes without credentials.
	Auth BasicAuth
}
