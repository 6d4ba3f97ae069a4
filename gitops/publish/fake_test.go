package publish_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/byte4ever/pages_deploy/gitops/exec"
	"github.com/byte4ever/pages_deploy/gitops/git"
)

// fakeVCS records every call as a short string and fails
// the first call whose record starts with failOn.
type fakeVCS struct {
	mu sync.Mutex

	hasRepo bool
	status  []git.StatusEntry
	remotes []string
	failOn  string
	// block, when set, is received from before
	// Status returns.
	block chan struct{}

	calls []string
	push  git.PushOptions
	urls  []string
}

var _ git.VCS = (*fakeVCS)(nil)

func (f *fakeVCS) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)

	if f.failOn != "" && strings.HasPrefix(call, f.failOn) {
		return &exec.CommandError{
			Name:   "git",
			Args:   strings.Fields(call),
			Output: "fatal: " + call + " exploded",
			Err:    errors.New("exit status 128"),
		}
	}

	return nil
}

func (f *fakeVCS) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeVCS) HasRepository() (bool, error) {
	if err := f.record("has-repo"); err != nil {
		return false, err
	}

	return f.hasRepo, nil
}

func (f *fakeVCS) Init(_ context.Context) error {
	return f.record("init")
}

func (f *fakeVCS) Status(
	_ context.Context,
) ([]git.StatusEntry, error) {
	if f.block != nil {
		<-f.block
	}

	if err := f.record("status"); err != nil {
		return nil, err
	}

	return f.status, nil
}

func (f *fakeVCS) SetConfig(
	_ context.Context,
	key string,
	value string,
) error {
	return f.record("config " + key + " " + value)
}

func (f *fakeVCS) AddAll(_ context.Context) error {
	return f.record("add")
}

func (f *fakeVCS) Commit(
	_ context.Context,
	message string,
) error {
	return f.record("commit " + message)
}

func (f *fakeVCS) Remotes(
	_ context.Context,
) ([]string, error) {
	if err := f.record("remote"); err != nil {
		return nil, err
	}

	return f.remotes, nil
}

func (f *fakeVCS) AddRemote(
	_ context.Context,
	name string,
	url string,
) error {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	return f.record("remote add " + name)
}

func (f *fakeVCS) SetRemoteURL(
	_ context.Context,
	name string,
	url string,
) error {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	return f.record("remote set-url " + name)
}

func (f *fakeVCS) RenameBranch(
	_ context.Context,
	name string,
) error {
	return f.record("branch " + name)
}

func (f *fakeVCS) Push(
	_ context.Context,
	opts git.PushOptions,
) error {
	f.mu.Lock()
	f.push = opts
	f.mu.Unlock()

	return f.record("push " + opts.Remote + " " + opts.Branch)
}

// fakeProvisioner returns result/err and counts calls.
type fakeProvisioner struct {
	mu     sync.Mutex
	result git.Provisioned
	err    error
	calls  int
}

func (p *fakeProvisioner) Provision(
	_ context.Context,
	_ string,
) (git.Provisioned, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	return p.result, p.err
}

func (p *fakeProvisioner) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}
