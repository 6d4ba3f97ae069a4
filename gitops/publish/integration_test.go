package publish_test

import (
	"context"
	"os"
	oe "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/pages_deploy/gitops/git"
	"github.com/byte4ever/pages_deploy/gitops/publish"
)

// localRemote is a real git.Repo whose remote URL is
// redirected to a bare repository on disk.
type localRemote struct {
	*git.Repo

	bare string
}

func (l *localRemote) AddRemote(
	ctx context.Context,
	name string,
	_ string,
) error {
	return l.Repo.AddRemote(ctx, name, l.bare)
}

func (l *localRemote) SetRemoteURL(
	ctx context.Context,
	name string,
	_ string,
) error {
	return l.Repo.SetRemoteURL(ctx, name, l.bare)
}

func TestRun_real_git_publishes_then_is_up_to_date(
	t *testing.T,
) {
	t.Parallel()

	if _, err := oe.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	bare := t.TempDir()
	run(t, bare, "init", "--bare")

	dir := siteDir(t)

	//nolint:gosec // test file
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "app.js"), []byte("//\n"), 0o600,
	))

	sq, err := publish.New(publish.Config{
		Platform: git.GitHub,
		Provisioner: git.ProvisionerFunc(
			func(context.Context, string) (git.Provisioned, error) {
				return git.AlreadyExists, nil
			},
		),
		NewVCS: func(d string) git.VCS {
			return &localRemote{Repo: git.Open(d), bare: bare}
		},
	})
	require.NoError(t, err)

	req := publish.Request{Dir: dir, Account: "alice", Token: token}

	out := sq.Run(context.Background(), req)

	require.True(t, out.Success, out.Message)
	assert.Equal(t, publish.StatusPublished, out.Status)
	assert.Contains(
		t, out.Message, "https://alice.github.io/dashboard-suv/",
	)

	files := run(t, bare, "ls-tree", "--name-only", "main")
	assert.Contains(t, files, "index.html")
	assert.Contains(t, files, "app.js")

	author := run(t, bare, "log", "-1", "--pretty=%ae", "main")
	assert.Equal(
		t,
		"alice@users.noreply.github.com",
		strings.TrimSpace(author),
	)

	out = sq.Run(context.Background(), req)

	require.True(t, out.Success, out.Message)
	assert.Equal(t, publish.StatusUpToDate, out.Status)
}

// run executes git in dir and returns its output.
func run(tb testing.TB, dir string, args ...string) string {
	tb.Helper()

	//nolint:gosec // test helper
	cmd := oe.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		tb.Fatalf("git %v failed: %s: %v", args, out, err)
	}

	return string(out)
}
