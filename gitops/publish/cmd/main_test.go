package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/pages_deploy/gitops/git"
)

func TestParseFlags_defaults(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags(
		[]string{"-dir", "/site", "-user", "alice"},
		env(map[string]string{"GITHUB_TOKEN": "ghp_env"}),
	)

	require.NoError(t, err)
	assert.Equal(t, "/site", opts.settings.Dir)
	assert.Equal(t, "alice", opts.settings.Account)
	assert.Equal(t, "github", opts.settings.Platform)
	assert.Equal(t, "dashboard-suv", opts.settings.Repo)
	assert.Equal(t, "ghp_env", opts.token)
}

func TestParseFlags_token_flag_wins(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags(
		[]string{"-token", "ghp_flag"},
		env(map[string]string{"GITHUB_TOKEN": "ghp_env"}),
	)

	require.NoError(t, err)
	assert.Equal(t, "ghp_flag", opts.token)
}

func TestParseFlags_gitlab_token_env(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags(
		[]string{"-platform", "gitlab"},
		env(map[string]string{
			"GITHUB_TOKEN": "ghp_env",
			"GITLAB_TOKEN": "glpat_env",
		}),
	)

	require.NoError(t, err)
	assert.Equal(t, "glpat_env", opts.token)
}

func TestParseFlags_flags_override_file(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"account: bob\nrepo: from-file\nforce: true\n",
	), 0o600))

	opts, err := parseFlags(
		[]string{"-config", path, "-repo", "from-flag"},
		env(nil),
	)

	require.NoError(t, err)
	assert.Equal(t, "bob", opts.settings.Account)
	assert.Equal(t, "from-flag", opts.settings.Repo)
	assert.True(t, opts.settings.Force)
}

func TestParseFlags_rejects_positional(t *testing.T) {
	t.Parallel()

	_, err := parseFlags([]string{"extra"}, env(nil))

	assert.ErrorContains(t, err, "unexpected arguments")
}

func TestParseFlags_rejects_platform(t *testing.T) {
	t.Parallel()

	_, err := parseFlags(
		[]string{"-platform", "bitbucket"}, env(nil),
	)

	assert.ErrorContains(t, err, "unknown platform")
}

func TestNewProvisioner_platforms(t *testing.T) {
	t.Parallel()

	gh, err := parseFlags([]string{"-token", "t"}, env(nil))
	require.NoError(t, err)

	_, platform, err := newProvisioner(gh)
	require.NoError(t, err)
	assert.Equal(t, git.GitHub, platform)

	gl, err := parseFlags(
		[]string{"-token", "t", "-platform", "gitlab"}, env(nil),
	)
	require.NoError(t, err)

	_, platform, err = newProvisioner(gl)
	require.NoError(t, err)
	assert.Equal(t, git.GitLab, platform)
}

func TestRepoOwner(t *testing.T) {
	t.Parallel()

	gh, err := parseFlags(
		[]string{"-user", "alice", "-github_org", "acme"}, env(nil),
	)
	require.NoError(t, err)
	assert.Equal(t, "acme", repoOwner(gh.settings))

	user, err := parseFlags([]string{"-user", "alice"}, env(nil))
	require.NoError(t, err)
	assert.Empty(t, repoOwner(user.settings))

	gl, err := parseFlags(
		[]string{"-platform", "gitlab", "-github_org", "acme"},
		env(nil),
	)
	require.NoError(t, err)
	assert.Empty(t, repoOwner(gl.settings))
}

func TestRun_missing_marker_prints_json(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ok, err := run(
		context.Background(),
		[]string{
			"-dir", t.TempDir(),
			"-user", "alice",
			"-token", "ghp_secret",
			"-json",
		},
		&buf,
		env(nil),
	)

	require.NoError(t, err)
	assert.False(t, ok)

	var got map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "failed", got["status"])
	assert.Contains(t, got["message"], "index.html")
	assert.NotContains(t, buf.String(), "ghp_secret")
}

func TestRun_missing_token_is_reported(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ok, err := run(
		context.Background(),
		[]string{"-dir", t.TempDir(), "-user", "alice"},
		&buf,
		env(nil),
	)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "missing token")
}

func TestParseFlags_pages_host_flag_completes_file(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"github:\n  enterprise_host: git.corp.example.com\n",
	), 0o600))

	opts, err := parseFlags(
		[]string{
			"-config", path,
			"-pages_host", "pages.corp.example.com",
		},
		env(nil),
	)

	require.NoError(t, err)
	assert.Equal(t, "pages.corp.example.com", opts.settings.PagesHost)
}

func TestRun_enterprise_needs_pages_host(t *testing.T) {
	t.Parallel()

	_, err := run(
		context.Background(),
		[]string{
			"-token", "t",
			"-github_enterprise_host", "git.corp.example.com",
		},
		&bytes.Buffer{},
		env(nil),
	)

	assert.ErrorContains(t, err, "pages_host must be set")
}

// env returns a getenv func backed by vars.
func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}
