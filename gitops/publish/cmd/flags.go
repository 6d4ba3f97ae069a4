package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/byte4ever/pages_deploy/gitops/config"
	"github.com/byte4ever/pages_deploy/gitops/git"
	"github.com/byte4ever/pages_deploy/gitops/git/github"
	"github.com/byte4ever/pages_deploy/gitops/git/gitlab"
	"github.com/byte4ever/pages_deploy/gitops/publish"
)

// options is the resolved command line.
type options struct {
	settings config.Settings
	token    string
	json     bool
	verbose  bool
}

// tokenEnv lists the variables searched for a token when
// -token is not given, per platform.
var tokenEnv = map[string][]string{
	config.PlatformGitHub: {"PAGES_DEPLOY_TOKEN", "GITHUB_TOKEN"},
	config.PlatformGitLab: {"PAGES_DEPLOY_TOKEN", "GITLAB_TOKEN"},
}

// parseFlags resolves settings as defaults < config file
// < flags. Only flags present on the command line
// override the file.
//
//nolint:funlen // CLI flag setup is inherently long
func parseFlags(
	args []string,
	getenv func(string) string,
) (options, error) {
	const errCtx = "parsing flags"

	fs := flag.NewFlagSet("pages_deploy", flag.ContinueOnError)

	cfgPath := fs.String(
		"config", "",
		"YAML settings file",
	)

	// Required inputs.
	dir := fs.String(
		"dir", "",
		"Site folder; must contain the marker file",
	)
	account := fs.String(
		"user", "",
		"Hosting account name",
	)
	token := fs.String(
		"token", "",
		"Personal access token (default from "+
			"PAGES_DEPLOY_TOKEN, GITHUB_TOKEN or GITLAB_TOKEN)",
	)

	// Site flags.
	platform := fs.String(
		"platform", "",
		"Hosting platform: github or gitlab",
	)
	repo := fs.String(
		"repo", "",
		"Repository name",
	)
	description := fs.String(
		"description", "",
		"Repository description",
	)
	marker := fs.String(
		"marker", "",
		"File that must exist in the site folder",
	)
	branch := fs.String(
		"branch", "",
		"Published branch",
	)
	message := fs.String(
		"message", "",
		"Commit message; {account}, {repo} and {branch} "+
			"are substituted",
	)
	force := fs.Bool(
		"force", false,
		"Overwrite the remote branch",
	)
	pagesHost := fs.String(
		"pages_host", "",
		"Pages domain of a self-hosted platform",
	)

	// Platform-specific flags.
	ghEnterprise := fs.String(
		"github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)
	ghOrg := fs.String(
		"github_org", "",
		"GitHub organisation owning the repository",
	)
	glHost := fs.String(
		"gitlab_host", "",
		"GitLab instance URL",
	)

	// Output flags.
	asJSON := fs.Bool("json", false, "Print the outcome as JSON")
	verbose := fs.Bool("v", false, "Log command output")

	if err := fs.Parse(args); err != nil {
		return options{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if fs.NArg() > 0 {
		return options{}, fmt.Errorf(
			"%s: unexpected arguments %v", errCtx, fs.Args(),
		)
	}

	st, err := config.Load(*cfgPath)
	if err != nil {
		return options{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	str := func(name string, dst *string, val string) {
		if set[name] {
			*dst = val
		}
	}

	str("dir", &st.Dir, *dir)
	str("user", &st.Account, *account)
	str("platform", &st.Platform, *platform)
	str("repo", &st.Repo, *repo)
	str("description", &st.Description, *description)
	str("marker", &st.MarkerFile, *marker)
	str("branch", &st.Branch, *branch)
	str("message", &st.CommitMessage, *message)
	str("pages_host", &st.PagesHost, *pagesHost)
	str("github_enterprise_host", &st.GitHub.EnterpriseHost, *ghEnterprise)
	str("github_org", &st.GitHub.Org, *ghOrg)
	str("gitlab_host", &st.GitLab.Host, *glHost)

	if set["force"] {
		st.Force = *force
	}

	if err := st.Validate(); err != nil {
		return options{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	tok := *token
	for _, name := range tokenEnv[st.Platform] {
		if tok != "" {
			break
		}

		tok = getenv(name)
	}

	return options{
		settings: st,
		token:    tok,
		json:     *asJSON,
		verbose:  *verbose,
	}, nil
}

// errNoToken means the platform client was not built for
// lack of a token. Run reports the missing token itself.
var errNoToken = errors.New("no token")

// newSequencer builds the provisioner and platform for
// opts.settings.Platform. Pattern: Factory -- selects
// platform implementation at runtime.
func newSequencer(opts options) (*publish.Sequencer, error) {
	const errCtx = "creating sequencer"

	prov, platform, err := newProvisioner(opts)
	if err != nil && !errors.Is(err, errNoToken) {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if prov == nil {
		// Never called: Run rejects a missing token first.
		prov = git.ProvisionerFunc(
			func(_ context.Context, _ string) (git.Provisioned, error) {
				return 0, errNoToken
			},
		)
	}

	st := opts.settings

	sq, err := publish.New(publish.Config{
		Repo:          st.Repo,
		MarkerFile:    st.MarkerFile,
		Branch:        st.Branch,
		CommitMessage: st.CommitMessage,
		Force:         st.Force,
		Platform:      platform,
		Owner:         repoOwner(st),
		Provisioner:   prov,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return sq, nil
}

// repoOwner returns the organisation the repository is
// created under, empty when it belongs to the account.
func repoOwner(st config.Settings) string {
	if st.Platform == config.PlatformGitHub {
		return st.GitHub.Org
	}

	return ""
}

// newProvisioner returns the platform client and hosting
// description for the configured platform.
func newProvisioner(
	opts options,
) (git.Provisioner, git.Platform, error) {
	const errCtx = "creating provisioner"

	st := opts.settings

	switch st.Platform {
	case config.PlatformGitHub:
		cfg := github.Config{
			Repo:           st.Repo,
			Description:    st.Description,
			AccessToken:    opts.token,
			Org:            st.GitHub.Org,
			EnterpriseHost: st.GitHub.EnterpriseHost,
		}

		platform := github.Platform(cfg, st.PagesHost)

		if opts.token == "" {
			return nil, platform, errNoToken
		}

		p, err := github.NewProvisioner(cfg)
		if err != nil {
			return nil, platform, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, platform, nil

	case config.PlatformGitLab:
		cfg := gitlab.Config{
			Host:        st.GitLab.Host,
			Repo:        st.Repo,
			Description: st.Description,
			AccessToken: opts.token,
		}

		platform, err := gitlab.Platform(cfg, st.PagesHost)
		if err != nil {
			return nil, git.Platform{}, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if opts.token == "" {
			return nil, platform, errNoToken
		}

		p, err := gitlab.NewProvisioner(cfg)
		if err != nil {
			return nil, platform, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, platform, nil

	default:
		return nil, git.Platform{}, fmt.Errorf(
			"%s: unknown platform %q", errCtx, st.Platform,
		)
	}
}
