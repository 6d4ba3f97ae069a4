package gitlab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/pages_deploy/gitops/git"
)

const defaultHost = "https://gitlab.com"

// Config holds the settings needed to create a GitLab
// project provisioner.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the project name and path.
	Repo string
	// Description is the project description.
	Description string
	// AccessToken is a personal access token with the
	// api scope.
	AccessToken string
}

// Provisioner creates the site project on GitLab.
//
// Pattern: Strategy -- implements git.Provisioner.
type Provisioner struct {
	client      *gl.Client
	repo        string
	description string
}

// NewProvisioner validates cfg and returns a Provisioner
// ready to create projects.
func NewProvisioner(cfg Config) (*Provisioner, error) {
	const errCtx = "creating gitlab provisioner"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = defaultHost
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
		gl.WithCustomRetryMax(0),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Provisioner{
		client:      client,
		repo:        cfg.Repo,
		description: cfg.Description,
	}, nil
}

// Platform returns the hosting platform matching cfg:
// gitlab.com, or the self-managed host with pagesHost as
// its pages domain.
func Platform(cfg Config, pagesHost string) (git.Platform, error) {
	const errCtx = "resolving gitlab platform"

	if cfg.Host == "" || cfg.Host == defaultHost {
		return git.GitLab, nil
	}

	u, err := url.Parse(cfg.Host)
	if err != nil {
		return git.Platform{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if u.Host == "" {
		return git.Platform{}, fmt.Errorf(
			"%s: host %q has no hostname", errCtx, cfg.Host,
		)
	}

	return git.Platform{
		Name:          "gitlab",
		GitHost:       u.Host,
		PagesHost:     pagesHost,
		NoReplyDomain: "users.noreply." + u.Hostname(),
	}, nil
}

// Provision creates a public project initialised with a
// README. A 400 answer saying the name or path has
// already been taken means the project exists.
func (p *Provisioner) Provision(
	ctx context.Context,
	account string,
) (git.Provisioned, error) {
	const errCtx = "creating gitlab project"

	if account == "" {
		return 0, fmt.Errorf(
			"%s: %w", errCtx, git.ErrEmptyAccount,
		)
	}

	opts := gl.CreateProjectOptions{
		Name:                 gl.Ptr(p.repo),
		Path:                 gl.Ptr(p.repo),
		Description:          gl.Ptr(p.description),
		Visibility:           gl.Ptr(gl.PublicVisibility),
		InitializeWithReadme: gl.Ptr(true),
	}

	created, _, err := p.client.Projects.CreateProject(
		&opts, gl.WithContext(ctx),
	)
	if err == nil {
		slog.Info(
			"created project",
			"account", account,
			"url", created.WebURL,
		)

		return git.Created, nil
	}

	var errResp *gl.ErrorResponse
	if !errors.As(err, &errResp) {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	status := 0
	if errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	if status == http.StatusBadRequest &&
		strings.Contains(
			errResp.Message, "has already been taken",
		) {
		slog.Info(
			"reusing existing project",
			"account", account,
			"repo", p.repo,
		)

		return git.AlreadyExists, nil
	}

	slog.Warn(
		"gitlab refused project creation",
		"status", status,
		"message", errResp.Message,
	)

	return 0, fmt.Errorf(
		"%s: %w",
		errCtx, git.NewServiceError(status, errResp.Message),
	)
}
