package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/pages_deploy/gitops/git"
)

// Config holds the settings needed to create a GitHub
// repository provisioner.
type Config struct {
	// Repo is the repository name (without owner).
	Repo string
	// Description is the repository description.
	Description string
	// AccessToken is a personal access token used
	// for authentication.
	AccessToken string
	// Org is an optional organisation to create the
	// repository in. Leave empty to create it for the
	// authenticated user.
	Org string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// APIURL overrides the REST API base URL. Mostly
	// useful for tests and proxies.
	APIURL string
}

// Provisioner creates the site repository on GitHub.
//
// Pattern: Strategy -- implements git.Provisioner.
type Provisioner struct {
	client      *gh.Client
	repo        string
	description string
	org         string
}

// NewProvisioner validates cfg and returns a Provisioner
// ready to create repositories.
func NewProvisioner(cfg Config) (*Provisioner, error) {
	const errCtx = "creating github provisioner"

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	if cfg.EnterpriseHost != "" {
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	if cfg.APIURL != "" {
		apiURL := cfg.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}

		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: api url: %w", errCtx, err,
			)
		}

		client.BaseURL = u
	}

	return &Provisioner{
		client:      client,
		repo:        cfg.Repo,
		description: cfg.Description,
		org:         cfg.Org,
	}, nil
}

// Platform returns the hosting platform matching cfg:
// github.com, or the enterprise host with pagesHost as
// its pages domain.
func Platform(cfg Config, pagesHost string) git.Platform {
	if cfg.EnterpriseHost == "" {
		return git.GitHub
	}

	return git.Platform{
		Name:          "github",
		GitHost:       cfg.EnterpriseHost,
		PagesHost:     pagesHost,
		NoReplyDomain: "users.noreply." + cfg.EnterpriseHost,
	}
}

// Provision creates a public, auto-initialised repository.
// A 422 answer whose errors say the name is taken means
// the repository already exists and is not an error. Any
// other refusal is returned as a *git.ServiceError
// carrying GitHub's message.
func (p *Provisioner) Provision(
	ctx context.Context,
	account string,
) (git.Provisioned, error) {
	const errCtx = "creating github repository"

	if account == "" {
		return 0, fmt.Errorf(
			"%s: %w", errCtx, git.ErrEmptyAccount,
		)
	}

	repo := &gh.Repository{
		Name:        gh.Ptr(p.repo),
		Description: gh.Ptr(p.description),
		Private:     gh.Ptr(false),
		AutoInit:    gh.Ptr(true),
	}

	created, _, err := p.client.Repositories.Create(
		ctx, p.org, repo,
	)
	if err == nil {
		slog.Info(
			"created repository",
			"account", account,
			"url", created.GetHTMLURL(),
		)

		return git.Created, nil
	}

	var errResp *gh.ErrorResponse
	if !errors.As(err, &errResp) {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	status := 0
	if errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	if status == http.StatusUnprocessableEntity &&
		nameTaken(errResp) {
		slog.Info(
			"reusing existing repository",
			"account", account,
			"repo", p.repo,
		)

		return git.AlreadyExists, nil
	}

	slog.Warn(
		"github refused repository creation",
		"status", status,
		"message", errResp.Message,
		"errors", errResp.Errors,
	)

	return 0, fmt.Errorf(
		"%s: %w",
		errCtx, git.NewServiceError(status, errResp.Message),
	)
}

// nameTaken reports whether a validation failure is the
// "name already exists on this account" case rather than
// some other invalid field.
func nameTaken(errResp *gh.ErrorResponse) bool {
	for _, e := range errResp.Errors {
		if e.Field == "name" &&
			strings.Contains(
				strings.ToLower(e.Message), "already exists",
			) {
			return true
		}
	}

	return false
}
