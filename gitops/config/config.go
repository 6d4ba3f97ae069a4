package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Supported platform names.
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
)

const gitLabCom = "https://gitlab.com"

// Settings are the non-secret publisher settings.
type Settings struct {
	Platform      string `yaml:"platform"`
	Dir           string `yaml:"dir"`
	Account       string `yaml:"account"`
	Repo          string `yaml:"repo"`
	Description   string `yaml:"description"`
	MarkerFile    string `yaml:"marker_file"`
	Branch        string `yaml:"branch"`
	CommitMessage string `yaml:"commit_message"`
	Force         bool   `yaml:"force"`
	// PagesHost overrides the pages domain of
	// self-hosted platforms.
	PagesHost string `yaml:"pages_host"`

	GitHub GitHub `yaml:"github"`
	GitLab GitLab `yaml:"gitlab"`
}

// GitHub holds GitHub-specific settings.
type GitHub struct {
	EnterpriseHost string `yaml:"enterprise_host"`
	Org            string `yaml:"org"`
}

// GitLab holds GitLab-specific settings.
type GitLab struct {
	Host string `yaml:"host"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Platform:      PlatformGitHub,
		Repo:          "dashboard-suv",
		Description:   "Dashboard de SUVs México 2026",
		MarkerFile:    "index.html",
		Branch:        "main",
		CommitMessage: "Automatic dashboard update",
	}
}

// Load returns Default overlaid with the YAML file at
// path. An empty path returns Default. Unknown keys are
// rejected. Settings that flags may still supply, such as
// pages_host, are checked by Validate only.
func Load(path string) (Settings, error) {
	const errCtx = "loading config"

	st := Default()

	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		data, &st, yaml.DisallowUnknownField(),
	); err != nil {
		return Settings{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	if err := st.validateValues(); err != nil {
		return Settings{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return st, nil
}

// Validate checks values that cannot be defaulted. A
// self-hosted platform needs pages_host.
func (s Settings) Validate() error {
	if err := s.validateValues(); err != nil {
		return err
	}

	if s.SelfHosted() && s.PagesHost == "" {
		return fmt.Errorf(
			"pages_host must be set for self-hosted %s",
			s.Platform,
		)
	}

	return nil
}

// SelfHosted reports whether the platform is an
// enterprise or self-managed instance, which has no
// well-known pages domain.
func (s Settings) SelfHosted() bool {
	switch s.Platform {
	case PlatformGitHub:
		return s.GitHub.EnterpriseHost != ""
	case PlatformGitLab:
		return s.GitLab.Host != "" &&
			strings.TrimSuffix(s.GitLab.Host, "/") != gitLabCom
	default:
		return false
	}
}

func (s Settings) validateValues() error {
	switch s.Platform {
	case PlatformGitHub, PlatformGitLab:
	default:
		return fmt.Errorf(
			"unknown platform %q (want %s or %s)",
			s.Platform, PlatformGitHub, PlatformGitLab,
		)
	}

	if s.Repo == "" {
		return fmt.Errorf("repo must not be empty")
	}

	if s.MarkerFile == "" {
		return fmt.Errorf("marker_file must not be empty")
	}

	return nil
}
