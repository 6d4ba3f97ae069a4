package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/pages_deploy/gitops/git"
)

var (
	// ErrValidation marks a request rejected before
	// any network or version-control activity.
	ErrValidation = errors.New("invalid request")
	// ErrProvisioning marks a failure to ensure the
	// remote repository exists.
	ErrProvisioning = errors.New("provisioning failed")
	// ErrBusy is returned when a deployment of the
	// same folder is already running.
	ErrBusy = errors.New("deployment already running")
	// ErrUnexpected wraps failures that are neither
	// validation, provisioning nor command errors.
	ErrUnexpected = errors.New("unexpected error")
)

// Request is one user-initiated deployment.
type Request struct {
	// Dir is the site folder.
	Dir string
	// Account is the hosting account name.
	Account string
	// Token is the personal access token. It is
	// never logged.
	Token string
}

// LogValue omits the token.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", r.Dir),
		slog.String("account", r.Account),
		slog.Bool("token_set", r.Token != ""),
	)
}

// Validate checks the required inputs and that Dir is a
// folder containing marker. It touches nothing but the
// local filesystem.
func (r Request) Validate(marker string) error {
	var missing []string

	if strings.TrimSpace(r.Dir) == "" {
		missing = append(missing, "folder")
	}

	if strings.TrimSpace(r.Account) == "" {
		missing = append(missing, "account")
	}

	if strings.TrimSpace(r.Token) == "" {
		missing = append(missing, "token")
	}

	if len(missing) > 0 {
		return fmt.Errorf(
			"%w: missing %s",
			ErrValidation, strings.Join(missing, ", "),
		)
	}

	fi, err := os.Stat(r.Dir)
	if err != nil {
		return fmt.Errorf(
			"%w: folder %s: %w", ErrValidation, r.Dir, err,
		)
	}

	if !fi.IsDir() {
		return fmt.Errorf(
			"%w: %s is not a folder", ErrValidation, r.Dir,
		)
	}

	mi, err := os.Stat(filepath.Join(r.Dir, marker))
	if err != nil || mi.IsDir() {
		return fmt.Errorf(
			"%w: folder must contain %q", ErrValidation, marker,
		)
	}

	return nil
}

// auth returns the push credentials for r.
func (r Request) auth() git.BasicAuth {
	return git.BasicAuth{
		Username: r.Account,
		Password: r.Token,
	}
}
