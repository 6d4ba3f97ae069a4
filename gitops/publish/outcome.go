package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/pages_deploy/gitops/exec"
	"github.com/byte4ever/pages_deploy/gitops/git"
)

// Status summarises how a deployment ended.
type Status string

const (
	// StatusPublished means changes were committed
	// and pushed.
	StatusPublished Status = "published"
	// StatusUpToDate means there was nothing to
	// commit.
	StatusUpToDate Status = "up-to-date"
	// StatusFailed means the deployment stopped on
	// an error.
	StatusFailed Status = "failed"
)

// Outcome is the single result of a deployment.
type Outcome struct {
	Success bool   `json:"success"`
	Status  Status `json:"status"`
	// Message is human-readable and safe to show.
	Message string `json:"message"`
	// URL is the public site address on success.
	URL string `json:"url,omitempty"`
	// Provisioned tells whether the remote repository
	// was created or already there.
	Provisioned git.Provisioned `json:"provisioned,omitempty"`
	// Err is the failure cause, nil on success.
	Err error `json:"-"`
}

// failure builds the Outcome for err.
func failure(err error, prov git.Provisioned) Outcome {
	return Outcome{
		Status:      StatusFailed,
		Message:     describe(err),
		Provisioned: prov,
		Err:         err,
	}
}

// describe turns err into the message shown to the user.
// Command failures surface git's own output verbatim.
func describe(err error) string {
	var (
		cmdErr *exec.CommandError
		svcErr *git.ServiceError
	)

	switch {
	case errors.Is(err, ErrValidation):
		return err.Error()

	case errors.Is(err, ErrBusy):
		return err.Error()

	case errors.Is(err, ErrProvisioning):
		if errors.As(err, &svcErr) {
			return "could not create repository: " +
				svcErr.Message
		}

		return "could not create repository: " + err.Error()

	case errors.As(err, &cmdErr):
		out := strings.TrimSpace(cmdErr.Output)
		if out == "" {
			out = cmdErr.Err.Error()
		}

		return fmt.Sprintf("git error:\n%s", out)

	default:
		return fmt.Sprintf("unexpected error:\n%v", err)
	}
}

// redact replaces every occurrence of secret in msg.
func redact(msg string, secret string) string {
	if secret == "" {
		return msg
	}

	return strings.ReplaceAll(msg, secret, "***")
}
