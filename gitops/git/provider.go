package git

import (
	"context"
	"errors"
	"fmt"
)

// Pattern: Strategy -- swap hosting platform without
// changing the deployment sequence.

// Provisioned is the result of a successful Provision.
type Provisioned int

const (
	// Created means the repository did not exist and
	// was created by this call.
	Created Provisioned = iota + 1
	// AlreadyExists means the repository was already
	// there. It is not an error.
	AlreadyExists
)

// String returns a human-readable description.
func (p Provisioned) String() string {
	switch p {
	case Created:
		return "repository created"
	case AlreadyExists:
		return "repository already exists"
	default:
		return "not provisioned"
	}
}

// MarshalText encodes the result for JSON output.
func (p Provisioned) MarshalText() ([]byte, error) {
	switch p {
	case Created:
		return []byte("created"), nil
	case AlreadyExists:
		return []byte("exists"), nil
	default:
		return []byte(""), nil
	}
}

// Provisioner ensures a repository exists on a hosting
// platform under the given account.
type Provisioner interface {
	Provision(
		ctx context.Context,
		account string,
	) (Provisioned, error)
}

// ProvisionerFunc adapts a plain function to the
// Provisioner interface. An empty account is rejected
// before the function is called.
type ProvisionerFunc func(
	ctx context.Context,
	account string,
) (Provisioned, error)

// ErrEmptyAccount is returned when no account is given.
var ErrEmptyAccount = errors.New("account must be set")

// Provision delegates to the wrapped function.
func (f ProvisionerFunc) Provision(
	ctx context.Context,
	account string,
) (Provisioned, error) {
	if account == "" {
		return 0, ErrEmptyAccount
	}

	return f(ctx, account)
}

// UnknownServiceError is the message used when a hosting
// service refuses a request without explaining why.
const UnknownServiceError = "unknown error"

// ServiceError is a request the hosting service answered
// with an error status.
type ServiceError struct {
	StatusCode int
	// Message is the reason reported by the service,
	// or UnknownServiceError.
	Message string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf(
		"service returned %d: %s", e.StatusCode, e.Message,
	)
}

// NewServiceError builds a ServiceError, substituting
// UnknownServiceError for an empty message.
func NewServiceError(status int, msg string) *ServiceError {
	if msg == "" {
		msg = UnknownServiceError
	}

	return &ServiceError{StatusCode: status, Message: msg}
}
