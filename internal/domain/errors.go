package domain

import (
	"errors"
	"fmt"
)

// ErrType classifies errors so the session can show appropriate messages.
type ErrType int

const (
	ErrUnknown       ErrType = iota
	ErrNoKubeconfig          // kubeconfig file not found
	ErrBadKubeconfig         // kubeconfig is malformed
	ErrNoContext             // no current context set
	ErrUnreachable           // cluster not reachable (timeout/DNS)
	ErrTokenExpired          // 401 Unauthorized
	ErrForbidden             // 403 Forbidden
	ErrNotFound              // 404 Not Found
	ErrConflict              // 409 Conflict
	ErrRateLimited           // 429 Too Many Requests
	ErrServerError           // 500+
	ErrTLS                   // TLS/cert error
	ErrNotSupported          // kind lacks the capability
)

// ErrUnsupported is the sentinel wrapped by every "not supported" result.
var ErrUnsupported = errors.New("operation not supported")

// APIError wraps a backend error with classification.
type APIError struct {
	Type    ErrType
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unsupported builds the structured error returned when kind k lacks op.
func Unsupported(k Kind, op string) error {
	return &APIError{
		Type:    ErrNotSupported,
		Message: fmt.Sprintf("%s not supported for %s", op, k.Title()),
		Err:     ErrUnsupported,
	}
}

// IsUnsupported reports whether err is a "not supported" result.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
