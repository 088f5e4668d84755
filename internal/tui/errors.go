package tui

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

var getenv = os.Getenv

// errText renders a backend error for the status line.
func errText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Type {
	case domain.ErrForbidden:
		return "access denied: " + apiErr.Message
	case domain.ErrUnreachable:
		return "connection lost, showing cached data: " + apiErr.Message
	case domain.ErrRateLimited:
		return "rate limited, retry shortly"
	}
	return apiErr.Message
}

// pastTense turns a mutation verb into its status form.
func pastTense(verb string) string {
	switch {
	case verb == "delete":
		return "deleted"
	case verb == "restart":
		return "restarted"
	case strings.HasPrefix(verb, "scale"):
		return "scaled" + strings.TrimPrefix(verb, "scale")
	}
	return verb
}
