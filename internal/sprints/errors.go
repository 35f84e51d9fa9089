package sprints

import (
	"errors"
	"fmt"

	"github.com/joescharf/adosprint/internal/devops"
)

var (
	// ErrNotConfigured means the server has no Azure DevOps organization or project.
	ErrNotConfigured = errors.New("Azure DevOps configuration is incomplete, contact the administrator")

	// ErrAuthRequired means the caller did not supply a PAT.
	ErrAuthRequired = errors.New("missing Authorization header, use: Authorization: Bearer YOUR_PAT")
)

// UpstreamError is a non-success response from Azure DevOps. StatusCode is
// forwarded to the caller and Detail carries the remote body.
type UpstreamError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string { return e.Detail }

func (e *UpstreamError) Unwrap() error { return e.Err }

// upstream converts a client error into an UpstreamError when Azure DevOps
// answered, or a wrapped transport error otherwise.
func upstream(msg string, err error) error {
	var se *devops.StatusError
	if errors.As(err, &se) {
		return &UpstreamError{
			StatusCode: se.StatusCode,
			Detail:     fmt.Sprintf("%s: %s", msg, se.Body),
			Err:        err,
		}
	}
	return fmt.Errorf("Azure DevOps API error: %w", err)
}
