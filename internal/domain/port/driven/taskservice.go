package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
)

// ErrEmptyCredential is returned when a TaskService call is made with an
// empty credential.
var ErrEmptyCredential = errors.New("credential is empty")

// ServiceError reports a failed TaskService call: a transport failure, a
// non-success HTTP status, or an undecodable response body.
type ServiceError struct {
	Op         string // Logical operation, e.g. "fetch account info".
	StatusCode int    // HTTP status, 0 when no response was received.
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// TaskService defines the driven port for the remote task service.
// All methods fail with *ServiceError and never retry.
type TaskService interface {
	FetchAccountInfo(ctx context.Context, credential model.Credential) (model.AccountInfo, error)
	// FetchTasks returns the tasks of the given group in service order.
	FetchTasks(ctx context.Context, credential model.Credential, group string) ([]model.Task, error)
	// SubmitCompletion marks a task as completed and returns the service's
	// success flag. Duplicate submissions are safe; the service owns the state.
	SubmitCompletion(ctx context.Context, credential model.Credential, taskID int64) (bool, error)
}
