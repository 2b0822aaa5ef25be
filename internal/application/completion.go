package application

import (
	"context"
	"errors"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
)

// ErrCompletionTimeout is the reason recorded when a completion attempt loses
// the race against the task timeout.
var ErrCompletionTimeout = errors.New("task completion timed out")

// completionResult carries the settled completion call back to the race.
type completionResult struct {
	success bool
	err     error
}

// attemptCompletion races one completion call against the task timeout. The
// call runs under a context that is canceled as soon as the race is decided,
// so a timed-out request is aborted rather than left running.
func (s *FarmService) attemptCompletion(ctx context.Context, cred model.Credential, task model.Task) model.Outcome {
	attemptCtx, cancel := context.WithTimeout(ctx, s.settings.TaskTimeout)
	defer cancel()

	// Buffered so the goroutine never blocks if the timer wins.
	done := make(chan completionResult, 1)
	go func() {
		success, err := s.client.SubmitCompletion(attemptCtx, cred, task.ID)
		done <- completionResult{success: success, err: err}
	}()

	select {
	case res := <-done:
		return classifyCompletion(ctx, attemptCtx, res)
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return model.Outcome{Kind: model.OutcomeFailed, Reason: err.Error()}
		}
		return model.Outcome{Kind: model.OutcomeTimedOut, Reason: ErrCompletionTimeout.Error()}
	}
}

// classifyCompletion maps a settled completion call to an outcome. A call that
// failed after the attempt deadline fired lost the race too. Deadline errors
// from elsewhere, such as the HTTP client's own timeout, are plain failures.
func classifyCompletion(parent, attempt context.Context, res completionResult) model.Outcome {
	switch {
	case res.err != nil && parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded):
		return model.Outcome{Kind: model.OutcomeTimedOut, Reason: ErrCompletionTimeout.Error()}
	case res.err != nil:
		return model.Outcome{Kind: model.OutcomeFailed, Reason: res.err.Error()}
	case res.success:
		return model.Outcome{Kind: model.OutcomeSuccess}
	default:
		return model.Outcome{Kind: model.OutcomeRejected}
	}
}
