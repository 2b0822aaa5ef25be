package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
)

// ErrPassNotFound indicates the requested pass does not exist in the journal.
var ErrPassNotFound = errors.New("pass not found")

// JournalStore defines the driven port for the pass/attempt audit trail.
// The account loop only writes to it; nothing read back influences processing.
type JournalStore interface {
	StartPass(ctx context.Context, pass model.Pass) error
	// FinishPass marks a pass as ended. errMsg is empty for a clean pass.
	// Returns ErrPassNotFound if the pass was never started.
	FinishPass(ctx context.Context, passID string, errMsg string) error
	RecordAttempt(ctx context.Context, attempt model.Attempt) error

	// ListPasses returns the most recent passes, newest first.
	ListPasses(ctx context.Context, limit int) ([]model.Pass, error)
	// ListAttempts returns the attempts of one pass in attempt order.
	// Returns ErrPassNotFound if the pass does not exist.
	ListAttempts(ctx context.Context, passID string) ([]model.Attempt, error)
}
