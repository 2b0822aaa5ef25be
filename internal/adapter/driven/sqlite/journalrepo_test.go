package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

func newTestJournal(t *testing.T, now time.Time) *JournalRepo {
	t.Helper()
	repo := NewJournalRepo(setupTestDB(t))
	repo.now = func() time.Time { return now }
	return repo
}

func TestJournalRepo_PassLifecycle(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)
	repo := newTestJournal(t, finished)
	ctx := context.Background()

	err := repo.StartPass(ctx, model.Pass{ID: "p1", Number: 1, AccountCount: 2, StartedAt: started})
	require.NoError(t, err)

	passes, err := repo.ListPasses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.False(t, passes[0].IsFinished())
	assert.True(t, started.Equal(passes[0].StartedAt))

	require.NoError(t, repo.FinishPass(ctx, "p1", ""))

	passes, err = repo.ListPasses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.True(t, passes[0].IsFinished())
	assert.True(t, finished.Equal(passes[0].FinishedAt))
	assert.Equal(t, 2, passes[0].AccountCount)
	assert.Empty(t, passes[0].Error)
}

func TestJournalRepo_FinishPassWithError(t *testing.T) {
	repo := newTestJournal(t, time.Now())
	ctx := context.Background()

	require.NoError(t, repo.StartPass(ctx, model.Pass{ID: "p1", Number: 1}))
	require.NoError(t, repo.FinishPass(ctx, "p1", "fetch account info: HTTP 401"))

	passes, err := repo.ListPasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, "fetch account info: HTTP 401", passes[0].Error)
}

func TestJournalRepo_FinishUnknownPass(t *testing.T) {
	repo := newTestJournal(t, time.Now())

	err := repo.FinishPass(context.Background(), "missing", "")
	assert.ErrorIs(t, err, driven.ErrPassNotFound)
}

func TestJournalRepo_ListPassesNewestFirstWithLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newTestJournal(t, base)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := repo.StartPass(ctx, model.Pass{
			ID:        "p" + string(rune('0'+i)),
			Number:    i,
			StartedAt: base.Add(time.Duration(i) * 15 * time.Minute),
		})
		require.NoError(t, err)
	}

	passes, err := repo.ListPasses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, "p3", passes[0].ID)
	assert.Equal(t, "p2", passes[1].ID)
}

func TestJournalRepo_ListPassesEmpty(t *testing.T) {
	repo := newTestJournal(t, time.Now())

	passes, err := repo.ListPasses(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, passes)
	assert.Empty(t, passes)
}

func TestJournalRepo_RecordAndListAttempts(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	repo := newTestJournal(t, at)
	ctx := context.Background()

	require.NoError(t, repo.StartPass(ctx, model.Pass{ID: "p1", Number: 1, AccountCount: 1}))

	attempts := []model.Attempt{
		{
			PassID: "p1", AccountNumber: 1, AccountName: "Alice", CredentialFingerprint: "abc123",
			TaskID: 1, TaskTitle: "Daily", Outcome: model.Outcome{Kind: model.OutcomeSuccess},
			Duration: 200 * time.Millisecond, AttemptedAt: at,
		},
		{
			PassID: "p1", AccountNumber: 1, AccountName: "Alice", CredentialFingerprint: "abc123",
			TaskID: 2, TaskTitle: "Follow", Outcome: model.Outcome{Kind: model.OutcomeFailed, Reason: "HTTP 500"},
			Duration: 30 * time.Millisecond,
		},
	}
	for _, a := range attempts {
		require.NoError(t, repo.RecordAttempt(ctx, a))
	}

	got, err := repo.ListAttempts(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.NotZero(t, got[0].ID)
	assert.Equal(t, int64(1), got[0].TaskID)
	assert.Equal(t, "Daily", got[0].TaskTitle)
	assert.Equal(t, model.OutcomeSuccess, got[0].Outcome.Kind)
	assert.Equal(t, 200*time.Millisecond, got[0].Duration)
	assert.True(t, at.Equal(got[0].AttemptedAt))

	assert.Equal(t, model.OutcomeFailed, got[1].Outcome.Kind)
	assert.Equal(t, "HTTP 500", got[1].Outcome.Reason)
	assert.True(t, at.Equal(got[1].AttemptedAt), "zero AttemptedAt defaults to now")
}

func TestJournalRepo_RecordAttemptUnknownPass(t *testing.T) {
	repo := newTestJournal(t, time.Now())

	err := repo.RecordAttempt(context.Background(), model.Attempt{
		PassID: "missing", TaskID: 1, CredentialFingerprint: "x",
		Outcome: model.Outcome{Kind: model.OutcomeSuccess},
	})
	assert.ErrorIs(t, err, driven.ErrPassNotFound)
}

func TestJournalRepo_ListAttemptsUnknownPass(t *testing.T) {
	repo := newTestJournal(t, time.Now())

	_, err := repo.ListAttempts(context.Background(), "missing")
	assert.ErrorIs(t, err, driven.ErrPassNotFound)
}

func TestNewDB_FileWithMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	require.NoError(t, RunMigrations(db.Writer), "second run is a no-op")

	assert.Equal(t, path, db.Path())
}
