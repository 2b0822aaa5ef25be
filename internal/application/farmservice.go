// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// Defaults for FarmSettings.
const (
	DefaultTaskGroup     = "cats"
	DefaultTaskTimeout   = 15 * time.Second
	DefaultPassInterval  = 15 * time.Minute
	DefaultCountdownTick = time.Second
)

// FarmSettings holds the tunables of the account loop.
type FarmSettings struct {
	// TaskGroup is the server-side task category fetched for every account.
	TaskGroup string
	// TaskTimeout bounds a single completion attempt.
	TaskTimeout time.Duration
	// PassInterval is the wait between the end of one pass and the next.
	PassInterval time.Duration
	// CountdownTick is how often the countdown line is redrawn.
	CountdownTick time.Duration
	// IsolateAccountErrors logs an account-info failure and moves on to the
	// next credential instead of aborting the run.
	IsolateAccountErrors bool
}

// DefaultFarmSettings returns the fixed production schedule.
func DefaultFarmSettings() FarmSettings {
	return FarmSettings{
		TaskGroup:     DefaultTaskGroup,
		TaskTimeout:   DefaultTaskTimeout,
		PassInterval:  DefaultPassInterval,
		CountdownTick: DefaultCountdownTick,
	}
}

// FarmService drives task completion for every credential, one account at a
// time, then waits PassInterval and starts over.
type FarmService struct {
	client      driven.TaskService
	reporter    driven.Reporter
	journal     driven.JournalStore // nil disables journaling.
	credentials []model.Credential
	settings    FarmSettings

	mu     sync.RWMutex
	status model.FarmStatus
}

// NewFarmService creates a new FarmService. journal may be nil. Zero-valued
// settings fall back to the defaults.
func NewFarmService(
	client driven.TaskService,
	reporter driven.Reporter,
	journal driven.JournalStore,
	credentials []model.Credential,
	settings FarmSettings,
) *FarmService {
	defaults := DefaultFarmSettings()
	if settings.TaskGroup == "" {
		settings.TaskGroup = defaults.TaskGroup
	}
	if settings.TaskTimeout <= 0 {
		settings.TaskTimeout = defaults.TaskTimeout
	}
	if settings.PassInterval < 0 {
		settings.PassInterval = 0
	}
	if settings.CountdownTick <= 0 {
		settings.CountdownTick = defaults.CountdownTick
	}

	creds := make([]model.Credential, len(credentials))
	copy(creds, credentials)

	return &FarmService{
		client:      client,
		reporter:    reporter,
		journal:     journal,
		credentials: creds,
		settings:    settings,
		status: model.FarmStatus{
			Phase:        model.FarmPhaseStarting,
			AccountCount: len(creds),
		},
	}
}

// Run processes passes forever: pass, countdown wait, pass, ... It returns
// when ctx is canceled (with ctx.Err()) or when a pass fails.
func (s *FarmService) Run(ctx context.Context) error {
	defer s.updateStatus(func(st *model.FarmStatus) {
		st.Phase = model.FarmPhaseStopped
		st.AccountNumber = 0
	})

	for {
		if err := s.RunPass(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.wait(ctx, s.settings.PassInterval); err != nil {
			return err
		}
	}
}

// RunPass performs one sequential traversal of all credentials in file order.
func (s *FarmService) RunPass(ctx context.Context) error {
	pass := model.Pass{
		ID:           uuid.NewString(),
		AccountCount: len(s.credentials),
		StartedAt:    time.Now(),
	}
	s.updateStatus(func(st *model.FarmStatus) {
		st.Phase = model.FarmPhaseProcessing
		st.PassNumber++
		st.PassID = pass.ID
		st.AccountNumber = 0
		st.NextPassAt = time.Time{}
		pass.Number = st.PassNumber
	})

	slog.Info("pass started", "pass_id", pass.ID, "pass", pass.Number, "accounts", pass.AccountCount)
	s.journalStartPass(ctx, pass)

	err := s.processAccounts(ctx, pass.ID)

	s.journalFinishPass(ctx, pass.ID, err)
	s.updateStatus(func(st *model.FarmStatus) {
		st.LastFinishedAt = time.Now()
		st.AccountNumber = 0
	})
	slog.Info("pass finished",
		"pass_id", pass.ID,
		"pass", pass.Number,
		"duration", time.Since(pass.StartedAt).Round(time.Millisecond),
		"error", err,
	)

	return err
}

func (s *FarmService) processAccounts(ctx context.Context, passID string) error {
	for i, cred := range s.credentials {
		if err := ctx.Err(); err != nil {
			return err
		}

		number := i + 1
		s.updateStatus(func(st *model.FarmStatus) { st.AccountNumber = number })

		if err := s.processAccount(ctx, passID, number, cred); err != nil {
			if !s.settings.IsolateAccountErrors || ctx.Err() != nil {
				return err
			}
			slog.Warn("account skipped", "pass_id", passID, "account", number, "credential", cred, "error", err)
			s.reporter.Error(err.Error())
		}
	}

	return nil
}

// processAccount reads the account state, then drives task completion. Only an
// account-info failure is returned; everything after it is isolated.
func (s *FarmService) processAccount(ctx context.Context, passID string, number int, cred model.Credential) error {
	info, err := s.client.FetchAccountInfo(ctx, cred)
	if err != nil {
		return fmt.Errorf("account %d: %w", number, err)
	}

	s.reporter.AccountHeader(number, info.FirstName)
	s.reporter.Info("Balance: " + humanize.Commaf(info.TotalRewards))
	s.reporter.Info("Ref code: " + info.ReferrerCode)

	s.completeTasks(ctx, passID, number, info.FirstName, cred)
	return nil
}

// completeTasks attempts every incomplete task sequentially. Failures are
// reported and never stop the loop.
func (s *FarmService) completeTasks(ctx context.Context, passID string, number int, name string, cred model.Credential) {
	tasks, err := s.client.FetchTasks(ctx, cred, s.settings.TaskGroup)
	if err != nil {
		slog.Error("fetch tasks failed", "pass_id", passID, "account", number, "error", err)
		s.reporter.Error("Error retrieving task list: " + err.Error())
		s.reporter.Success("All tasks completed, some tasks may not have been successful!")
		return
	}

	for _, task := range model.IncompleteTasks(tasks) {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		outcome := s.attemptCompletion(ctx, cred, task)
		elapsed := time.Since(start)

		if ctx.Err() != nil {
			// Shutdown, not a task failure.
			return
		}

		s.reportOutcome(task, outcome)
		s.journalAttempt(ctx, model.Attempt{
			PassID:                passID,
			AccountNumber:         number,
			AccountName:           name,
			CredentialFingerprint: cred.Fingerprint(),
			TaskID:                task.ID,
			TaskTitle:             task.Title,
			Outcome:               outcome,
			Duration:              elapsed,
			AttemptedAt:           start,
		})
	}

	s.reporter.Success("All tasks completed, some tasks may not have been successful!")
}

func (s *FarmService) reportOutcome(task model.Task, outcome model.Outcome) {
	switch outcome.Kind {
	case model.OutcomeSuccess:
		s.reporter.Success(fmt.Sprintf("Successfully completed the task \"%s\"", task.Title))
	case model.OutcomeTimedOut:
		s.reporter.Warning(fmt.Sprintf("The task \"%s\" timed out after %s", task.Title, formatSeconds(s.settings.TaskTimeout)))
	case model.OutcomeFailed:
		s.reporter.Error(fmt.Sprintf("Error completing the task \"%s\": %s", task.Title, outcome.Reason))
	case model.OutcomeRejected:
		// The service said no without an error; the console stays quiet.
		slog.Debug("task completion rejected", "task_id", task.ID, "title", task.Title)
	}
}

// Status returns a snapshot of the loop state.
func (s *FarmService) Status() model.FarmStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *FarmService) updateStatus(fn func(st *model.FarmStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

func (s *FarmService) journalStartPass(ctx context.Context, pass model.Pass) {
	if s.journal == nil {
		return
	}
	if err := s.journal.StartPass(ctx, pass); err != nil {
		slog.Error("journal start pass failed", "pass_id", pass.ID, "error", err)
	}
}

func (s *FarmService) journalFinishPass(ctx context.Context, passID string, passErr error) {
	if s.journal == nil {
		return
	}

	var msg string
	if passErr != nil {
		msg = passErr.Error()
	}

	// The pass may have ended because ctx was canceled; still stamp it.
	if err := s.journal.FinishPass(context.WithoutCancel(ctx), passID, msg); err != nil && !errors.Is(err, driven.ErrPassNotFound) {
		slog.Error("journal finish pass failed", "pass_id", passID, "error", err)
	}
}

func (s *FarmService) journalAttempt(ctx context.Context, attempt model.Attempt) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordAttempt(ctx, attempt); err != nil {
		slog.Error("journal record attempt failed", "pass_id", attempt.PassID, "task_id", attempt.TaskID, "error", err)
	}
}

// formatSeconds renders whole-second durations as "15 seconds".
func formatSeconds(d time.Duration) string {
	secs := d.Seconds()
	if secs == float64(int64(secs)) {
		if secs == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", int64(secs))
	}
	return d.String()
}
