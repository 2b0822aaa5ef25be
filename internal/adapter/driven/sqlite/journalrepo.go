package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JournalStore = (*JournalRepo)(nil)

// JournalRepo is the SQLite implementation of the JournalStore port interface.
type JournalRepo struct {
	db  *DB
	now func() time.Time
}

// NewJournalRepo creates a new JournalRepo backed by the given DB.
func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db, now: time.Now}
}

// StartPass inserts a new running pass.
func (r *JournalRepo) StartPass(ctx context.Context, pass model.Pass) error {
	const query = `INSERT INTO passes (id, number, account_count, started_at) VALUES (?, ?, ?, ?)`

	startedAt := pass.StartedAt
	if startedAt.IsZero() {
		startedAt = r.now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query, pass.ID, pass.Number, pass.AccountCount, formatTime(startedAt))
	if err != nil {
		return fmt.Errorf("start pass %s: %w", pass.ID, err)
	}

	return nil
}

// FinishPass stamps the pass as ended with an optional error message.
func (r *JournalRepo) FinishPass(ctx context.Context, passID string, errMsg string) error {
	const query = `UPDATE passes SET finished_at = ?, error = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, formatTime(r.now()), errMsg, passID)
	if err != nil {
		return fmt.Errorf("finish pass %s: %w", passID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("finish pass %s: %w", passID, driven.ErrPassNotFound)
	}

	return nil
}

// RecordAttempt appends one completion attempt to its pass.
func (r *JournalRepo) RecordAttempt(ctx context.Context, a model.Attempt) error {
	const query = `INSERT INTO attempts (
		pass_id, account_number, account_name, credential_fingerprint,
		task_id, task_title, outcome, reason, duration_ms, attempted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	attemptedAt := a.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = r.now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		a.PassID,
		a.AccountNumber,
		a.AccountName,
		a.CredentialFingerprint,
		a.TaskID,
		a.TaskTitle,
		string(a.Outcome.Kind),
		a.Outcome.Reason,
		a.Duration.Milliseconds(),
		formatTime(attemptedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return fmt.Errorf("record attempt for pass %s: %w", a.PassID, driven.ErrPassNotFound)
		}
		return fmt.Errorf("record attempt for pass %s: %w", a.PassID, err)
	}

	return nil
}

// ListPasses returns up to limit passes, newest first.
func (r *JournalRepo) ListPasses(ctx context.Context, limit int) ([]model.Pass, error) {
	const query = `SELECT id, number, account_count, started_at, finished_at, error
		FROM passes ORDER BY started_at DESC, number DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	passes := []model.Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}

	return passes, nil
}

// ListAttempts returns the attempts of one pass in the order they were made.
func (r *JournalRepo) ListAttempts(ctx context.Context, passID string) ([]model.Attempt, error) {
	var exists int
	err := r.db.Reader.QueryRowContext(ctx, `SELECT 1 FROM passes WHERE id = ?`, passID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list attempts for pass %s: %w", passID, driven.ErrPassNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list attempts for pass %s: %w", passID, err)
	}

	const query = `SELECT id, pass_id, account_number, account_name, credential_fingerprint,
		task_id, task_title, outcome, reason, duration_ms, attempted_at
		FROM attempts WHERE pass_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query, passID)
	if err != nil {
		return nil, fmt.Errorf("list attempts for pass %s: %w", passID, err)
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	for rows.Next() {
		var (
			a           model.Attempt
			outcome     string
			durationMs  int64
			attemptedAt string
		)
		if err := rows.Scan(
			&a.ID, &a.PassID, &a.AccountNumber, &a.AccountName, &a.CredentialFingerprint,
			&a.TaskID, &a.TaskTitle, &outcome, &a.Outcome.Reason, &durationMs, &attemptedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}

		a.Outcome.Kind = model.OutcomeKind(outcome)
		a.Duration = time.Duration(durationMs) * time.Millisecond
		a.AttemptedAt, err = parseTime(attemptedAt)
		if err != nil {
			return nil, fmt.Errorf("parse attempted_at: %w", err)
		}

		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return attempts, nil
}

// scanPass scans a single pass row.
func scanPass(rows *sql.Rows) (model.Pass, error) {
	var (
		p          model.Pass
		startedAt  string
		finishedAt sql.NullString
	)
	if err := rows.Scan(&p.ID, &p.Number, &p.AccountCount, &startedAt, &finishedAt, &p.Error); err != nil {
		return model.Pass{}, fmt.Errorf("scan pass: %w", err)
	}

	var err error
	p.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return model.Pass{}, fmt.Errorf("parse started_at: %w", err)
	}

	if finishedAt.Valid {
		p.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return model.Pass{}, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	return p, nil
}

// timeLayout keeps a fixed fraction width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders times as sortable UTC text.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime attempts to parse a time string in common SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
