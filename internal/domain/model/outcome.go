package model

import "time"

// OutcomeKind is the terminal state of one task completion attempt.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeTimedOut OutcomeKind = "timed_out"
	OutcomeFailed   OutcomeKind = "failed"
	// OutcomeRejected means the service answered but reported success=false.
	OutcomeRejected OutcomeKind = "rejected"
)

// Outcome is the transient result of one completion attempt.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // Set for OutcomeFailed.
}

// Attempt is a journaled completion attempt.
type Attempt struct {
	ID                    int64
	PassID                string
	AccountNumber         int
	AccountName           string
	CredentialFingerprint string
	TaskID                int64
	TaskTitle             string
	Outcome               Outcome
	Duration              time.Duration
	AttemptedAt           time.Time
}
