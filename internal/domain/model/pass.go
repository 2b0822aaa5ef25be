package model

import "time"

// Pass is one full sequential traversal of all credentials.
type Pass struct {
	ID           string
	Number       int
	AccountCount int
	StartedAt    time.Time
	FinishedAt   time.Time // Zero while the pass is running.
	Error        string    // Set when an error aborted the pass.
}

// IsFinished reports whether the pass has ended.
func (p Pass) IsFinished() bool {
	return !p.FinishedAt.IsZero()
}
