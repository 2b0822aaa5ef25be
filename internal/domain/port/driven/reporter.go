package driven

import "time"

// Reporter defines the driven port for human-readable progress output.
// Output is not machine-parseable and is never persisted.
type Reporter interface {
	// AccountHeader announces the account about to be processed. number is 1-based.
	AccountHeader(number int, name string)
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)

	// Countdown redraws the live wait line with the remaining time.
	Countdown(remaining time.Duration)
	// CountdownDone terminates the live wait line.
	CountdownDone()
}
